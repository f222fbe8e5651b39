package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// TopicRecord holds the schema definition for the TopicRecord entity.
// Canonical catalogue entry for C10's entity linker.
type TopicRecord struct {
	ent.Schema
}

// Mixin of the TopicRecord.
func (TopicRecord) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the TopicRecord.
func (TopicRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("topic_record_id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.JSON("aliases", []string{}).
			Optional(),
		field.Int("mention_count").
			Default(0),
	}
}

// Edges of the TopicRecord.
func (TopicRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("mentions", TopicMention.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
	}
}

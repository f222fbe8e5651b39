package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TopicMention holds the schema definition for the TopicMention entity.
// Junction row linking a Hearing's extracted topic mention to a TopicRecord.
type TopicMention struct {
	ent.Schema
}

// Mixin of the TopicMention.
func (TopicMention) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the TopicMention.
func (TopicMention) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("topic_mention_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Immutable(),
		field.String("matched_id").
			Optional().
			Nillable().
			Comment("TopicRecord id; null until canonicalization review resolves it"),
		field.String("extracted_name"),
		field.Int("match_score").
			Optional().
			Nillable(),
		field.Int("confidence").
			Comment("0-100"),
		field.Bool("needs_review"),
		field.String("relevance").
			Optional().
			Nillable().
			Comment("e.g. high, medium, low"),
	}
}

// Edges of the TopicMention.
func (TopicMention) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("topic_mentions").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
		edge.From("record", TopicRecord.Type).
			Ref("mentions").
			Field("matched_id").
			Unique(),
	}
}

// Indexes of the TopicMention.
func (TopicMention) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("hearing_id"),
		index.Fields("needs_review"),
	}
}

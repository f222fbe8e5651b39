package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// UtilityRecord holds the schema definition for the UtilityRecord entity.
// Canonical catalogue entry for C10's entity linker.
type UtilityRecord struct {
	ent.Schema
}

// Mixin of the UtilityRecord.
func (UtilityRecord) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the UtilityRecord.
func (UtilityRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("utility_record_id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.JSON("aliases", []string{}).
			Optional(),
		field.String("sector").
			Optional().
			Nillable(),
		field.Int("mention_count").
			Default(0),
	}
}

// Edges of the UtilityRecord.
func (UtilityRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("mentions", UtilityMention.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UtilityMention holds the schema definition for the UtilityMention entity.
// Junction row linking a Hearing's extracted utility mention to a
// UtilityRecord, mirroring HearingDocket's shape.
type UtilityMention struct {
	ent.Schema
}

// Mixin of the UtilityMention.
func (UtilityMention) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the UtilityMention.
func (UtilityMention) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("utility_mention_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Immutable(),
		field.String("matched_id").
			Optional().
			Nillable().
			Comment("UtilityRecord id; null until canonicalization review resolves it"),
		field.String("extracted_name"),
		field.Int("match_score").
			Optional().
			Nillable(),
		field.Int("confidence").
			Comment("0-100"),
		field.Bool("needs_review"),
		field.String("role").
			Optional().
			Nillable().
			Comment("e.g. applicant, intervenor"),
	}
}

// Edges of the UtilityMention.
func (UtilityMention) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("utility_mentions").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
		edge.From("record", UtilityRecord.Type).
			Ref("mentions").
			Field("matched_id").
			Unique(),
	}
}

// Indexes of the UtilityMention.
func (UtilityMention) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("hearing_id"),
		index.Fields("needs_review"),
	}
}

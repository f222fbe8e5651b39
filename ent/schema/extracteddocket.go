package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExtractedDocket holds the schema definition for the ExtractedDocket entity.
// One row per candidate emitted by the docket extraction pipeline, even
// rejected ones — a full audit trail of every regex match considered.
type ExtractedDocket struct {
	ent.Schema
}

// Mixin of the ExtractedDocket.
func (ExtractedDocket) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the ExtractedDocket.
func (ExtractedDocket) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("extracted_docket_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Immutable(),
		field.String("raw_text"),
		field.String("normalized_id").
			Optional().
			Nillable(),
		field.Int("year").
			Optional().
			Nillable(),
		field.String("case_number").
			Optional().
			Nillable(),
		field.String("suffix").
			Optional().
			Nillable(),
		field.String("utility_sector").
			Optional().
			Nillable(),
		field.Int("confidence").
			Comment("0-100"),
		field.Enum("status").
			Values("accepted", "needs_review", "rejected"),
		field.Enum("match_type").
			Values("exact", "fuzzy", "none"),
		field.String("trigger_phrase").
			Optional().
			Nillable(),
		field.String("matched_known_docket_id").
			Optional().
			Nillable(),
		field.Int("fuzzy_score").
			Optional().
			Nillable(),
		field.String("context_before").
			Optional().
			Nillable(),
		field.String("context_after").
			Optional().
			Nillable(),
		field.String("suggested_correction").
			Optional().
			Nillable(),
	}
}

// Edges of the ExtractedDocket.
func (ExtractedDocket) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("extracted_dockets").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the ExtractedDocket.
func (ExtractedDocket) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("hearing_id"),
		index.Fields("status"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Analysis holds the schema definition for the Analysis entity.
// One per Hearing; the fixed-schema output of a single structured LLM call.
// Known fields get typed, indexed columns; everything else the model might
// return rides along in raw_output for forward compatibility.
type Analysis struct {
	ent.Schema
}

// Mixin of the Analysis.
func (Analysis) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the Analysis.
func (Analysis) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("analysis_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Unique().
			Immutable(),
		field.Text("summary").
			Optional().
			Nillable(),
		field.Text("one_sentence_summary").
			Optional().
			Nillable(),
		field.JSON("participants", []string{}).
			Optional(),
		field.JSON("issues", []string{}).
			Optional(),
		field.JSON("commitments", []string{}).
			Optional(),
		field.JSON("vulnerabilities", []string{}).
			Optional(),
		field.JSON("commissioner_concerns", []string{}).
			Optional(),
		field.Enum("commissioner_mood").
			Values("supportive", "skeptical", "hostile", "neutral", "mixed").
			Optional().
			Nillable(),
		field.Enum("public_sentiment").
			Values("supportive", "opposed", "mixed", "none").
			Optional().
			Nillable(),
		field.Text("likely_outcome").
			Optional().
			Nillable(),
		field.Float("outcome_confidence").
			Optional().
			Nillable().
			Comment("In [0,1]"),
		field.JSON("risk_factors", []string{}).
			Optional(),
		field.JSON("action_items", []string{}).
			Optional(),
		field.JSON("quotes", []string{}).
			Optional(),
		field.JSON("topics", []string{}).
			Optional(),
		field.JSON("utilities", []string{}).
			Optional(),
		field.JSON("dockets", []string{}).
			Optional(),
		field.JSON("raw_output", map[string]interface{}{}).
			Optional().
			Comment("Full model JSON response, including any fields not promoted above"),
		field.String("model").
			Comment("e.g. gpt-4o"),
		field.Float("cost_usd").
			Default(0),
	}
}

// Edges of the Analysis.
func (Analysis) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("analysis").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Transcript holds the schema definition for the Transcript entity.
// One per Hearing; owns an ordered set of Segments.
type Transcript struct {
	ent.Schema
}

// Mixin of the Transcript.
func (Transcript) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the Transcript.
func (Transcript) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("transcript_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Unique().
			Immutable(),
		field.Text("full_text").
			Comment("Full-text searchable via GIN index, see migrations.go"),
		field.Int("word_count").
			Default(0),
		field.String("model").
			Comment("Provider model name, e.g. whisper-large-v3"),
		field.Float("cost_usd").
			Default(0),
	}
}

// Edges of the Transcript.
func (Transcript) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("transcript").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
		edge.To("segments", Segment.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Segment holds the schema definition for the Segment entity.
// An ordered fragment of a Transcript with timing. Invariants (enforced in
// pkg/transcribe, not by the schema): start_time <= end_time; within a
// hearing, segment_index is dense from 0 and segments are sorted by
// start_time.
type Segment struct {
	ent.Schema
}

// Fields of the Segment.
func (Segment) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("segment_id").
			Unique().
			Immutable(),
		field.String("transcript_id").
			Immutable(),
		field.Int("segment_index").
			Immutable(),
		field.Float("start_time"),
		field.Float("end_time"),
		field.Text("text"),
		field.String("speaker").
			Optional().
			Nillable(),
		field.String("speaker_role").
			Optional().
			Nillable(),
	}
}

// Edges of the Segment.
func (Segment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("transcript", Transcript.Type).
			Ref("segments").
			Field("transcript_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Segment.
func (Segment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("transcript_id", "segment_index").
			Unique(),
		index.Fields("transcript_id", "start_time"),
	}
}

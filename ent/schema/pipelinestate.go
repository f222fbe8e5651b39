package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// PipelineState holds the schema definition for the PipelineState entity.
// A singleton row used as the only cross-process coordination channel
// between orchestrator instances: the pause flag (§5, §9).
type PipelineState struct {
	ent.Schema
}

// Fields of the PipelineState.
func (PipelineState) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("pipeline_state_id").
			Unique().
			Immutable().
			Default("singleton"),
		field.Bool("paused").
			Default(false),
		field.Time("paused_at").
			Optional().
			Nillable(),
		field.String("paused_by").
			Optional().
			Nillable(),
	}
}

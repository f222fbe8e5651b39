package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PipelineJob holds the schema definition for the PipelineJob entity.
// Per-(hearing, stage) execution record. Multiple jobs may exist per
// (hearing, stage) across retries; the most recent one defines current state.
type PipelineJob struct {
	ent.Schema
}

// Mixin of the PipelineJob.
func (PipelineJob) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the PipelineJob.
func (PipelineJob) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("job_id").
			Unique().
			Immutable(),
		field.String("hearing_id").
			Immutable(),
		field.String("stage").
			Immutable().
			Comment("transcribe | analyze | extract | finalize"),
		field.Enum("status").
			Values("pending", "running", "complete", "failed").
			Default("pending"),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.String("error_message").
			Optional().
			Nillable().
			Comment("Truncated to 500 chars"),
		field.Int("retry_count").
			Default(0),
		field.Float("cost_usd").
			Default(0),
		field.JSON("metadata", map[string]interface{}{}).
			Optional(),
	}
}

// Edges of the PipelineJob.
func (PipelineJob) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("hearing", Hearing.Type).
			Ref("pipeline_jobs").
			Field("hearing_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the PipelineJob.
func (PipelineJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("hearing_id", "stage"),
		index.Fields("status"),
	}
}

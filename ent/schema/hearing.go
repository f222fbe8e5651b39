package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Hearing holds the schema definition for the Hearing entity.
// One regulatory proceeding recording; the orchestrator's ground truth
// state machine lives on its status field.
type Hearing struct {
	ent.Schema
}

// Mixin of the Hearing.
func (Hearing) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the Hearing.
func (Hearing) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("hearing_id").
			Unique().
			Immutable(),
		field.String("source_id").
			Immutable(),
		field.String("state_code").
			Immutable().
			Comment("Denormalized from source.state for cheap filtering"),
		field.String("external_id").
			Immutable().
			Comment("Unique within source; identifies the upstream item"),
		field.String("title"),
		field.Text("description").
			Optional().
			Nillable(),
		field.Time("hearing_date").
			Optional().
			Nillable(),
		field.String("hearing_type").
			Optional().
			Nillable(),
		field.String("utility_name").
			Optional().
			Nillable(),
		field.JSON("docket_numbers", []string{}).
			Optional().
			Comment("Raw docket numbers as seen at discovery time, pre-extraction"),
		field.String("source_url").
			Optional().
			Nillable(),
		field.String("media_url").
			Optional().
			Nillable(),
		field.Float("duration_seconds").
			Optional().
			Nillable(),
		field.Enum("status").
			Values(
				"discovered", "downloading", "transcribing", "transcribed",
				"analyzing", "analyzed", "extracting", "extracted", "completing",
				"complete", "error", "skipped",
			).
			Default("discovered"),
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("Soft delete for retention policy"),
	}
}

// Edges of the Hearing.
func (Hearing) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("source", Source.Type).
			Ref("hearings").
			Field("source_id").
			Unique().
			Required().
			Immutable(),
		edge.To("transcript", Transcript.Type).
			Unique().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("analysis", Analysis.Type).
			Unique().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("pipeline_jobs", PipelineJob.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("hearing_dockets", HearingDocket.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("extracted_dockets", ExtractedDocket.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("utility_mentions", UtilityMention.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("topic_mentions", TopicMention.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Hearing.
func (Hearing) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("source_id", "external_id").
			Unique(),
		index.Fields("status"),
		index.Fields("state_code"),
		index.Fields("status", "updated_at"),
		index.Fields("deleted_at").
			Annotations(entsql.IndexWhere("deleted_at IS NOT NULL")),
	}
}

// Annotations for PostgreSQL-specific features.
// GIN full-text-search indexes over title/description are created via a
// migration hook in pkg/database/migrations.go, the same way the teacher
// creates them for AlertSession.alert_data.
func (Hearing) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}

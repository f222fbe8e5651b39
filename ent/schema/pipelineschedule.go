package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// PipelineSchedule holds the schema definition for the PipelineSchedule entity.
// A database-backed recurring schedule dispatched by the scheduler daemon.
type PipelineSchedule struct {
	ent.Schema
}

// Mixin of the PipelineSchedule.
func (PipelineSchedule) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the PipelineSchedule.
func (PipelineSchedule) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("schedule_id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.Enum("target").
			Values("pipeline", "scraper", "all"),
		field.Enum("schedule_type").
			Values("interval", "daily", "cron"),
		field.String("schedule_value").
			Comment(`"30m"/"2h"/"1d" for interval, "HH:MM" for daily, 5-field cron expression for cron`),
		field.JSON("config", map[string]interface{}{}).
			Optional().
			Comment("Filters and caps passed to the dispatched run"),
		field.Bool("enabled").
			Default(true),
		field.Time("next_run_at").
			Optional().
			Nillable(),
		field.Time("last_run_at").
			Optional().
			Nillable(),
		field.String("last_run_status").
			Optional().
			Nillable(),
		field.String("last_run_error").
			Optional().
			Nillable(),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Source holds the schema definition for the Source entity.
// One ingestion endpoint owned by a State, driven by the scraper orchestrator.
type Source struct {
	ent.Schema
}

// Mixin of the Source.
func (Source) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the Source.
func (Source) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("source_id").
			Unique().
			Immutable(),
		field.String("state_id").
			Immutable(),
		field.Enum("kind").
			Values("video_channel", "admin_monitor", "rss_feed", "api_endpoint"),
		field.String("name").
			Comment("Human-readable label, e.g. 'Florida PSC YouTube channel'"),
		field.String("url"),
		field.JSON("config", map[string]interface{}{}).
			Optional().
			Comment("Adapter-private configuration, e.g. pagination params, channel id"),
		field.Bool("enabled").
			Default(true),
		field.Int("check_frequency_hours").
			Default(6),
		field.Time("last_checked_at").
			Optional().
			Nillable(),
		field.Time("last_hearing_at").
			Optional().
			Nillable().
			Comment("Max candidate date observed on the last successful pass"),
		field.Enum("status").
			Values("pending", "active", "error").
			Default("pending"),
		field.String("error_message").
			Optional().
			Nillable(),
	}
}

// Edges of the Source.
func (Source) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("state", State.Type).
			Ref("sources").
			Field("state_id").
			Unique().
			Required().
			Immutable(),
		edge.To("hearings", Hearing.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
	}
}

// Indexes of the Source.
func (Source) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("state_id", "kind"),
		index.Fields("status"),
		index.Fields("enabled"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// KnownDocket holds the schema definition for the KnownDocket entity.
// Authoritative catalogue entry scraped from a PSC site, upserted by a
// periodic discovery job independent of per-hearing processing.
type KnownDocket struct {
	ent.Schema
}

// Mixin of the KnownDocket.
func (KnownDocket) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the KnownDocket.
func (KnownDocket) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("known_docket_id").
			Unique().
			Immutable(),
		field.String("state_id").
			Immutable(),
		field.String("docket_number"),
		field.String("normalized_id").
			Unique().
			Comment(`"<STATE>-<docket_number>", globally unique across states`),
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
		field.String("title").
			Optional().
			Nillable(),
		field.String("utility_name").
			Optional().
			Nillable(),
		field.Time("filing_date").
			Optional().
			Nillable(),
		field.String("status").
			Optional().
			Nillable(),
		field.String("case_type").
			Optional().
			Nillable(),
		field.String("source_url").
			Optional().
			Nillable(),
	}
}

// Edges of the KnownDocket.
func (KnownDocket) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("state", State.Type).
			Ref("known_dockets").
			Field("state_id").
			Unique().
			Required().
			Immutable(),
		edge.To("dockets", Docket.Type),
	}
}

// Indexes of the KnownDocket.
func (KnownDocket) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("state_id", "docket_number").
			Unique(),
	}
}

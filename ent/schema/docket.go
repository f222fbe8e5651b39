package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Docket holds the schema definition for the Docket entity.
// An in-use docket record as referenced from one or more hearings. Created
// on first extraction; mention_count/last_mentioned_at updated on every
// subsequent mention. Never deleted while any HearingDocket link exists.
type Docket struct {
	ent.Schema
}

// Mixin of the Docket.
func (Docket) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimestampMixin{},
	}
}

// Fields of the Docket.
func (Docket) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("docket_id").
			Unique().
			Immutable(),
		field.String("state_code").
			Immutable(),
		field.String("docket_number"),
		field.String("normalized_id").
			Unique(),
		field.String("title").
			Optional().
			Nillable(),
		field.String("company").
			Optional().
			Nillable(),
		field.String("sector").
			Optional().
			Nillable(),
		field.String("status").
			Optional().
			Nillable(),
		field.Time("first_seen_at"),
		field.Time("last_mentioned_at"),
		field.Int("mention_count").
			Default(0),
		field.Enum("confidence").
			Values("verified", "possible", "unverified").
			Default("unverified"),
		field.String("known_docket_id").
			Optional().
			Nillable(),
		field.Int("match_score").
			Optional().
			Nillable().
			Comment("0-100 Levenshtein-ratio score against the KnownDocket catalogue"),
	}
}

// Edges of the Docket.
func (Docket) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("known_docket", KnownDocket.Type).
			Ref("dockets").
			Field("known_docket_id").
			Unique(),
		edge.To("hearing_dockets", HearingDocket.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
	}
}

// Indexes of the Docket.
func (Docket) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("state_code"),
		index.Fields("confidence"),
	}
}

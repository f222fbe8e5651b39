package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// State holds the schema definition for the State entity.
// Reference data: one row per participating PSC/PUC jurisdiction.
type State struct {
	ent.Schema
}

// Fields of the State.
func (State) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("state_code").
			Unique().
			Immutable().
			Comment("Two-letter postal code, e.g. FL, TX, CA, OH"),
		field.String("name").
			Comment("Full state name"),
		field.String("commission_name").
			Comment("e.g. 'Florida Public Service Commission'"),
	}
}

// Edges of the State.
func (State) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("sources", Source.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
		edge.To("known_dockets", KnownDocket.Type).
			Annotations(entsql.OnDelete(entsql.Restrict)),
	}
}

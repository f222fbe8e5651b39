package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// TimestampMixin adds created_at/updated_at to every entity that embeds it.
// Every persistent entity in the data model carries these two columns.
type TimestampMixin struct {
	mixin.Schema
}

// Fields of the TimestampMixin.
func (TimestampMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

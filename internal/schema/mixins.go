// Package schema declares the bot's entities as ent schemas. The tables in
// internal/repo are the migration form of these declarations and are kept
// in step with them by this package's tests.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// CreatedAtMixin provides only created_at (for append-only records).
type CreatedAtMixin struct {
	mixin.Schema
}

func (CreatedAtMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

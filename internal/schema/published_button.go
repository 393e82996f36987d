package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PublishedButton is a starter button on a sent message. It keeps form_id
// without an edge so the button outlives the form it opens.
type PublishedButton struct {
	ent.Schema
}

func (PublishedButton) Fields() []ent.Field {
	return []ent.Field{
		field.String("message_id"),
		field.String("channel_id"),
		field.Int("position"),

		field.String("label").
			MaxLen(80).
			NotEmpty(),

		field.String("emoji").
			MaxLen(32).
			Optional().
			Nillable(),

		field.Int("style").
			Default(1).
			Comment("1 primary, 2 secondary, 3 success, 4 danger"),

		field.Int("form_id"),
	}
}

func (PublishedButton) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("message_id", "label").Unique(),
	}
}

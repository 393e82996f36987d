package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Form is a named questionnaire made of modals.
type Form struct {
	ent.Schema
}

func (Form) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			MaxLen(45).
			NotEmpty().
			Unique(),

		field.Text("message").
			Optional().
			Nillable().
			Comment("Shown above the form's buttons when a session starts"),

		field.Text("confirmation").
			Optional().
			Nillable().
			Comment("Shown to the submitter after sending"),

		field.String("channel_id").
			Optional().
			Nillable().
			Comment("Channel receiving response notifications"),

		field.Bool("ping").
			Default(false),
	}
}

func (Form) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("modals", Modal.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("responses", Response.Type).
			Annotations(entsql.OnDelete(entsql.SetNull)),
	}
}

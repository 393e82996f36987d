package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is a text input on a modal.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("label").
			MaxLen(45).
			NotEmpty(),

		field.String("placeholder").
			MaxLen(100).
			Optional().
			Nillable(),

		field.Bool("paragraph").
			Default(false),

		field.Bool("required").
			Default(true),

		field.Int("min_length").
			Optional().
			Nillable(),

		field.Int("max_length").
			Optional().
			Nillable(),

		field.Bool("identity").
			Default(false).
			Comment("Answer names the submitter's game account"),

		field.Int("modal_id").
			Comment("FK → modals.id"),
	}
}

func (Question) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("modal", Modal.Type).
			Ref("questions").
			Unique().
			Required().
			Field("modal_id"),
		edge.To("answers", Answer.Type).
			Annotations(entsql.OnDelete(entsql.SetNull)),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("modal_id", "label").Unique(),
	}
}

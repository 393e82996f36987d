package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Modal is one page of a form.
type Modal struct {
	ent.Schema
}

func (Modal) Fields() []ent.Field {
	return []ent.Field{
		field.String("label").
			MaxLen(80).
			NotEmpty(),

		field.String("title").
			MaxLen(45).
			Optional().
			Nillable(),

		field.Int("form_id").
			Comment("FK → forms.id"),
	}
}

func (Modal) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("form", Form.Type).
			Ref("modals").
			Unique().
			Required().
			Field("form_id"),
		edge.To("questions", Question.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Modal) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("form_id", "label").Unique(),
	}
}

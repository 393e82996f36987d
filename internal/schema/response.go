package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Response is one completed submission. Responses and their answers are
// append-only; removing a form only clears form_id.
type Response struct {
	ent.Schema
}

func (Response) Mixin() []ent.Mixin {
	return []ent.Mixin{
		CreatedAtMixin{},
	}
}

func (Response) Fields() []ent.Field {
	return []ent.Field{
		field.String("username").
			Immutable(),

		field.Int("form_id").
			Optional().
			Nillable().
			Comment("FK → forms.id, NULL once the form is removed"),
	}
}

func (Response) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("form", Form.Type).
			Ref("responses").
			Unique().
			Field("form_id"),
		edge.To("answers", Answer.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

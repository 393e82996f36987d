package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Answer is the text given to one question of a response.
type Answer struct {
	ent.Schema
}

func (Answer) Fields() []ent.Field {
	return []ent.Field{
		field.Text("answer").
			Optional().
			Nillable().
			Immutable().
			Comment("NULL when the question was left blank"),

		field.Int("response_id").
			Immutable(),

		field.Int("question_id").
			Optional().
			Nillable().
			Comment("FK → questions.id, NULL once the question is removed"),
	}
}

func (Answer) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("response", Response.Type).
			Ref("answers").
			Unique().
			Required().
			Immutable().
			Field("response_id"),
		edge.From("question", Question.Type).
			Ref("answers").
			Unique().
			Field("question_id"),
	}
}

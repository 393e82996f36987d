package repo

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// CreateResponse inserts r and sets its ID from the RETURNING clause.
func (c *Client) CreateResponse(ctx context.Context, r *Response) error {
	ins := c.builder().Insert(ResponsesTable.Name).
		Columns("username", "created_at", "form_id").
		Values(r.Username, r.CreatedAt, r.FormID).
		Returning("id")

	id, err := c.insertReturningID(ctx, ins)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	r.ID = id
	return nil
}

// CreateAnswers inserts all answers in one statement.
func (c *Client) CreateAnswers(ctx context.Context, answers []*Answer) error {
	if len(answers) == 0 {
		return nil
	}

	ins := c.builder().Insert(AnswersTable.Name).Columns("response_id", "question_id", "answer")
	for _, a := range answers {
		ins = ins.Values(a.ResponseID, a.QuestionID, nullString(a.Answer))
	}

	if _, err := c.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}
	return nil
}

// ListResponses returns the responses of a form, newest first.
func (c *Client) ListResponses(ctx context.Context, formID int) ([]*Response, error) {
	t := c.builder().Table(ResponsesTable.Name)
	sel := c.builder().Select("id", "username", "created_at", "form_id").From(t).
		Where(entsql.EQ("form_id", formID)).
		OrderBy(entsql.Desc("id"))

	var responses []*Response
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			r      Response
			formID sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Username, &r.CreatedAt, &formID); err != nil {
			return err
		}
		r.FormID = int(formID.Int64)
		responses = append(responses, &r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// CountResponses returns how many responses a form has collected.
func (c *Client) CountResponses(ctx context.Context, formID int) (int, error) {
	t := c.builder().Table(ResponsesTable.Name)
	sel := c.builder().Select().From(t).Count().Where(entsql.EQ("form_id", formID))

	n := 0
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// ListAnswers returns the answers of a response in question order.
func (c *Client) ListAnswers(ctx context.Context, responseID int) ([]*Answer, error) {
	t := c.builder().Table(AnswersTable.Name)
	sel := c.builder().Select("id", "response_id", "question_id", "answer").From(t).
		Where(entsql.EQ("response_id", responseID)).
		OrderBy(entsql.Asc("id"))

	var answers []*Answer
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			a          Answer
			questionID sql.NullInt64
			text       sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ResponseID, &questionID, &text); err != nil {
			return err
		}
		a.QuestionID = int(questionID.Int64)
		a.Answer = fromNullString(text)
		answers = append(answers, &a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

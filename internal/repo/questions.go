package repo

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var questionColumns = []string{
	"id", "modal_id", "label", "placeholder", "paragraph",
	"required", "min_length", "max_length", "identity",
}

func scanQuestion(rows *entsql.Rows) (*Question, error) {
	var (
		q           Question
		placeholder sql.NullString
		minLen      sql.NullInt64
		maxLen      sql.NullInt64
	)
	err := rows.Scan(&q.ID, &q.ModalID, &q.Label, &placeholder, &q.Paragraph,
		&q.Required, &minLen, &maxLen, &q.Identity)
	if err != nil {
		return nil, err
	}
	q.Placeholder = fromNullString(placeholder)
	q.MinLength = fromNullInt(minLen)
	q.MaxLength = fromNullInt(maxLen)
	return &q, nil
}

// CreateQuestion inserts q and sets its ID.
func (c *Client) CreateQuestion(ctx context.Context, q *Question) error {
	ins := c.builder().Insert(QuestionsTable.Name).
		Columns("modal_id", "label", "placeholder", "paragraph", "required", "min_length", "max_length", "identity").
		Values(q.ModalID, q.Label, nullString(q.Placeholder), q.Paragraph, q.Required,
			nullInt(q.MinLength), nullInt(q.MaxLength), q.Identity).
		Returning("id")

	id, err := c.insertReturningID(ctx, ins)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	q.ID = id
	return nil
}

// GetQuestion returns the question with the given id.
func (c *Client) GetQuestion(ctx context.Context, id int) (*Question, error) {
	return c.oneQuestion(ctx, entsql.EQ("id", id))
}

// GetQuestionByLabel returns the question of modalID labelled label.
func (c *Client) GetQuestionByLabel(ctx context.Context, modalID int, label string) (*Question, error) {
	return c.oneQuestion(ctx, entsql.And(entsql.EQ("modal_id", modalID), entsql.EQ("label", label)))
}

func (c *Client) oneQuestion(ctx context.Context, p *entsql.Predicate) (*Question, error) {
	t := c.builder().Table(QuestionsTable.Name)
	sel := c.builder().Select(questionColumns...).From(t).Where(p).Limit(1)

	var question *Question
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		q, err := scanQuestion(rows)
		question = q
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query question: %w", err)
	}
	if question == nil {
		return nil, ErrNotFound
	}
	return question, nil
}

// ListQuestions returns the questions of a modal in creation order.
func (c *Client) ListQuestions(ctx context.Context, modalID int) ([]*Question, error) {
	t := c.builder().Table(QuestionsTable.Name)
	sel := c.builder().Select(questionColumns...).From(t).
		Where(entsql.EQ("modal_id", modalID)).
		OrderBy(entsql.Asc("id"))

	var questions []*Question
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		q, err := scanQuestion(rows)
		if err != nil {
			return err
		}
		questions = append(questions, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// CountQuestions returns how many questions a modal has.
func (c *Client) CountQuestions(ctx context.Context, modalID int) (int, error) {
	t := c.builder().Table(QuestionsTable.Name)
	sel := c.builder().Select().From(t).Count().Where(entsql.EQ("modal_id", modalID))

	n := 0
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// SearchQuestionLabels returns up to limit labels of modalID's questions
// starting with prefix, ignoring case.
func (c *Client) SearchQuestionLabels(ctx context.Context, modalID int, prefix string, limit int) ([]string, error) {
	t := c.builder().Table(QuestionsTable.Name)
	sel := c.builder().Select("label").From(t).
		Where(entsql.And(entsql.EQ("modal_id", modalID), entsql.HasPrefixFold("label", prefix))).
		OrderBy(entsql.Asc("id")).
		Limit(limit)

	labels, err := c.scanStrings(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return labels, nil
}

// UpdateQuestion writes every mutable column of q.
func (c *Client) UpdateQuestion(ctx context.Context, q *Question) error {
	upd := c.builder().Update(QuestionsTable.Name).
		Set("label", q.Label).
		Set("placeholder", nullString(q.Placeholder)).
		Set("paragraph", q.Paragraph).
		Set("required", q.Required).
		Set("min_length", nullInt(q.MinLength)).
		Set("max_length", nullInt(q.MaxLength)).
		Set("identity", q.Identity).
		Where(entsql.EQ("id", q.ID))

	res, err := c.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return affected(res)
}

// DeleteQuestion removes a question and every answer given to it.
func (c *Client) DeleteQuestion(ctx context.Context, id int) error {
	del := c.builder().Delete(QuestionsTable.Name).Where(entsql.EQ("id", id))
	res, err := c.exec(ctx, del)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return affected(res)
}

package repo

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var formColumns = []string{"id", "name", "message", "confirmation", "channel_id", "ping"}

func scanForm(rows *entsql.Rows) (*Form, error) {
	var (
		f                              Form
		message, confirmation, channel sql.NullString
	)
	if err := rows.Scan(&f.ID, &f.Name, &message, &confirmation, &channel, &f.Ping); err != nil {
		return nil, err
	}
	f.Message = fromNullString(message)
	f.Confirmation = fromNullString(confirmation)
	f.ChannelID = fromNullString(channel)
	return &f, nil
}

// CreateForm inserts f and sets its ID.
func (c *Client) CreateForm(ctx context.Context, f *Form) error {
	q := c.builder().Insert(FormsTable.Name).
		Columns("name", "message", "confirmation", "channel_id", "ping").
		Values(f.Name, nullString(f.Message), nullString(f.Confirmation), nullString(f.ChannelID), f.Ping).
		Returning("id")

	id, err := c.insertReturningID(ctx, q)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	f.ID = id
	return nil
}

// GetForm returns the form with the given id.
func (c *Client) GetForm(ctx context.Context, id int) (*Form, error) {
	return c.oneForm(ctx, entsql.EQ("id", id))
}

// GetFormByName returns the form with the exact given name.
func (c *Client) GetFormByName(ctx context.Context, name string) (*Form, error) {
	return c.oneForm(ctx, entsql.EQ("name", name))
}

func (c *Client) oneForm(ctx context.Context, p *entsql.Predicate) (*Form, error) {
	t := c.builder().Table(FormsTable.Name)
	q := c.builder().Select(formColumns...).From(t).Where(p).Limit(1)

	var form *Form
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		f, err := scanForm(rows)
		form = f
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}
	return form, nil
}

// FormNameExists reports whether a form already uses name.
func (c *Client) FormNameExists(ctx context.Context, name string) (bool, error) {
	_, err := c.GetFormByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// ListForms returns every form in creation order.
func (c *Client) ListForms(ctx context.Context) ([]*Form, error) {
	t := c.builder().Table(FormsTable.Name)
	q := c.builder().Select(formColumns...).From(t).OrderBy(entsql.Asc("id"))

	var forms []*Form
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		f, err := scanForm(rows)
		if err != nil {
			return err
		}
		forms = append(forms, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// SearchFormNames returns up to limit form names starting with prefix,
// ignoring case.
func (c *Client) SearchFormNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	t := c.builder().Table(FormsTable.Name)
	q := c.builder().Select("name").From(t).
		Where(entsql.HasPrefixFold("name", prefix)).
		OrderBy(entsql.Asc("name")).
		Limit(limit)

	names, err := c.scanStrings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search forms: %w", err)
	}
	return names, nil
}

// UpdateForm writes every mutable column of f.
func (c *Client) UpdateForm(ctx context.Context, f *Form) error {
	q := c.builder().Update(FormsTable.Name).
		Set("name", f.Name).
		Set("message", nullString(f.Message)).
		Set("confirmation", nullString(f.Confirmation)).
		Set("channel_id", nullString(f.ChannelID)).
		Set("ping", f.Ping).
		Where(entsql.EQ("id", f.ID))

	res, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	return affected(res)
}

// DeleteForm removes a form together with its modals, questions and responses.
func (c *Client) DeleteForm(ctx context.Context, id int) error {
	q := c.builder().Delete(FormsTable.Name).Where(entsql.EQ("id", id))
	res, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return affected(res)
}

func (c *Client) insertReturningID(ctx context.Context, q entsql.Querier) (int, error) {
	id := -1
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		return rows.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("insert returned no id")
	}
	return id, nil
}

func (c *Client) scanStrings(ctx context.Context, q entsql.Querier) ([]string, error) {
	var out []string
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

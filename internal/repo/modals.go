package repo

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var modalColumns = []string{"id", "form_id", "label", "title"}

func scanModal(rows *entsql.Rows) (*Modal, error) {
	var (
		m     Modal
		title sql.NullString
	)
	if err := rows.Scan(&m.ID, &m.FormID, &m.Label, &title); err != nil {
		return nil, err
	}
	m.Title = fromNullString(title)
	return &m, nil
}

// CreateModal inserts m and sets its ID.
func (c *Client) CreateModal(ctx context.Context, m *Modal) error {
	q := c.builder().Insert(ModalsTable.Name).
		Columns("form_id", "label", "title").
		Values(m.FormID, m.Label, nullString(m.Title)).
		Returning("id")

	id, err := c.insertReturningID(ctx, q)
	if err != nil {
		return fmt.Errorf("insert modal: %w", err)
	}
	m.ID = id
	return nil
}

// GetModal returns the modal with the given id.
func (c *Client) GetModal(ctx context.Context, id int) (*Modal, error) {
	return c.oneModal(ctx, entsql.EQ("id", id))
}

// GetModalByLabel returns the modal of formID labelled label.
func (c *Client) GetModalByLabel(ctx context.Context, formID int, label string) (*Modal, error) {
	return c.oneModal(ctx, entsql.And(entsql.EQ("form_id", formID), entsql.EQ("label", label)))
}

// LockModal takes a row lock on the modal for the rest of the transaction
// and reports ErrNotFound if it does not exist. SQLite has no row locks;
// there the call only checks existence.
func (c *Client) LockModal(ctx context.Context, id int) error {
	t := c.builder().Table(ModalsTable.Name)
	q := c.builder().Select("id").From(t).Where(entsql.EQ("id", id))
	if c.dialect != dialect.SQLite {
		q = q.ForUpdate()
	}

	found := false
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		found = true
		var discard int
		return rows.Scan(&discard)
	})
	if err != nil {
		return fmt.Errorf("lock modal: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (c *Client) oneModal(ctx context.Context, p *entsql.Predicate) (*Modal, error) {
	t := c.builder().Table(ModalsTable.Name)
	q := c.builder().Select(modalColumns...).From(t).Where(p).Limit(1)

	var modal *Modal
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		m, err := scanModal(rows)
		modal = m
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query modal: %w", err)
	}
	if modal == nil {
		return nil, ErrNotFound
	}
	return modal, nil
}

// ListModals returns the modals of a form in creation order.
func (c *Client) ListModals(ctx context.Context, formID int) ([]*Modal, error) {
	t := c.builder().Table(ModalsTable.Name)
	q := c.builder().Select(modalColumns...).From(t).
		Where(entsql.EQ("form_id", formID)).
		OrderBy(entsql.Asc("id"))

	var modals []*Modal
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		m, err := scanModal(rows)
		if err != nil {
			return err
		}
		modals = append(modals, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list modals: %w", err)
	}
	return modals, nil
}

// SearchModalLabels returns up to limit labels of formID's modals starting
// with prefix, ignoring case.
func (c *Client) SearchModalLabels(ctx context.Context, formID int, prefix string, limit int) ([]string, error) {
	t := c.builder().Table(ModalsTable.Name)
	q := c.builder().Select("label").From(t).
		Where(entsql.And(entsql.EQ("form_id", formID), entsql.HasPrefixFold("label", prefix))).
		OrderBy(entsql.Asc("id")).
		Limit(limit)

	labels, err := c.scanStrings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search modals: %w", err)
	}
	return labels, nil
}

// UpdateModal writes the label and title of m.
func (c *Client) UpdateModal(ctx context.Context, m *Modal) error {
	q := c.builder().Update(ModalsTable.Name).
		Set("label", m.Label).
		Set("title", nullString(m.Title)).
		Where(entsql.EQ("id", m.ID))

	res, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update modal: %w", err)
	}
	return affected(res)
}

// DeleteModal removes a modal and its questions.
func (c *Client) DeleteModal(ctx context.Context, id int) error {
	q := c.builder().Delete(ModalsTable.Name).Where(entsql.EQ("id", id))
	res, err := c.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("delete modal: %w", err)
	}
	return affected(res)
}

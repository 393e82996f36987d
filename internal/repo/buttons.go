package repo

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var publishedButtonColumns = []string{
	"id", "message_id", "channel_id", "position", "label", "emoji", "style", "form_id",
}

// CreatePublishedButtons inserts all buttons in one statement.
func (c *Client) CreatePublishedButtons(ctx context.Context, buttons []*PublishedButton) error {
	if len(buttons) == 0 {
		return nil
	}

	ins := c.builder().Insert(PublishedButtonsTable.Name).
		Columns("message_id", "channel_id", "position", "label", "emoji", "style", "form_id")
	for _, b := range buttons {
		ins = ins.Values(b.MessageID, b.ChannelID, b.Position, b.Label, nullString(b.Emoji), b.Style, b.FormID)
	}

	if _, err := c.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert published buttons: %w", err)
	}
	return nil
}

// ListPublishedButtons returns every published button in insertion order.
func (c *Client) ListPublishedButtons(ctx context.Context) ([]*PublishedButton, error) {
	t := c.builder().Table(PublishedButtonsTable.Name)
	sel := c.builder().Select(publishedButtonColumns...).From(t).OrderBy(entsql.Asc("id"))

	var buttons []*PublishedButton
	err := c.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			b     PublishedButton
			emoji sql.NullString
		)
		err := rows.Scan(&b.ID, &b.MessageID, &b.ChannelID, &b.Position, &b.Label, &emoji, &b.Style, &b.FormID)
		if err != nil {
			return err
		}
		b.Emoji = fromNullString(emoji)
		buttons = append(buttons, &b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list published buttons: %w", err)
	}
	return buttons, nil
}

// DeletePublishedButtons removes every button of a message.
func (c *Client) DeletePublishedButtons(ctx context.Context, messageID string) error {
	q := c.builder().Delete(PublishedButtonsTable.Name).Where(entsql.EQ("message_id", messageID))
	if _, err := c.exec(ctx, q); err != nil {
		return fmt.Errorf("delete published buttons: %w", err)
	}
	return nil
}

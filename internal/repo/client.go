package repo

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Client is the storage entry point for forms, their published buttons and
// the responses collected through them. A Client returned by WithTx runs
// every statement inside that transaction.
type Client struct {
	driver  dialect.Driver
	dialect string
	inTx    bool
}

// Option configures a Client.
type Option func(*Client)

// Driver sets the driver the client executes statements on.
func Driver(drv dialect.Driver) Option {
	return func(c *Client) {
		c.driver = drv
		c.dialect = drv.Dialect()
	}
}

// Dialect overrides the dialect reported by the driver. Used when the
// driver is wrapped, for example by dialect.DebugWithContext.
func Dialect(name string) Option {
	return func(c *Client) {
		c.dialect = name
	}
}

// NewClient creates a new client configured with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying connection. It is a no-op inside a transaction.
func (c *Client) Close() error {
	if c.inTx {
		return nil
	}
	return c.driver.Close()
}

// Ping checks that the database answers queries.
func (c *Client) Ping(ctx context.Context) error {
	rows := &entsql.Rows{}
	if err := c.driver.Query(ctx, "SELECT 1", []any{}, rows); err != nil {
		return err
	}
	return rows.Close()
}

// DialectName reports the SQL dialect the client speaks.
func (c *Client) DialectName() string {
	return c.dialect
}

// WithTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics and committed otherwise. Nested calls reuse the
// outer transaction.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if c.inTx {
		return fn(c)
	}

	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	txc := &Client{driver: &txDriver{tx: tx, dialect: c.dialect}, dialect: c.dialect, inTx: true}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(txc); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (c *Client) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

func (c *Client) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) query(ctx context.Context, q entsql.Querier, scan func(rows *entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// affected returns ErrNotFound when a write touched no rows.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// txDriver exposes a dialect.Tx as a dialect.Driver so the transactional
// client can share the query helpers.
type txDriver struct {
	tx      dialect.Tx
	dialect string
}

func (d *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.tx.Exec(ctx, query, args, v)
}

func (d *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.tx.Query(ctx, query, args, v)
}

func (d *txDriver) Tx(context.Context) (dialect.Tx, error) {
	return nil, fmt.Errorf("repo: nested transactions are not supported")
}

func (d *txDriver) Close() error { return nil }

func (d *txDriver) Dialect() string { return d.dialect }

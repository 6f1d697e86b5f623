package connector

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/askdb/askdb/internal/catalog"
	"github.com/askdb/askdb/internal/errors"
)

func init() {
	Register("sqlite", func(cfg Config) Connector { return &SQLiteConnector{cfg: cfg} })
}

// SQLiteConnector implements the Connector interface for SQLite.
// An empty Path opens an in-memory database.
type SQLiteConnector struct {
	cfg Config
	db  *sql.DB
}

// SQLite has no information_schema; join sqlite_master against the
// table-info pragma to get the same (table, column, type) projection.
const sqliteCatalogQuery = `
	SELECT m.name, p.name, p.type
	FROM sqlite_master AS m
	JOIN pragma_table_info(m.name) AS p
	WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
	ORDER BY m.name, p.cid`

// Connect establishes and verifies a session.
func (c *SQLiteConnector) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}

	path := c.cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to open sqlite connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to ping sqlite")
	}

	c.db = db

	return nil
}

// Disconnect closes the session. Safe to call repeatedly.
func (c *SQLiteConnector) Disconnect() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil

	return err
}

// IsConnected reports whether a session is established.
func (c *SQLiteConnector) IsConnected() bool {
	return c.db != nil
}

// Schema introspects the column catalog, connecting first if needed.
func (c *SQLiteConnector) Schema(ctx context.Context) (catalog.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return catalog.Schema{}, err
	}

	schema, err := introspect(ctx, c.db, sqliteCatalogQuery)
	if err != nil {
		return catalog.Schema{}, errors.Wrap(err, errors.ErrTypeSchema, "sqlite introspection failed")
	}

	return schema, nil
}

// ExecuteQuery runs one statement, connecting first if needed.
func (c *SQLiteConnector) ExecuteQuery(ctx context.Context, sqlText string) (QueryResult, error) {
	if err := c.Connect(ctx); err != nil {
		return QueryResult{}, err
	}

	result, err := execute(ctx, c.db, sqlText, c.cfg.QueryTimeout)
	if err != nil {
		return QueryResult{}, errors.Wrap(err, errors.ErrTypeQueryExecution, "sqlite query failed")
	}

	return result, nil
}

var _ Connector = (*SQLiteConnector)(nil)

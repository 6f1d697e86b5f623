package connector

import (
	"context"
	"database/sql"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/askdb/askdb/internal/catalog"
	"github.com/askdb/askdb/internal/errors"
)

func init() {
	Register("duckdb", func(cfg Config) Connector { return &DuckDBConnector{cfg: cfg} })
}

// DuckDBConnector implements the Connector interface for DuckDB.
// An empty Path opens an in-memory database.
type DuckDBConnector struct {
	cfg Config
	db  *sql.DB
}

const duckdbCatalogQuery = `
	SELECT table_name, column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'main'
	ORDER BY table_name, ordinal_position`

// Connect establishes and verifies a session.
func (c *DuckDBConnector) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}

	db, err := sql.Open("duckdb", c.cfg.Path)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to open duckdb connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to ping duckdb")
	}

	c.db = db

	return nil
}

// Disconnect closes the session. Safe to call repeatedly.
func (c *DuckDBConnector) Disconnect() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil

	return err
}

// IsConnected reports whether a session is established.
func (c *DuckDBConnector) IsConnected() bool {
	return c.db != nil
}

// Schema introspects the column catalog, connecting first if needed.
func (c *DuckDBConnector) Schema(ctx context.Context) (catalog.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return catalog.Schema{}, err
	}

	schema, err := introspect(ctx, c.db, duckdbCatalogQuery)
	if err != nil {
		return catalog.Schema{}, errors.Wrap(err, errors.ErrTypeSchema, "duckdb introspection failed")
	}

	return schema, nil
}

// ExecuteQuery runs one statement, connecting first if needed.
func (c *DuckDBConnector) ExecuteQuery(ctx context.Context, sqlText string) (QueryResult, error) {
	if err := c.Connect(ctx); err != nil {
		return QueryResult{}, err
	}

	result, err := execute(ctx, c.db, sqlText, c.cfg.QueryTimeout)
	if err != nil {
		return QueryResult{}, errors.Wrap(err, errors.ErrTypeQueryExecution, "duckdb query failed")
	}

	return result, nil
}

var _ Connector = (*DuckDBConnector)(nil)

package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/askdb/askdb/internal/catalog"
	"github.com/askdb/askdb/internal/errors"
)

func init() {
	Register("postgres", func(cfg Config) Connector { return &PostgresConnector{cfg: cfg} })
}

// PostgresConnector implements the Connector interface for PostgreSQL via
// the pgx stdlib driver.
type PostgresConnector struct {
	cfg Config
	db  *sql.DB
}

// postgresCatalogQuery reads the public-schema column catalog in ordinal
// order, so the resulting Schema preserves table column order.
const postgresCatalogQuery = `
	SELECT table_name, column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = 'public'
	ORDER BY table_name, ordinal_position`

// buildPostgresDSN renders a keyword/value DSN from the config, applying
// localhost:5432 and sslmode=disable defaults.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslMode),
	}

	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}

	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}

	return strings.Join(parts, " ")
}

// Connect establishes and verifies a session.
func (c *PostgresConnector) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}

	db, err := sql.Open("pgx", buildPostgresDSN(c.cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to open postgres connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, errors.ErrTypeConnection, "failed to ping postgres")
	}

	c.db = db

	return nil
}

// Disconnect closes the session. Safe to call repeatedly.
func (c *PostgresConnector) Disconnect() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil

	return err
}

// IsConnected reports whether a session is established.
func (c *PostgresConnector) IsConnected() bool {
	return c.db != nil
}

// Schema introspects the column catalog, connecting first if needed.
func (c *PostgresConnector) Schema(ctx context.Context) (catalog.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return catalog.Schema{}, err
	}

	schema, err := introspect(ctx, c.db, postgresCatalogQuery)
	if err != nil {
		return catalog.Schema{}, errors.Wrap(err, errors.ErrTypeSchema, "postgres introspection failed")
	}

	return schema, nil
}

// ExecuteQuery runs one statement, connecting first if needed.
func (c *PostgresConnector) ExecuteQuery(ctx context.Context, sqlText string) (QueryResult, error) {
	if err := c.Connect(ctx); err != nil {
		return QueryResult{}, err
	}

	result, err := execute(ctx, c.db, sqlText, c.cfg.QueryTimeout)
	if err != nil {
		return QueryResult{}, errors.Wrap(err, errors.ErrTypeQueryExecution, "postgres query failed")
	}

	return result, nil
}

var _ Connector = (*PostgresConnector)(nil)

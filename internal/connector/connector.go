// Package connector provides the database capability used by the query
// pipeline: connect, disconnect, schema introspection, and SQL execution.
// One implementation exists per backing store, selected through the registry
// by a configured kind string.
package connector

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/catalog"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/errors"
)

// Config holds the connection parameters for any backing store. Path serves
// file-based stores (DuckDB, SQLite); the host/port fields serve network
// stores (Postgres).
type Config struct {
	Kind         string
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	SSLMode      string
	Path         string
	QueryTimeout time.Duration
}

// FromAppConfig builds a connector Config from the application configuration.
// The kind may be overridden per request via the dataSource request field.
func FromAppConfig(cfg config.DatabaseConfig, kind string) (Config, error) {
	if kind == "" {
		kind = cfg.Kind
	}

	timeout, err := time.ParseDuration(cfg.QueryTimeout)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.ErrTypeConfiguration,
			"invalid query timeout %q", cfg.QueryTimeout)
	}

	return Config{
		Kind:         kind,
		Host:         cfg.Host,
		Port:         cfg.Port,
		Database:     cfg.Name,
		Username:     cfg.User,
		Password:     cfg.Password,
		SSLMode:      cfg.SSLMode,
		Path:         cfg.Path,
		QueryTimeout: timeout,
	}, nil
}

// QueryResult is the uniform execution result consumed by both formatters.
// For non-row-returning statements it degenerates to zero columns and a
// single affectedRows row, so downstream code never branches on statement
// kind.
type QueryResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// Connector defines the polymorphic database capability.
//
// Schema and ExecuteQuery auto-connect when no session is established.
// Disconnect is idempotent and must never fail the caller-visible flow.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	Schema(ctx context.Context) (catalog.Schema, error)
	ExecuteQuery(ctx context.Context, sqlText string) (QueryResult, error)
}

// returnsRows reports whether a statement produces a result set. Anything
// else is executed for its side effect and reported as affectedRows.
func returnsRows(sqlText string) bool {
	head := strings.ToLower(strings.TrimSpace(sqlText))
	for _, prefix := range []string{"select", "with", "show", "values", "pragma", "explain", "describe"} {
		if strings.HasPrefix(head, prefix) {
			return true
		}
	}

	return false
}

// execute runs one statement against an open handle and normalizes the
// outcome into a QueryResult. Shared by every connector implementation.
func execute(ctx context.Context, db *sql.DB, sqlText string, timeout time.Duration) (QueryResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)

		defer cancel()
	}

	if !returnsRows(sqlText) {
		res, err := db.ExecContext(ctx, sqlText)
		if err != nil {
			return QueryResult{}, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}

		return QueryResult{
			Columns: []string{},
			Rows:    []map[string]interface{}{{"affectedRows": affected}},
		}, nil
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return QueryResult{}, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows converts sql.Rows into the uniform QueryResult shape, keeping
// result column order and native value types.
func scanRows(rows *sql.Rows) (QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{
		Columns: cols,
		Rows:    []map[string]interface{}{},
	}

	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return QueryResult{}, err
		}

		row := make(map[string]interface{}, len(cols))

		for i, col := range cols {
			val := values[i]
			// Drivers hand text back as []byte; convert for JSON encoding.
			if b, ok := val.([]byte); ok {
				val = string(b)
			}

			row[col] = val
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return QueryResult{}, err
	}

	return result, nil
}

// introspect reads a (table, column, type) projection ordered by table name
// and ordinal position into a catalog. The query text is store-specific.
func introspect(ctx context.Context, db *sql.DB, query string) (catalog.Schema, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return catalog.Schema{}, err
	}
	defer rows.Close()

	var schema catalog.Schema

	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return catalog.Schema{}, err
		}

		n := len(schema.Tables)
		if n == 0 || schema.Tables[n-1].Name != tableName {
			schema.Tables = append(schema.Tables, catalog.Table{Name: tableName})
			n++
		}

		schema.Tables[n-1].Columns = append(schema.Tables[n-1].Columns, catalog.Column{
			Name:     columnName,
			DataType: dataType,
		})
	}

	if err := rows.Err(); err != nil {
		return catalog.Schema{}, err
	}

	return schema, nil
}

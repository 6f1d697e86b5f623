package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The sqlite connector runs in-memory, so it exercises the full contract
// (auto-connect, introspection, execution, idempotent disconnect) without
// external infrastructure.
func TestSQLiteConnectorLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := &SQLiteConnector{cfg: Config{Kind: "sqlite"}}

	defer func() { _ = conn.Disconnect() }()

	// Schema auto-connects.
	assert.False(t, conn.IsConnected())

	schema, err := conn.Schema(ctx)
	require.NoError(t, err)
	assert.True(t, conn.IsConnected())
	assert.True(t, schema.Empty())

	// DDL reports the uniform affectedRows shape.
	result, err := conn.ExecuteQuery(ctx, `CREATE TABLE enrollments (
		id INTEGER PRIMARY KEY,
		student TEXT,
		enrollment_date TEXT,
		status TEXT
	)`)
	require.NoError(t, err)
	assert.Empty(t, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Contains(t, result.Rows[0], "affectedRows")

	_, err = conn.ExecuteQuery(ctx,
		`INSERT INTO enrollments (student, enrollment_date, status)
		 VALUES ('ada', '2026-08-20', 'active'), ('grace', '2026-07-01', 'inactive')`)
	require.NoError(t, err)

	schema, err = conn.Schema(ctx)
	require.NoError(t, err)
	require.Len(t, schema.Tables, 1)
	assert.Equal(t, "enrollments", schema.Tables[0].Name)
	assert.Equal(t,
		[]string{"id", "student", "enrollment_date", "status"},
		columnNames(schema.Tables[0].Columns))

	result, err = conn.ExecuteQuery(ctx, "SELECT student FROM enrollments ORDER BY student")
	require.NoError(t, err)
	assert.Equal(t, []string{"student"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "ada", result.Rows[0]["student"])

	require.NoError(t, conn.Disconnect())
	assert.False(t, conn.IsConnected())
	require.NoError(t, conn.Disconnect())
}

func TestSQLiteExecutionError(t *testing.T) {
	conn := &SQLiteConnector{cfg: Config{Kind: "sqlite"}}

	defer func() { _ = conn.Disconnect() }()

	_, err := conn.ExecuteQuery(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/intent"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/visualize"
)

type stubExecutor struct {
	response pipeline.Response
	lastReq  pipeline.Request
	calls    int
}

func (s *stubExecutor) Execute(ctx context.Context, req pipeline.Request) pipeline.Response {
	s.calls++
	s.lastReq = req
	return s.response
}

func newTestServer(executor QueryExecutor) *httptest.Server {
	srv := New(executor, config.ServerConfig{Addr: ":0", ReadTimeout: "15s", WriteTimeout: "120s"})
	return httptest.NewServer(srv.Router())
}

func tableResponse() pipeline.Response {
	return pipeline.Response{
		ResultType: intent.ResultTable,
		SQL:        "SELECT id, name FROM users",
		Data: visualize.TableResult{
			Columns: []string{"id", "name"},
			Rows: []map[string]interface{}{
				{"id": int64(1), "name": "ada"},
				{"id": int64(2), "name": "grace, admiral"},
			},
		},
		Debug: pipeline.Debug{ExecutedQuery: "SELECT id, name FROM users", RowCount: 2},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubExecutor{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestQuerySuccess(t *testing.T) {
	executor := &stubExecutor{response: tableResponse()}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/query", "application/json",
		strings.NewReader(`{"query":"list all users","dataSource":"sqlite"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pipeline.Request{Query: "list all users", DataSource: "sqlite"}, executor.lastReq)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "table", body["resultType"])
	assert.Equal(t, "SELECT id, name FROM users", body["sql"])

	debug, ok := body["debug"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 2, debug["rowCount"], 0.0001)
}

func TestQueryInvalidBody(t *testing.T) {
	executor := &stubExecutor{}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/query", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "failures keep the success status")
	assert.Equal(t, 0, executor.calls)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestQueryFailureIsStillHTTPSuccess(t *testing.T) {
	executor := &stubExecutor{response: pipeline.Response{
		ResultType: intent.ResultTable,
		Data:       struct{}{},
		Message:    "Requested table does not exist",
		Debug:      pipeline.Debug{ExecutedQuery: "Error executing query"},
	}}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/query", "application/json",
		strings.NewReader(`{"query":"show all payments"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Requested table does not exist", body["message"])
}

func TestExportCSV(t *testing.T) {
	executor := &stubExecutor{response: tableResponse()}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/export?query=list+all+users&format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "export.csv")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name", lines[0])
	assert.Equal(t, "1,ada", lines[1])
	assert.Equal(t, `2,"grace, admiral"`, lines[2])
}

func TestExportJSON(t *testing.T) {
	executor := &stubExecutor{response: tableResponse()}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/export?query=list+all+users&format=json")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rows []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "ada", rows[0]["name"])
}

func TestExportGraphUsesRawData(t *testing.T) {
	executor := &stubExecutor{response: pipeline.Response{
		ResultType: intent.ResultGraph,
		Data: visualize.GraphResult{
			ChartType: visualize.ChartLine,
			RawData: []map[string]interface{}{
				{"day": "2026-08-23", "count": int64(4)},
			},
		},
	}}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/export?query=enrollment+trend")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "count,day", lines[0], "chart exports use sorted raw-data keys")
	assert.Equal(t, "4,2026-08-23", lines[1])
}

func TestExportUnsupportedFormat(t *testing.T) {
	executor := &stubExecutor{}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/export?query=list+all+users&format=xml")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, executor.calls)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["message"], "Unsupported export format")
}

func TestExportFailureKeepsJSONShape(t *testing.T) {
	executor := &stubExecutor{response: pipeline.Response{
		ResultType: intent.ResultTable,
		Data:       struct{}{},
		Message:    "Database access error",
	}}
	ts := newTestServer(executor)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/export?query=list+all+users")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Database access error", body["message"])
}

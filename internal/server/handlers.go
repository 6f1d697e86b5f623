package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/askdb/askdb/internal/intent"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/visualize"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleQuery accepts {query, dataSource?} and always answers 200 with a
// pipeline response body.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, failureBody("Invalid request body"))
		return
	}

	writeJSON(w, s.executor.Execute(r.Context(), req))
}

// handleExport runs a query and streams the result rows as a CSV or JSON
// download. Failures keep the JSON response shape.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeJSON(w, failureBody(fmt.Sprintf("Unsupported export format %q", format)))
		return
	}

	resp := s.executor.Execute(r.Context(), pipeline.Request{
		Query:      query,
		DataSource: r.URL.Query().Get("dataSource"),
	})
	if resp.Message != "" {
		writeJSON(w, resp)
		return
	}

	columns, rows := resultRows(resp)

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="export.json"`)
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			s.logger.Error("export encoding failed", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="export.csv"`)
		if err := writeCSV(w, columns, rows); err != nil {
			s.logger.Error("export encoding failed", err)
		}
	}
}

// resultRows extracts the exportable rows from either response shape. Table
// results carry their declared column order; chart results fall back to the
// sorted key set of the raw rows.
func resultRows(resp pipeline.Response) ([]string, []map[string]interface{}) {
	switch data := resp.Data.(type) {
	case visualize.TableResult:
		return data.Columns, data.Rows
	case visualize.GraphResult:
		return sortedKeys(data.RawData), data.RawData
	default:
		return nil, nil
	}
}

func sortedKeys(rows []map[string]interface{}) []string {
	if len(rows) == 0 {
		return nil
	}

	keys := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func writeCSV(w http.ResponseWriter, columns []string, rows []map[string]interface{}) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			record[i] = cellString(row[column])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func cellString(value interface{}) string {
	if value == nil {
		return ""
	}

	return fmt.Sprint(value)
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// failureBody mirrors the pipeline failure shape for errors that occur
// before the pipeline runs.
func failureBody(message string) pipeline.Response {
	return pipeline.Response{
		ResultType: intent.ResultTable,
		Data:       struct{}{},
		Message:    message,
		Debug: pipeline.Debug{
			ExecutedQuery: "Error executing query",
			RowCount:      0,
		},
	}
}

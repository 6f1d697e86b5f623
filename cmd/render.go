package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/visualize"
)

// renderResponse prints a pipeline response in the requested format. The
// json format emits the whole response so chart specifications survive;
// table and csv print only the rows.
func renderResponse(w io.Writer, resp pipeline.Response, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	switch data := resp.Data.(type) {
	case visualize.TableResult:
		if format == "csv" {
			return renderCSV(w, data.Columns, data.Rows)
		}
		return renderTable(w, data.Columns, data.Rows)
	case visualize.GraphResult:
		columns := graphColumns(data)
		if format == "csv" {
			return renderCSV(w, columns, data.RawData)
		}
		renderChartSummary(w, data)
		return renderTable(w, columns, data.RawData)
	default:
		return fmt.Errorf("unexpected result payload %T", resp.Data)
	}
}

func renderTable(w io.Writer, cols []string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, result := range rows {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))

	return nil
}

func renderCSV(w io.Writer, cols []string, rows []map[string]interface{}) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, result := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(formatValue(result[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}

	return nil
}

// renderChartSummary prints the chart specification header; the data rows
// follow as a plain table since a terminal cannot draw the chart itself.
func renderChartSummary(w io.Writer, graph visualize.GraphResult) {
	_, _ = fmt.Fprintf(w, "Chart: %s\n", graph.ChartType)

	if graph.Title != "" {
		_, _ = fmt.Fprintf(w, "Title: %s\n", graph.Title)
	}

	if graph.XAxis != "" || graph.YAxis != "" {
		_, _ = fmt.Fprintf(w, "Axes:  %s / %s\n", graph.XAxis, graph.YAxis)
	}

	for _, series := range graph.Series {
		_, _ = fmt.Fprintf(w, "Series: %s (%s)\n", series.Name, series.DataKey)
	}

	if graph.Insights != "" {
		_, _ = fmt.Fprintf(w, "Insights: %s\n", graph.Insights)
	}

	_, _ = fmt.Fprintln(w)
}

// graphColumns orders the raw-data keys with the category axis first so the
// printed table reads left to right the way the chart would.
func graphColumns(graph visualize.GraphResult) []string {
	if len(graph.RawData) == 0 {
		return nil
	}

	var columns []string
	if graph.XAxisKey != "" {
		columns = append(columns, graph.XAxisKey)
	}

	seen := map[string]bool{graph.XAxisKey: true}
	for _, series := range graph.Series {
		if !seen[series.DataKey] {
			columns = append(columns, series.DataKey)
			seen[series.DataKey] = true
		}
	}

	var rest []string
	for key := range graph.RawData[0] {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(columns, rest...)
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}

	return s
}

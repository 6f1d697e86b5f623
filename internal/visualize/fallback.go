package visualize

import (
	"strings"

	"github.com/askdb/askdb/internal/connector"
)

const defaultSeriesColor = "#8884d8"

// temporal terms in a column name promote that column to the category axis
// and switch the chart to a time series.
var temporalHints = []string{"date", "time", "month", "year"}

// Fallback derives a renderable chart shape from the result set alone, with
// no network call. It is pure: the same input always yields the same output.
func Fallback(query string, result connector.QueryResult) GraphResult {
	graph := GraphResult{
		ChartType:     ChartBar,
		Title:         fallbackTitle(query),
		Series:        []SeriesConfig{},
		ProcessedData: result.Rows,
		RawData:       result.Rows,
	}

	if len(result.Columns) == 0 || len(result.Rows) == 0 {
		graph.ChartType = ChartNone
		return graph
	}

	categoryIdx := 0

	for i, col := range result.Columns {
		lower := strings.ToLower(col)
		for _, hint := range temporalHints {
			if strings.Contains(lower, hint) {
				categoryIdx = i
				graph.ChartType = ChartLine

				break
			}
		}

		if graph.ChartType == ChartLine {
			break
		}
	}

	category := result.Columns[categoryIdx]

	// The value axis is the first column that is not the category.
	value := category

	for i, col := range result.Columns {
		if i != categoryIdx {
			value = col
			break
		}
	}

	graph.XAxis = category
	graph.YAxis = value
	graph.XAxisKey = category
	graph.Series = []SeriesConfig{
		{DataKey: value, Name: value, Color: defaultSeriesColor},
	}

	return graph
}

// fallbackTitle reuses the question as the chart title, capped for display.
func fallbackTitle(query string) string {
	title := strings.TrimSpace(query)
	if title == "" {
		return "Query Results"
	}

	const maxTitle = 80
	if len(title) > maxTitle {
		title = title[:maxTitle] + "…"
	}

	return title
}

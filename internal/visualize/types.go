// Package visualize turns an executed result set into a chart description,
// or a plain table view. Chart synthesis is best-effort: the completion
// service proposes the chart, and any failure degrades to a deterministic
// heuristic instead of failing the request.
package visualize

// ChartType enumerates the chart kinds the presentation layer can render.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartScatter  ChartType = "scatter"
	ChartArea     ChartType = "area"
	ChartComposed ChartType = "composed"
	ChartNone     ChartType = "none"
)

// validChartTypes guards against the completion service inventing kinds the
// renderer cannot draw.
var validChartTypes = map[ChartType]bool{
	ChartBar:      true,
	ChartLine:     true,
	ChartPie:      true,
	ChartScatter:  true,
	ChartArea:     true,
	ChartComposed: true,
	ChartNone:     true,
}

// SeriesConfig identifies one plotted dimension within a chart. DataKey must
// correspond to a key present in every element of ProcessedData.
type SeriesConfig struct {
	DataKey string `json:"dataKey"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Type    string `json:"type,omitempty"`
}

// GraphResult is a fully-specified chart description. RawData always equals
// the unmodified executed rows regardless of how ProcessedData was derived,
// so export/download fidelity is independent of charting aggregation.
type GraphResult struct {
	ChartType          ChartType                `json:"chartType"`
	Title              string                   `json:"title"`
	Subtitle           string                   `json:"subtitle,omitempty"`
	XAxis              string                   `json:"xAxis"`
	YAxis              string                   `json:"yAxis"`
	XAxisKey           string                   `json:"xAxisKey,omitempty"`
	Series             []SeriesConfig           `json:"series"`
	ProcessedData      []map[string]interface{} `json:"processedData"`
	RawData            []map[string]interface{} `json:"rawData"`
	Insights           string                   `json:"insights,omitempty"`
	RecommendedFilters []string                 `json:"recommendedFilters,omitempty"`
}

// TableResult is a pass-through view of an executed result set.
type TableResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

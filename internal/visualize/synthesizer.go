package visualize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/logging"
)

const (
	// Result sets up to this size are embedded whole in the prompt.
	fullDataLimit = 50
	// Larger result sets send only this many rows plus a summary.
	sampleDataLimit = 20
)

const chartSystemPrompt = `You are an expert at choosing data visualizations.
Given a user's question and the query result data, respond with a JSON object describing the best chart:
{
  "chartType": one of "bar", "line", "pie", "scatter", "area", "composed",
  "title": string,
  "subtitle": string (optional),
  "xAxis": x axis label,
  "yAxis": y axis label,
  "xAxisKey": the data field used as the category axis,
  "series": [{"dataKey": string, "name": string, "color": hex string, "type": string (optional)}],
  "data": the rows transformed or aggregated for charting,
  "insights": one or two sentences about notable patterns (optional),
  "recommendedFilters": field names useful as filters (optional)
}
Every series dataKey must exist in every element of data.`

// chartResponse is the parsed completion payload. ChartType and Data are the
// minimum required for the response to be usable.
type chartResponse struct {
	ChartType          string                   `json:"chartType"`
	Title              string                   `json:"title"`
	Subtitle           string                   `json:"subtitle"`
	XAxis              string                   `json:"xAxis"`
	YAxis              string                   `json:"yAxis"`
	XAxisKey           string                   `json:"xAxisKey"`
	Series             []SeriesConfig           `json:"series"`
	Data               []map[string]interface{} `json:"data"`
	Insights           string                   `json:"insights"`
	RecommendedFilters []string                 `json:"recommendedFilters"`
}

// Synthesizer produces chart descriptions from executed result sets.
type Synthesizer struct {
	service     llm.Service
	temperature float64
	maxTokens   int
	logger      *logging.Logger
}

// NewSynthesizer creates a visualization synthesizer backed by the given
// completion service.
func NewSynthesizer(service llm.Service, temperature float64, maxTokens int) *Synthesizer {
	return &Synthesizer{
		service:     service,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logging.GetLogger(),
	}
}

// Synthesize builds a GraphResult for the query and its executed rows. It
// never returns an error: empty results yield a sentinel, and any completion
// failure or malformed response degrades to the deterministic fallback.
// RawData always carries the original rows.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, result connector.QueryResult) GraphResult {
	if len(result.Rows) == 0 {
		return GraphResult{
			ChartType:     ChartNone,
			Title:         "No Data Available",
			Series:        []SeriesConfig{},
			ProcessedData: []map[string]interface{}{},
			RawData:       []map[string]interface{}{},
		}
	}

	req := llm.Request{
		System:       chartSystemPrompt,
		User:         s.buildUserPrompt(query, result),
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
		ResponseJSON: true,
	}

	completion, err := s.service.Complete(ctx, req)
	if err != nil {
		s.logger.WithError(err).Warn("chart synthesis failed, using fallback heuristic")
		return Fallback(query, result)
	}

	parsed, err := parseChartResponse(completion)
	if err != nil {
		s.logger.WithError(err).Warn("chart response unusable, using fallback heuristic")
		return Fallback(query, result)
	}

	graph := GraphResult{
		ChartType:          ChartType(parsed.ChartType),
		Title:              parsed.Title,
		Subtitle:           parsed.Subtitle,
		XAxis:              parsed.XAxis,
		YAxis:              parsed.YAxis,
		XAxisKey:           parsed.XAxisKey,
		Series:             parsed.Series,
		ProcessedData:      parsed.Data,
		RawData:            result.Rows,
		Insights:           parsed.Insights,
		RecommendedFilters: parsed.RecommendedFilters,
	}

	if graph.Title == "" {
		graph.Title = fallbackTitle(query)
	}

	if graph.Series == nil {
		graph.Series = []SeriesConfig{}
	}

	return graph
}

// buildUserPrompt renders the question plus a bounded description of the
// result set.
func (s *Synthesizer) buildUserPrompt(query string, result connector.QueryResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(result.Columns, ", "))

	if len(result.Rows) <= fullDataLimit {
		data, _ := json.Marshal(result.Rows)
		fmt.Fprintf(&sb, "Rows (%d total):\n%s\n", len(result.Rows), data)

		return sb.String()
	}

	sample, _ := json.Marshal(result.Rows[:sampleDataLimit])
	fmt.Fprintf(&sb, "Total rows: %d. First %d rows:\n%s\n",
		len(result.Rows), sampleDataLimit, sample)

	return sb.String()
}

// parseChartResponse validates the minimum contract: a known chartType and a
// non-empty data field.
func parseChartResponse(completion string) (*chartResponse, error) {
	var parsed chartResponse
	if err := json.Unmarshal([]byte(completion), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if parsed.ChartType == "" {
		return nil, fmt.Errorf("chart response missing chartType")
	}

	if !validChartTypes[ChartType(parsed.ChartType)] {
		return nil, fmt.Errorf("chart response has unknown chartType %q", parsed.ChartType)
	}

	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("chart response missing data")
	}

	return &parsed, nil
}

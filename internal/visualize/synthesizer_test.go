package visualize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/llm"
)

type fakeService struct {
	response string
	err      error
	calls    int
	lastReq  llm.Request
}

func (f *fakeService) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.lastReq = req

	return f.response, f.err
}

func sampleResult() connector.QueryResult {
	return connector.QueryResult{
		Columns: []string{"region", "sales"},
		Rows: []map[string]interface{}{
			{"region": "west", "sales": 120},
			{"region": "east", "sales": 80},
		},
	}
}

func TestSynthesizeZeroRowsSkipsService(t *testing.T) {
	service := &fakeService{}
	synth := NewSynthesizer(service, 0.1, 1200)

	graph := synth.Synthesize(context.Background(),
		"anything", connector.QueryResult{Columns: []string{"a"}, Rows: nil})

	assert.Equal(t, ChartNone, graph.ChartType)
	assert.Equal(t, "No Data Available", graph.Title)
	assert.Empty(t, graph.RawData)
	assert.Zero(t, service.calls, "zero-row results must not invoke the completion service")
}

func TestSynthesizeSuccess(t *testing.T) {
	service := &fakeService{response: `{
		"chartType": "pie",
		"title": "Sales by Region",
		"xAxis": "Region",
		"yAxis": "Sales",
		"xAxisKey": "region",
		"series": [{"dataKey": "sales", "name": "Sales", "color": "#82ca9d"}],
		"data": [{"region": "west", "sales": 120}, {"region": "east", "sales": 80}],
		"insights": "West leads east by 50%.",
		"recommendedFilters": ["region"]
	}`}
	synth := NewSynthesizer(service, 0.1, 1200)

	result := sampleResult()
	graph := synth.Synthesize(context.Background(), "sales split by region", result)

	assert.Equal(t, ChartPie, graph.ChartType)
	assert.Equal(t, "Sales by Region", graph.Title)
	assert.Equal(t, "region", graph.XAxisKey)
	require.Len(t, graph.Series, 1)
	assert.Equal(t, "sales", graph.Series[0].DataKey)
	assert.Equal(t, "West leads east by 50%.", graph.Insights)
	assert.Equal(t, []string{"region"}, graph.RecommendedFilters)
	// Raw rows pass through untouched even when data was transformed.
	assert.Equal(t, result.Rows, graph.RawData)
	assert.True(t, service.lastReq.ResponseJSON)
}

func TestSynthesizeServiceFailureFallsBack(t *testing.T) {
	service := &fakeService{err: errors.New("completion service unreachable")}
	synth := NewSynthesizer(service, 0.1, 1200)

	result := sampleResult()
	graph := synth.Synthesize(context.Background(), "compare sales", result)

	// The fallback shape is still renderable.
	assert.Equal(t, ChartBar, graph.ChartType)
	assert.Equal(t, result.Rows, graph.RawData)
	require.Len(t, graph.Series, 1)
}

func TestSynthesizeMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "here is your chart!"},
		{"missing chartType", `{"data": [{"a": 1}]}`},
		{"unknown chartType", `{"chartType": "hologram", "data": [{"a": 1}]}`},
		{"missing data", `{"chartType": "bar"}`},
		{"empty data", `{"chartType": "bar", "data": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeService{response: tt.response}
			synth := NewSynthesizer(service, 0.1, 1200)

			result := sampleResult()
			graph := synth.Synthesize(context.Background(), "compare sales", result)

			// Malformed output degrades to the deterministic heuristic.
			assert.Equal(t, ChartBar, graph.ChartType)
			assert.Equal(t, result.Rows, graph.RawData)
		})
	}
}

// RawData round-trips on every path: success, fallback, and sentinel.
func TestSynthesizeRawDataRoundTrip(t *testing.T) {
	result := sampleResult()

	paths := []*fakeService{
		{response: `{"chartType": "bar", "data": [{"x": 1}]}`},
		{err: errors.New("down")},
		{response: "garbage"},
	}

	for i, service := range paths {
		synth := NewSynthesizer(service, 0.1, 1200)
		graph := synth.Synthesize(context.Background(), "q", result)
		assert.Equal(t, result.Rows, graph.RawData, "path %d", i)
	}
}

func TestBuildUserPromptSmallResult(t *testing.T) {
	synth := NewSynthesizer(&fakeService{}, 0.1, 1200)

	prompt := synth.buildUserPrompt("sales split", sampleResult())

	assert.Contains(t, prompt, "Question: sales split")
	assert.Contains(t, prompt, "Columns: region, sales")
	assert.Contains(t, prompt, `"region":"west"`)
}

func TestBuildUserPromptLargeResultIsSampled(t *testing.T) {
	rows := make([]map[string]interface{}, 200)
	for i := range rows {
		rows[i] = map[string]interface{}{"n": i}
	}

	synth := NewSynthesizer(&fakeService{}, 0.1, 1200)
	prompt := synth.buildUserPrompt("big", connector.QueryResult{Columns: []string{"n"}, Rows: rows})

	assert.Contains(t, prompt, "Total rows: 200")
	assert.Contains(t, prompt, fmt.Sprintf("First %d rows", sampleDataLimit))
	// Row 20 and beyond are summarized away.
	assert.NotContains(t, prompt, `{"n":21}`)
	assert.Less(t, strings.Count(prompt, `{"n":`), 21)
}

// Package intent decides whether a question should render as a table or a
// chart. The decision is a pure keyword heuristic with no network access, so
// the user-visible rendering choice stays auditable and testable
// independently of the generative components.
package intent

import "strings"

// ResultType is the result-shape intent of a query.
type ResultType string

const (
	ResultTable ResultType = "table"
	ResultGraph ResultType = "graph"
)

// graphKeywords are matched case-insensitively as substrings; first match
// wins. Absence of any match defaults to a table.
var graphKeywords = []string{
	"trend",
	"chart",
	"graph",
	"plot",
	"compare",
	"comparison",
	"distribution",
	"over time",
	"week by week",
	"month by month",
	"by month",
	"by week",
	"by year",
	"pie chart",
	"bar chart",
	"line chart",
	"histogram",
	"breakdown",
	"visualize",
	"visualise",
}

// Classify maps a raw query string to a result-shape intent.
func Classify(query string) ResultType {
	q := strings.ToLower(query)

	for _, keyword := range graphKeywords {
		if strings.Contains(q, keyword) {
			return ResultGraph
		}
	}

	return ResultTable
}

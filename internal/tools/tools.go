// Package tools implements the EPO OPS tool handlers: each one checks its
// arguments, normalizes the patent number, makes one OPS call and formats
// the reply as a response.Envelope.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/biblio"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/identifier"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/ops"
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/response"
)

//go:generate mockgen -source=tools.go -destination=mocks/mocks.go -package=mocks PatentClient

// PatentClient is the OPS surface the tools depend on. *ops.Client implements it.
type PatentClient interface {
	PublishedData(ctx context.Context, ref string, id identifier.Identifier, endpoint string) (*ops.Response, error)
	PublishedDataSearch(ctx context.Context, cql string, rng ops.Range, constituents []string) (*ops.Response, error)
	Family(ctx context.Context, ref string, id identifier.Identifier, endpoint string, constituents []string) (*ops.Response, error)
	Legal(ctx context.Context, ref string, id identifier.Identifier) (*ops.Response, error)
	Register(ctx context.Context, ref string, id identifier.Epodoc, constituents []string) (*ops.Response, error)
	RegisterSearch(ctx context.Context, cql string, rng ops.Range) (*ops.Response, error)
	Image(ctx context.Context, path string, page int, documentFormat string) (*ops.Response, error)
	Number(ctx context.Context, ref string, id identifier.Identifier, outputFormat string) (*ops.Response, error)
}

var _ PatentClient = (*ops.Client)(nil)

// Service holds the single OPS client handle shared by every tool call.
type Service struct {
	client PatentClient
	logger *zap.SugaredLogger
	tracer trace.Tracer

	callsTotal   metric.Int64Counter
	callsFailed  metric.Int64Counter
	callDuration metric.Int64Histogram
}

func NewService(
	client PatentClient,
	logger *zap.SugaredLogger,
	tracer trace.Tracer,
	meter metric.Meter,
) (*Service, error) {
	s := &Service{client: client, logger: logger, tracer: tracer}

	var err error
	s.callsTotal, err = meter.Int64Counter(
		"tool.calls.total",
		metric.WithDescription("Total number of tool calls"),
	)
	if err != nil {
		return nil, err
	}
	s.callsFailed, err = meter.Int64Counter(
		"tool.calls.failed",
		metric.WithDescription("Number of tool calls that returned an error"),
	)
	if err != nil {
		return nil, err
	}
	s.callDuration, err = meter.Int64Histogram(
		"tool.call.duration",
		metric.WithDescription("Duration of tool calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Client returns the handle given to NewService. It never changes.
func (s *Service) Client() PatentClient {
	return s.client
}

func (s *Service) GetPublishedData(ctx context.Context, in PublishedDataInput) (response.Envelope, error) {
	in.applyDefaults()
	_, env, err := s.call(ctx, ToolGetPublishedData, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetPublishedData, &in); err != nil {
			return nil, err
		}
		id, err := identifier.Normalize(in.InputData)
		if err != nil {
			return nil, err
		}
		return s.client.PublishedData(ctx, in.ReferenceType, id, in.Endpoint)
	}, attribute.String("reference_type", in.ReferenceType), attribute.String("endpoint", in.Endpoint))
	return env, err
}

func (s *Service) SearchPublishedData(ctx context.Context, in SearchPublishedDataInput) (response.Envelope, error) {
	in.applyDefaults()
	_, env, err := s.call(ctx, ToolSearchPublishedData, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolSearchPublishedData, &in); err != nil {
			return nil, err
		}
		return s.client.PublishedDataSearch(ctx, in.CQL, ops.Range{Begin: in.RangeBegin, End: in.RangeEnd}, in.Constituents)
	}, attribute.String("cql", in.CQL), attribute.Int("range_begin", in.RangeBegin), attribute.Int("range_end", in.RangeEnd))
	return env, err
}

func (s *Service) GetFamily(ctx context.Context, in FamilyInput) (response.Envelope, error) {
	_, env, err := s.call(ctx, ToolGetFamily, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetFamily, &in); err != nil {
			return nil, err
		}
		id, err := identifier.Normalize(in.InputData)
		if err != nil {
			return nil, err
		}
		return s.client.Family(ctx, in.ReferenceType, id, in.Endpoint, in.Constituents)
	}, attribute.String("reference_type", in.ReferenceType), attribute.String("endpoint", in.Endpoint))
	return env, err
}

func (s *Service) GetLegal(ctx context.Context, in LegalInput) (response.Envelope, error) {
	_, env, err := s.call(ctx, ToolGetLegal, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetLegal, &in); err != nil {
			return nil, err
		}
		id, err := identifier.Normalize(in.InputData)
		if err != nil {
			return nil, err
		}
		return s.client.Legal(ctx, in.ReferenceType, id)
	}, attribute.String("reference_type", in.ReferenceType))
	return env, err
}

// GetRegister only accepts the epodoc shape; a country_code is an error.
func (s *Service) GetRegister(ctx context.Context, in RegisterInput) (response.Envelope, error) {
	_, env, err := s.call(ctx, ToolGetRegister, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetRegister, &in); err != nil {
			return nil, err
		}
		id, err := identifier.NormalizeCompact(in.InputData)
		if err != nil {
			return nil, err
		}
		return s.client.Register(ctx, in.ReferenceType, id, in.Constituents)
	}, attribute.String("reference_type", in.ReferenceType))
	return env, err
}

func (s *Service) SearchRegister(ctx context.Context, in SearchRegisterInput) (response.Envelope, error) {
	in.applyDefaults()
	_, env, err := s.call(ctx, ToolSearchRegister, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolSearchRegister, &in); err != nil {
			return nil, err
		}
		return s.client.RegisterSearch(ctx, in.CQL, ops.Range{Begin: in.RangeBegin, End: in.RangeEnd})
	}, attribute.String("cql", in.CQL), attribute.Int("range_begin", in.RangeBegin), attribute.Int("range_end", in.RangeEnd))
	return env, err
}

func (s *Service) GetImage(ctx context.Context, in ImageInput) (response.Envelope, error) {
	_, env, err := s.image(ctx, in)
	return env, err
}

// image also returns the raw reply so the MCP layer can attach the bytes.
func (s *Service) image(ctx context.Context, in ImageInput) (*ops.Response, response.Envelope, error) {
	in.applyDefaults()
	return s.call(ctx, ToolGetImage, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetImage, &in); err != nil {
			return nil, err
		}
		return s.client.Image(ctx, in.Path, in.RangeVal, in.DocumentFormat)
	}, attribute.String("path", in.Path), attribute.Int("page", in.RangeVal))
}

// ConvertNumber accepts a loosely specified number: with input_format
// "original" the country and kind codes are optional.
func (s *Service) ConvertNumber(ctx context.Context, in ConvertNumberInput) (response.Envelope, error) {
	in.applyDefaults()
	_, env, err := s.call(ctx, ToolConvertNumber, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolConvertNumber, &in); err != nil {
			return nil, err
		}
		id, err := identifier.NormalizeForConversion(in.InputData, in.InputFormat)
		if err != nil {
			return nil, err
		}
		return s.client.Number(ctx, in.ReferenceType, id, in.OutputFormat)
	}, attribute.String("reference_type", in.ReferenceType), attribute.String("output_format", in.OutputFormat))
	return env, err
}

// GetDocumentSummary fetches biblio data and replaces the parsed root element
// with one biblio.Summary per exchange document. When the reply cannot be
// summarized the envelope keeps only the raw body.
func (s *Service) GetDocumentSummary(ctx context.Context, in DocumentSummaryInput) (response.Envelope, error) {
	resp, env, err := s.call(ctx, ToolGetDocumentSummary, func(ctx context.Context) (*ops.Response, error) {
		if err := validateArgs(ToolGetDocumentSummary, &in); err != nil {
			return nil, err
		}
		id, err := identifier.Normalize(in.InputData)
		if err != nil {
			return nil, err
		}
		return s.client.PublishedData(ctx, in.ReferenceType, id, DefaultEndpoint)
	}, attribute.String("reference_type", in.ReferenceType))
	if err != nil {
		return env, err
	}
	summaries, serr := biblio.Summarize(resp.Body)
	if serr != nil {
		s.logger.Warnw("Could not summarize biblio reply", "err", serr)
		env.Parsed, env.HasParsed = nil, false
		return env, nil
	}
	env.Parsed, env.HasParsed = summaries, true
	return env, nil
}

func (s *Service) call(
	ctx context.Context,
	tool string,
	fn func(context.Context) (*ops.Response, error),
	attrs ...attribute.KeyValue,
) (*ops.Response, response.Envelope, error) {
	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "tool."+tool, trace.WithAttributes(
		append(attrs, attribute.String("request_id", requestID))...,
	))
	defer span.End()

	start := time.Now()
	toolAttr := metric.WithAttributes(attribute.String("tool", tool))
	s.callsTotal.Add(ctx, 1, toolAttr)
	s.logger.Debugw("Tool call started", "tool", tool, "request_id", requestID)

	resp, err := fn(ctx)
	durationMs := time.Since(start).Milliseconds()
	s.callDuration.Record(ctx, durationMs, toolAttr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.callsFailed.Add(ctx, 1, toolAttr)
		s.logger.Warnw("Tool call failed",
			"tool", tool,
			"request_id", requestID,
			"duration_ms", durationMs,
			"err", err)
		return nil, response.Envelope{}, fmt.Errorf("%s: %w", tool, err)
	}

	s.logger.Infow("Tool call completed",
		"tool", tool,
		"request_id", requestID,
		"status", resp.StatusCode,
		"content_type", resp.ContentType,
		"bytes", len(resp.Body),
		"duration_ms", durationMs)
	return resp, response.Format(resp.Body, resp.ContentType), nil
}

func validateArgs(tool string, in any) error {
	if err := identifier.Validator().Struct(in); err != nil {
		return identifier.NewValidationError(tool+" arguments", err)
	}
	return nil
}

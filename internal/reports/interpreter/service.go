// internal/reports/interpreter/service.go
package interpreter

import (
	"context"
	"fmt"
	"time"

	"report-workers/internal/common/logger"
	"report-workers/internal/common/metrics"
	"report-workers/internal/common/observability"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/router"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options wires a Service. Voter, Observability and Tracer are optional.
type Options struct {
	Router        *router.Router
	Store         conversation.Store
	Voter         intent.Voter
	Logger        logger.Logger
	Observability *observability.Observability
	Tracer        trace.Tracer
	Now           func() time.Time
}

// Service routes report commands with per-session conversational memory.
type Service struct {
	router *router.Router
	store  conversation.Store
	voter  intent.Voter
	logger logger.Logger
	obs    *observability.Observability
	tracer trace.Tracer
	now    func() time.Time
}

// Result is a routed command plus the next-step hint for its session.
type Result struct {
	Parsed     router.ParsedCommand `json:"parsed_command"`
	Suggestion string               `json:"suggestion,omitempty"`
}

func New(opts Options) (*Service, error) {
	if opts.Router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("interpreter")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		router: opts.Router,
		store:  opts.Store,
		voter:  opts.Voter,
		logger: opts.Logger,
		obs:    opts.Observability,
		tracer: opts.Tracer,
		now:    opts.Now,
	}, nil
}

// Router exposes the stateless router the service delegates to.
func (s *Service) Router() *router.Router {
	return s.router
}

// Route resolves command. With a session id, partial commands are merged with
// the session's last request and the result is recorded; without one the
// command is routed standalone and nothing is remembered. vote overrides the
// configured classifier when non-nil.
func (s *Service) Route(ctx context.Context, command, sessionID string, vote *intent.Vote) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "interpreter.Route")
	defer span.End()
	start := time.Now()

	if vote == nil && s.voter != nil {
		if v, ok := s.voter.Vote(ctx, command); ok {
			vote = &v
		}
	}

	if sessionID == "" {
		res := Result{Parsed: s.router.Route(command, vote)}
		s.observe(ctx, span, res, "", start)
		return res, nil
	}

	var res Result
	var merged conversation.MergeStrategy

	err := s.store.Update(ctx, sessionID, func(c *conversation.Context) error {
		res = Result{}
		merged = ""

		text := router.Normalize(command)
		if conversation.IsPartial(text) {
			if m, ok := c.Merge(text); ok {
				if pc, ok := s.router.Continue(command, router.Continuation{
					ReportType:      m.ReportType,
					Format:          m.Format,
					Params:          m.Params,
					ReparseDates:    m.ReparseDates,
					OriginalCommand: m.OriginalCommand,
					Modification:    m.Modification,
				}); ok {
					res.Parsed = pc
					merged = m.Strategy
				}
			}
		}
		if merged == "" {
			res.Parsed = s.router.Route(command, vote)
		}

		c.Record(command, res.Parsed.Params, res.Parsed.ReportType, res.Parsed.Format, s.now())
		res.Suggestion, _ = c.Suggest()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context store")
		s.logger.Error("Conversation context update failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return Result{}, err
	}

	if merged != "" {
		metrics.ReportContextMerges.WithLabelValues(string(merged)).Inc()
		s.logger.Info("Partial command merged with context", map[string]interface{}{
			"sessionId":       sessionID,
			"strategy":        string(merged),
			"modification":    res.Parsed.Modification,
			"originalCommand": res.Parsed.OriginalCommand,
		})
	}

	s.observe(ctx, span, res, sessionID, start)
	return res, nil
}

func (s *Service) observe(ctx context.Context, span trace.Span, res Result, sessionID string, start time.Time) {
	pc := res.Parsed
	metrics.ReportCommandsRouted.WithLabelValues(string(pc.ReportType), string(pc.Source)).Inc()
	s.obs.RecordRouting(ctx, time.Since(start), string(pc.ReportType), string(pc.Source), pc.Confidence)

	span.SetAttributes(
		attribute.String("report.type", string(pc.ReportType)),
		attribute.String("report.format", string(pc.Format)),
		attribute.String("route.source", string(pc.Source)),
		attribute.Float64("route.confidence", pc.Confidence),
		attribute.Bool("route.context_used", pc.ContextUsed),
	)

	s.logger.Info("Report command routed", map[string]interface{}{
		"sessionId":     sessionID,
		"reportType":    pc.ReportType,
		"format":        pc.Format,
		"confidence":    pc.Confidence,
		"source":        pc.Source,
		"formatChanged": pc.FormatChanged,
	})
}

// Clear resets one session, as on logout.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("Conversation context cleared", map[string]interface{}{"sessionId": sessionID})
	return nil
}

// ClearAll resets every session.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Info("All conversation contexts cleared", nil)
	return nil
}

func (s *Service) Summary(ctx context.Context, sessionID string) (conversation.Summary, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return conversation.Summary{}, err
	}
	return c.Summary(), nil
}

// internal/reports/nlp/classifier.go
package nlp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"report-workers/internal/common/config"
	apperrors "report-workers/internal/common/errors"
	apphttp "report-workers/internal/common/http"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/metrics"
	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/intent"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ClassifyPath = "/classify"

	OutcomeAccepted    = "accepted"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

var (
	ErrUnknownLabel      = errors.New("classifier returned an unknown report type")
	ErrInvalidConfidence = errors.New("classifier confidence outside [0,1]")
	ErrBelowFloor        = errors.New("classifier confidence below floor")
)

type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	ConfidenceFloor float64
	Catalog         *catalog.Catalog
	Logger          logger.Logger
	Tracer          trace.Tracer
}

// HTTPClassifier asks an external text classifier for a report type. It
// implements intent.Voter: every failure is logged and reported as no vote.
type HTTPClassifier struct {
	client     *apphttp.Client
	timeout    time.Duration
	maxRetries int
	floor      float64
	catalog    *catalog.Catalog
	logger     logger.Logger
	tracer     trace.Tracer
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func NewHTTPClassifier(opts Options) *HTTPClassifier {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("nlp")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &HTTPClassifier{
		client:     apphttp.NewClient(opts.BaseURL, opts.APIKey, opts.Timeout),
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		floor:      opts.ConfidenceFloor,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		tracer:     opts.Tracer,
	}
}

// FromConfig returns the configured classifier, or nil when it is disabled.
func FromConfig(cfg config.ClassifierConfig, cat *catalog.Catalog, log logger.Logger, tracer trace.Tracer) intent.Voter {
	if !cfg.Enabled {
		return nil
	}
	return NewHTTPClassifier(Options{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		Timeout:         config.GetDuration(cfg.Timeout),
		MaxRetries:      cfg.MaxRetries,
		ConfidenceFloor: cfg.ConfidenceFloor,
		Catalog:         cat,
		Logger:          log,
		Tracer:          tracer,
	})
}

func (c *HTTPClassifier) Vote(ctx context.Context, text string) (intent.Vote, bool) {
	ctx, span := c.tracer.Start(ctx, "nlp.Classify")
	defer span.End()

	vote, err := c.classify(ctx, text)
	if err != nil {
		outcome := OutcomeUnavailable
		if errors.Is(err, ErrUnknownLabel) || errors.Is(err, ErrInvalidConfidence) || errors.Is(err, ErrBelowFloor) {
			outcome = OutcomeRejected
		}
		metrics.ReportClassifierVotes.WithLabelValues(outcome).Inc()

		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		stdErr := apperrors.NewClassifierUnavailableError(err)
		c.logger.Warn("Classifier vote ignored", map[string]interface{}{
			"outcome":   outcome,
			"errorCode": stdErr.Code,
			"reason":    stdErr.Details,
		})
		return intent.Vote{}, false
	}

	metrics.ReportClassifierVotes.WithLabelValues(OutcomeAccepted).Inc()
	span.SetAttributes(
		attribute.String("vote.label", string(vote.Label)),
		attribute.Float64("vote.confidence", vote.Confidence),
	)
	return vote, true
}

func (c *HTTPClassifier) classify(ctx context.Context, text string) (intent.Vote, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var resp classifyResponse
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return intent.Vote{}, ctx.Err()
			}
		}

		lastErr = c.client.PostJSON(ctx, ClassifyPath, classifyRequest{Text: text}, &resp)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return intent.Vote{}, ctx.Err()
		}

		var statusErr *apphttp.StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.Retryable() {
			break
		}
	}
	if lastErr != nil {
		return intent.Vote{}, lastErr
	}

	return c.accept(resp)
}

func (c *HTTPClassifier) accept(resp classifyResponse) (intent.Vote, error) {
	label := catalog.ReportID(resp.Label)
	if _, ok := c.catalog.Lookup(label); !ok {
		return intent.Vote{}, fmt.Errorf("%w: %q", ErrUnknownLabel, resp.Label)
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return intent.Vote{}, fmt.Errorf("%w: %v", ErrInvalidConfidence, resp.Confidence)
	}
	if resp.Confidence < c.floor {
		return intent.Vote{}, fmt.Errorf("%w: %v < %v", ErrBelowFloor, resp.Confidence, c.floor)
	}
	return intent.Vote{Label: label, Confidence: resp.Confidence}, nil
}

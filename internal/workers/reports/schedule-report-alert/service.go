// internal/workers/reports/schedule-report-alert/service.go
package schedulereportalert

import (
	"context"
	"time"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/metrics"
	"report-workers/internal/reports/alerts"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/router"
)

type CommandRouter interface {
	Route(command string, vote *intent.Vote) router.ParsedCommand
}

type AlertCreator interface {
	Create(ctx context.Context, a *alerts.Alert) error
}

var (
	_ CommandRouter = (*router.Router)(nil)
	_ AlertCreator  = (*alerts.PostgresRepository)(nil)
)

type Service struct {
	config     *Config
	logger     logger.Logger
	router     CommandRouter
	repository AlertCreator
	now        func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if config.Location != nil {
		clock, loc := now, config.Location
		now = func() time.Time { return clock().In(loc) }
	}
	return &Service{
		config:     config,
		logger:     deps.Logger,
		router:     deps.Router,
		repository: deps.Repository,
		now:        now,
	}
}

// Execute detects the alert wording, routes what remains as a report command
// and stores the resulting alert.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	text := router.Normalize(input.Command)

	detection, ok := alerts.Detect(text, s.config.DefaultHour)
	if !ok {
		return nil, errors.NewAlertNotDetectedError(input.Command)
	}

	parsed := s.router.Route(detection.BaseCommand, nil)

	alert, err := alerts.NewAlert(alerts.Spec{
		UserID:         input.UserID,
		Command:        input.Command,
		Detection:      detection,
		ReportType:     parsed.ReportType,
		Format:         parsed.Format,
		CommandParams:  parsed.Params.ToMap(),
		NotifyEmail:    input.NotifyEmail,
		NotifyInApp:    input.NotifyInApp,
		EmailRecipient: input.EmailRecipient,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repository.Create(ctx, alert); err != nil {
		return nil, err
	}
	metrics.ReportAlertsScheduled.WithLabelValues(string(alert.Type)).Inc()

	s.logger.Info("Report alert scheduled", map[string]interface{}{
		"alertId":     alert.ID,
		"userId":      alert.UserID,
		"alertType":   alert.Type,
		"frequency":   alert.Frequency,
		"reportType":  alert.ReportType,
		"baseCommand": detection.BaseCommand,
	})

	return &Output{
		AlertID:     alert.ID,
		AlertType:   alert.Type,
		Frequency:   alert.Frequency,
		ReportType:  alert.ReportType,
		Format:      alert.Format,
		Description: alert.Description,
		NextTrigger: alert.NextTrigger,
	}, nil
}

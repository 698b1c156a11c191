// internal/workers/reports/dispatch-due-alerts/service.go
package dispatchduealerts

import (
	"context"
	"time"

	"report-workers/internal/common/logger"
	"report-workers/internal/reports/alerts"
)

type AlertClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*alerts.Alert, error)
}

var _ AlertClaimer = (*alerts.PostgresRepository)(nil)

type Service struct {
	config     *Config
	logger     logger.Logger
	repository AlertClaimer
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
		repository: deps.Repository,
		now:        now,
	}
}

// Execute claims the alerts due now. Claimed alerts already have their next
// trigger advanced, so a retried job never hands out the same firing twice.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	limit := s.config.BatchSize
	if input.Limit > 0 && input.Limit < limit {
		limit = input.Limit
	}

	now := s.now()
	claimed, err := s.repository.ClaimDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}

	out := &Output{DueAlerts: make([]DueAlert, 0, len(claimed)), Count: len(claimed)}
	for _, a := range claimed {
		params := a.CommandParams
		if params == nil {
			params = map[string]interface{}{}
		}
		out.DueAlerts = append(out.DueAlerts, DueAlert{
			AlertID:        a.ID,
			UserID:         a.UserID,
			Command:        a.Command,
			ReportType:     a.ReportType,
			Format:         a.Format,
			Params:         params,
			NotifyEmail:    a.NotifyEmail,
			NotifyInApp:    a.NotifyInApp,
			EmailRecipient: a.EmailRecipient,
			NextTrigger:    a.NextTrigger,
		})
	}

	if out.Count > 0 {
		s.logger.Info("Due alerts claimed", map[string]interface{}{
			"count": out.Count,
			"limit": limit,
			"at":    now.Format(time.RFC3339),
		})
	}
	return out, nil
}

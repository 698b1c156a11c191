// internal/workers/reports/clear-report-context/service.go
package clearreportcontext

import (
	"context"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/interpreter"
)

// AllSessionsID is reported as the session id when every session is cleared.
const AllSessionsID = "*"

type ContextClearer interface {
	Clear(ctx context.Context, sessionID string) error
	ClearAll(ctx context.Context) error
}

var _ ContextClearer = (*interpreter.Service)(nil)

type Service struct {
	config   *Config
	logger   logger.Logger
	contexts ContextClearer
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		contexts: deps.Contexts,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AllSessions {
		if !s.config.AllowClearAll {
			return nil, errors.NewBusinessRuleError("Clearing every session is disabled", "allow_clear_all is false")
		}
		if err := s.contexts.ClearAll(ctx); err != nil {
			return nil, err
		}
		return &Output{Cleared: true, SessionID: AllSessionsID}, nil
	}

	if err := s.contexts.Clear(ctx, input.SessionID); err != nil {
		return nil, err
	}
	return &Output{Cleared: true, SessionID: input.SessionID}, nil
}

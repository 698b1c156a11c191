// internal/workers/reports/summarize-report-context/service.go
package summarizereportcontext

import (
	"context"

	"report-workers/internal/common/logger"
	"report-workers/internal/reports/conversation"
	"report-workers/internal/reports/interpreter"
)

type Summarizer interface {
	Summary(ctx context.Context, sessionID string) (conversation.Summary, error)
}

var _ Summarizer = (*interpreter.Service)(nil)

type Service struct {
	config   *Config
	logger   logger.Logger
	contexts Summarizer
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		contexts: deps.Contexts,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	summary, err := s.contexts.Summary(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	return &Output{Summary: summary}, nil
}

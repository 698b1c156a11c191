// internal/workers/reports/route-report-command/service.go
package routereportcommand

import (
	"context"

	"report-workers/internal/common/logger"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/interpreter"
)

// Interpreter is the part of interpreter.Service this worker needs.
type Interpreter interface {
	Route(ctx context.Context, command, sessionID string, vote *intent.Vote) (interpreter.Result, error)
}

var _ Interpreter = (*interpreter.Service)(nil)

type Service struct {
	config      *Config
	logger      logger.Logger
	interpreter Interpreter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:      config,
		logger:      deps.Logger,
		interpreter: deps.Interpreter,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := s.interpreter.Route(ctx, input.Command, input.SessionID, input.ExternalVote)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Report command resolved", map[string]interface{}{
		"sessionId":   input.SessionID,
		"reportType":  res.Parsed.ReportType,
		"format":      res.Parsed.Format,
		"contextUsed": res.Parsed.ContextUsed,
	})

	return &Output{
		ParsedCommand: res.Parsed,
		Suggestion:    res.Suggestion,
		ContextUsed:   res.Parsed.ContextUsed,
	}, nil
}

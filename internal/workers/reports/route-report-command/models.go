// internal/workers/reports/route-report-command/models.go
package routereportcommand

import (
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/router"
)

type Input struct {
	Command      string       `json:"command"`
	SessionID    string       `json:"sessionId,omitempty"`
	ExternalVote *intent.Vote `json:"externalVote,omitempty"`
}

type Output struct {
	ParsedCommand router.ParsedCommand `json:"parsedCommand"`
	Suggestion    string               `json:"suggestion,omitempty"`
	ContextUsed   bool                 `json:"contextUsed"`
}

type ServiceDependencies struct {
	Interpreter Interpreter
	Logger      logger.Logger
}

// internal/workers/reports/summarize-report-context/models.go
package summarizereportcontext

import (
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/conversation"
)

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	Summary conversation.Summary `json:"summary"`
}

type ServiceDependencies struct {
	Contexts Summarizer
	Logger   logger.Logger
}

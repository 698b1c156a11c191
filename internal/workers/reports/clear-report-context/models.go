// internal/workers/reports/clear-report-context/models.go
package clearreportcontext

import "report-workers/internal/common/logger"

type Input struct {
	SessionID   string `json:"sessionId,omitempty"`
	AllSessions bool   `json:"allSessions,omitempty"`
}

type Output struct {
	Cleared   bool   `json:"cleared"`
	SessionID string `json:"sessionId"`
}

type ServiceDependencies struct {
	Contexts ContextClearer
	Logger   logger.Logger
}

// internal/workers/reports/dispatch-due-alerts/models.go
package dispatchduealerts

import (
	"time"

	"report-workers/internal/common/logger"
	"report-workers/internal/reports/catalog"
)

type Input struct {
	Limit int `json:"limit,omitempty"`
}

// DueAlert is everything the report step needs to produce and deliver one
// triggered alert.
type DueAlert struct {
	AlertID        string                 `json:"alertId"`
	UserID         string                 `json:"userId"`
	Command        string                 `json:"command"`
	ReportType     catalog.ReportID       `json:"reportType"`
	Format         catalog.Format         `json:"format"`
	Params         map[string]interface{} `json:"params"`
	NotifyEmail    bool                   `json:"notifyEmail"`
	NotifyInApp    bool                   `json:"notifyInApp"`
	EmailRecipient string                 `json:"emailRecipient,omitempty"`
	NextTrigger    *time.Time             `json:"nextTrigger,omitempty"`
}

type Output struct {
	DueAlerts []DueAlert `json:"dueAlerts"`
	Count     int        `json:"count"`
}

type ServiceDependencies struct {
	Repository AlertClaimer
	Logger     logger.Logger
	Now        func() time.Time
}

// internal/workers/reports/schedule-report-alert/models.go
package schedulereportalert

import (
	"time"

	"report-workers/internal/common/logger"
	"report-workers/internal/reports/alerts"
	"report-workers/internal/reports/catalog"
)

type Input struct {
	UserID         string `json:"userId"`
	Command        string `json:"command"`
	NotifyEmail    bool   `json:"notifyEmail"`
	NotifyInApp    bool   `json:"notifyInApp"`
	EmailRecipient string `json:"emailRecipient,omitempty"`
}

type Output struct {
	AlertID     string           `json:"alertId"`
	AlertType   alerts.AlertType `json:"alertType"`
	Frequency   alerts.Frequency `json:"frequency"`
	ReportType  catalog.ReportID `json:"reportType"`
	Format      catalog.Format   `json:"format"`
	Description string           `json:"description"`
	NextTrigger *time.Time       `json:"nextTrigger,omitempty"`
}

type ServiceDependencies struct {
	Router     CommandRouter
	Repository AlertCreator
	Logger     logger.Logger
	Now        func() time.Time
}

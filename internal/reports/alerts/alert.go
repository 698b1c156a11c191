// internal/reports/alerts/alert.go
package alerts

import (
	"fmt"
	"strings"
	"time"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/validation"
	"report-workers/internal/reports/catalog"

	"github.com/google/uuid"
)

// Alert is a persisted report alert: either a schedule that re-runs a report
// command, or a data condition watched by the reporting collaborator.
type Alert struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	Command        string                 `json:"command"`
	Description    string                 `json:"description,omitempty"`
	Type           AlertType              `json:"alert_type"`
	Frequency      Frequency              `json:"frequency"`
	Condition      *Condition             `json:"conditions,omitempty"`
	Schedule       *Schedule              `json:"schedule,omitempty"`
	ReportType     catalog.ReportID       `json:"report_type"`
	Format         catalog.Format         `json:"format"`
	CommandParams  map[string]interface{} `json:"command_params,omitempty"`
	Active         bool                   `json:"active"`
	NotifyEmail    bool                   `json:"notify_email"`
	NotifyInApp    bool                   `json:"notify_in_app"`
	EmailRecipient string                 `json:"email_recipient,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	LastTriggered  *time.Time             `json:"last_triggered,omitempty"`
	NextTrigger    *time.Time             `json:"next_trigger,omitempty"`
}

// Spec holds everything needed to create an Alert.
type Spec struct {
	UserID         string
	Command        string
	Detection      Detection
	ReportType     catalog.ReportID
	Format         catalog.Format
	CommandParams  map[string]interface{}
	NotifyEmail    bool
	NotifyInApp    bool
	EmailRecipient string
}

const conditionSchema = `{
	"type": "object",
	"properties": {
		"type": {"type": "string", "enum": ["stock_low", "sales_drop", "inventory_zero"]},
		"threshold": {"type": "integer", "minimum": 0},
		"percentage": {"type": "integer", "minimum": 1, "maximum": 100}
	},
	"required": ["type"],
	"additionalProperties": false
}`

const scheduleSchema = `{
	"type": "object",
	"properties": {
		"hour": {"type": "integer", "minimum": 0, "maximum": 23},
		"minute": {"type": "integer", "minimum": 0, "maximum": 59},
		"day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
		"day_of_month": {"type": "integer", "minimum": 1, "maximum": 31}
	},
	"required": ["hour", "minute"],
	"additionalProperties": false
}`

// NewAlert builds an active alert with a fresh id and, for scheduled alerts,
// its first trigger time. Condition and schedule payloads are checked against
// their JSON schemas.
func NewAlert(spec Spec, now time.Time) (*Alert, error) {
	if strings.TrimSpace(spec.UserID) == "" {
		return nil, errors.NewAlertScheduleInvalidError("userId is required")
	}

	d := spec.Detection
	switch d.Type {
	case TypeCondition:
		if d.Condition == nil {
			return nil, errors.NewAlertScheduleInvalidError("condition alert without condition")
		}
		if err := checkSchema("conditions", conditionSchema, d.Condition); err != nil {
			return nil, err
		}
	case TypeScheduled:
		if d.Schedule == nil {
			return nil, errors.NewAlertScheduleInvalidError("scheduled alert without schedule")
		}
		if err := checkSchema("schedule", scheduleSchema, d.Schedule); err != nil {
			return nil, err
		}
		if err := checkFrequency(d.Frequency, d.Schedule); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewAlertScheduleInvalidError(fmt.Sprintf("unknown alert type %q", d.Type))
	}

	a := &Alert{
		ID:             uuid.NewString(),
		UserID:         spec.UserID,
		Command:        spec.Command,
		Description:    describe(d),
		Type:           d.Type,
		Frequency:      d.Frequency,
		Condition:      d.Condition,
		Schedule:       d.Schedule,
		ReportType:     spec.ReportType,
		Format:         spec.Format,
		CommandParams:  spec.CommandParams,
		Active:         true,
		NotifyEmail:    spec.NotifyEmail,
		NotifyInApp:    spec.NotifyInApp,
		EmailRecipient: spec.EmailRecipient,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	a.NextTrigger = a.NextTriggerAfter(now)
	return a, nil
}

func checkSchema(name, schema string, doc interface{}) error {
	result := validation.ValidateJSON(schema, doc)
	if result.Valid {
		return nil
	}
	return errors.NewAlertScheduleInvalidError(
		fmt.Sprintf("%s: %s", name, strings.Join(result.GetErrorMessages(), "; ")))
}

func checkFrequency(f Frequency, s *Schedule) error {
	switch f {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if s.DayOfWeek == nil {
			return errors.NewAlertScheduleInvalidError("weekly schedule needs day_of_week")
		}
		return nil
	case FrequencyMonthly:
		if s.DayOfMonth == nil {
			return errors.NewAlertScheduleInvalidError("monthly schedule needs day_of_month")
		}
		return nil
	default:
		return errors.NewAlertScheduleInvalidError(fmt.Sprintf("unknown frequency %q", f))
	}
}

func describe(d Detection) string {
	if d.Type == TypeCondition {
		switch d.Condition.Type {
		case ConditionStockLow:
			return fmt.Sprintf("Stock below %d", d.Condition.Threshold)
		case ConditionSalesDrop:
			return fmt.Sprintf("Sales drop over %d%%", d.Condition.Percentage)
		default:
			return "Inventory at zero"
		}
	}

	s := d.Schedule
	switch d.Frequency {
	case FrequencyWeekly:
		return fmt.Sprintf("Weekly on %s at %02d:%02d", weekdays[*s.DayOfWeek], s.Hour, s.Minute)
	case FrequencyMonthly:
		return fmt.Sprintf("Monthly on day %d at %02d:%02d", *s.DayOfMonth, s.Hour, s.Minute)
	default:
		return fmt.Sprintf("Daily at %02d:%02d", s.Hour, s.Minute)
	}
}

// NextTriggerAfter returns the first firing time strictly after now, in now's
// location. Condition alerts have no schedule and return nil.
func (a *Alert) NextTriggerAfter(now time.Time) *time.Time {
	if a.Type != TypeScheduled || a.Schedule == nil {
		return nil
	}
	s := a.Schedule
	loc := now.Location()
	at := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, loc)
	}

	var next time.Time
	switch a.Frequency {
	case FrequencyDaily:
		next = at(now.Year(), now.Month(), now.Day())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

	case FrequencyWeekly:
		if s.DayOfWeek == nil {
			return nil
		}
		today := (int(now.Weekday()) + 6) % 7
		ahead := *s.DayOfWeek - today
		if ahead < 0 {
			ahead += 7
		}
		next = at(now.Year(), now.Month(), now.Day()+ahead)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}

	case FrequencyMonthly:
		if s.DayOfMonth == nil {
			return nil
		}
		next = at(now.Year(), now.Month(), clampDay(now.Year(), now.Month(), *s.DayOfMonth))
		if !next.After(now) {
			first := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, loc)
			next = at(first.Year(), first.Month(), clampDay(first.Year(), first.Month(), *s.DayOfMonth))
		}

	default:
		return nil
	}
	return &next
}

// Due reports whether an active scheduled alert should fire at now.
func (a *Alert) Due(now time.Time) bool {
	return a.Active && a.Type == TypeScheduled && a.NextTrigger != nil && !a.NextTrigger.After(now)
}

// MarkTriggered records a firing at and schedules the next one.
func (a *Alert) MarkTriggered(at time.Time) {
	a.LastTriggered = &at
	a.UpdatedAt = at
	if a.Type == TypeScheduled {
		a.NextTrigger = a.NextTriggerAfter(at)
	}
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

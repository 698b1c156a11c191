// pkg/registry/reports.go
package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/validation"

	crc "report-workers/internal/workers/reports/clear-report-context"
	dda "report-workers/internal/workers/reports/dispatch-due-alerts"
	rrc "report-workers/internal/workers/reports/route-report-command"
	sra "report-workers/internal/workers/reports/schedule-report-alert"
	src "report-workers/internal/workers/reports/summarize-report-context"
)

const (
	CategoryReports = "reports"
	StatusCompleted = "completed"
	activityVersion = "1.0.0"
)

var inputErrors = []errors.ErrorCode{errors.ErrCodeInputParsingFailed, errors.ErrCodeInputValidationFailed}

// ReportActivities describes every report worker from its live schemas and
// default configuration.
func ReportActivities() ([]Activity, error) {
	routeCfg := rrc.DefaultConfig()
	clearCfg := crc.DefaultConfig()
	summaryCfg := src.DefaultConfig()
	scheduleCfg := sra.DefaultConfig()
	dispatchCfg := dda.DefaultConfig()

	specs := []struct {
		taskType    string
		displayName string
		description string
		input       validation.JSONSchema
		output      validation.JSONSchema
		timeout     time.Duration
		errorCodes  []errors.ErrorCode
		tags        []string
	}{
		{
			taskType:    rrc.TaskType,
			displayName: "Route Report Command",
			description: "Resolves a natural-language report command into a report type, format and parameters using the session's conversational context",
			input:       rrc.GetInputSchema(routeCfg.MaxCommandLength),
			output:      rrc.GetOutputSchema(),
			timeout:     routeCfg.Timeout,
			errorCodes:  []errors.ErrorCode{errors.ErrCodeContextStoreFailed, errors.ErrCodeContextConflict},
			tags:        []string{"router", "conversation"},
		},
		{
			taskType:    crc.TaskType,
			displayName: "Clear Report Context",
			description: "Forgets the conversational context of one session or of every session",
			input:       crc.GetInputSchema(),
			output:      crc.GetOutputSchema(),
			timeout:     clearCfg.Timeout,
			errorCodes:  []errors.ErrorCode{errors.ErrCodeContextStoreFailed, errors.ErrCodeBusinessRule},
			tags:        []string{"conversation"},
		},
		{
			taskType:    src.TaskType,
			displayName: "Summarize Report Context",
			description: "Returns the command count and last report of a session",
			input:       src.GetInputSchema(),
			output:      src.GetOutputSchema(),
			timeout:     summaryCfg.Timeout,
			errorCodes:  []errors.ErrorCode{errors.ErrCodeContextStoreFailed},
			tags:        []string{"conversation"},
		},
		{
			taskType:    sra.TaskType,
			displayName: "Schedule Report Alert",
			description: "Detects a scheduled or conditional alert in a command and stores it",
			input:       sra.GetInputSchema(),
			output:      sra.GetOutputSchema(),
			timeout:     scheduleCfg.Timeout,
			errorCodes: []errors.ErrorCode{
				errors.ErrCodeAlertNotDetected,
				errors.ErrCodeAlertScheduleInvalid,
				errors.ErrCodeAlertPersistFailed,
			},
			tags: []string{"alerts", "postgres"},
		},
		{
			taskType:    dda.TaskType,
			displayName: "Dispatch Due Alerts",
			description: "Claims scheduled alerts whose trigger time has passed and advances their next trigger",
			input:       dda.GetInputSchema(),
			output:      dda.GetOutputSchema(),
			timeout:     dispatchCfg.Timeout,
			errorCodes:  []errors.ErrorCode{errors.ErrCodeAlertQueryFailed, errors.ErrCodeAlertPersistFailed},
			tags:        []string{"alerts", "postgres"},
		},
	}

	activities := make([]Activity, 0, len(specs))
	for _, s := range specs {
		input, err := schemaMap(s.input)
		if err != nil {
			return nil, fmt.Errorf("%s input schema: %w", s.taskType, err)
		}
		output, err := schemaMap(s.output)
		if err != nil {
			return nil, fmt.Errorf("%s output schema: %w", s.taskType, err)
		}

		codes := append(append([]errors.ErrorCode{}, inputErrors...), s.errorCodes...)
		activities = append(activities, Activity{
			ID:                   s.taskType,
			DisplayName:          s.displayName,
			Description:          s.description,
			Category:             CategoryReports,
			Version:              activityVersion,
			TaskType:             s.taskType,
			ImplementationStatus: StatusCompleted,
			InputSchema:          input,
			OutputSchema:         output,
			ErrorCodes:           codeStrings(codes),
			Timeout:              s.timeout.String(),
			Retries:              maxRetries(codes),
			Workflows:            []string{},
			Tags:                 s.tags,
		})
	}
	return activities, nil
}

func schemaMap(schema validation.JSONSchema) (map[string]interface{}, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func codeStrings(codes []errors.ErrorCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

func maxRetries(codes []errors.ErrorCode) int {
	most := 0
	for _, c := range codes {
		if n := errors.GetRetryCount(c); n > most {
			most = n
		}
	}
	return most
}

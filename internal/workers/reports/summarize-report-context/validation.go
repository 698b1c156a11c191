// internal/workers/reports/summarize-report-context/validation.go
package summarizereportcontext

import "report-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Session to summarize",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"summary"},
		Properties: map[string]validation.Property{
			"summary": {
				Type:        "object",
				Description: "session_id, commands_count, last_command, last_report_type, last_format, created_at, last_updated",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

// internal/workers/reports/clear-report-context/validation.go
package clearreportcontext

import "report-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Session whose conversation context is dropped",
				MaxLength:   intPtr(200),
			},
			"allSessions": {
				Type:        "boolean",
				Description: "Drop every session instead of one",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"cleared", "sessionId"},
		Properties: map[string]validation.Property{
			"cleared": {
				Type:        "boolean",
				Description: "Whether the context was dropped",
			},
			"sessionId": {
				Type:        "string",
				Description: "Cleared session, or \"*\" when every session was cleared",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

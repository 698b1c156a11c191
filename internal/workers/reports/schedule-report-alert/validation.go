// internal/workers/reports/schedule-report-alert/validation.go
package schedulereportalert

import "report-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "command"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:        "string",
				Description: "Owner of the alert",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"command": {
				Type:        "string",
				Description: "Alert request, e.g. \"enviame ventas por producto cada lunes a las 8 am\"",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(1000),
			},
			"notifyEmail": {
				Type:        "boolean",
				Description: "Send the report by email (default true)",
			},
			"notifyInApp": {
				Type:        "boolean",
				Description: "Show an in-app notification (default true)",
			},
			"emailRecipient": {
				Type:        "string",
				Description: "Overrides the user's address",
				MaxLength:   intPtr(255),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"alertId", "alertType", "frequency", "reportType"},
		Properties: map[string]validation.Property{
			"alertId":     {Type: "string", Description: "Stored alert id (UUID)"},
			"alertType":   {Type: "string", Enum: []string{"scheduled", "condition"}},
			"frequency":   {Type: "string", Enum: []string{"daily", "weekly", "monthly", "on_condition"}},
			"reportType":  {Type: "string", Description: "Report produced when the alert fires"},
			"format":      {Type: "string", Enum: []string{"json", "pdf", "excel"}},
			"description": {Type: "string", Description: "Human-readable schedule"},
			"nextTrigger": {Type: "string", Description: "RFC 3339 time of the first firing; absent for condition alerts"},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

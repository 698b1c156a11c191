// internal/workers/reports/dispatch-due-alerts/validation.go
package dispatchduealerts

import "report-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"limit": {
				Type:        "integer",
				Description: "Maximum alerts to claim; defaults to the configured batch size",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(MaxBatchSize),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"dueAlerts", "count"},
		Properties: map[string]validation.Property{
			"dueAlerts": {
				Type:        "array",
				Description: "Claimed alerts with report type, format and params",
				Items:       &validation.Property{Type: "object"},
			},
			"count": {
				Type:        "integer",
				Description: "Number of claimed alerts",
			},
		},
		AdditionalProperties: false,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// internal/workers/reports/route-report-command/validation.go
package routereportcommand

import "report-workers/internal/common/validation"

func GetInputSchema(maxCommandLength int) validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"command"},
		Properties: map[string]validation.Property{
			"command": {
				Type:        "string",
				Description: "Free-text report request; empty routes to the default report",
				MaxLength:   intPtr(maxCommandLength),
			},
			"sessionId": {
				Type:        "string",
				Description: "Conversation session; empty routes without context",
				MaxLength:   intPtr(200),
			},
			"externalVote": {
				Type:        "object",
				Description: "Intent vote from an upstream classifier",
				Required:    []string{"label", "confidence"},
				Properties: map[string]validation.Property{
					"label": {
						Type:      "string",
						MinLength: intPtr(1),
					},
					"confidence": {
						Type:    "number",
						Minimum: floatPtr(0),
						Maximum: floatPtr(1),
					},
				},
			},
		},
		// Process instances carry variables owned by other tasks.
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"parsedCommand", "contextUsed"},
		Properties: map[string]validation.Property{
			"parsedCommand": {
				Type:        "object",
				Description: "Routed report: type, format, params, confidence and alternatives",
			},
			"suggestion": {
				Type:        "string",
				Description: "Next-step hint for the session",
			},
			"contextUsed": {
				Type:        "boolean",
				Description: "Whether the command was merged with the session context",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

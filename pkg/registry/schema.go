// pkg/registry/schema.go

// Package registry describes the Zeebe task types this module serves, in the
// JSON form read by process modelers (configs/activity-registry.json).
package registry

// ActivityRegistry is the whole registry file.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one service task. For report workers ID and TaskType are the
// same string and InputSchema/OutputSchema are the handlers' validation
// schemas rendered as JSON objects. ErrorCodes lists the BPMN errors the task
// may throw, Timeout is a Go duration string such as "5s", and Retries is the
// largest retry budget among ErrorCodes.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

package ir

// Version constants for the plan format and the tool.
const (
	// PlanVersion is the action log schema version.
	PlanVersion = "1"

	// ToolVersion is the ctmigrate version.
	ToolVersion = "0.1.0"
)

package ir

// Version constants for the document schema and the tool.
const (
	// SchemaVersion is the form document schema version.
	SchemaVersion = "1"

	// Version is the reveal release.
	Version = "0.1.0"
)

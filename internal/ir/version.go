package ir

// Version constants for the journal schema and engine.
const (
	// TraceVersion is the version of the trace/journal record layout.
	TraceVersion = "1"

	// EngineVersion is the asksort engine version.
	EngineVersion = "0.1.0"
)

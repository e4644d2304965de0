package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldSessionID is the visitor session ID
	FieldSessionID = "session_id"

	// FieldGeneration is the submission generation within a session
	FieldGeneration = "generation"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldPlatform is the detected video platform
	FieldPlatform = "platform"

	// FieldURL is the submitted video URL
	FieldURL = "url"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldSize is the response size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)

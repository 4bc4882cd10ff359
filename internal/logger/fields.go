package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldProject is the canonical origin of the wiki being queried
	FieldProject = "project"

	// FieldListID is the stored reading list ID
	FieldListID = "list_id"
)

// Metric fields, attached per entry for aggregation and alerting.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldChunks     = "chunks"
	FieldSize       = "size"
	FieldStatus     = "status"
)

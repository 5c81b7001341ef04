package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRunID identifies one invocation of the tagging run
	FieldRunID = "run_id"

	// FieldPostID is the blog post identifier
	FieldPostID = "post_id"

	// FieldPostURL is the canonical post URL
	FieldPostURL = "post_url"

	// FieldBlog is the blog identifier
	FieldBlog = "blog"

	// FieldModel is the language model identifier in use
	FieldModel = "model"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is an HTTP or operation status
	FieldStatus = "status"
)

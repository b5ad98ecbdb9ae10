package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// RequestID is the context key for the id assigned to each HTTP request.
	RequestID contextKey = "requestID"
)

// RequestIDHeader carries the request id on responses and, when present, on
// incoming requests.
const RequestIDHeader = "X-Request-ID"

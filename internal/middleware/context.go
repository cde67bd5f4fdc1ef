package middleware

// Context keys used to store request metadata.
const (
	ContextKeySubject   = "subject"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

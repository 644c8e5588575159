package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	CtxKeyRequestID  ContextKey = "request_id"
	CtxKeyUserID     ContextKey = "user_id"
	CtxKeyClientIP   ContextKey = "client_ip"
	CtxKeyUserAgent  ContextKey = "user_agent"
	CtxKeyStartTime  ContextKey = "start_time"
	CtxKeyModule     ContextKey = "module"
	CtxKeyFunction   ContextKey = "function"
	CtxKeyActorRole  ContextKey = "actor_role"
	CtxKeySyncTickNo ContextKey = "sync_iteration"
)

// Keys stored on the gin context by the auth middlewares.
const (
	GinKeyCustomerID    = "customer_id"
	GinKeyCustomerPhone = "customer_phone"
	GinKeyAdminID       = "admin_id"
	GinKeyAdminRole     = "admin_role"
)

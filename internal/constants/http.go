package constants

// HTTP Header Names
const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderAuthorization      = "Authorization"
	HeaderXRequestID         = "X-Request-ID"
	HeaderXAPIKey            = "X-API-Key"
)

const ContentTypeJSON = "application/json"

// Common HTTP Error Messages
const (
	MsgUnauthorized    = "Unauthorized"
	MsgForbidden       = "Access forbidden"
	MsgNotFound        = "Resource not found"
	MsgBadRequest      = "Invalid request"
	MsgInvalidJSON     = "Format JSON tidak valid"
	MsgValidation      = "Validasi gagal"
	MsgInternalError   = "Internal server error"
	MsgTooManyRequests = "Rate limit exceeded"
)

// HTTP Success Messages
const (
	MsgSuccess   = "Success"
	MsgCreated   = "Created successfully"
	MsgUpdated   = "Updated successfully"
	MsgDeleted   = "Deleted successfully"
	MsgActivated = "Activated successfully"
	MsgOTPSent   = "OTP sent successfully"
	MsgOTPValid  = "OTP validated successfully"
	MsgVerified  = "Verified successfully"
	MsgLoggedIn  = "Login successful"
	MsgLoggedOut = "Logout successful"
	MsgRestored  = "Restored successfully"
)

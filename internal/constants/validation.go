package constants

import "time"

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MinNameLength     = 2
	MaxNameLength     = 100
	MinPhoneLength    = 10
	MaxPhoneLength    = 15
	MaxEmailLength    = 255
)

// OTP
const (
	OTPLength         = 4
	OTPExpiry         = 5 * time.Minute
	OTPResendInterval = 60 * time.Second
	OTPMaxAttempts    = 5
)

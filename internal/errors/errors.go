package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of domain failure. Every Kind has exactly one
// message in the messages table and one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindCustomerNotFound
	KindAddressNotFound
	KindOTPNotFound
	KindSettingNotFound
	KindPhoneRegistered
	KindEmailRegistered
	KindOTPPhoneExists
	KindOTPInvalid
	KindOTPAlreadyValidated
	KindOTPExpired
	KindOTPNotValidated
	KindOTPResendTooSoon
	KindInvalidCredentials
	KindIncorrectPassword
	KindPasswordMismatch
	KindCustomerInactive
	KindUnauthorized
	KindInvalidToken
	KindTokenExpired
	KindForbidden
	KindCityInvalid
	KindUpstream
	KindUpstreamUnavailable
	KindAlreadyVerified
	KindServiceUnavailable
	KindEmailInvalid
	KindEmailNotSet
	KindDateRangeInvalid
	KindInvalidParameter
)

var messages = map[Kind]string{
	KindInternal:            "internal server error",
	KindValidation:          "validation failed",
	KindNotFound:            "resource not found",
	KindCustomerNotFound:    "customer not found",
	KindAddressNotFound:     "address not found",
	KindOTPNotFound:         "OTP not found",
	KindSettingNotFound:     "setting not found",
	KindPhoneRegistered:     "phone already registered",
	KindEmailRegistered:     "email already registered",
	KindOTPPhoneExists:      "phone already exists",
	KindOTPInvalid:          "invalid OTP",
	KindOTPAlreadyValidated: "already validated",
	KindOTPExpired:          "OTP expired",
	KindOTPNotValidated:     "phone has not been verified by OTP",
	KindOTPResendTooSoon:    "OTP was sent recently, please wait before requesting again",
	KindInvalidCredentials:  "invalid credentials",
	KindIncorrectPassword:   "current password is incorrect",
	KindPasswordMismatch:    "new password and confirmation do not match",
	KindCustomerInactive:    "customer is inactive",
	KindUnauthorized:        "unauthorized",
	KindInvalidToken:        "invalid or expired token",
	KindTokenExpired:        "token has expired",
	KindForbidden:           "access forbidden",
	KindCityInvalid:         "city not found",
	KindUpstream:            "upstream service error",
	KindUpstreamUnavailable: "upstream service unavailable",
	KindAlreadyVerified:     "already verified",
	KindServiceUnavailable:  "service unavailable",
	KindEmailInvalid:        "invalid email address",
	KindEmailNotSet:         "email has not been set",
	KindDateRangeInvalid:    "start_date must be before end_date",
	KindInvalidParameter:    "invalid path parameter",
}

var statuses = map[Kind]int{
	KindInternal:            http.StatusInternalServerError,
	KindValidation:          http.StatusBadRequest,
	KindNotFound:            http.StatusNotFound,
	KindCustomerNotFound:    http.StatusNotFound,
	KindAddressNotFound:     http.StatusNotFound,
	KindOTPNotFound:         http.StatusNotFound,
	KindSettingNotFound:     http.StatusNotFound,
	KindPhoneRegistered:     http.StatusBadRequest,
	KindEmailRegistered:     http.StatusBadRequest,
	KindOTPPhoneExists:      http.StatusBadRequest,
	KindOTPInvalid:          http.StatusBadRequest,
	KindOTPAlreadyValidated: http.StatusBadRequest,
	KindOTPExpired:          http.StatusBadRequest,
	KindOTPNotValidated:     http.StatusBadRequest,
	KindOTPResendTooSoon:    http.StatusTooManyRequests,
	KindInvalidCredentials:  http.StatusUnauthorized,
	KindIncorrectPassword:   http.StatusBadRequest,
	KindPasswordMismatch:    http.StatusBadRequest,
	KindCustomerInactive:    http.StatusForbidden,
	KindUnauthorized:        http.StatusUnauthorized,
	KindInvalidToken:        http.StatusUnauthorized,
	KindTokenExpired:        http.StatusUnauthorized,
	KindForbidden:           http.StatusForbidden,
	KindCityInvalid:         http.StatusBadRequest,
	KindUpstream:            http.StatusBadRequest,
	KindUpstreamUnavailable: http.StatusBadGateway,
	KindAlreadyVerified:     http.StatusBadRequest,
	KindServiceUnavailable:  http.StatusServiceUnavailable,
	KindEmailInvalid:        http.StatusBadRequest,
	KindEmailNotSet:         http.StatusBadRequest,
	KindDateRangeInvalid:    http.StatusBadRequest,
	KindInvalidParameter:    http.StatusBadRequest,
}

// Message returns the fixed message for k.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return messages[KindInternal]
}

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	if status, ok := statuses[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainError is the error type returned by services. Property and Value
// describe the offending input field when there is one.
type DomainError struct {
	Kind     Kind
	Message  string
	Property string
	Value    any
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is(err, ErrOTPInvalid) works for copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of kind k with its table message.
func New(k Kind) *DomainError {
	return &DomainError{Kind: k, Message: k.Message()}
}

// Wrap attaches err as the cause of a new error of kind k.
func Wrap(k Kind, err error) *DomainError {
	return &DomainError{Kind: k, Message: k.Message(), Err: err}
}

// WrapError keeps domainErr's kind and message and records err as cause.
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Kind:     domainErr.Kind,
		Message:  domainErr.Message,
		Property: domainErr.Property,
		Value:    domainErr.Value,
		Err:      err,
	}
}

// WithField returns a copy bound to an input property.
func (e *DomainError) WithField(property string, value any) *DomainError {
	cp := *e
	cp.Property = property
	cp.Value = value
	return &cp
}

// Sentinels for errors.Is checks and direct returns.
var (
	ErrInternal            = New(KindInternal)
	ErrValidation          = New(KindValidation)
	ErrCustomerNotFound    = New(KindCustomerNotFound)
	ErrAddressNotFound     = New(KindAddressNotFound)
	ErrOTPNotFound         = New(KindOTPNotFound)
	ErrSettingNotFound     = New(KindSettingNotFound)
	ErrPhoneRegistered     = New(KindPhoneRegistered)
	ErrEmailRegistered     = New(KindEmailRegistered)
	ErrOTPPhoneExists      = New(KindOTPPhoneExists)
	ErrOTPInvalid          = New(KindOTPInvalid)
	ErrOTPAlreadyValidated = New(KindOTPAlreadyValidated)
	ErrOTPExpired          = New(KindOTPExpired)
	ErrOTPNotValidated     = New(KindOTPNotValidated)
	ErrOTPResendTooSoon    = New(KindOTPResendTooSoon)
	ErrInvalidCredentials  = New(KindInvalidCredentials)
	ErrIncorrectPassword   = New(KindIncorrectPassword)
	ErrPasswordMismatch    = New(KindPasswordMismatch)
	ErrCustomerInactive    = New(KindCustomerInactive)
	ErrUnauthorized        = New(KindUnauthorized)
	ErrInvalidToken        = New(KindInvalidToken)
	ErrTokenExpired        = New(KindTokenExpired)
	ErrForbidden           = New(KindForbidden)
	ErrCityInvalid         = New(KindCityInvalid)
	ErrUpstream            = New(KindUpstream)
	ErrUpstreamUnavailable = New(KindUpstreamUnavailable)
	ErrAlreadyVerified     = New(KindAlreadyVerified)
	ErrServiceUnavailable  = New(KindServiceUnavailable)
	ErrEmailInvalid        = New(KindEmailInvalid)
	ErrEmailNotSet         = New(KindEmailNotSet)
	ErrDateRangeInvalid    = New(KindDateRangeInvalid)
	ErrInvalidParameter    = New(KindInvalidParameter)
)

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsKind reports whether err is a DomainError of kind k.
func IsKind(err error, k Kind) bool {
	d := GetDomainError(err)
	return d != nil && d.Kind == k
}

// ToHTTPStatus maps errors to HTTP status codes. Only handlers should use it.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if d := GetDomainError(err); d != nil {
		return d.Kind.Status()
	}
	return http.StatusInternalServerError
}

// GetErrorMessage returns the client-facing message. Non-domain errors never
// leak their text.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if d := GetDomainError(err); d != nil {
		return d.Message
	}
	return KindInternal.Message()
}

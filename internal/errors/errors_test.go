package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryKindHasMessageAndStatus(t *testing.T) {
	for k := KindInternal; k <= KindInvalidParameter; k++ {
		_, hasMsg := messages[k]
		_, hasStatus := statuses[k]
		assert.Truef(t, hasMsg, "kind %d has no message", k)
		assert.Truef(t, hasStatus, "kind %d has no status", k)
	}
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"otp exists", ErrOTPPhoneExists, http.StatusBadRequest},
		{"invalid otp", ErrOTPInvalid, http.StatusBadRequest},
		{"already validated", ErrOTPAlreadyValidated, http.StatusBadRequest},
		{"duplicate phone", ErrPhoneRegistered, http.StatusBadRequest},
		{"missing customer", ErrCustomerNotFound, http.StatusNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"upstream", Wrap(KindUpstream, stderrors.New("502")), http.StatusBadRequest},
		{"plain", stderrors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestGetErrorMessage_HidesInternalText(t *testing.T) {
	assert.Equal(t, "internal server error", GetErrorMessage(stderrors.New("pq: connection refused")))
	assert.Equal(t, "invalid OTP", GetErrorMessage(ErrOTPInvalid))
	assert.Equal(t, "phone already exists", GetErrorMessage(ErrOTPPhoneExists))
}

func TestIsMatchesByKind(t *testing.T) {
	err := WrapError(ErrOTPExpired, stderrors.New("expired at 10:00"))
	assert.True(t, stderrors.Is(err, ErrOTPExpired))
	assert.False(t, stderrors.Is(err, ErrOTPInvalid))

	field := ErrEmailRegistered.WithField("email", "a@b.co")
	assert.True(t, IsKind(field, KindEmailRegistered))
	assert.Equal(t, "email", field.Property)
	assert.Empty(t, ErrEmailRegistered.Property, "WithField must not mutate the sentinel")
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/cache"
	rediscli "github.com/Payphone-Digital/customer-service/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otpHarness struct {
	*fixture
	svc   *OTPService
	redis *miniredis.Miniredis
	codes []string
}

func newOTPHarness(t *testing.T) *otpHarness {
	t.Helper()
	f := newFixture(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &otpHarness{fixture: f, redis: mr, codes: []string{"1234", "5678", "9012"}}
	gen := func(length int) (string, error) {
		code := h.codes[0]
		h.codes = h.codes[1:]
		return code, nil
	}
	h.svc = NewOTPService(f.otps, f.customers, cache.NewRedis(rediscli.NewFromRedis(rdb)), f.notify, f.clock, gen)
	return h
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := RandomCode(4)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{4}$`, code)
	}
}

func TestOTPService_Create(t *testing.T) {
	h := newOTPHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: "081211112222", ReferralCode: "AJAK"})
	require.NoError(t, err)
	assert.False(t, resp.Validated)
	assert.Equal(t, h.clock.Now().Add(5*time.Minute), resp.ExpiresAt)

	require.Len(t, h.notify.sms, 1)
	assert.Equal(t, "081211112222", h.notify.sms[0].Phone)
	assert.Contains(t, h.notify.sms[0].Message, "1234")
	assert.Contains(t, h.notify.sms[0].Message, "CUSTOMER SERVICE")

	_, err = h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: "081211112222"})
	requireKind(t, err, apperrors.KindOTPPhoneExists)
	assert.Equal(t, "phone already exists", apperrors.GetErrorMessage(err))

	// An expired row is replaced.
	h.clock.Advance(6 * time.Minute)
	_, err = h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: "081211112222"})
	require.NoError(t, err)
	latest, err := h.otps.GetLatestByPhone(ctx, "081211112222")
	require.NoError(t, err)
	assert.Equal(t, "5678", latest.Code)
}

func TestOTPService_CreateForRegisteredPhone(t *testing.T) {
	h := newOTPHarness(t)
	h.seedCustomer(t, "081233334444", "")

	_, err := h.svc.Create(context.Background(), &dto.CreateOTPRequest{Phone: "081233334444"})
	requireKind(t, err, apperrors.KindPhoneRegistered)
	assert.Empty(t, h.notify.sms)
}

func TestOTPService_CreateDropsUndeliveredCode(t *testing.T) {
	h := newOTPHarness(t)
	h.notify.err = errTransport

	_, err := h.svc.Create(context.Background(), &dto.CreateOTPRequest{Phone: "081255556666"})
	requireKind(t, err, apperrors.KindServiceUnavailable)

	_, err = h.otps.GetLatestByPhone(context.Background(), "081255556666")
	assert.Error(t, err)
}

func TestOTPService_Validate(t *testing.T) {
	h := newOTPHarness(t)
	ctx := context.Background()
	phone := "081277778888"

	_, err := h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "1234"})
	requireKind(t, err, apperrors.KindOTPNotFound)
	assert.Equal(t, 404, apperrors.ToHTTPStatus(err))

	_, err = h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: phone})
	require.NoError(t, err)

	_, err = h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "0000"})
	requireKind(t, err, apperrors.KindOTPInvalid)
	assert.Equal(t, "invalid OTP", apperrors.GetErrorMessage(err))
	row, err := h.otps.GetLatestByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempts)

	resp, err := h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "1234"})
	require.NoError(t, err)
	assert.True(t, resp.Validated)

	_, err = h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "1234"})
	requireKind(t, err, apperrors.KindOTPAlreadyValidated)
}

func TestOTPService_ValidateExpired(t *testing.T) {
	h := newOTPHarness(t)
	ctx := context.Background()
	_, err := h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: "081290901010"})
	require.NoError(t, err)

	h.clock.Advance(5 * time.Minute)
	_, err = h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: "081290901010", Code: "1234"})
	requireKind(t, err, apperrors.KindOTPExpired)
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))
}

func TestOTPService_ResendIsThrottled(t *testing.T) {
	h := newOTPHarness(t)
	ctx := context.Background()
	phone := "081211113333"

	_, err := h.svc.Resend(ctx, &dto.ResendOTPRequest{Phone: phone})
	requireKind(t, err, apperrors.KindOTPNotFound)

	_, err = h.svc.Create(ctx, &dto.CreateOTPRequest{Phone: phone})
	require.NoError(t, err)

	_, err = h.svc.Resend(ctx, &dto.ResendOTPRequest{Phone: phone})
	requireKind(t, err, apperrors.KindOTPResendTooSoon)

	h.redis.FastForward(61 * time.Second)
	h.clock.Advance(61 * time.Second)
	resp, err := h.svc.Resend(ctx, &dto.ResendOTPRequest{Phone: phone})
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(5*time.Minute), resp.ExpiresAt)

	require.Len(t, h.notify.sms, 2)
	assert.Contains(t, h.notify.sms[1].Message, "5678")

	_, err = h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "1234"})
	requireKind(t, err, apperrors.KindOTPInvalid)
	_, err = h.svc.Validate(ctx, &dto.ValidateOTPRequest{Phone: phone, Code: "5678"})
	require.NoError(t, err)

	_, err = h.svc.Resend(ctx, &dto.ResendOTPRequest{Phone: phone})
	requireKind(t, err, apperrors.KindOTPAlreadyValidated)
}

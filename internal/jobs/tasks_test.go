package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sms    []client.SMS
	emails []client.Email
	err    error
}

func (r *recordingSender) SendSMS(_ context.Context, msg client.SMS) error {
	r.sms = append(r.sms, msg)
	return r.err
}

func (r *recordingSender) SendEmail(_ context.Context, msg client.Email) error {
	r.emails = append(r.emails, msg)
	return r.err
}

func TestTaskHandlers_SendSMS(t *testing.T) {
	sender := &recordingSender{}
	h := NewTaskHandlers(sender)

	task, err := NewSendSMSTask(SendSMSPayload{Phone: "081234567890", Message: "Kode OTP: 1234"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendSMS, task.Type())

	require.NoError(t, h.HandleSendSMS(context.Background(), task))
	require.Len(t, sender.sms, 1)
	assert.Equal(t, "Kode OTP: 1234", sender.sms[0].Message)
}

func TestTaskHandlers_BadPayloadSkipsRetry(t *testing.T) {
	h := NewTaskHandlers(&recordingSender{})
	err := h.HandleSendEmail(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestTaskHandlers_SenderErrorIsRetried(t *testing.T) {
	sender := &recordingSender{err: errors.New("502")}
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.co", Subject: "Hi"})
	require.NoError(t, err)

	err = NewTaskHandlers(sender).HandleSendEmail(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestInlineDispatcher(t *testing.T) {
	sender := &recordingSender{}
	d := NewInlineDispatcher(sender)

	require.NoError(t, d.DispatchSMS(context.Background(), SendSMSPayload{Phone: "0812", Message: "x"}))
	require.NoError(t, d.DispatchEmail(context.Background(), SendEmailPayload{To: "a@b.co", HTML: true}))

	assert.Len(t, sender.sms, 1)
	require.Len(t, sender.emails, 1)
	assert.True(t, sender.emails[0].HTML)
}

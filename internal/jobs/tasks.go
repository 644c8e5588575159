package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	QueueNotification = "notification"

	TaskTypeSendSMS   = "notification:sms"
	TaskTypeSendEmail = "notification:email"
)

type SendSMSPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

func NewSendSMSTask(payload SendSMSPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendSMS, data), nil
}

func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Sender delivers notifications; *client.NotificationClient implements it.
type Sender interface {
	SendSMS(ctx context.Context, msg client.SMS) error
	SendEmail(ctx context.Context, msg client.Email) error
}

// TaskHandlers processes notification tasks.
type TaskHandlers struct {
	sender Sender
}

func NewTaskHandlers(sender Sender) *TaskHandlers {
	return &TaskHandlers{sender: sender}
}

func (h *TaskHandlers) HandleSendSMS(ctx context.Context, t *asynq.Task) error {
	var payload SendSMSPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode sms payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.sender.SendSMS(ctx, client.SMS{Phone: payload.Phone, Message: payload.Message}); err != nil {
		logger.ErrorWithContext(ctx, "SMS delivery failed").String("phone", payload.Phone).Err(err).Log()
		return err
	}
	logger.InfoWithContext(ctx, "SMS delivered").String("phone", payload.Phone).Log()
	return nil
}

func (h *TaskHandlers) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}

	err := h.sender.SendEmail(ctx, client.Email{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
		HTML:    payload.HTML,
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Email delivery failed").String("to", payload.To).Err(err).Log()
		return err
	}
	logger.InfoWithContext(ctx, "Email delivered").String("to", payload.To).Log()
	return nil
}

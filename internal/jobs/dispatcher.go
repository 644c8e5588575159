package jobs

import (
	"context"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/hibiken/asynq"
)

// Dispatcher hands notifications off for delivery.
type Dispatcher interface {
	DispatchSMS(ctx context.Context, payload SendSMSPayload) error
	DispatchEmail(ctx context.Context, payload SendEmailPayload) error
}

// QueueDispatcher enqueues notification tasks on asynq.
type QueueDispatcher struct {
	client *asynq.Client
	opts   []asynq.Option
}

func NewQueueDispatcher(redisOpts asynq.RedisClientOpt) *QueueDispatcher {
	return &QueueDispatcher{
		client: asynq.NewClient(redisOpts),
		opts: []asynq.Option{
			asynq.Queue(QueueNotification),
			asynq.MaxRetry(3),
			asynq.Timeout(30 * time.Second),
		},
	}
}

func (d *QueueDispatcher) DispatchSMS(ctx context.Context, payload SendSMSPayload) error {
	task, err := NewSendSMSTask(payload)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task, d.opts...)
	if err != nil {
		return err
	}
	logger.DebugWithContext(ctx, "SMS task enqueued").String("task_id", info.ID).Log()
	return nil
}

func (d *QueueDispatcher) DispatchEmail(ctx context.Context, payload SendEmailPayload) error {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task, d.opts...)
	if err != nil {
		return err
	}
	logger.DebugWithContext(ctx, "Email task enqueued").String("task_id", info.ID).Log()
	return nil
}

func (d *QueueDispatcher) Close() error {
	return d.client.Close()
}

// InlineDispatcher sends immediately when the queue is disabled.
type InlineDispatcher struct {
	sender Sender
}

func NewInlineDispatcher(sender Sender) *InlineDispatcher {
	return &InlineDispatcher{sender: sender}
}

func (d *InlineDispatcher) DispatchSMS(ctx context.Context, payload SendSMSPayload) error {
	return d.sender.SendSMS(ctx, client.SMS{Phone: payload.Phone, Message: payload.Message})
}

func (d *InlineDispatcher) DispatchEmail(ctx context.Context, payload SendEmailPayload) error {
	return d.sender.SendEmail(ctx, client.Email{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
		HTML:    payload.HTML,
	})
}

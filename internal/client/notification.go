package client

import (
	"context"
	"net/http"
)

type SMS struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

type NotificationClient struct {
	up *Upstream
}

func NewNotificationClient(up *Upstream) *NotificationClient {
	return &NotificationClient{up: up}
}

func (c *NotificationClient) SendSMS(ctx context.Context, msg SMS) error {
	return c.up.Do(ctx, http.MethodPost, "/sms", msg, nil, nil)
}

func (c *NotificationClient) SendEmail(ctx context.Context, msg Email) error {
	return c.up.Do(ctx, http.MethodPost, "/email", msg, nil, nil)
}

func (c *NotificationClient) Health(ctx context.Context) error {
	return c.up.Health(ctx)
}

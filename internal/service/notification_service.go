package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/config"
	"github.com/spec-kit/diario-de-bordo/internal/events"
)

// NotificationService fans ticket events out to the log, an optional Redis
// channel and an optional webhook.
type NotificationService struct {
	logger  *zap.Logger
	cfg     config.NotificationConfig
	redis   redis.Cmdable
	webhook *resty.Client
}

// NewNotificationService creates the service. redisClient may be nil.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig, redisClient redis.Cmdable) *NotificationService {
	n := &NotificationService{
		logger: logger,
		cfg:    cfg,
		redis:  redisClient,
	}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		n.webhook = resty.New().
			SetHeader("Content-Type", "application/json")
	}
	return n
}

// EventTypes lists the events this service delivers.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketValidated}
}

// Handle delivers a single event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventTicketCreated:
		return n.handleTicketCreated(ctx, event)
	case events.EventTicketUpdated:
		return n.handleTicketUpdated(ctx, event)
	case events.EventTicketValidated:
		return n.handleTicketValidated(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketUpdated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) handleTicketValidated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketValidated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) fanOut(ctx context.Context, event events.Event) error {
	if n.redis == nil && n.webhook == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.publishRedis(ctx, body); err != nil {
		return err
	}
	return n.postWebhook(ctx, event, body)
}

func (n *NotificationService) publishRedis(ctx context.Context, body []byte) error {
	channel := strings.TrimSpace(n.cfg.RedisChannel)
	if n.redis == nil || channel == "" {
		return nil
	}
	if err := n.redis.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (n *NotificationService) postWebhook(ctx context.Context, event events.Event, body []byte) error {
	if n.webhook == nil {
		return nil
	}
	resp, err := n.webhook.R().
		SetContext(ctx).
		SetBody(body).
		Post(n.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded %d for %s", resp.StatusCode(), event.Type)
	}
	n.logger.Debug("webhook delivered",
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}

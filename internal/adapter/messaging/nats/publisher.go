package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/config"
	"github.com/encoreinstant/avito-moderation/internal/entity"
)

const (
	AdApprovedSubject       = "moderation.ad.approved"
	AdRejectedSubject       = "moderation.ad.rejected"
	AdChangesRequestSubject = "moderation.ad.changes_requested"
)

type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// DecisionEvent is published after every successful moderation action so that
// downstream consumers (notifications, audit) learn about the decision.
type DecisionEvent struct {
	AdID      int64                   `json:"adId"`
	Action    entity.ModerationAction `json:"action"`
	Reason    string                  `json:"reason,omitempty"`
	Comment   string                  `json:"comment,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

func NewNATSPublisher(cfg *config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", zap.String("subject", sub.Subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))

	return &Publisher{nc: nc, logger: logger}, nil
}

func (p *Publisher) PublishDecision(ctx context.Context, adID int64, action entity.ModerationAction, reason, comment string) error {
	event := DecisionEvent{
		AdID:      adID,
		Action:    action,
		Reason:    reason,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	}
	subject := subjectFor(event.Action)
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal decision event",
			zap.Error(err),
			zap.Int64("ad_id", event.AdID),
			zap.String("subject", subject),
		)
		return fmt.Errorf("failed to marshal decision event for %s: %w", subject, err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message",
			zap.String("subject", subject),
			zap.Error(err),
			zap.Int64("ad_id", event.AdID),
		)
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Info("Published NATS message",
		zap.String("subject", subject),
		zap.Int64("ad_id", event.AdID),
	)
	return nil
}

func subjectFor(action entity.ModerationAction) string {
	switch action {
	case entity.ActionApproved:
		return AdApprovedSubject
	case entity.ActionRejected:
		return AdRejectedSubject
	case entity.ActionRequestChanges:
		return AdChangesRequestSubject
	}
	return "moderation.ad.unknown"
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}

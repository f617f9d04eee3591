package relay

import (
	"context"
	"errors"
	"time"

	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	"github.com/strawberrylab/masterbot/internal/infrastructure/metrics"
)

// Outcome is the pipeline's verdict on a single queue message. The messaging
// layer translates it into exactly one ack or nack on the broker.
type Outcome int

const (
	// Delivered: the notification reached the chat; ack.
	Delivered Outcome = iota
	// Discarded: the message can never be delivered (no recipient); ack and
	// drop, redelivery cannot help.
	Discarded
	// Deferred: a transient condition (unknown identity, transport failure);
	// nack with requeue so the broker re-delivers later.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Discarded:
		return "discarded"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// InboundMessage is the broker-agnostic view of one delivery.
type InboundMessage struct {
	RoutingKey string
	Body       []byte
}

// Sender delivers formatted text to a chat session. Failures must be
// distinguishable from success: they decide between ack and redelivery.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Pipeline turns queue messages into chat notifications: decode, resolve the
// recipient, format, send. Stateless; safe for any number of concurrent
// in-flight messages. Delivery is at-least-once end to end: a crash between
// send and ack re-delivers, and no deduplication is attempted.
type Pipeline struct {
	identities  domain.IdentityStore
	sender      Sender
	logger      logging.Logger
	sendTimeout time.Duration
}

func NewPipeline(identities domain.IdentityStore, sender Sender, logger logging.Logger, sendTimeout time.Duration) *Pipeline {
	return &Pipeline{
		identities:  identities,
		sender:      sender,
		logger:      logger,
		sendTimeout: sendTimeout,
	}
}

func (p *Pipeline) Handle(ctx context.Context, msg InboundMessage) Outcome {
	event := Decode(msg.RoutingKey, msg.Body)

	masterID, ok := event.Recipient()
	if !ok {
		p.logger.Warn(logging.RabbitMQ, logging.Delivery, "message has no deliverable recipient, discarding",
			map[logging.ExtraKey]any{logging.RoutingKey: msg.RoutingKey})
		return Discarded
	}

	chatID, err := p.identities.Resolve(ctx, masterID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			// The master may be mid-login; the mapping can appear shortly.
			// Redelivery is bounded by the queue's dead-letter policy, not here.
			p.logger.Warn(logging.RabbitMQ, logging.Delivery, "no chat session for master yet, requeueing",
				map[logging.ExtraKey]any{
					logging.RoutingKey: msg.RoutingKey,
					logging.MasterID:   masterID,
				})
		} else {
			p.logger.Error(logging.Database, logging.Delivery, "identity lookup failed",
				map[logging.ExtraKey]any{
					logging.MasterID:     masterID,
					logging.ErrorMessage: err.Error(),
				})
		}
		return Deferred
	}

	text := Format(event)

	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	if err := p.sender.Send(sendCtx, chatID, text); err != nil {
		metrics.SendFailures.Inc()
		p.logger.Error(logging.Telegram, logging.Send, "failed to send notification, requeueing",
			map[logging.ExtraKey]any{
				logging.ChatID:       chatID,
				logging.MasterID:     masterID,
				logging.ErrorMessage: err.Error(),
			})
		return Deferred
	}

	p.logger.Info(logging.RabbitMQ, logging.Delivery, "notification delivered",
		map[logging.ExtraKey]any{
			logging.RoutingKey: msg.RoutingKey,
			logging.MasterID:   masterID,
			logging.ChatID:     chatID,
		})
	return Delivered
}

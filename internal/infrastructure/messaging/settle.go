package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	"github.com/strawberrylab/masterbot/internal/relay"
)

// settle terminates a delivery with exactly one ack or nack. Delivered and
// Discarded both consume the message; Deferred requeues it for the broker to
// redeliver under its own retry policy.
func settle(d *amqp.Delivery, outcome relay.Outcome, logger logging.Logger) {
	var err error
	switch outcome {
	case relay.Delivered, relay.Discarded:
		err = d.Ack(false)
	default:
		err = d.Nack(false, true)
	}

	if err != nil {
		// The channel dropped before the settlement reached the broker; the
		// message will be redelivered after reconnect.
		logger.Warn(logging.RabbitMQ, logging.Delivery, "failed to settle delivery",
			map[logging.ExtraKey]any{
				logging.RoutingKey:   d.RoutingKey,
				logging.Outcome:      outcome.String(),
				logging.ErrorMessage: err.Error(),
			})
	}
}

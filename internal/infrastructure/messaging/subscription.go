package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/strawberrylab/masterbot/internal/infrastructure/configs"
)

const (
	DeadLetterExchange = "dlx"
	DeadLetterQueue    = "dead_letter_queue"

	// DeliveryLimit caps how often the broker redelivers a requeued message.
	// Requeueing on a classic queue carries no delivery count, so the
	// notification queues are quorum queues: past the limit the broker
	// dead-letters to DeadLetterExchange instead of looping forever.
	DeliveryLimit = 5
)

// Subscription binds one durable queue to a topic exchange under a set of
// routing-key patterns. Established once at startup and redeclared verbatim
// on every reconnect; immutable for the process lifetime.
type Subscription struct {
	Exchange    string
	Queue       string
	RoutingKeys []string
}

func SubscriptionsFromConfig(cfgs []configs.SubscriptionConfig) []Subscription {
	subs := make([]Subscription, 0, len(cfgs))
	for _, c := range cfgs {
		subs = append(subs, Subscription{
			Exchange:    c.Exchange,
			Queue:       c.Queue,
			RoutingKeys: c.RoutingKeys,
		})
	}
	return subs
}

// wireChannel is the slice of *amqp091.Channel the topology code needs;
// narrowed so tests can record declarations without a broker.
type wireChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declareTopology brings up one subscription on its channel. Every operation
// is idempotent against an existing identical declaration, so reconnecting
// rebuilds the same topology without duplicate queues. Declaring against an
// existing exchange with different parameters fails, and that failure is
// ErrTopology: a configuration conflict, not a transient fault.
func declareTopology(ch wireChannel, sub Subscription, prefetch int) error {
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch on %q: %w", sub.Queue, err)
	}

	if err := ch.ExchangeDeclare(sub.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: exchange %q: %v", ErrTopology, sub.Exchange, err)
	}

	// Messages that exhaust the delivery limit land on the DLX instead of
	// looping forever.
	if err := ch.ExchangeDeclare(DeadLetterExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: exchange %q: %v", ErrTopology, DeadLetterExchange, err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: queue %q: %v", ErrTopology, DeadLetterQueue, err)
	}
	if err := ch.QueueBind(DeadLetterQueue, "#", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("%w: bind %q: %v", ErrTopology, DeadLetterQueue, err)
	}

	args := amqp.Table{
		"x-queue-type":           "quorum",
		"x-delivery-limit":       int32(DeliveryLimit),
		"x-dead-letter-exchange": DeadLetterExchange,
	}
	if _, err := ch.QueueDeclare(sub.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("%w: queue %q: %v", ErrTopology, sub.Queue, err)
	}

	for _, key := range sub.RoutingKeys {
		if err := ch.QueueBind(sub.Queue, key, sub.Exchange, false, nil); err != nil {
			return fmt.Errorf("%w: bind %q to %q via %q: %v", ErrTopology, sub.Queue, sub.Exchange, key, err)
		}
	}

	return nil
}

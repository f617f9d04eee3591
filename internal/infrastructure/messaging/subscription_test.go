package messaging

import (
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

// fakeChannel records topology operations the way a broker would see them.
// Redeclaring an exchange with a different kind fails, matching RabbitMQ's
// behavior on conflicting parameters.
type fakeChannel struct {
	prefetch  int
	exchanges map[string]string // name -> kind
	queues    map[string]amqp.Table
	bindings  []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges: map[string]string{},
		queues:    map[string]amqp.Table{},
	}
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	c.prefetch = prefetchCount
	return nil
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if existing, ok := c.exchanges[name]; ok && existing != kind {
		return fmt.Errorf("PRECONDITION_FAILED - inequivalent arg 'type' for exchange '%s'", name)
	}
	c.exchanges[name] = kind
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	binding := exchange + "/" + key + "->" + name
	for _, b := range c.bindings {
		if b == binding {
			return nil // bindings are idempotent
		}
	}
	c.bindings = append(c.bindings, binding)
	return nil
}

func TestDeclareTopology(t *testing.T) {
	ch := newFakeChannel()
	sub := Subscription{
		Exchange:    "appointments",
		Queue:       "appointment_notifications",
		RoutingKeys: []string{"appointments.*"},
	}

	require.NoError(t, declareTopology(ch, sub, 10))

	require.Equal(t, 10, ch.prefetch)
	require.Equal(t, "topic", ch.exchanges["appointments"])
	require.Equal(t, "topic", ch.exchanges[DeadLetterExchange])

	args, ok := ch.queues["appointment_notifications"]
	require.True(t, ok)
	require.Equal(t, DeadLetterExchange, args["x-dead-letter-exchange"])

	// Requeued (nacked) deliveries must count toward a limit so the DLX is
	// reachable for them; a plain classic queue never dead-letters a requeue.
	require.Equal(t, "quorum", args["x-queue-type"])
	require.EqualValues(t, DeliveryLimit, args["x-delivery-limit"])

	require.Contains(t, ch.bindings, "appointments/appointments.*->appointment_notifications")
	require.Contains(t, ch.bindings, DeadLetterExchange+"/#->"+DeadLetterQueue)
}

// After a reconnect the same topology is declared again on a fresh channel of
// the same broker; nothing may error on "already exists" and nothing may be
// duplicated.
func TestDeclareTopologyIdempotentOnReconnect(t *testing.T) {
	ch := newFakeChannel()
	sub := Subscription{
		Exchange:    "reviews",
		Queue:       "review_notifications",
		RoutingKeys: []string{"reviews.created"},
	}

	require.NoError(t, declareTopology(ch, sub, 10))

	exchanges := len(ch.exchanges)
	queues := len(ch.queues)
	bindings := len(ch.bindings)

	require.NoError(t, declareTopology(ch, sub, 10))

	require.Equal(t, exchanges, len(ch.exchanges))
	require.Equal(t, queues, len(ch.queues))
	require.Equal(t, bindings, len(ch.bindings))
}

// Conflicting parameters against an existing exchange are a configuration
// error, fatal at startup.
func TestDeclareTopologyConflict(t *testing.T) {
	ch := newFakeChannel()
	ch.exchanges["appointments"] = "fanout" // someone else declared it differently

	err := declareTopology(ch, Subscription{
		Exchange:    "appointments",
		Queue:       "appointment_notifications",
		RoutingKeys: []string{"appointments.*"},
	}, 10)

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTopology))
}

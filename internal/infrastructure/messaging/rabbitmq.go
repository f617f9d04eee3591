package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	"github.com/strawberrylab/masterbot/internal/infrastructure/metrics"
	"github.com/strawberrylab/masterbot/internal/relay"
)

const (
	heartbeat     = 10 * time.Second
	shutdownGrace = 15 * time.Second

	reconnectInitialDelay = time.Second
	reconnectMaxDelay     = 30 * time.Second
)

// ErrTopology marks a declare/bind failure. At startup it is a configuration
// error (conflicting parameters against an existing exchange, for example) and
// must abort the process rather than be retried.
var ErrTopology = errors.New("broker topology declaration failed")

// Handler processes one inbound message; implemented by the delivery pipeline.
type Handler interface {
	Handle(ctx context.Context, msg relay.InboundMessage) relay.Outcome
}

// RabbitMQ owns the single broker connection shared by all subscriptions and
// supervises its lifecycle: connect, declare topology, consume, and reconnect
// with capped exponential backoff when the connection drops. Acknowledgment
// state is not tracked across reconnects: deliveries whose ack was lost with
// the channel are redelivered by the broker, which is the source of truth for
// delivery state.
type RabbitMQ struct {
	uri      string
	prefetch int
	subs     []Subscription
	handler  Handler
	logger   logging.Logger

	// runSession and the reconnect pacing are fields so tests can drive the
	// supervisor loop without a broker.
	runSession   func(ctx context.Context) (connected bool, err error)
	initialDelay time.Duration
	maxDelay     time.Duration
}

func NewRabbitMQ(uri string, prefetch int, subs []Subscription, handler Handler, logger logging.Logger) *RabbitMQ {
	r := &RabbitMQ{
		uri:          uri,
		prefetch:     prefetch,
		subs:         subs,
		handler:      handler,
		logger:       logger,
		initialDelay: reconnectInitialDelay,
		maxDelay:     reconnectMaxDelay,
	}
	r.runSession = r.session
	return r
}

// Run blocks until ctx is done. A topology conflict before the first
// successful session is a configuration error and is returned to the caller;
// everything else, including a broker that is down at boot, is retried
// indefinitely with capped backoff.
func (r *RabbitMQ) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialDelay
	bo.MaxInterval = r.maxDelay

	everConnected := false
	for {
		connected, err := r.runSession(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			everConnected = true
			bo.Reset()
		}
		if !everConnected && errors.Is(err, ErrTopology) {
			return err
		}

		metrics.Reconnects.Inc()

		delay := bo.NextBackOff()
		r.logger.Warn(logging.RabbitMQ, logging.Reconnect, "broker connection lost, reconnecting",
			map[logging.ExtraKey]any{
				logging.Delay:        delay.String(),
				logging.ErrorMessage: errString(err),
			})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// session runs one connection from dial to close. connected reports whether
// the full topology came up and consuming started, so the caller can tell a
// startup failure from a mid-flight drop.
func (r *RabbitMQ) session(ctx context.Context) (connected bool, err error) {
	conn, err := amqp.DialConfig(r.uri, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
	})
	if err != nil {
		return false, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// In-flight deliveries keep their own lifetime during shutdown: new ones
	// stop, started ones settle within the grace period.
	handleCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	faults := make(chan error, len(r.subs))

	for _, sub := range r.subs {
		ch, err := conn.Channel()
		if err != nil {
			return false, fmt.Errorf("failed to open channel for %q: %w", sub.Queue, err)
		}

		if err := declareTopology(ch, sub, r.prefetch); err != nil {
			return false, err
		}

		deliveries, err := ch.Consume(sub.Queue, "", false, false, false, false, nil)
		if err != nil {
			return false, fmt.Errorf("failed to consume from %q: %w", sub.Queue, err)
		}

		r.logger.Info(logging.RabbitMQ, logging.Topology, "subscription bound",
			map[logging.ExtraKey]any{
				logging.Exchange: sub.Exchange,
				logging.Queue:    sub.Queue,
			})

		wg.Add(1)
		go func(sub Subscription) {
			defer wg.Done()
			r.consume(consumeCtx, handleCtx, sub, deliveries)
			// A closed delivery channel while the session is still alive means
			// the broker shut this channel down; restart the whole session.
			if consumeCtx.Err() == nil {
				faults <- fmt.Errorf("channel for %q closed", sub.Queue)
			}
		}(sub)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case amqpErr := <-closed:
		cancel()
		wg.Wait()
		if amqpErr != nil {
			return true, amqpErr
		}
		return true, errors.New("broker closed the connection")

	case fault := <-faults:
		cancel()
		wg.Wait()
		return true, fault

	case <-ctx.Done():
		cancel()
		waitWithGrace(&wg, shutdownGrace)
		r.logger.Info(logging.RabbitMQ, logging.Shutdown, "broker consumer stopped", nil)
		return true, nil
	}
}

// consume drains one subscription's deliveries. Each message is handled on its
// own goroutine; the channel's prefetch limit caps how many are in flight.
func (r *RabbitMQ) consume(ctx, handleCtx context.Context, sub Subscription, deliveries <-chan amqp.Delivery) {
	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			inflight.Add(1)
			go func(d amqp.Delivery) {
				defer inflight.Done()

				outcome := r.handler.Handle(handleCtx, relay.InboundMessage{
					RoutingKey: d.RoutingKey,
					Body:       d.Body,
				})
				settle(&d, outcome, r.logger)
				metrics.MessagesTotal.WithLabelValues(outcome.String()).Inc()
			}(d)
		}
	}
}

func waitWithGrace(wg *sync.WaitGroup, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		// Unsettled deliveries become broker-tracked redeliveries.
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

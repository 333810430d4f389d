// Package events is the transactional outbox for domain events, built on
// Watermill's PostgreSQL transport.
//
// Writers publish inside their database transaction (PublishInTx), so an
// event exists if and only if the write committed. With Options.Forwarder the
// message lands in an internal queue first and a forwarder daemon relays it
// to the real topic; the API process runs the forwarder, the worker consumes.
//
// Subscribers in the same ConsumerGroup share the load: each message is
// handled by one of them. Handlers must be idempotent because delivery is
// at least once.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/inventory/pkg/logger"
)

const (
	forwarderTopic         = "_inventory_outbox"
	forwarderConsumerGroup = "inventory-outbox-forwarder"
	shutdownTimeout        = 30 * time.Second
	errBufferSize          = 100
)

// ErrForwarderNotRunning is reported by Ping when a forwarder bus has not
// been started.
var ErrForwarderNotRunning = errors.New("events: forwarder not running")

// Options configures an EventBus.
type Options struct {
	// ConsumerGroup shares subscriptions between instances. Required.
	ConsumerGroup string
	// Forwarder routes publishes through the outbox queue. Call
	// StartForwarder after construction.
	Forwarder bool
	// Retry is applied to every handler; zero value means DefaultRetry.
	Retry RetryPolicy
}

// Handler processes one message. Returning an error triggers a retry.
type Handler func(context.Context, *message.Message) error

// EventBus publishes and consumes domain events through PostgreSQL. It shares
// the application's *sql.DB and never closes it.
type EventBus struct {
	db         *sql.DB
	opts       Options
	log        logger.Logger
	wlog       *slogAdapter
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber

	mu  sync.Mutex
	fwd *forwarder.Forwarder
	wg  sync.WaitGroup
}

// NewEventBus creates the Watermill tables if needed and returns a bus bound to db.
func NewEventBus(db *sql.DB, opts Options, log logger.Logger) (*EventBus, error) {
	if opts.ConsumerGroup == "" {
		return nil, errors.New("events: consumer group is required")
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = DefaultRetry
	}

	wlog := &slogAdapter{log: log}
	pub, err := newPublisher(db, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	sub, err := newSubscriber(db, opts.ConsumerGroup, wlog)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		db:         db,
		opts:       opts,
		log:        log,
		wlog:       wlog,
		publisher:  wrapForwarder(pub, opts.Forwarder),
		subscriber: sub,
	}, nil
}

func publisherConfig(initSchema bool) watermillsql.PublisherConfig {
	return watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: initSchema,
	}
}

func newPublisher(db *sql.DB, wlog *slogAdapter) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(db, publisherConfig(true), wlog)
}

func newSubscriber(db *sql.DB, group string, wlog *slogAdapter) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
}

func wrapForwarder(pub message.Publisher, enabled bool) message.Publisher {
	if !enabled {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the daemon that relays queued messages to their topics
// and returns once it is running. It stops when ctx is cancelled or the bus
// is closed.
func (b *EventBus) StartForwarder(ctx context.Context) error {
	if !b.opts.Forwarder {
		return errors.New("events: StartForwarder called on a bus without forwarder")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	queue, err := newSubscriber(b.db, forwarderConsumerGroup, b.wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	target, err := newPublisher(b.db, b.wlog)
	if err != nil {
		_ = queue.Close()
		return fmt.Errorf("events: new forwarder publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(queue, target, b.wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = target.Close()
		_ = queue.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	b.fwd = fwd

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			b.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
			return
		}
		b.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		b.log.InfoContext(ctx, "events: forwarder running", "queue", forwarderTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// PublishInTx publishes msg to topic as part of tx. Subscribers only see the
// message once tx commits.
func (b *EventBus) PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msg *message.Message) error {
	// Tables exist once the bus is constructed.
	pub, err := watermillsql.NewPublisher(tx, publisherConfig(false), b.wlog)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	injectTrace(ctx, msg)
	if err := wrapForwarder(pub, b.opts.Forwarder).Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Publish sends messages outside any transaction.
func (b *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTrace(ctx, msgs...)
	if err := b.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic in the background. Each message is handed to
// handler with the publisher's trace restored; failures are retried per
// Options.Retry, then the message is nacked and the error is sent on the
// returned channel. Callers must drain the channel. It is closed when the
// subscription ends.
func (b *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBufferSize)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(errCh)

		for msg := range msgs {
			msgCtx := extractTrace(ctx, msg)
			if err := b.opts.Retry.run(msgCtx, msg, handler, b.log); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s (event %s): %w", topic, EventID(msg), err):
				default:
					b.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"topic", topic, "error", err)
				}
				continue
			}
			msg.Ack()
		}
	}()
	return errCh, nil
}

// Ping reports database reachability and, for forwarder buses, whether the
// forwarder is running.
func (b *EventBus) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	if !b.opts.Forwarder {
		return nil
	}
	b.mu.Lock()
	fwd := b.fwd
	b.mu.Unlock()
	if fwd == nil {
		return ErrForwarderNotRunning
	}
	select {
	case <-fwd.Running():
		return nil
	default:
		return ErrForwarderNotRunning
	}
}

// Close stops consuming, stops the forwarder, waits up to 30s for in-flight
// handlers and closes the publisher. The shared *sql.DB stays open.
func (b *EventBus) Close() error {
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}

	b.mu.Lock()
	fwd := b.fwd
	b.mu.Unlock()
	if fwd != nil {
		if err := fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		b.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

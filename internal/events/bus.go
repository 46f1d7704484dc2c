// Package events fans change events out to subscribers and filters the
// resulting streams per subscriber.
package events

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"

	"recordhub/pkg/domain"
)

var logger = loggo.GetLogger("recordhub.events")

// ErrBusClosed is returned when subscribing to a closed bus.
const ErrBusClosed = errors.ConstError("event bus closed")

// DefaultBuffer is the capacity of a subscription's events channel.
const DefaultBuffer = 16

// Option configures a Bus.
type Option func(*Bus)

// WithBuffer sets the capacity of each subscription's events channel. The
// hub keeps an unbounded queue per subscriber behind it, so a full channel
// only delays that subscriber.
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n >= 0 {
			b.buffer = n
		}
	}
}

// WithMetrics installs the collector the bus reports to.
func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		if m != nil {
			b.metrics = m
		}
	}
}

// Bus broadcasts change events by topic. Publish hands the event to a
// juju/pubsub SimpleHub, which queues it for every current subscriber and
// delivers from a goroutine per subscriber, so publishers never wait on
// consumers.
type Bus struct {
	hub     *pubsub.SimpleHub
	buffer  int
	metrics *Metrics

	mu     sync.Mutex
	closed bool
	subs   map[string]map[*Subscription]struct{}
}

// NewBus constructs an open bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("recordhub.events.hub"),
		}),
		buffer:  DefaultBuffer,
		metrics: NewMetrics(),
		subs:    make(map[string]map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers event to every subscriber of topic registered at call
// time. It returns without waiting for delivery. Publishing to a closed bus
// is a no-op.
func (b *Bus) Publish(topic string, event domain.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		logger.Debugf("dropping %s published after close", topic)
		return
	}
	// The hub only enqueues here. Holding mu keeps the queued counts in
	// step with the hub's subscriber set.
	for sub := range b.subs[topic] {
		sub.queued.Add(1)
	}
	b.metrics.published.WithLabelValues(topic).Inc()
	b.hub.Publish(topic, event)
}

// Subscribe registers a subscriber for topic. Events published after
// Subscribe returns are delivered in publish order.
func (b *Bus) Subscribe(topic string) (*Subscription, error) {
	if topic == "" {
		return nil, domain.InvalidArgumentf("empty topic")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.Trace(ErrBusClosed)
	}
	sub := &Subscription{
		topic:  topic,
		bus:    b,
		events: make(chan domain.ChangeEvent, b.buffer),
		done:   make(chan struct{}),
	}
	sub.unsubscribe = b.hub.Subscribe(topic, sub.deliver)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	b.metrics.active.WithLabelValues(topic).Inc()
	logger.Tracef("subscribed to %s", topic)
	return sub, nil
}

// SubscribeContext subscribes to topic and unsubscribes when ctx is done.
func (b *Bus) SubscribeContext(ctx context.Context, topic string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub, err := b.Subscribe(topic)
	if err != nil {
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Subscribers reports how many subscriptions are registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close unsubscribes everyone and rejects further subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription
	for _, subs := range b.subs {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range all {
		sub.Unsubscribe()
	}
}

// detach removes sub from the hub and the bus together, so no Publish can
// count an event for it that the hub will not queue.
func (b *Bus) detach(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub.unsubscribe()
	subs := b.subs[sub.topic]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.subs, sub.topic)
	}
	b.metrics.active.WithLabelValues(sub.topic).Dec()
}

func (b *Bus) dropped(topic string, n int) {
	if n <= 0 {
		return
	}
	b.metrics.dropped.WithLabelValues(topic).Add(float64(n))
	logger.Tracef("%d %s deliveries dropped: %v", n, topic, domain.ErrSubscriberGone)
}

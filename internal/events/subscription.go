package events

import (
	"sync"
	"sync/atomic"

	"recordhub/pkg/domain"
)

// Subscription is one subscriber's view of a topic.
type Subscription struct {
	topic       string
	bus         *Bus
	events      chan domain.ChangeEvent
	done        chan struct{}
	unsubscribe func()

	// queued counts events published to this subscriber that deliver has
	// not yet picked up.
	queued atomic.Int64

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	once     sync.Once
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Events yields delivered events in publish order. The channel is closed
// after Unsubscribe.
func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Done is closed once the subscription has been cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops delivery, discards undelivered events and closes the
// events channel. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.done)
		s.mu.Unlock()

		// The hub discards its pending queue on unsubscribe; whatever
		// deliver never picked up is counted as dropped here.
		s.bus.detach(s)
		s.inflight.Wait()
		discarded := int(max(s.queued.Swap(0), 0))
		close(s.events)
		for range s.events {
			discarded++
		}
		s.bus.dropped(s.topic, discarded)
	})
}

// deliver runs on the hub's goroutine for this subscriber, one event at a
// time, so blocking here only holds back this subscriber's queue.
func (s *Subscription) deliver(_ string, data interface{}) {
	event, ok := data.(domain.ChangeEvent)
	if !ok {
		logger.Warningf("unexpected %T published on %s", data, s.topic)
		return
	}
	pending := s.queued.Add(-1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// Negative means Unsubscribe already counted this event.
		if pending >= 0 {
			s.bus.dropped(s.topic, 1)
		}
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	select {
	case s.events <- event:
	case <-s.done:
		s.bus.dropped(s.topic, 1)
	}
}

package navigation

import "sync"

// Subscription delivers snapshots from one registry. The channel holds at
// most one pending value: a slow reader skips intermediate snapshots and
// always observes the latest one.
type Subscription struct {
	id   uint64
	ch   chan Snapshot
	reg  *Registry
	once sync.Once
}

// C returns the delivery channel. It is closed after Unsubscribe or when
// the registry is closed.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Unsubscribe stops delivery and closes the channel. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.closeLocked()
}

// offer replaces any undelivered snapshot with snap. Callers hold the
// registry lock, which makes the registry the only sender.
func (s *Subscription) offer(snap Snapshot) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		delete(s.reg.subs, s.id)
		close(s.ch)
		if s.reg.metrics != nil {
			s.reg.metrics.Subscribers.Dec()
		}
	})
}

package guard

import "sync/atomic"

// Ticket identifies one request in a stream.
type Ticket uint64

// Sequencer issues increasing tickets; only the newest is current.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a ticket that supersedes every earlier one.
func (s *Sequencer) Next() Ticket {
	return Ticket(s.latest.Add(1))
}

// Current reports whether t is still the newest ticket issued.
func (s *Sequencer) Current(t Ticket) bool {
	return uint64(t) == s.latest.Load()
}

// Invalidate makes every outstanding ticket stale.
func (s *Sequencer) Invalidate() {
	s.latest.Add(1)
}

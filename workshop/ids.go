package workshop

import (
	"sync"
	"time"
)

// IDSource mints identifiers for new records. The core never checks
// uniqueness; it trusts the source.
type IDSource interface {
	NextID() int64
}

// ClockIDs issues millisecond timestamps, bumped by one when two calls land
// in the same millisecond so the sequence is strictly increasing.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockIDs() *ClockIDs {
	return &ClockIDs{now: time.Now}
}

// Seed makes later IDs larger than floor. Used after loading a snapshot
// whose IDs may come from a clock that ran ahead.
func (c *ClockIDs) Seed(floor int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if floor > c.last {
		c.last = floor
	}
}

func (c *ClockIDs) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	id := now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

// Sequence is a counter-based IDSource starting after Next. Tests and the
// demo factory use it for readable IDs.
type Sequence struct {
	mu   sync.Mutex
	Next int64
}

// Seed makes later IDs larger than floor.
func (s *Sequence) Seed(floor int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if floor > s.Next {
		s.Next = floor
	}
}

func (s *Sequence) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Next++
	return s.Next
}

// MaxID returns the largest identifier in any collection.
func (s State) MaxID() int64 {
	var max int64
	bump := func(id int64) {
		if id > max {
			max = id
		}
	}
	for _, p := range s.Parts {
		bump(p.key())
	}
	for _, p := range s.Purchases {
		bump(p.key())
		for _, it := range p.Items {
			bump(it.ID)
		}
	}
	for _, o := range s.Orders {
		bump(o.key())
		for _, p := range o.Payments {
			bump(int64(p.ID))
		}
	}
	for _, o := range s.AssemblyOrders {
		bump(o.key())
	}
	for _, l := range s.ProductionLogs {
		bump(l.key())
	}
	for _, e := range s.Employees {
		bump(e.key())
	}
	for _, l := range s.WorkLogs {
		bump(l.key())
	}
	for _, p := range s.SalaryPayments {
		bump(p.key())
	}
	for _, e := range s.Expenses {
		bump(e.key())
	}
	for _, c := range s.Contacts {
		bump(c.key())
	}
	return max
}

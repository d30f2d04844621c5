// Package sched provides the simulation clock and deferred-callback queue
// that replace host timers in the combat core.
//
// Time is measured in seconds of simulated time since the scheduler was
// created. Nothing advances unless Advance is called, so pausing the caller
// freezes every pending callback.
package sched

import "container/heap"

// Handle identifies a scheduled callback so it can be cancelled.
// The zero Handle is never issued.
type Handle uint64

type entry struct {
	at        float64
	seq       uint64
	handle    Handle
	label     string
	fn        func()
	cancelled bool
}

type queue []*entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(*entry)) }
func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler owns the simulation clock and a time-ordered queue of callbacks.
// It is not safe for concurrent use; the match tick is its only caller.
//
// Invariant: Now() never decreases.
type Scheduler struct {
	now     float64
	seq     uint64
	q       queue
	byID    map[Handle]*entry
	onFired func(label string, at float64)
}

// New returns a Scheduler at time 0 with an empty queue.
func New() *Scheduler {
	return &Scheduler{byID: make(map[Handle]*entry)}
}

// OnFired registers an observer invoked after every callback runs. Used for
// debug logging; nil disables it.
func (s *Scheduler) OnFired(fn func(label string, at float64)) {
	s.onFired = fn
}

// Now returns the current simulation time in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// After schedules fn to run delay seconds from Now(). A negative delay is treated as 0.
//
// Precondition: fn must not be nil.
// Postcondition: fn runs exactly once during the first Advance that reaches Now()+delay,
// unless Cancel is called first.
func (s *Scheduler) After(delay float64, label string, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	return s.At(s.now+delay, label, fn)
}

// At schedules fn at absolute simulation time at. Times in the past fire on
// the next Advance.
//
// Precondition: fn must not be nil.
func (s *Scheduler) At(at float64, label string, fn func()) Handle {
	s.seq++
	e := &entry{at: at, seq: s.seq, handle: Handle(s.seq), label: label, fn: fn}
	heap.Push(&s.q, e)
	s.byID[e.handle] = e
	return e.handle
}

// Cancel prevents the callback identified by h from firing. Safe to call
// multiple times or with a handle that already fired.
//
// Postcondition: Reports whether a pending callback was cancelled.
func (s *Scheduler) Cancel(h Handle) bool {
	e, ok := s.byID[h]
	if !ok {
		return false
	}
	e.cancelled = true
	delete(s.byID, h)
	return true
}

// CancelAll drops every pending callback and reports how many were dropped.
//
// Postcondition: Pending() == 0; Now() is unchanged.
func (s *Scheduler) CancelAll() int {
	n := len(s.byID)
	s.q = s.q[:0]
	s.byID = make(map[Handle]*entry)
	return n
}

// Pending returns the number of callbacks that have not yet fired or been cancelled.
func (s *Scheduler) Pending() int { return len(s.byID) }

// Advance moves the clock forward by delta seconds and runs every callback due
// at or before the new time, in (time, scheduling order) order. While a
// callback runs Now() reports its scheduled time. Callbacks scheduled by other
// callbacks run in the same Advance if they fall due within it.
//
// Precondition: delta >= 0; negative values are treated as 0.
// Postcondition: Now() == previous Now() + delta; no pending callback is due.
func (s *Scheduler) Advance(delta float64) int {
	if delta < 0 {
		delta = 0
	}
	target := s.now + delta
	fired := 0
	for s.q.Len() > 0 && s.q[0].at <= target {
		e := heap.Pop(&s.q).(*entry)
		if e.cancelled {
			continue
		}
		delete(s.byID, e.handle)
		if e.at > s.now {
			s.now = e.at
		}
		e.fn()
		fired++
		if s.onFired != nil {
			s.onFired(e.label, e.at)
		}
	}
	s.now = target
	return fired
}

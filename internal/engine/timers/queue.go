// Package timers is the per-game timed-event queue. Deferred effects
// (attack windups, casts, death timers) are scheduled here and run
// synchronously at the top of a frame, after an owner liveness check.
package timers

import (
	"container/heap"

	"github.com/mlange-42/ark/ecs"
)

// Event is a scheduled callback
type Event struct {
	At    float64
	Seq   uint64
	Owner ecs.Entity
	Fn    func()
}

type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].At != h[j].At {
		return h[i].At < h[j].At
	}
	return h[i].Seq < h[j].Seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(*Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue orders events by time, then by schedule order
type Queue struct {
	events eventHeap
	seq    uint64
}

// New creates an empty queue
func New() *Queue {
	return &Queue{}
}

// Schedule runs fn at time at, provided owner is still alive then. The
// zero entity means the event has no owner and always runs.
func (q *Queue) Schedule(at float64, owner ecs.Entity, fn func()) {
	q.seq++
	heap.Push(&q.events, &Event{At: at, Seq: q.seq, Owner: owner, Fn: fn})
}

// RunDue runs every event with At <= now in order and returns how many
// ran. Events whose owner is no longer alive are dropped. Events
// scheduled by a running callback that are already due run in the same
// pass.
func (q *Queue) RunDue(now float64, alive func(ecs.Entity) bool) int {
	ran := 0
	var none ecs.Entity
	for len(q.events) > 0 && q.events[0].At <= now {
		ev := heap.Pop(&q.events).(*Event)
		if ev.Owner != none && alive != nil && !alive(ev.Owner) {
			continue
		}
		ev.Fn()
		ran++
	}
	return ran
}

// Len is the number of pending events
func (q *Queue) Len() int {
	return len(q.events)
}

// Clear drops every pending event
func (q *Queue) Clear() {
	q.events = nil
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package priority_queue is a thin generic facade over the standard
// container/heap idiom: a slice of (value, priority) pairs implementing
// heap.Interface, exposed as a min-queue. The dead nonce list uses it
// to find its next-to-expire entry in O(log n).
package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

type entry[V any, P constraints.Ordered] struct {
	value    V
	priority P
}

type entries[V any, P constraints.Ordered] []entry[V, P]

func (e entries[V, P]) Len() int           { return len(e) }
func (e entries[V, P]) Less(i, j int) bool { return e[i].priority < e[j].priority }
func (e entries[V, P]) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }

func (e *entries[V, P]) Push(x any) { *e = append(*e, x.(entry[V, P])) }

func (e *entries[V, P]) Pop() any {
	old := *e
	last := old[len(old)-1]
	*e = old[:len(old)-1]
	return last
}

// Queue is a minimum-priority queue: Pop returns the value that was
// pushed with the smallest priority. The zero value is ready to use.
type Queue[V any, P constraints.Ordered] struct {
	items entries[V, P]
}

// New creates an empty queue.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{}
}

// Len returns the number of queued values.
func (q *Queue[V, P]) Len() int { return len(q.items) }

// Push adds value to the queue with the given priority.
func (q *Queue[V, P]) Push(value V, priority P) {
	heap.Push(&q.items, entry[V, P]{value: value, priority: priority})
}

// PeekPriority returns the smallest priority in the queue. The queue
// must be non-empty.
func (q *Queue[V, P]) PeekPriority() P { return q.items[0].priority }

// Pop removes and returns the value with the smallest priority. The
// queue must be non-empty.
func (q *Queue[V, P]) Pop() V {
	return heap.Pop(&q.items).(entry[V, P]).value
}

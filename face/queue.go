/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO with a single consumer.
// Push never blocks; Pop blocks until an item is available, the queue is closed, or ctx ends.
type Queue[T any] struct {
	mutex  sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Push appends an item. Returns false if the queue is closed, in which case the item is dropped.
func (q *Queue[T]) Push(item T) bool {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mutex.Unlock()
	q.wake()
	return true
}

// Pop removes the oldest item. ok is false if ctx ended or the queue is closed and drained.
func (q *Queue[T]) Pop(ctx context.Context) (item T, ok bool) {
	for {
		q.mutex.Lock()
		if len(q.items) > 0 {
			item = q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mutex.Unlock()
			return item, true
		}
		closed := q.closed
		q.mutex.Unlock()
		if closed {
			return item, false
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return item, false
		}
	}
}

// Close rejects further pushes. Items already queued can still be popped.
func (q *Queue[T]) Close() {
	q.mutex.Lock()
	q.closed = true
	q.mutex.Unlock()
	q.wake()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// QueueItem is a handle to an element of a PriorityQueue.
type QueueItem[V any, P constraints.Ordered] struct {
	value    V
	priority P
	index    int
}

// Value returns the value of the item.
func (item *QueueItem[V, P]) Value() V {
	return item.value
}

type queueHeap[V any, P constraints.Ordered] []*QueueItem[V, P]

func (h queueHeap[V, P]) Len() int           { return len(h) }
func (h queueHeap[V, P]) Less(i, j int) bool { return h[i].priority < h[j].priority }

func (h queueHeap[V, P]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *queueHeap[V, P]) Push(x any) {
	item := x.(*QueueItem[V, P])
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *queueHeap[V, P]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// PriorityQueue is a min-priority queue whose elements can be updated or removed in place.
type PriorityQueue[V any, P constraints.Ordered] struct {
	h queueHeap[V, P]
}

// Len returns the number of elements.
func (pq *PriorityQueue[V, P]) Len() int {
	return len(pq.h)
}

// Push inserts a value and returns its handle.
func (pq *PriorityQueue[V, P]) Push(value V, priority P) *QueueItem[V, P] {
	item := &QueueItem[V, P]{value: value, priority: priority}
	heap.Push(&pq.h, item)
	return item
}

// PeekPriority returns the minimum priority. The queue must not be empty.
func (pq *PriorityQueue[V, P]) PeekPriority() P {
	return pq.h[0].priority
}

// Pop removes and returns the value with minimum priority. The queue must not be empty.
func (pq *PriorityQueue[V, P]) Pop() V {
	return heap.Pop(&pq.h).(*QueueItem[V, P]).value
}

// Update changes the priority of an item still in the queue.
func (pq *PriorityQueue[V, P]) Update(item *QueueItem[V, P], priority P) {
	if item.index < 0 {
		return
	}
	item.priority = priority
	heap.Fix(&pq.h, item.index)
}

// Remove deletes an item still in the queue.
func (pq *PriorityQueue[V, P]) Remove(item *QueueItem[V, P]) {
	if item.index < 0 {
		return
	}
	heap.Remove(&pq.h, item.index)
}

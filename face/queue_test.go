/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face_test

import (
	"context"
	"testing"
	"time"

	"github.com/named-data/ndnfw/face"
	"github.com/stretchr/testify/assert"
)

func TestQueueFifo(t *testing.T) {
	q := face.NewQueue[int]()
	for i := 0; i < 100; i++ {
		assert.True(t, q.Push(i))
	}
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 100; i++ {
		v, ok := q.Pop(context.Background())
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueuePopWaits(t *testing.T) {
	q := face.NewQueue[string]()
	result := make(chan string)
	go func() {
		v, _ := q.Pop(context.Background())
		result <- v
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push("x")
	select {
	case v := <-result:
		assert.Equal(t, "x", v)
	case <-time.After(time.Second):
		assert.Fail(t, "Pop did not wake up")
	}
}

func TestQueuePopCanceled(t *testing.T) {
	q := face.NewQueue[int]()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		_, ok := q.Pop(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		assert.Fail(t, "Pop ignored cancellation")
	}
}

func TestQueueClose(t *testing.T) {
	q := face.NewQueue[int]()
	q.Push(1)
	q.Close()
	assert.False(t, q.Push(2))

	v, ok := q.Pop(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = q.Pop(context.Background())
	assert.False(t, ok)
}

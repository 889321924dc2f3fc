/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadNonceList(t *testing.T) {
	dnl, err := table.NewDeadNonceList(16, time.Second)
	require.NoError(t, err)

	now := time.Now()
	name := ndn.MustParseName("/a/b")
	assert.False(t, dnl.Find(name, 1, now))
	assert.False(t, dnl.Insert(name, 1, now))
	assert.True(t, dnl.Find(name, 1, now))
	assert.True(t, dnl.Insert(name, 1, now))
	assert.False(t, dnl.Find(name, 2, now))
	assert.False(t, dnl.Find(ndn.MustParseName("/a/c"), 1, now))

	// Expired entries are forgotten.
	assert.False(t, dnl.Find(name, 1, now.Add(2*time.Second)))
	assert.False(t, dnl.Insert(name, 1, now.Add(2*time.Second)))
}

func TestDeadNonceListCapacity(t *testing.T) {
	dnl, err := table.NewDeadNonceList(4, time.Minute)
	require.NoError(t, err)

	now := time.Now()
	name := ndn.MustParseName("/a")
	for nonce := uint32(0); nonce < 10; nonce++ {
		dnl.Insert(name, nonce<<8, now)
	}
	assert.Equal(t, 4, dnl.Len())
	assert.True(t, dnl.Find(name, 9<<8, now))
	assert.False(t, dnl.Find(name, 0, now))

	_, err = table.NewDeadNonceList(0, time.Minute)
	assert.Error(t, err)
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"

	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"

	"github.com/stretchr/testify/assert"
)

func TestNexthops(t *testing.T) {
	fib := table.NewFib("multicast")

	name1 := ndn.MustParseName("/")
	assert.Equal(t, 0, len(fib.FindNextHops(name1)))

	name2 := ndn.MustParseName("/test")
	assert.Equal(t, 0, len(fib.FindNextHops(name2)))
	assert.True(t, fib.InsertNextHop(name2, 25))
	assert.True(t, fib.InsertNextHop(name2, 101))
	assert.False(t, fib.InsertNextHop(name2, 25))
	assert.Equal(t, []uint64{25, 101}, fib.FindNextHops(name2))
	assert.Equal(t, 1, fib.Size())

	name3 := ndn.MustParseName("/test/name/202=abc123")
	assert.Equal(t, []uint64{25, 101}, fib.FindNextHops(name3))
	prefix, nexthops := fib.LongestPrefixMatch(name3)
	assert.True(t, prefix.Equal(name2))
	assert.Equal(t, []uint64{25, 101}, nexthops)
	assert.Nil(t, fib.NextHops(name3))
	assert.Equal(t, 0, len(fib.FindNextHops(name1)))

	assert.True(t, fib.InsertNextHop(name3, 7))
	assert.Equal(t, []uint64{7}, fib.FindNextHops(name3))
	assert.Equal(t, []uint64{25, 101}, fib.FindNextHops(ndn.MustParseName("/test/name")))
	assert.Equal(t, 2, fib.Size())

	assert.True(t, fib.RemoveNextHop(name2, 25))
	assert.False(t, fib.RemoveNextHop(name2, 25))
	assert.Equal(t, []uint64{101}, fib.FindNextHops(name2))

	// Test pruning
	assert.True(t, fib.RemoveNextHop(name2, 101))
	assert.Equal(t, 0, len(fib.FindNextHops(name2)))
	assert.True(t, fib.RemoveNextHop(name3, 7))
	assert.Equal(t, 0, fib.Size())
	assert.Len(t, fib.Entries(), 0)
	assert.False(t, fib.RemoveNextHop(ndn.MustParseName("/absent"), 1))
}

func TestFibEntries(t *testing.T) {
	fib := table.NewFib("multicast")
	fib.InsertNextHop(ndn.MustParseName("/a"), 1)
	fib.InsertNextHop(ndn.MustParseName("/a/b"), 2)
	fib.InsertNextHop(ndn.MustParseName("/c"), 3)

	entries := fib.Entries()
	assert.Len(t, entries, 3)
	found := make(map[string][]uint64)
	for _, e := range entries {
		found[e.Name.String()] = e.NextHops
	}
	assert.Equal(t, []uint64{1}, found["/a"])
	assert.Equal(t, []uint64{2}, found["/a/b"])
	assert.Equal(t, []uint64{3}, found["/c"])
}

func TestStrategies(t *testing.T) {
	fib := table.NewFib("multicast")

	name1 := ndn.MustParseName("/")
	assert.Equal(t, "multicast", fib.FindStrategy(name1))

	name2 := ndn.MustParseName("/test")
	fib.SetStrategy(name2, "best-route")
	assert.Equal(t, "best-route", fib.FindStrategy(name2))
	assert.Equal(t, "best-route", fib.FindStrategy(ndn.MustParseName("/test/x/y")))
	assert.Equal(t, "multicast", fib.FindStrategy(ndn.MustParseName("/other")))

	// Strategy and nexthops on the same node survive removal of either.
	fib.InsertNextHop(name2, 1)
	fib.UnsetStrategy(name2)
	assert.Equal(t, "multicast", fib.FindStrategy(name2))
	assert.Equal(t, []uint64{1}, fib.FindNextHops(name2))

	fib.SetStrategy(name2, "best-route")
	fib.RemoveNextHop(name2, 1)
	assert.Equal(t, "best-route", fib.FindStrategy(name2))
	assert.Len(t, fib.StrategyChoices(), 2)

	fib.UnsetStrategy(name1)
	assert.Equal(t, "multicast", fib.FindStrategy(name1))
}

func TestFibDistinctComponentsSameLevel(t *testing.T) {
	fib := table.NewFib("multicast")
	a := ndn.MustParseName("/%00%20")
	b := ndn.MustParseName("/32=%00%08")

	assert.True(t, fib.InsertNextHop(a, 1))
	assert.True(t, fib.InsertNextHop(b, 2))
	assert.Equal(t, []uint64{1}, fib.FindNextHops(a))
	assert.Equal(t, []uint64{2}, fib.FindNextHops(b))
	assert.Len(t, fib.Entries(), 2)

	assert.True(t, fib.RemoveNextHop(b, 2))
	assert.Equal(t, []uint64{1}, fib.FindNextHops(a))
	assert.Len(t, fib.Entries(), 1)
}

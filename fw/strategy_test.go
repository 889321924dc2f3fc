/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"testing"
	"time"

	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"
	"github.com/stretchr/testify/assert"
)

func TestStrategyRegistry(t *testing.T) {
	assert.Contains(t, StrategyNames(), "multicast")
	assert.Contains(t, StrategyNames(), "best-route")
}

func TestMulticastChoosesAll(t *testing.T) {
	ctx := &StrategyContext{Interest: ndn.NewInterest(ndn.MustParseName("/a"))}
	assert.Equal(t, []uint64{3, 1, 2}, (&Multicast{}).AfterReceiveInterest(ctx, []uint64{3, 1, 2}))
	assert.Empty(t, (&Multicast{}).AfterReceiveInterest(ctx, nil))
}

func TestBestRouteChoice(t *testing.T) {
	m := table.NewMeasurements()
	prefix := ndn.MustParseName("/a")
	ctx := &StrategyContext{
		Interest:     ndn.NewInterest(ndn.MustParseName("/a/b")),
		Prefix:       prefix,
		Measurements: m,
	}
	s := &BestRoute{}

	assert.Nil(t, s.AfterReceiveInterest(ctx, nil))
	assert.Equal(t, []uint64{5}, s.AfterReceiveInterest(ctx, []uint64{5, 6}))

	m.AddRTTSample(prefix, 5, 30*time.Millisecond)
	assert.Equal(t, []uint64{6}, s.AfterReceiveInterest(ctx, []uint64{5, 6}))

	m.AddRTTSample(prefix, 6, 50*time.Millisecond)
	assert.Equal(t, []uint64{5}, s.AfterReceiveInterest(ctx, []uint64{5, 6}))
	assert.Equal(t, []uint64{5}, s.AfterReceiveInterest(ctx, []uint64{6, 5}))
}

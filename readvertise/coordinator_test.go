/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/readvertise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDest struct {
	mutex         sync.Mutex
	advertiseN    map[string]int
	withdrawN     map[string]int
	active        map[string]bool
	failAdvertise int
	failWithdraw  int
	rejected      map[string]bool // names whose advertise always fails
	gate          chan struct{}
	withdrawGate  chan struct{}
	ops           []string
}

func newFakeDest() *fakeDest {
	return &fakeDest{
		advertiseN: make(map[string]int),
		withdrawN:  make(map[string]int),
		active:     make(map[string]bool),
		rejected:   make(map[string]bool),
	}
}

func (d *fakeDest) Advertise(ctx context.Context, name ndn.Name) (any, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.advertiseN[name.String()]++
	if d.rejected[name.String()] {
		return nil, errors.New("advertise rejected")
	}
	if d.failAdvertise > 0 {
		d.failAdvertise--
		return nil, errors.New("advertise refused")
	}
	d.active[name.String()] = true
	d.ops = append(d.ops, "+"+name.String())
	return "h" + name.String(), nil
}

func (d *fakeDest) Withdraw(ctx context.Context, name ndn.Name, handle any) error {
	d.mutex.Lock()
	d.withdrawN[name.String()]++
	gate := d.withdrawGate
	d.mutex.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if handle != "h"+name.String() {
		return errors.New("bad handle")
	}
	if d.failWithdraw > 0 {
		d.failWithdraw--
		return errors.New("withdraw refused")
	}
	delete(d.active, name.String())
	d.ops = append(d.ops, "-"+name.String())
	return nil
}

func (d *fakeDest) history() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]string(nil), d.ops...)
}

func (d *fakeDest) counts(name string) (advertise, withdraw int, active bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.advertiseN[name], d.withdrawN[name], d.active[name]
}

func testConfig() readvertise.Config {
	return readvertise.Config{
		BackoffMin:      time.Millisecond,
		BackoffMax:      5 * time.Millisecond,
		BackoffFactor:   2,
		WithdrawRetries: 2,
	}
}

func isActive(d *fakeDest, name string) func() bool {
	return func() bool {
		_, _, active := d.counts(name)
		return active
	}
}

func TestRefCounting(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	c.AddDestination(dest)
	name := ndn.MustParseName("/A")

	c.AddRef(name)
	c.AddRef(name)
	assert.Equal(t, 2, c.RefCount(name))
	require.Eventually(t, isActive(dest, "/A"), time.Second, time.Millisecond)

	c.RemoveRef(name)
	time.Sleep(10 * time.Millisecond)
	adv, wd, active := dest.counts("/A")
	assert.Equal(t, 1, adv)
	assert.Equal(t, 0, wd)
	assert.True(t, active)

	c.RemoveRef(name)
	require.Eventually(t, func() bool { return !isActive(dest, "/A")() }, time.Second, time.Millisecond)
	_, wd, _ = dest.counts("/A")
	assert.Equal(t, 1, wd)
	assert.Empty(t, c.Names())
	assert.Empty(t, c.Advertised(dest))

	// unknown name
	c.RemoveRef(ndn.MustParseName("/B"))
	assert.Equal(t, 0, c.RefCount(ndn.MustParseName("/B")))

	assert.NoError(t, c.Close(context.Background()))
}

func TestAdvertiseRetry(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	dest.failAdvertise = 3
	c.AddDestination(dest)

	c.AddRef(ndn.MustParseName("/A"))
	require.Eventually(t, isActive(dest, "/A"), time.Second, time.Millisecond)
	adv, _, _ := dest.counts("/A")
	assert.Equal(t, 4, adv)
	assert.Len(t, c.Advertised(dest), 1)

	assert.NoError(t, c.Close(context.Background()))
	_, wd, active := dest.counts("/A")
	assert.Equal(t, 1, wd)
	assert.False(t, active)
}

func TestWithdrawGivesUp(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	c.AddDestination(dest)
	name := ndn.MustParseName("/A")

	c.AddRef(name)
	require.Eventually(t, isActive(dest, "/A"), time.Second, time.Millisecond)
	dest.mutex.Lock()
	dest.failWithdraw = 10
	dest.mutex.Unlock()
	c.RemoveRef(name)
	require.Eventually(t, func() bool { return len(c.Advertised(dest)) == 0 }, time.Second, time.Millisecond)
	_, wd, _ := dest.counts("/A")
	assert.Equal(t, 3, wd)

	assert.NoError(t, c.Close(context.Background()))
}

func TestFlipDuringCall(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	dest.gate = make(chan struct{})
	c.AddDestination(dest)
	name := ndn.MustParseName("/A")

	c.AddRef(name)
	c.RemoveRef(name)
	c.AddRef(name)
	c.RemoveRef(name)
	close(dest.gate)

	// the first advertise completes, then the record converges to withdrawn
	require.Eventually(t, func() bool {
		adv, wd, active := dest.counts("/A")
		return adv == 1 && wd == 1 && !active
	}, time.Second, time.Millisecond)
	assert.Empty(t, c.Advertised(dest))
	assert.NoError(t, c.Close(context.Background()))
}

func TestLateDestination(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	c.AddRef(ndn.MustParseName("/A"))
	c.AddRef(ndn.MustParseName("/B"))

	dest := newFakeDest()
	c.AddDestination(dest)
	require.Eventually(t, isActive(dest, "/A"), time.Second, time.Millisecond)
	require.Eventually(t, isActive(dest, "/B"), time.Second, time.Millisecond)
	assert.Len(t, c.Advertised(dest), 2)

	c.RemoveDestination(dest)
	require.Eventually(t, func() bool {
		return !isActive(dest, "/A")() && !isActive(dest, "/B")()
	}, time.Second, time.Millisecond)
	assert.Len(t, c.Names(), 2)
	assert.NoError(t, c.Close(context.Background()))
}

func TestCloseCombinesErrors(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	d1, d2 := newFakeDest(), newFakeDest()
	c.AddDestination(d1)
	c.AddDestination(d2)
	c.AddRef(ndn.MustParseName("/A"))
	require.Eventually(t, isActive(d1, "/A"), time.Second, time.Millisecond)
	require.Eventually(t, isActive(d2, "/A"), time.Second, time.Millisecond)

	for _, d := range []*fakeDest{d1, d2} {
		d.mutex.Lock()
		d.failWithdraw = 1
		d.mutex.Unlock()
	}
	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "withdraw refused")

	// no background work after Close
	c.AddRef(ndn.MustParseName("/C"))
	time.Sleep(10 * time.Millisecond)
	adv, _, _ := d1.counts("/C")
	assert.Equal(t, 0, adv)
}

func TestFailingNameIsolated(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	dest.rejected["/A"] = true
	c.AddDestination(dest)

	c.AddRef(ndn.MustParseName("/A"))
	c.AddRef(ndn.MustParseName("/B"))
	require.Eventually(t, isActive(dest, "/B"), time.Second, time.Millisecond)

	c.RemoveRef(ndn.MustParseName("/B"))
	require.Eventually(t, func() bool { return !isActive(dest, "/B")() }, time.Second, time.Millisecond)
	assert.Equal(t, 0, c.RefCount(ndn.MustParseName("/B")))

	advBefore, _, _ := dest.counts("/A")
	require.Eventually(t, func() bool {
		adv, _, _ := dest.counts("/A")
		return adv >= advBefore+3
	}, time.Second, time.Millisecond)
	_, _, activeA := dest.counts("/A")
	assert.False(t, activeA)
	assert.Equal(t, 1, c.RefCount(ndn.MustParseName("/A")))
	assert.Empty(t, c.Advertised(dest))
	assert.Equal(t, []string{"+/B", "-/B"}, dest.history())

	assert.NoError(t, c.Close(context.Background()))
}

func TestReAddDrainingDestination(t *testing.T) {
	c := readvertise.NewCoordinator(testConfig())
	dest := newFakeDest()
	c.AddDestination(dest)
	c.AddRef(ndn.MustParseName("/A"))
	require.Eventually(t, isActive(dest, "/A"), time.Second, time.Millisecond)

	gate := make(chan struct{})
	dest.mutex.Lock()
	dest.withdrawGate = gate
	dest.mutex.Unlock()

	c.RemoveDestination(dest)
	require.Eventually(t, func() bool {
		_, wd, _ := dest.counts("/A")
		return wd == 1
	}, time.Second, time.Millisecond)

	// re-added while the withdraw is still pending
	c.AddDestination(dest)
	time.Sleep(20 * time.Millisecond)
	adv, _, _ := dest.counts("/A")
	assert.Equal(t, 1, adv)

	close(gate)
	require.Eventually(t, func() bool {
		adv, _, active := dest.counts("/A")
		return adv == 2 && active
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"+/A", "-/A", "+/A"}, dest.history())
	assert.Len(t, c.Advertised(dest), 1)

	assert.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"+/A", "-/A", "+/A", "-/A"}, dest.history())
}

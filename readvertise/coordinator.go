/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package readvertise

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/ndn"
	"go.uber.org/multierr"
)

// Config contains Coordinator configuration.
type Config struct {
	// BackoffMin is the delay before the first retry of a failed call.
	BackoffMin time.Duration
	// BackoffMax caps the delay between retries.
	BackoffMax time.Duration
	// BackoffFactor multiplies the delay after each failure.
	BackoffFactor float64
	// WithdrawRetries is how many times a failed withdraw is retried before it is dropped.
	WithdrawRetries int
}

// MakeConfig extracts Coordinator configuration from the forwarder configuration.
func MakeConfig(c *core.Config) Config {
	return Config{
		BackoffMin:      time.Duration(c.Readvertise.BackoffMinMs) * time.Millisecond,
		BackoffMax:      time.Duration(c.Readvertise.BackoffMaxMs) * time.Millisecond,
		BackoffFactor:   c.Readvertise.BackoffFactor,
		WithdrawRetries: c.Readvertise.WithdrawRetries,
	}
}

type nameRecord struct {
	name ndn.Name
	refs int
}

// destRecord is the state of one name at one destination.
type destRecord struct {
	name       ndn.Name
	desired    bool
	advertised bool
	handle     any
	inFlight   bool
	backoff    backoff.Backoff
}

type destination struct {
	dest    Destination
	records map[string]*destRecord
	removed bool
}

// Coordinator keeps a reference count per announced name and drives every destination
// toward advertising exactly the names whose count is positive.
//
// AddRef and RemoveRef never wait for a destination. Calls to a destination run on
// background goroutines, one per (destination, name) with work to do, so a failing
// name never delays another.
type Coordinator struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stop   chan struct{}
	mutex  sync.Mutex
	closed bool
	names  map[string]*nameRecord
	dests  []*destination
	// draining holds removed destinations that still have records to withdraw.
	draining []*destination
}

// NewCoordinator creates a Coordinator without destinations.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = time.Second
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = cfg.BackoffMin
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
		names:  make(map[string]*nameRecord),
	}
}

func (c *Coordinator) String() string {
	return "Readvertise"
}

// AddRef adds a reference to the name. The first reference advertises it.
func (c *Coordinator) AddRef(name ndn.Name) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := name.Key()
	rec, ok := c.names[key]
	if !ok {
		rec = &nameRecord{name: name.Clone()}
		c.names[key] = rec
	}
	rec.refs++
	if rec.refs == 1 {
		core.LogDebug(c, "Announce ", name)
		for _, d := range c.dests {
			c.setDesiredLocked(d, key, rec.name, true)
		}
	}
}

// RemoveRef drops a reference to the name. Dropping the last reference withdraws it.
// Dropping a reference that does not exist is a no-op.
func (c *Coordinator) RemoveRef(name ndn.Name) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := name.Key()
	rec, ok := c.names[key]
	if !ok {
		return
	}
	rec.refs--
	if rec.refs == 0 {
		core.LogDebug(c, "Withdraw ", name)
		delete(c.names, key)
		for _, d := range c.dests {
			c.setDesiredLocked(d, key, rec.name, false)
		}
	}
}

// RefCount returns the number of references to the name.
func (c *Coordinator) RefCount(name ndn.Name) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if rec, ok := c.names[name.Key()]; ok {
		return rec.refs
	}
	return 0
}

// Names returns the names with at least one reference.
func (c *Coordinator) Names() []ndn.Name {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	names := make([]ndn.Name, 0, len(c.names))
	for _, rec := range c.names {
		names = append(names, rec.name)
	}
	return names
}

// Advertised returns the names currently advertised on the destination.
func (c *Coordinator) Advertised(dest Destination) []ndn.Name {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	names := make([]ndn.Name, 0)
	if d := c.findLocked(dest); d != nil {
		for _, r := range d.records {
			if r.advertised {
				names = append(names, r.name)
			}
		}
	}
	return names
}

// AddDestination adds a destination and advertises every announced name on it.
// If the destination was removed and is still withdrawing names, its pending work is
// resumed, so calls for one name on one destination never overlap.
func (c *Coordinator) AddDestination(dest Destination) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if findDestination(c.dests, dest) != nil {
		return
	}

	d := findDestination(c.draining, dest)
	if d != nil {
		c.draining = removeDestination(c.draining, d)
		d.removed = false
	} else {
		d = &destination{dest: dest, records: make(map[string]*destRecord)}
	}
	c.dests = append(c.dests, d)
	core.LogInfo(c, "Added destination ", dest)
	for key, rec := range c.names {
		c.setDesiredLocked(d, key, rec.name, true)
	}
}

// RemoveDestination removes a destination and withdraws, in the background,
// every name advertised on it.
func (c *Coordinator) RemoveDestination(dest Destination) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	d := findDestination(c.dests, dest)
	if d == nil {
		return
	}
	c.dests = removeDestination(c.dests, d)
	d.removed = true
	c.draining = append(c.draining, d)
	for key, r := range d.records {
		c.setDesiredLocked(d, key, r.name, false)
	}
	c.releaseLocked(d)
	core.LogInfo(c, "Removed destination ", dest)
}

// Close stops retries and waits for calls in progress, then withdraws every advertised
// name from every destination using ctx. Calls still in progress when ctx ends are canceled.
// Withdraw errors are combined into the returned error.
func (c *Coordinator) Close(ctx context.Context) (err error) {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	close(c.stop)
	c.mutex.Unlock()

	idle := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(idle)
	}()
	select {
	case <-idle:
	case <-ctx.Done():
		c.cancel()
		<-idle
	}
	c.cancel()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	all := append(append([]*destination(nil), c.dests...), c.draining...)
	for _, d := range all {
		for key, r := range d.records {
			if r.advertised {
				if e := d.dest.Withdraw(ctx, r.name, r.handle); e != nil {
					err = multierr.Append(err, fmt.Errorf("withdraw %s from %v: %w", r.name, d.dest, e))
				} else {
					core.LogDebug(c, "Withdrew ", r.name, " on ", d.dest)
				}
			}
			delete(d.records, key)
		}
	}
	c.names = make(map[string]*nameRecord)
	c.draining = nil
	return err
}

func (c *Coordinator) findLocked(dest Destination) *destination {
	if d := findDestination(c.dests, dest); d != nil {
		return d
	}
	return findDestination(c.draining, dest)
}

func findDestination(list []*destination, dest Destination) *destination {
	for _, d := range list {
		if d.dest == dest {
			return d
		}
	}
	return nil
}

func removeDestination(list []*destination, d *destination) []*destination {
	for i, e := range list {
		if e == d {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// releaseLocked forgets a removed destination once nothing is left to withdraw from it.
func (c *Coordinator) releaseLocked(d *destination) {
	if d.removed && len(d.records) == 0 {
		c.draining = removeDestination(c.draining, d)
	}
}

func (c *Coordinator) setDesiredLocked(d *destination, key string, name ndn.Name, desired bool) {
	r, ok := d.records[key]
	if !ok {
		if !desired {
			return
		}
		r = &destRecord{
			name: name,
			backoff: backoff.Backoff{
				Min:    c.cfg.BackoffMin,
				Max:    c.cfg.BackoffMax,
				Factor: c.cfg.BackoffFactor,
				Jitter: true,
			},
		}
		d.records[key] = r
	}
	r.desired = desired

	switch {
	case r.inFlight || c.closed:
	case r.desired != r.advertised:
		r.inFlight = true
		c.wg.Add(1)
		go c.reconcile(d, key, r)
	case !r.desired:
		delete(d.records, key)
		c.releaseLocked(d)
	}
}

func (c *Coordinator) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.stop:
		return false
	case <-c.ctx.Done():
		return false
	}
}

// reconcile calls the destination until the record's advertised state matches its
// desired state. Changes of the desired state made during a call are picked up when
// the call returns.
func (c *Coordinator) reconcile(d *destination, key string, r *destRecord) {
	defer c.wg.Done()
	withdrawFailures := 0

	for {
		c.mutex.Lock()
		if c.closed || r.desired == r.advertised {
			r.inFlight = false
			if !r.desired && !r.advertised && d.records[key] == r {
				delete(d.records, key)
				c.releaseLocked(d)
			}
			c.mutex.Unlock()
			return
		}
		desired, name, handle := r.desired, r.name, r.handle
		c.mutex.Unlock()

		if desired {
			h, err := d.dest.Advertise(c.ctx, name)
			c.mutex.Lock()
			if err == nil {
				r.advertised, r.handle = true, h
				r.backoff.Reset()
				c.mutex.Unlock()
				core.LogDebug(c, "Advertised ", name, " on ", d.dest)
				continue
			}
			wait := r.backoff.Duration()
			c.mutex.Unlock()
			core.LogWarn(c, "Advertise ", name, " on ", d.dest, " failed, retry in ", wait, ": ", err)
			c.sleep(wait)
			continue
		}

		err := d.dest.Withdraw(c.ctx, name, handle)
		c.mutex.Lock()
		if err != nil && withdrawFailures < c.cfg.WithdrawRetries {
			withdrawFailures++
			wait := r.backoff.Duration()
			c.mutex.Unlock()
			core.LogWarn(c, "Withdraw ", name, " on ", d.dest, " failed, retry in ", wait, ": ", err)
			c.sleep(wait)
			continue
		}
		r.advertised, r.handle = false, nil
		r.backoff.Reset()
		withdrawFailures = 0
		c.mutex.Unlock()
		if err != nil {
			core.LogError(c, "Withdraw ", name, " on ", d.dest, " failed, giving up: ", err)
		} else {
			core.LogDebug(c, "Withdrew ", name, " on ", d.dest)
		}
	}
}

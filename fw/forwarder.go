/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package fw contains the forwarder: faces, the forwarding pipelines, and strategies.
package fw

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/face"
	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"
)

// Readvertiser receives reference changes of announced names.
// *readvertise.Coordinator implements it. Calls must not block on the network.
type Readvertiser interface {
	AddRef(name ndn.Name)
	RemoveRef(name ndn.Name)
}

// Forwarder is a logical forwarding plane.
//
// FIB, PIT, Dead Nonce List, and face routes are owned by a single goroutine.
// Other goroutines submit work as closures, so all table mutations for one packet
// are applied before the next packet is looked at.
type Forwarder struct {
	cfg          *core.Config
	fib          *table.Fib
	pit          *table.Pit
	dnl          *table.DeadNonceList
	measurements *table.Measurements
	strategies   map[string]Strategy
	faces        *FaceTable
	readvertise  Readvertiser

	observers      *hashmap.HashMap // registered observers by ID
	observerMutex  sync.Mutex
	observerList   atomic.Pointer[[]Observer]
	nextObserverID atomic.Uint64
	counters       counters

	cmd     chan func()
	closing bool // owned by the forwarder goroutine
	closed  atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates and starts a forwarder. rv may be nil to disable readvertising.
func New(cfg *core.Config, rv Readvertiser) (*Forwarder, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	fw := &Forwarder{
		cfg:          cfg,
		fib:          table.NewFib(cfg.Fw.DefaultStrategy),
		measurements: table.NewMeasurements(),
		strategies:   instantiateStrategies(),
		faces:        newFaceTable(),
		readvertise:  rv,
		observers:    hashmap.New(8),
		done:         make(chan struct{}),
	}
	if _, ok := fw.strategies[cfg.Fw.DefaultStrategy]; !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownStrategy, cfg.Fw.DefaultStrategy)
	}

	var err error
	if fw.dnl, err = table.NewDeadNonceList(cfg.Fw.DeadNonceListSize, cfg.DeadNonceLifetime()); err != nil {
		return nil, fmt.Errorf("dead nonce list: %w", err)
	}
	fw.pit = table.NewPit(fw.onPitExpiration)

	queueSize := cfg.Fw.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	fw.cmd = make(chan func(), queueSize)
	fw.ctx, fw.cancel = context.WithCancel(context.Background())

	go fw.run()
	core.LogInfo(fw, "Started with default Strategy=", cfg.Fw.DefaultStrategy)
	return fw, nil
}

func (fw *Forwarder) String() string {
	return "Forwarder"
}

func (fw *Forwarder) run() {
	defer close(fw.done)
	interval := fw.cfg.PitUpdateInterval()
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-fw.cmd:
			fn()
		case now := <-ticker.C:
			fw.pit.Update(now)
		case <-fw.ctx.Done():
			core.LogInfo(fw, "Stopping forwarder")
			return
		}
	}
}

// execute runs fn on the forwarder goroutine and waits for it.
// Returns false if the forwarder goroutine has exited without running fn.
func (fw *Forwarder) execute(fn func()) bool {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case fw.cmd <- wrapped:
	case <-fw.done:
		return false
	}
	select {
	case <-finished:
		return true
	case <-fw.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// post submits fn to the forwarder goroutine without waiting for it.
// It blocks while the queue is full, until ctx ends or the forwarder stops.
func (fw *Forwarder) post(ctx context.Context, fn func()) bool {
	select {
	case fw.cmd <- fn:
		return true
	case <-ctx.Done():
		return false
	case <-fw.done:
		return false
	}
}

// AddFace attaches a transport as a new face and starts its goroutines.
func (fw *Forwarder) AddFace(transport face.RxTx, attrs FaceAttributes) (*Face, error) {
	f := &Face{
		fw:            fw,
		attrs:         attrs,
		transport:     transport,
		txQueue:       face.NewQueue[*ndn.Packet](),
		done:          make(chan struct{}),
		routes:        make(nameMultiset),
		announcements: make(nameMultiset),
	}
	f.ctx, f.cancel = context.WithCancel(fw.ctx)
	f.running.Store(true)

	added := false
	fw.execute(func() {
		if fw.closing {
			return
		}
		fw.faces.add(f)
		added = true
	})
	if !added {
		f.cancel()
		return nil, core.ErrForwarderClosed
	}

	core.LogInfo(f, "Added")
	fw.emit(Event{Kind: FaceAdded, Face: f})

	txBuffer := fw.cfg.Faces.TxBuffer
	if txBuffer < 0 {
		txBuffer = 0
	}
	txc := make(chan *ndn.Packet, txBuffer)
	go transport.Tx(f.ctx, txc)
	go f.txLoop(txc)
	go f.rxLoop()
	return f, nil
}

// Face returns the face with the specified ID, or nil.
func (fw *Forwarder) Face(id uint64) *Face {
	return fw.faces.Get(id)
}

// Faces returns all faces ordered by ID.
func (fw *Forwarder) Faces() []*Face {
	return fw.faces.GetAll()
}

// SetStrategy sets the strategy for Interests under the prefix.
func (fw *Forwarder) SetStrategy(prefix ndn.Name, strategy string) error {
	if _, ok := fw.strategies[strategy]; !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownStrategy, strategy)
	}
	if !fw.execute(func() { fw.fib.SetStrategy(prefix, strategy) }) {
		return core.ErrForwarderClosed
	}
	core.LogInfo(fw, "Set Strategy=", strategy, " for Prefix=", prefix)
	return nil
}

// UnsetStrategy removes the strategy choice at the prefix. The root choice cannot be unset.
func (fw *Forwarder) UnsetStrategy(prefix ndn.Name) error {
	if !fw.execute(func() { fw.fib.UnsetStrategy(prefix) }) {
		return core.ErrForwarderClosed
	}
	return nil
}

// FibEntries returns a snapshot of the FIB.
func (fw *Forwarder) FibEntries() (entries []table.FibEntry) {
	fw.execute(func() { entries = fw.fib.Entries() })
	return entries
}

// StrategyChoices returns a snapshot of the strategy choice table.
func (fw *Forwarder) StrategyChoices() (choices []table.StrategyChoice) {
	fw.execute(func() { choices = fw.fib.StrategyChoices() })
	return choices
}

// PitSize returns the number of PIT entries.
func (fw *Forwarder) PitSize() (n int) {
	fw.execute(func() { n = fw.pit.Size() })
	return n
}

// Close closes every face, then stops the forwarder goroutine.
func (fw *Forwarder) Close() error {
	if !fw.closed.CompareAndSwap(false, true) {
		return nil
	}

	var faces []*Face
	fw.execute(func() {
		fw.closing = true
		faces = fw.faces.GetAll()
	})
	for _, f := range faces {
		f.Close()
		<-f.Done()
	}

	fw.cancel()
	<-fw.done
	return nil
}

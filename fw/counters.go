/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import "sync/atomic"

// Counters is a snapshot of forwarder counters.
type Counters struct {
	NInInterests          uint64 `json:"nInInterests"`
	NInData               uint64 `json:"nInData"`
	NInNacks              uint64 `json:"nInNacks"`
	NOutInterests         uint64 `json:"nOutInterests"`
	NOutData              uint64 `json:"nOutData"`
	NOutNacks             uint64 `json:"nOutNacks"`
	NSatisfiedInterests   uint64 `json:"nSatisfiedInterests"`
	NUnsatisfiedInterests uint64 `json:"nUnsatisfiedInterests"`
	NCanceledInterests    uint64 `json:"nCanceledInterests"`
	NUnsolicitedData      uint64 `json:"nUnsolicitedData"`
}

type counters struct {
	nInInterests          atomic.Uint64
	nInData               atomic.Uint64
	nInNacks              atomic.Uint64
	nOutInterests         atomic.Uint64
	nOutData              atomic.Uint64
	nOutNacks             atomic.Uint64
	nSatisfiedInterests   atomic.Uint64
	nUnsatisfiedInterests atomic.Uint64
	nCanceledInterests    atomic.Uint64
	nUnsolicitedData      atomic.Uint64
}

// Counters returns a snapshot of the forwarder counters. It may be called from any goroutine.
func (fw *Forwarder) Counters() Counters {
	c := &fw.counters
	return Counters{
		NInInterests:          c.nInInterests.Load(),
		NInData:               c.nInData.Load(),
		NInNacks:              c.nInNacks.Load(),
		NOutInterests:         c.nOutInterests.Load(),
		NOutData:              c.nOutData.Load(),
		NOutNacks:             c.nOutNacks.Load(),
		NSatisfiedInterests:   c.nSatisfiedInterests.Load(),
		NUnsatisfiedInterests: c.nUnsatisfiedInterests.Load(),
		NCanceledInterests:    c.nCanceledInterests.Load(),
		NUnsolicitedData:      c.nUnsolicitedData.Load(),
	}
}

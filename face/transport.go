/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package face defines the boundary between the forwarder and packet transports.
// Transports carry packets that are already decoded; wire encoding happens elsewhere.
package face

import (
	"context"

	"github.com/named-data/ndnfw/ndn"
)

// RxTx is a transport with separate inbound and outbound halves.
type RxTx interface {
	// Rx returns the inbound packets. The channel is closed when the peer is gone.
	Rx() <-chan *ndn.Packet
	// Tx transmits packets from the channel until it is closed or ctx is done.
	Tx(ctx context.Context, packets <-chan *ndn.Packet)
}

// Transform is a transport expressed as a function from outbound to inbound packets.
// The returned channel is closed when the peer is gone.
type Transform func(ctx context.Context, tx <-chan *ndn.Packet) <-chan *ndn.Packet

type transformRxTx struct {
	tx     chan *ndn.Packet
	rx     <-chan *ndn.Packet
	cancel context.CancelFunc
}

// FromTransform adapts a Transform to RxTx. The transform is started immediately;
// its context ends when Tx returns.
func FromTransform(fn Transform) RxTx {
	ctx, cancel := context.WithCancel(context.Background())
	tx := make(chan *ndn.Packet)
	return &transformRxTx{
		tx:     tx,
		rx:     fn(ctx, tx),
		cancel: cancel,
	}
}

func (t *transformRxTx) Rx() <-chan *ndn.Packet {
	return t.rx
}

func (t *transformRxTx) Tx(ctx context.Context, packets <-chan *ndn.Packet) {
	defer t.cancel()
	defer close(t.tx)
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-packets:
			if !ok {
				return
			}
			select {
			case t.tx <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"context"
	"sync"

	"github.com/named-data/ndnfw/ndn"
)

// NullTransport is a transport that drops all packets and never receives any.
type NullTransport struct {
	rx        chan *ndn.Packet
	closeOnce sync.Once
}

// NewNullTransport makes a NullTransport.
func NewNullTransport() *NullTransport {
	return &NullTransport{rx: make(chan *ndn.Packet)}
}

func (t *NullTransport) String() string {
	return "NullTransport"
}

// Rx returns a channel that delivers nothing and is closed by Close.
func (t *NullTransport) Rx() <-chan *ndn.Packet {
	return t.rx
}

// Tx discards packets.
func (t *NullTransport) Tx(ctx context.Context, packets <-chan *ndn.Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-packets:
			if !ok {
				return
			}
		}
	}
}

// Close makes the face see the transport as disconnected.
func (t *NullTransport) Close() error {
	t.closeOnce.Do(func() { close(t.rx) })
	return nil
}

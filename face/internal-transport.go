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

// InternalTransport connects the forwarder with an in-process component, e.g. a local
// producer or consumer. The component uses Send and Receive; the face uses Rx and Tx.
type InternalTransport struct {
	mutex     sync.Mutex
	closed    bool
	recvQueue chan *ndn.Packet // packets sent by the internal component
	sendQueue chan *ndn.Packet // packets transmitted by the forwarder
}

// NewInternalTransport makes an InternalTransport whose queues hold queueSize packets.
func NewInternalTransport(queueSize int) *InternalTransport {
	return &InternalTransport{
		recvQueue: make(chan *ndn.Packet, queueSize),
		sendQueue: make(chan *ndn.Packet, queueSize),
	}
}

func (t *InternalTransport) String() string {
	return "InternalTransport"
}

// Rx returns packets sent by the internal component.
func (t *InternalTransport) Rx() <-chan *ndn.Packet {
	return t.recvQueue
}

// Tx hands packets to the internal component. The Receive channel is closed when Tx returns.
func (t *InternalTransport) Tx(ctx context.Context, packets <-chan *ndn.Packet) {
	defer close(t.sendQueue)
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-packets:
			if !ok {
				return
			}
			select {
			case t.sendQueue <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send sends a packet from the perspective of the internal component.
// Returns false if the transport has been closed or its queue is full.
func (t *InternalTransport) Send(pkt *ndn.Packet) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.closed {
		return false
	}
	select {
	case t.recvQueue <- pkt:
		return true
	default:
		return false
	}
}

// Receive returns packets transmitted to the internal component.
func (t *InternalTransport) Receive() <-chan *ndn.Packet {
	return t.sendQueue
}

// Close disconnects the internal component; the face closes itself in response.
func (t *InternalTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.closed {
		t.closed = true
		close(t.recvQueue)
	}
	return nil
}

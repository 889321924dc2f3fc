/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face_test

import (
	"context"
	"testing"
	"time"

	"github.com/named-data/ndnfw/face"
	"github.com/named-data/ndnfw/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveWithin(t *testing.T, c <-chan *ndn.Packet) (*ndn.Packet, bool) {
	select {
	case pkt, ok := <-c:
		return pkt, ok
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for packet")
		return nil, false
	}
}

func TestFromTransformEcho(t *testing.T) {
	// A transform that answers every Interest with a Data of the same name.
	echo := func(ctx context.Context, tx <-chan *ndn.Packet) <-chan *ndn.Packet {
		rx := make(chan *ndn.Packet)
		go func() {
			defer close(rx)
			for pkt := range tx {
				interest := pkt.L3.(*ndn.Interest)
				select {
				case rx <- ndn.MakeDataPacket(ndn.NewData(interest.Name, nil), pkt.Token):
				case <-ctx.Done():
					return
				}
			}
		}()
		return rx
	}

	transport := face.FromTransform(echo)
	packets := make(chan *ndn.Packet)
	go transport.Tx(context.Background(), packets)

	packets <- ndn.MakeInterestPacket(ndn.NewInterest(ndn.MustParseName("/a")), []byte{7})
	pkt, ok := receiveWithin(t, transport.Rx())
	require.True(t, ok)
	assert.Equal(t, "Data", pkt.Kind())
	assert.Equal(t, "/a", pkt.Name().String())
	assert.Equal(t, []byte{7}, pkt.Token)

	close(packets)
	_, ok = receiveWithin(t, transport.Rx())
	assert.False(t, ok)
}

func TestInternalTransport(t *testing.T) {
	transport := face.NewInternalTransport(4)
	ctx, cancel := context.WithCancel(context.Background())
	packets := make(chan *ndn.Packet, 1)
	go transport.Tx(ctx, packets)

	interest := ndn.MakeInterestPacket(ndn.NewInterest(ndn.MustParseName("/b")), nil)
	assert.True(t, transport.Send(interest))
	pkt, ok := receiveWithin(t, transport.Rx())
	require.True(t, ok)
	assert.Same(t, interest, pkt)

	packets <- interest
	pkt, ok = receiveWithin(t, transport.Receive())
	require.True(t, ok)
	assert.Same(t, interest, pkt)

	cancel()
	_, ok = receiveWithin(t, transport.Receive())
	assert.False(t, ok)

	assert.NoError(t, transport.Close())
	assert.NoError(t, transport.Close())
	assert.False(t, transport.Send(interest))
	_, ok = receiveWithin(t, transport.Rx())
	assert.False(t, ok)
}

func TestNullTransport(t *testing.T) {
	transport := face.NewNullTransport()
	packets := make(chan *ndn.Packet)
	done := make(chan struct{})
	go func() {
		transport.Tx(context.Background(), packets)
		close(done)
	}()

	packets <- ndn.MakeInterestPacket(ndn.NewInterest(ndn.MustParseName("/c")), nil)
	close(packets)
	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "Tx did not return")
	}

	assert.NoError(t, transport.Close())
	_, ok := receiveWithin(t, transport.Rx())
	assert.False(t, ok)
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"context"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/face"
	"github.com/named-data/ndnfw/ndn"
)

// FaceAttributes describes a face.
type FaceAttributes struct {
	// Local faces may carry /localhost packets.
	Local bool
	// Multicast faces reach multiple peers.
	Multicast bool
	// AdvertiseFrom allows routes on this face to be readvertised.
	AdvertiseFrom bool
	// Describe is a human readable description used in logs.
	Describe string
}

// DefaultFaceAttributes returns attributes of a non-local face that may readvertise.
func DefaultFaceAttributes() FaceAttributes {
	return FaceAttributes{AdvertiseFrom: true}
}

// Face is a link between the forwarder and a transport.
type Face struct {
	id        uint64
	fw        *Forwarder
	attrs     FaceAttributes
	transport face.RxTx

	running atomic.Bool
	txQueue *face.Queue[*ndn.Packet]
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	// routes and announcements belong to the forwarder goroutine.
	routes        nameMultiset
	announcements nameMultiset
}

func (f *Face) String() string {
	if f.attrs.Describe != "" {
		return "FaceID=" + strconv.FormatUint(f.id, 10) + " (" + f.attrs.Describe + ")"
	}
	return "FaceID=" + strconv.FormatUint(f.id, 10)
}

// ID returns the face ID.
func (f *Face) ID() uint64 {
	return f.id
}

// Attributes returns the face attributes.
func (f *Face) Attributes() FaceAttributes {
	return f.attrs
}

// Running returns whether the face has not been closed.
func (f *Face) Running() bool {
	return f.running.Load()
}

// Done returns a channel that is closed when the face has been closed.
func (f *Face) Done() <-chan struct{} {
	return f.done
}

// TxQueueLen returns the number of packets waiting to be transmitted.
func (f *Face) TxQueueLen() int {
	return f.txQueue.Len()
}

// Send queues a packet for transmission. It never blocks.
// Packets sent after the face is closed are dropped.
func (f *Face) Send(pkt *ndn.Packet) {
	if !f.running.Load() {
		return
	}
	f.txQueue.Push(pkt)
}

// AddRoute adds a route toward the face and readvertises the name selected by ann.
func (f *Face) AddRoute(prefix ndn.Name, ann Announcement) error {
	return f.do(func() { f.fw.addRoute(f, prefix, ann) })
}

// RemoveRoute removes a route previously added with the same prefix and announcement.
// Removing a route that does not exist has no effect.
func (f *Face) RemoveRoute(prefix ndn.Name, ann Announcement) error {
	return f.do(func() { f.fw.removeRoute(f, prefix, ann) })
}

// AddAnnouncement readvertises a name on behalf of the face without adding a route.
func (f *Face) AddAnnouncement(name ndn.Name) error {
	return f.do(func() { f.fw.addAnnouncement(f, name) })
}

// RemoveAnnouncement drops an announcement added with AddAnnouncement.
func (f *Face) RemoveAnnouncement(name ndn.Name) error {
	return f.do(func() { f.fw.removeAnnouncement(f, name) })
}

// HasRoute returns the number of times a route with the prefix has been added.
func (f *Face) HasRoute(prefix ndn.Name) (n int) {
	f.fw.execute(func() { n = f.routes.count(prefix) })
	return n
}

// do runs fn on the forwarder goroutine if the face is still running.
func (f *Face) do(fn func()) error {
	closed := false
	if !f.fw.execute(func() {
		if !f.running.Load() {
			closed = true
			return
		}
		fn()
	}) {
		return core.ErrForwarderClosed
	}
	if closed {
		return core.ErrFaceClosed
	}
	return nil
}

// Close closes the face. It removes every route of the face, stops the transmit goroutine,
// and closes the transport if it implements io.Closer. Closing a closed face has no effect.
func (f *Face) Close() error {
	if !f.running.CompareAndSwap(true, false) {
		return nil
	}

	cleanup := func() {
		f.fw.removeAllRoutes(f)
		f.fw.faces.remove(f.id)
	}
	if !f.fw.execute(cleanup) {
		// forwarder goroutine has exited
		cleanup()
	}

	f.cancel()
	f.txQueue.Close()
	var err error
	if closer, ok := f.transport.(io.Closer); ok {
		err = closer.Close()
	}
	core.LogInfo(f, "Closed")
	f.fw.emit(Event{Kind: FaceRemoved, Face: f})
	close(f.done)
	return err
}

func (f *Face) txLoop(txc chan<- *ndn.Packet) {
	defer close(txc)
	for {
		pkt, ok := f.txQueue.Pop(f.ctx)
		if !ok {
			return
		}
		f.fw.emit(Event{Kind: PacketTransmitted, Face: f, Packet: pkt})
		select {
		case txc <- pkt:
		case <-f.ctx.Done():
			return
		}
	}
}

func (f *Face) rxLoop() {
	rx := f.transport.Rx()
	for {
		select {
		case <-f.ctx.Done():
			return
		case pkt, ok := <-rx:
			if !ok {
				core.LogInfo(f, "Transport is gone")
				f.Close()
				return
			}
			f.receive(pkt)
		}
	}
}

func (f *Face) receive(pkt *ndn.Packet) {
	if !isWellFormed(pkt) {
		core.LogWarn(f, "Malformed packet ", pkt, " - DROP")
		return
	}
	f.fw.emit(Event{Kind: PacketReceived, Face: f, Packet: pkt})
	f.fw.post(f.ctx, func() {
		if f.running.Load() {
			f.fw.dispatch(f, pkt)
		}
	})
}

// isWellFormed checks a packet before it may affect any forwarder state.
func isWellFormed(pkt *ndn.Packet) bool {
	if pkt == nil {
		return false
	}
	switch l3 := pkt.L3.(type) {
	case *ndn.Interest:
		return l3 != nil && len(l3.Name) > 0
	case *ndn.Data:
		return l3 != nil && len(l3.Name) > 0
	case *ndn.Nack:
		return l3 != nil && l3.Interest != nil && len(l3.Interest.Name) > 0
	}
	return false
}

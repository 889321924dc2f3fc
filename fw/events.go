/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"sort"
	"strconv"

	"github.com/named-data/ndnfw/ndn"
)

// EventKind identifies the type of a forwarder event.
type EventKind int

// Event kinds.
const (
	FaceAdded EventKind = iota + 1
	FaceRemoved
	RouteAdded
	RouteRemoved
	PrefixAnnounced
	PrefixWithdrawn
	PacketTransmitted
	PacketReceived
)

func (k EventKind) String() string {
	switch k {
	case FaceAdded:
		return "FaceAdded"
	case FaceRemoved:
		return "FaceRemoved"
	case RouteAdded:
		return "RouteAdded"
	case RouteRemoved:
		return "RouteRemoved"
	case PrefixAnnounced:
		return "PrefixAnnounced"
	case PrefixWithdrawn:
		return "PrefixWithdrawn"
	case PacketTransmitted:
		return "PacketTransmitted"
	case PacketReceived:
		return "PacketReceived"
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// Event is emitted by the forwarder.
// Name is set for route and prefix events. Packet is set for packet events.
type Event struct {
	Kind   EventKind
	Face   *Face
	Name   ndn.Name
	Packet *ndn.Packet
}

// Observer receives forwarder events.
// OnEvent is invoked synchronously on the emitting goroutine and must not call back into the forwarder.
type Observer interface {
	OnEvent(evt Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(evt Event)

// OnEvent implements Observer.
func (fn ObserverFunc) OnEvent(evt Event) {
	fn(evt)
}

// AddObserver registers an observer. The returned function unregisters it.
func (fw *Forwarder) AddObserver(o Observer) (remove func()) {
	id := fw.nextObserverID.Add(1)
	fw.observerMutex.Lock()
	fw.observers.Set(id, o)
	fw.refreshObserversLocked()
	fw.observerMutex.Unlock()
	return func() {
		fw.observerMutex.Lock()
		defer fw.observerMutex.Unlock()
		if _, ok := fw.observers.Get(id); ok {
			fw.observers.Del(id)
			fw.refreshObserversLocked()
		}
	}
}

// refreshObserversLocked publishes the registered observers in registration order.
func (fw *Forwarder) refreshObserversLocked() {
	type entry struct {
		id uint64
		o  Observer
	}
	entries := make([]entry, 0, fw.observers.Len())
	for kv := range fw.observers.Iter() {
		entries = append(entries, entry{kv.Key.(uint64), kv.Value.(Observer)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	list := make([]Observer, len(entries))
	for i, e := range entries {
		list[i] = e.o
	}
	fw.observerList.Store(&list)
}

func (fw *Forwarder) emit(evt Event) {
	list := fw.observerList.Load()
	if list == nil {
		return
	}
	for _, o := range *list {
		o.OnEvent(evt)
	}
}

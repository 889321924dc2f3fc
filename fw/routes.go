/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/ndn"
)

// The functions in this file run on the forwarder goroutine.

func (fw *Forwarder) addRoute(f *Face, prefix ndn.Name, ann Announcement) {
	if f.routes.add(prefix) == 1 {
		fw.fib.InsertNextHop(prefix, f.id)
		core.LogDebug(fw, "Added route Prefix=", prefix, " to ", f)
		fw.emit(Event{Kind: RouteAdded, Face: f, Name: prefix})
	}
	if name, ok := ann.Evaluate(prefix); ok {
		fw.addAnnouncement(f, name)
	}
}

func (fw *Forwarder) removeRoute(f *Face, prefix ndn.Name, ann Announcement) {
	remaining, ok := f.routes.remove(prefix)
	if !ok {
		return
	}
	if name, ok := ann.Evaluate(prefix); ok {
		fw.removeAnnouncement(f, name)
	}
	if remaining == 0 {
		fw.fib.RemoveNextHop(prefix, f.id)
		fw.measurements.RemoveFace(prefix, f.id)
		core.LogDebug(fw, "Removed route Prefix=", prefix, " from ", f)
		fw.emit(Event{Kind: RouteRemoved, Face: f, Name: prefix})
	}
}

func (fw *Forwarder) addAnnouncement(f *Face, name ndn.Name) {
	if !f.attrs.AdvertiseFrom {
		return
	}
	if f.announcements.add(name) == 1 {
		core.LogDebug(fw, "Announced Name=", name, " from ", f)
		fw.emit(Event{Kind: PrefixAnnounced, Face: f, Name: name})
		if fw.readvertise != nil {
			fw.readvertise.AddRef(name)
		}
	}
}

func (fw *Forwarder) removeAnnouncement(f *Face, name ndn.Name) {
	if !f.attrs.AdvertiseFrom {
		return
	}
	if remaining, ok := f.announcements.remove(name); ok && remaining == 0 {
		fw.withdraw(f, name)
	}
}

func (fw *Forwarder) withdraw(f *Face, name ndn.Name) {
	core.LogDebug(fw, "Withdrew Name=", name, " from ", f)
	fw.emit(Event{Kind: PrefixWithdrawn, Face: f, Name: name})
	if fw.readvertise != nil {
		fw.readvertise.RemoveRef(name)
	}
}

func (fw *Forwarder) removeAllRoutes(f *Face) {
	for key, c := range f.routes {
		fw.fib.RemoveNextHop(c.name, f.id)
		fw.measurements.RemoveFace(c.name, f.id)
		delete(f.routes, key)
		fw.emit(Event{Kind: RouteRemoved, Face: f, Name: c.name})
	}
	for key, c := range f.announcements {
		delete(f.announcements, key)
		fw.withdraw(f, c.name)
	}
}

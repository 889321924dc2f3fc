/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import "github.com/named-data/ndnfw/ndn"

type announceKind int

const (
	announceNone announceKind = iota
	announceExact
	announcePrefix
	announceName
)

// Announcement determines which name, if any, is readvertised when a route is added.
type Announcement struct {
	kind announceKind
	n    int
	name ndn.Name
}

var (
	// NoAnnouncement adds the route without readvertising anything.
	NoAnnouncement = Announcement{kind: announceNone}
	// AnnounceExact readvertises the route prefix itself.
	AnnounceExact = Announcement{kind: announceExact}
)

// AnnouncePrefix readvertises the first n components of the route prefix.
// A negative n drops -n components from the end.
func AnnouncePrefix(n int) Announcement {
	return Announcement{kind: announcePrefix, n: n}
}

// AnnounceName readvertises a fixed name regardless of the route prefix.
func AnnounceName(name ndn.Name) Announcement {
	return Announcement{kind: announceName, name: name}
}

// Evaluate returns the name to readvertise for a route with the given prefix.
func (a Announcement) Evaluate(prefix ndn.Name) (ndn.Name, bool) {
	switch a.kind {
	case announceExact:
		return prefix, true
	case announcePrefix:
		return prefix.GetPrefix(a.n), true
	case announceName:
		return a.name, a.name != nil
	}
	return nil, false
}

func (a Announcement) String() string {
	switch a.kind {
	case announceExact:
		return "exact"
	case announcePrefix:
		return "prefix"
	case announceName:
		return "name(" + a.name.String() + ")"
	}
	return "none"
}

// nameMultiset counts insertions per name, keyed by Name.Key().
type nameMultiset map[string]*nameCount

type nameCount struct {
	name ndn.Name
	n    int
}

// add inserts the name and returns its new count.
func (m nameMultiset) add(name ndn.Name) int {
	key := name.Key()
	c, ok := m[key]
	if !ok {
		c = &nameCount{name: name.Clone()}
		m[key] = c
	}
	c.n++
	return c.n
}

// remove removes one insertion of the name and returns the remaining count.
// ok is false if the name was absent.
func (m nameMultiset) remove(name ndn.Name) (remaining int, ok bool) {
	key := name.Key()
	c, ok := m[key]
	if !ok {
		return 0, false
	}
	c.n--
	if c.n <= 0 {
		delete(m, key)
		return 0, true
	}
	return c.n, true
}

func (m nameMultiset) count(name ndn.Name) int {
	if c, ok := m[name.Key()]; ok {
		return c.n
	}
	return 0
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"bytes"
	"time"

	"github.com/named-data/ndnfw/ndn"
)

// OnPitExpiration is called for each PIT entry that expires, just before it is removed.
type OnPitExpiration func(*PitEntry)

// PitInRecord records an incoming Interest on a given face.
type PitInRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	ExpirationTime  time.Time
	Token           []byte
}

// PitOutRecord records an outgoing Interest on a given face.
type PitOutRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	ExpirationTime  time.Time
	Nacked          bool
	NackReason      ndn.NackReason
}

// PitEntry is an entry in the PIT.
type PitEntry struct {
	node   *pitNode
	pqItem *QueueItem[*PitEntry, int64]

	Name         ndn.Name
	CanBePrefix  bool
	MustBeFresh  bool
	ParamsDigest []byte
	// Interest is the most recently received Interest, used as the template for
	// Interests and Nacks generated from this entry.
	Interest       *ndn.Interest
	InRecords      map[uint64]*PitInRecord  // Key is face ID
	OutRecords     map[uint64]*PitOutRecord // Key is face ID
	ExpirationTime time.Time
}

type pitNode struct {
	component ndn.Component
	depth     int

	parent   *pitNode
	children map[string]*pitNode

	entries []*PitEntry
}

// Pit is the Pending Interest Table, organized as a name tree with an expiry queue.
// It is not safe for concurrent use: it belongs to the forwarder goroutine.
type Pit struct {
	root         *pitNode
	nEntries     int
	expiryQueue  PriorityQueue[*PitEntry, int64]
	onExpiration OnPitExpiration
}

// NewPit creates an empty PIT.
func NewPit(onExpiration OnPitExpiration) *Pit {
	return &Pit{
		root:         &pitNode{children: make(map[string]*pitNode)},
		onExpiration: onExpiration,
	}
}

func (n *pitNode) child(c ndn.Component) *pitNode {
	return n.children[c.Key()]
}

func (n *pitNode) findLongestPrefixNode(name ndn.Name) *pitNode {
	node := n
	for node.depth < len(name) {
		child := node.child(name[node.depth])
		if child == nil {
			break
		}
		node = child
	}
	return node
}

func (n *pitNode) fillTreeToPrefix(name ndn.Name) *pitNode {
	node := n.findLongestPrefixNode(name)
	for depth := node.depth; depth < len(name); depth++ {
		component := name[depth].Clone()
		child := &pitNode{
			component: component,
			depth:     depth + 1,
			parent:    node,
			children:  make(map[string]*pitNode),
		}
		node.children[component.Key()] = child
		node = child
	}
	return node
}

func (n *pitNode) pruneIfEmpty() {
	for node := n; node.parent != nil && len(node.children) == 0 && len(node.entries) == 0; node = node.parent {
		delete(node.parent.children, node.component.Key())
	}
}

func (e *PitEntry) matches(interest *ndn.Interest) bool {
	return e.CanBePrefix == interest.CanBePrefix &&
		e.MustBeFresh == interest.MustBeFresh &&
		bytes.Equal(e.ParamsDigest, interest.ParamsDigest)
}

// Insert finds or creates the PIT entry for the Interest.
func (p *Pit) Insert(interest *ndn.Interest) (entry *PitEntry, isNew bool) {
	node := p.root.fillTreeToPrefix(interest.Name)
	for _, e := range node.entries {
		if e.matches(interest) {
			return e, false
		}
	}

	entry = &PitEntry{
		node:         node,
		Name:         interest.Name,
		CanBePrefix:  interest.CanBePrefix,
		MustBeFresh:  interest.MustBeFresh,
		ParamsDigest: interest.ParamsDigest,
		Interest:     interest,
		InRecords:    make(map[uint64]*PitInRecord),
		OutRecords:   make(map[uint64]*PitOutRecord),
	}
	node.entries = append(node.entries, entry)
	p.nEntries++
	return entry, true
}

// FindExact returns the PIT entry for the Interest, or nil.
func (p *Pit) FindExact(interest *ndn.Interest) *PitEntry {
	node := p.root.findLongestPrefixNode(interest.Name)
	if node.depth != len(interest.Name) {
		return nil
	}
	for _, e := range node.entries {
		if e.matches(interest) {
			return e
		}
	}
	return nil
}

// FindByData returns all PIT entries the Data satisfies.
// Example: with Interests /a[CanBePrefix] and /a/b pending, Data /a/b satisfies both.
func (p *Pit) FindByData(data *ndn.Data) []*PitEntry {
	matching := make([]*PitEntry, 0)
	for node := p.root.findLongestPrefixNode(data.Name); node != nil; node = node.parent {
		for _, e := range node.entries {
			if data.CanSatisfy(e.Name, e.CanBePrefix, e.MustBeFresh) {
				matching = append(matching, e)
			}
		}
	}
	return matching
}

// Remove removes the entry, returning false if it was not in the PIT.
func (p *Pit) Remove(entry *PitEntry) bool {
	node := entry.node
	if node == nil {
		return false
	}
	for i, e := range node.entries {
		if e != entry {
			continue
		}
		node.entries = append(node.entries[:i], node.entries[i+1:]...)
		node.pruneIfEmpty()
		p.nEntries--
		if entry.pqItem != nil {
			p.expiryQueue.Remove(entry.pqItem)
			entry.pqItem = nil
		}
		entry.node = nil
		return true
	}
	return false
}

// Size returns the number of entries in the PIT.
func (p *Pit) Size() int {
	return p.nEntries
}

// Entries returns all PIT entries.
func (p *Pit) Entries() []*PitEntry {
	entries := make([]*PitEntry, 0, p.nEntries)
	var walk func(*pitNode)
	walk = func(node *pitNode) {
		entries = append(entries, node.entries...)
		for _, child := range node.children {
			walk(child)
		}
	}
	walk(p.root)
	return entries
}

// SetExpiration (re)arms the expiry of the entry.
func (p *Pit) SetExpiration(entry *PitEntry, expiration time.Time) {
	entry.ExpirationTime = expiration
	if entry.pqItem == nil {
		entry.pqItem = p.expiryQueue.Push(entry, expiration.UnixNano())
	} else {
		p.expiryQueue.Update(entry.pqItem, expiration.UnixNano())
	}
}

// ExtendExpiration arms the expiry of the entry, or postpones an armed expiry.
// An armed expiry is never moved earlier. Returns whether the deadline changed.
func (p *Pit) ExtendExpiration(entry *PitEntry, expiration time.Time) bool {
	if entry.pqItem != nil && !expiration.After(entry.ExpirationTime) {
		return false
	}
	p.SetExpiration(entry, expiration)
	return true
}

// Update expires every entry whose deadline is not after now.
func (p *Pit) Update(now time.Time) {
	for p.expiryQueue.Len() > 0 && p.expiryQueue.PeekPriority() <= now.UnixNano() {
		entry := p.expiryQueue.Pop()
		entry.pqItem = nil
		if p.onExpiration != nil {
			p.onExpiration(entry)
		}
		p.Remove(entry)
	}
}

// IsLive returns whether the entry is still in the PIT.
func (e *PitEntry) IsLive() bool {
	return e.node != nil
}

// HasDuplicateNonce returns whether another face's in-record carries the nonce,
// which indicates the Interest looped back.
func (e *PitEntry) HasDuplicateNonce(face uint64, nonce uint32) bool {
	for f, r := range e.InRecords {
		if f != face && r.LatestNonce == nonce {
			return true
		}
	}
	return false
}

// InsertInRecord finds or creates the in-record for the face and refreshes it.
func (e *PitEntry) InsertInRecord(interest *ndn.Interest, face uint64, token []byte, now time.Time) (record *PitInRecord, isNew bool) {
	record, ok := e.InRecords[face]
	if !ok {
		record = &PitInRecord{Face: face}
		e.InRecords[face] = record
	}
	record.LatestNonce = interest.Nonce
	record.LatestTimestamp = now
	record.ExpirationTime = now.Add(interest.EffectiveLifetime())
	record.Token = token
	e.Interest = interest
	return record, !ok
}

// RemoveInRecord removes the in-record for the face, if any.
func (e *PitEntry) RemoveInRecord(face uint64) bool {
	if _, ok := e.InRecords[face]; !ok {
		return false
	}
	delete(e.InRecords, face)
	return true
}

// InsertOutRecord finds or creates the out-record for the face and refreshes it.
func (e *PitEntry) InsertOutRecord(interest *ndn.Interest, face uint64, now time.Time) *PitOutRecord {
	record, ok := e.OutRecords[face]
	if !ok {
		record = &PitOutRecord{Face: face}
		e.OutRecords[face] = record
	}
	record.LatestNonce = interest.Nonce
	record.LatestTimestamp = now
	record.ExpirationTime = now.Add(interest.EffectiveLifetime())
	record.Nacked = false
	record.NackReason = ndn.NackReasonNone
	return record
}

// AllOutRecordsNacked returns whether every out-record has been Nacked,
// together with the least favorable of their reasons.
func (e *PitEntry) AllOutRecordsNacked() (bool, ndn.NackReason) {
	if len(e.OutRecords) == 0 {
		return false, ndn.NackReasonNone
	}
	reason := ndn.NackReasonNone
	for _, r := range e.OutRecords {
		if !r.Nacked {
			return false, ndn.NackReasonNone
		}
		reason = reason.LessFavorable(r.NackReason)
	}
	return true, reason
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/named-data/ndnfw/ndn"
)

// DeadNonceList remembers recently seen (name, nonce) pairs to detect looping Interests
// after their PIT entry is gone. Capacity is bounded: the least recently inserted
// pairs are evicted first.
type DeadNonceList struct {
	list     *lru.Cache
	lifetime time.Duration
}

// NewDeadNonceList creates a Dead Nonce List.
func NewDeadNonceList(capacity int, lifetime time.Duration) (*DeadNonceList, error) {
	list, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &DeadNonceList{list: list, lifetime: lifetime}, nil
}

func deadNonceKey(name ndn.Name, nonce uint32) uint64 {
	b := binary.BigEndian.AppendUint32([]byte(name.Key()), nonce)
	return xxhash.Sum64(b)
}

// Find returns whether the specified name and nonce combination is present.
func (d *DeadNonceList) Find(name ndn.Name, nonce uint32, now time.Time) bool {
	key := deadNonceKey(name, nonce)
	expiration, ok := d.list.Peek(key)
	if !ok {
		return false
	}
	if expiration.(int64) <= now.UnixNano() {
		d.list.Remove(key)
		return false
	}
	return true
}

// Insert inserts the specified name and nonce. Returns whether it was already present.
func (d *DeadNonceList) Insert(name ndn.Name, nonce uint32, now time.Time) bool {
	exists := d.Find(name, nonce, now)
	if !exists {
		d.list.Add(deadNonceKey(name, nonce), now.Add(d.lifetime).UnixNano())
	}
	return exists
}

// Len returns the number of pairs held, including expired ones not yet evicted.
func (d *DeadNonceList) Len() int {
	return d.list.Len()
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"sort"
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/named-data/ndnfw/core"
)

// FaceTable holds all faces of a forwarder.
type FaceTable struct {
	faces      *hashmap.HashMap
	nextFaceID atomic.Uint64
}

func newFaceTable() *FaceTable {
	t := &FaceTable{faces: hashmap.New(64)}
	t.nextFaceID.Store(1)
	return t
}

func (t *FaceTable) String() string {
	return "FaceTable"
}

// add assigns an ID to the face and registers it.
func (t *FaceTable) add(f *Face) {
	f.id = t.nextFaceID.Add(1) - 1
	t.faces.Set(f.id, f)
	core.LogDebug(t, "Registered FaceID=", f.id)
}

// Get returns the face with the specified ID, or nil.
func (t *FaceTable) Get(id uint64) *Face {
	f, ok := t.faces.Get(id)
	if !ok {
		return nil
	}
	return f.(*Face)
}

// GetAll returns all faces ordered by ID.
func (t *FaceTable) GetAll() []*Face {
	faces := make([]*Face, 0, t.faces.Len())
	for kv := range t.faces.Iter() {
		faces = append(faces, kv.Value.(*Face))
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i].id < faces[j].id })
	return faces
}

// Len returns the number of faces.
func (t *FaceTable) Len() int {
	return t.faces.Len()
}

func (t *FaceTable) remove(id uint64) {
	t.faces.Del(id)
	core.LogDebug(t, "Unregistered FaceID=", id)
}

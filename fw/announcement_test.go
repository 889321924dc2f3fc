/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"testing"

	"github.com/named-data/ndnfw/ndn"
	"github.com/stretchr/testify/assert"
)

func TestAnnouncementEvaluate(t *testing.T) {
	prefix := ndn.MustParseName("/a/b/c")

	_, ok := NoAnnouncement.Evaluate(prefix)
	assert.False(t, ok)

	name, ok := AnnounceExact.Evaluate(prefix)
	assert.True(t, ok)
	assert.True(t, name.Equal(prefix))

	name, ok = AnnouncePrefix(1).Evaluate(prefix)
	assert.True(t, ok)
	assert.Equal(t, "/a", name.String())

	name, ok = AnnouncePrefix(-1).Evaluate(prefix)
	assert.True(t, ok)
	assert.Equal(t, "/a/b", name.String())

	name, ok = AnnounceName(ndn.MustParseName("/z")).Evaluate(prefix)
	assert.True(t, ok)
	assert.Equal(t, "/z", name.String())

	_, ok = AnnounceName(nil).Evaluate(prefix)
	assert.False(t, ok)
}

func TestNameMultiset(t *testing.T) {
	m := make(nameMultiset)
	a := ndn.MustParseName("/a")

	assert.Equal(t, 1, m.add(a))
	assert.Equal(t, 2, m.add(ndn.MustParseName("/a")))
	assert.Equal(t, 2, m.count(a))

	remaining, ok := m.remove(a)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	remaining, ok = m.remove(a)
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Empty(t, m)

	_, ok = m.remove(a)
	assert.False(t, ok)
	assert.Equal(t, 0, m.count(a))
}

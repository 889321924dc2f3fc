/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn_test

import (
	"testing"

	"github.com/named-data/ndnfw/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	n, err := ndn.ParseName("/a/b%20c/8=d")
	require.NoError(t, err)
	require.Len(t, n, 3)
	assert.Equal(t, "b c", string(n[1].Val))
	assert.Equal(t, ndn.TypeGenericNameComponent, n[2].Typ)
	assert.Equal(t, "/a/b%20c/d", n.String())

	n, err = ndn.ParseName("/")
	require.NoError(t, err)
	assert.Len(t, n, 0)
	assert.Equal(t, "/", n.String())

	n, err = ndn.ParseName("ndn:/x/")
	require.NoError(t, err)
	assert.Equal(t, "/x", n.String())

	_, err = ndn.ParseName("a/b")
	assert.ErrorIs(t, err, ndn.ErrNameFormat)

	_, err = ndn.ParseName("/a/%2")
	assert.Error(t, err)

	_, err = ndn.ParseName("/0=a")
	assert.Error(t, err)
}

func TestNameConventions(t *testing.T) {
	n, err := ndn.ParseName("/video/v=3/seg=300/32=kw")
	require.NoError(t, err)
	assert.Equal(t, ndn.TypeVersionNameComponent, n[1].Typ)
	assert.Equal(t, []byte{0x03}, n[1].Val)
	assert.Equal(t, ndn.TypeSegmentNameComponent, n[2].Typ)
	assert.Equal(t, []byte{0x01, 0x2c}, n[2].Val)
	assert.Equal(t, ndn.TypeKeywordNameComponent, n[3].Typ)
	assert.Equal(t, "/video/v=3/seg=300/32=kw", n.String())

	c := ndn.NewNumberComponent(ndn.TypeSequenceNumNameComponent, 0x10000)
	assert.Len(t, c.Val, 4)
	v, ok := c.NumberValue()
	assert.True(t, ok)
	assert.Equal(t, uint64(0x10000), v)

	c = ndn.NewNumberComponent(ndn.TypeTimestampNameComponent, 1<<40)
	assert.Len(t, c.Val, 8)
}

func TestNamePeriods(t *testing.T) {
	n := ndn.Name{ndn.NewGenericComponent(""), ndn.NewGenericComponent("..")}
	assert.Equal(t, "/.../.....", n.String())

	parsed, err := ndn.ParseName(n.String())
	require.NoError(t, err)
	assert.True(t, n.Equal(parsed))
}

func TestNamePrefix(t *testing.T) {
	abc := ndn.MustParseName("/a/b/c")
	ab := ndn.MustParseName("/a/b")

	assert.True(t, ab.IsPrefixOf(abc))
	assert.True(t, abc.IsPrefixOf(abc))
	assert.False(t, abc.IsPrefixOf(ab))
	assert.True(t, ndn.Name{}.IsPrefixOf(abc))

	assert.True(t, abc.GetPrefix(2).Equal(ab))
	assert.True(t, abc.GetPrefix(-1).Equal(ab))
	assert.Len(t, abc.GetPrefix(-5), 0)
	assert.Len(t, abc.GetPrefix(10), 3)

	assert.Equal(t, "c", string(abc.At(-1).Val))
	assert.Equal(t, ndn.Component{}, abc.At(3))

	// GetPrefix must not let Append overwrite the original.
	abx := abc.GetPrefix(2).Append(ndn.NewGenericComponent("x"))
	assert.Equal(t, "/a/b/x", abx.String())
	assert.Equal(t, "/a/b/c", abc.String())
}

func TestNameKey(t *testing.T) {
	a1 := ndn.MustParseName("/a/b")
	a2 := ndn.MustParseName("/8=a/8=b")
	b := ndn.MustParseName("/ab")
	k := ndn.Name{{Typ: ndn.TypeKeywordNameComponent, Val: []byte("a")}, ndn.NewGenericComponent("b")}

	assert.Equal(t, a1.Key(), a2.Key())
	assert.Equal(t, a1.Hash(), a2.Hash())
	assert.NotEqual(t, a1.Key(), b.Key())
	assert.NotEqual(t, a1.Key(), k.Key())
	assert.Equal(t, "", ndn.Name{}.Key())
	assert.Equal(t, "\x08\x01a\x08\x01b", a1.Key())
}

func TestComponentKeyHash(t *testing.T) {
	a := ndn.MustParseName("/%00%20")[0]
	b := ndn.MustParseName("/32=%00%08")[0]
	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Hash(), b.Hash())

	self := ndn.Component{Typ: 0x0102, Val: []byte{0x01, 0x02}}
	assert.NotEqual(t, uint64(0), self.Hash())
	assert.Equal(t, self.Key(), self.Clone().Key())
}

func TestNameClone(t *testing.T) {
	n := ndn.MustParseName("/a")
	c := n.Clone()
	c[0].Val[0] = 'z'
	assert.Equal(t, "/a", n.String())
	assert.Equal(t, "/z", c.String())
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
)

// Name component TLV types.
const (
	TypeImplicitSha256DigestComponent   uint16 = 0x01
	TypeParametersSha256DigestComponent uint16 = 0x02
	TypeGenericNameComponent            uint16 = 0x08
	TypeKeywordNameComponent            uint16 = 0x20
	TypeSegmentNameComponent            uint16 = 0x32
	TypeByteOffsetNameComponent         uint16 = 0x34
	TypeVersionNameComponent            uint16 = 0x36
	TypeTimestampNameComponent          uint16 = 0x38
	TypeSequenceNumNameComponent        uint16 = 0x3a
)

// Error definitions
var (
	ErrNameFormat      = errors.New("malformed name")
	ErrComponentFormat = errors.New("malformed name component")
)

var conventionPrefixes = map[uint16]string{
	TypeSegmentNameComponent:     "seg",
	TypeByteOffsetNameComponent:  "off",
	TypeVersionNameComponent:     "v",
	TypeTimestampNameComponent:   "t",
	TypeSequenceNumNameComponent: "seq",
}

var digestPrefixes = map[uint16]string{
	TypeImplicitSha256DigestComponent:   "sha256digest",
	TypeParametersSha256DigestComponent: "params-sha256",
}

// Component is an NDN name component.
type Component struct {
	Typ uint16
	Val []byte
}

// NewGenericComponent creates a GenericNameComponent.
func NewGenericComponent(value string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(value)}
}

// NewNumberComponent creates a component of the given type holding a nonNegativeInteger.
func NewNumberComponent(typ uint16, value uint64) Component {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	switch 8 - i {
	case 3:
		i = 4
	case 5, 6, 7:
		i = 0
	}
	return Component{Typ: typ, Val: append([]byte(nil), buf[i:]...)}
}

// NumberValue interprets the component value as a nonNegativeInteger.
func (c Component) NumberValue() (uint64, bool) {
	switch len(c.Val) {
	case 1:
		return uint64(c.Val[0]), true
	case 2:
		return uint64(binary.BigEndian.Uint16(c.Val)), true
	case 4:
		return uint64(binary.BigEndian.Uint32(c.Val)), true
	case 8:
		return binary.BigEndian.Uint64(c.Val), true
	}
	return 0, false
}

// Equal returns whether two components have the same type and value.
func (c Component) Equal(other Component) bool {
	return c.Typ == other.Typ && bytes.Equal(c.Val, other.Val)
}

// Clone makes a deep copy of the component.
func (c Component) Clone() Component {
	return Component{Typ: c.Typ, Val: append([]byte(nil), c.Val...)}
}

// Key returns the TLV encoding of the component as a string.
// Two components have the same key if and only if they are equal.
func (c Component) Key() string {
	return string(c.appendKey(nil))
}

// Hash returns a hash of the TLV encoding of the component.
func (c Component) Hash() uint64 {
	return xxhash.Sum64(c.appendKey(nil))
}

func (c Component) String() string {
	if prefix, ok := digestPrefixes[c.Typ]; ok {
		return prefix + "=" + hex.EncodeToString(c.Val)
	}
	if prefix, ok := conventionPrefixes[c.Typ]; ok {
		if v, ok := c.NumberValue(); ok {
			return prefix + "=" + strconv.FormatUint(v, 10)
		}
	}
	if c.Typ == TypeGenericNameComponent {
		return escapeComponent(c.Val)
	}
	return strconv.FormatUint(uint64(c.Typ), 10) + "=" + escapeComponent(c.Val)
}

func (c Component) appendKey(b []byte) []byte {
	b = appendVarNum(b, uint64(c.Typ))
	b = appendVarNum(b, uint64(len(c.Val)))
	return append(b, c.Val...)
}

// ParseComponent decodes a name component from its URI representation.
func ParseComponent(str string) (Component, error) {
	typStr, valStr, hasType := strings.Cut(str, "=")
	if !hasType {
		val, err := unescapeComponent(str)
		if err != nil {
			return Component{}, err
		}
		return Component{Typ: TypeGenericNameComponent, Val: val}, nil
	}

	for typ, prefix := range digestPrefixes {
		if typStr == prefix {
			val, err := hex.DecodeString(valStr)
			if err != nil || len(val) != 32 {
				return Component{}, ErrComponentFormat
			}
			return Component{Typ: typ, Val: val}, nil
		}
	}
	for typ, prefix := range conventionPrefixes {
		if typStr == prefix {
			v, err := strconv.ParseUint(valStr, 10, 64)
			if err != nil {
				return Component{}, ErrComponentFormat
			}
			return NewNumberComponent(typ, v), nil
		}
	}

	typ, err := strconv.ParseUint(typStr, 10, 16)
	if err != nil || typ == 0 {
		return Component{}, ErrComponentFormat
	}
	val, err := unescapeComponent(valStr)
	if err != nil {
		return Component{}, err
	}
	return Component{Typ: uint16(typ), Val: val}, nil
}

func escapeComponent(in []byte) string {
	var out strings.Builder
	nPeriods := 0
	for _, b := range in {
		switch {
		case b == '.':
			nPeriods++
			out.WriteByte(b)
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '~':
			out.WriteByte(b)
		default:
			out.WriteByte('%')
			out.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
		}
	}
	if nPeriods == len(in) {
		out.WriteString("...")
	}
	return out.String()
}

func unescapeComponent(in string) ([]byte, error) {
	if len(in) >= 3 && strings.Trim(in, ".") == "" {
		return []byte(in[3:]), nil
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] != '%' {
			out = append(out, in[i])
			continue
		}
		if len(in) <= i+2 {
			return nil, ErrComponentFormat
		}
		b, err := hex.DecodeString(in[i+1 : i+3])
		if err != nil {
			return nil, ErrComponentFormat
		}
		out = append(out, b...)
		i += 2
	}
	return out, nil
}

func appendVarNum(b []byte, v uint64) []byte {
	switch {
	case v < 0xFD:
		return append(b, byte(v))
	case v <= 0xFFFF:
		return binary.BigEndian.AppendUint16(append(b, 0xFD), uint16(v))
	case v <= 0xFFFFFFFF:
		return binary.BigEndian.AppendUint32(append(b, 0xFE), uint32(v))
	default:
		return binary.BigEndian.AppendUint64(append(b, 0xFF), v)
	}
}

// Name is an NDN name. A Name is treated as immutable once constructed.
type Name []Component

// ParseName decodes a name from its URI representation.
func ParseName(str string) (Name, error) {
	str = strings.TrimPrefix(str, "ndn:")
	if !strings.HasPrefix(str, "/") {
		if str == "" {
			return Name{}, nil
		}
		return nil, ErrNameFormat
	}

	parts := strings.Split(str[1:], "/")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	n := make(Name, 0, len(parts))
	for _, part := range parts {
		c, err := ParseComponent(part)
		if err != nil {
			return nil, err
		}
		n = append(n, c)
	}
	return n, nil
}

// MustParseName is ParseName that panics on error, for constants and tests.
func MustParseName(str string) Name {
	n, err := ParseName(str)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var out strings.Builder
	for _, c := range n {
		out.WriteByte('/')
		out.WriteString(c.String())
	}
	return out.String()
}

// At returns the component at index i. Negative indexes count from the end.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	if i < 0 || i >= len(n) {
		return Component{}
	}
	return n[i]
}

// GetPrefix returns the first n components. Negative n drops -n components from the end.
func (n Name) GetPrefix(size int) Name {
	if size < 0 {
		size += len(n)
	}
	if size < 0 {
		size = 0
	}
	if size > len(n) {
		size = len(n)
	}
	return n[:size:size]
}

// Append returns a new name with the components appended.
func (n Name) Append(components ...Component) Name {
	ret := make(Name, len(n), len(n)+len(components))
	copy(ret, n)
	return append(ret, components...)
}

// Clone makes a deep copy of the name.
func (n Name) Clone() Name {
	ret := make(Name, len(n))
	for i, c := range n {
		ret[i] = c.Clone()
	}
	return ret
}

// Equal returns whether two names have the same components.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// IsPrefixOf returns whether this name is a prefix of (or equal to) other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Key returns the canonical byte form of the name, usable as a map key.
func (n Name) Key() string {
	b := make([]byte, 0, 8*len(n))
	for _, c := range n {
		b = c.appendKey(b)
	}
	return string(b)
}

// Hash returns a hash of the name.
func (n Name) Hash() uint64 {
	b := make([]byte, 0, 8*len(n))
	for _, c := range n {
		b = c.appendKey(b)
	}
	return xxhash.Sum64(b)
}

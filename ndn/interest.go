/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// DefaultInterestLifetime is the InterestLifetime of an Interest that does not carry one.
const DefaultInterestLifetime = 4000 * time.Millisecond

// Interest represents an NDN Interest packet.
type Interest struct {
	Name           Name
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint []Name
	Nonce          uint32
	Lifetime       time.Duration
	HopLimit       *uint8
	// ParamsDigest is the ParametersSha256DigestComponent value, if the Interest carries parameters.
	ParamsDigest []byte
}

// NewInterest creates a new Interest with the specified name and default values.
func NewInterest(name Name) *Interest {
	i := &Interest{
		Name:     name,
		Lifetime: DefaultInterestLifetime,
	}
	i.ResetNonce()
	return i
}

// ResetNonce assigns a random nonce.
func (i *Interest) ResetNonce() {
	i.Nonce = rand.Uint32()
}

// EffectiveLifetime returns the lifetime, substituting the default when unset.
func (i *Interest) EffectiveLifetime() time.Duration {
	if i.Lifetime <= 0 {
		return DefaultInterestLifetime
	}
	return i.Lifetime
}

// Clone makes a shallow copy suitable for forwarding with a modified nonce or hop limit.
func (i *Interest) Clone() *Interest {
	c := *i
	if i.HopLimit != nil {
		h := *i.HopLimit
		c.HopLimit = &h
	}
	return &c
}

func (i *Interest) String() string {
	var b strings.Builder
	b.WriteString(i.Name.String())
	if i.CanBePrefix {
		b.WriteString("[P]")
	}
	if i.MustBeFresh {
		b.WriteString("[F]")
	}
	b.WriteString(" nonce=")
	b.WriteString(strconv.FormatUint(uint64(i.Nonce), 16))
	return b.String()
}

/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "strconv"

// NackReason is the reason code carried by a Nack.
type NackReason uint8

// Nack reasons.
const (
	NackReasonNone        NackReason = 0
	NackReasonCongestion  NackReason = 50
	NackReasonDuplicate   NackReason = 100
	NackReasonNoRoute     NackReason = 150
	NackReasonUnspecified NackReason = 0xFF
)

func (r NackReason) String() string {
	switch r {
	case NackReasonNone:
		return "None"
	case NackReasonCongestion:
		return "Congestion"
	case NackReasonDuplicate:
		return "Duplicate"
	case NackReasonNoRoute:
		return "NoRoute"
	case NackReasonUnspecified:
		return "Unspecified"
	default:
		return strconv.Itoa(int(r))
	}
}

// severity orders reasons from least to most informative; Unspecified ranks with None.
func (r NackReason) severity() int {
	if r == NackReasonUnspecified {
		return 0
	}
	return int(r)
}

// LessFavorable returns the less favorable of two reasons, i.e. the one a downstream
// should see when both were reported by upstreams.
func (r NackReason) LessFavorable(other NackReason) NackReason {
	if other.severity() > r.severity() {
		return other
	}
	return r
}

// Nack represents an Interest returned with a reason.
type Nack struct {
	Interest *Interest
	Reason   NackReason
}

// NewNack creates a Nack of the given Interest.
func NewNack(interest *Interest, reason NackReason) *Nack {
	return &Nack{Interest: interest, Reason: reason}
}

func (n *Nack) String() string {
	if n.Interest == nil {
		return "~" + n.Reason.String()
	}
	return n.Interest.String() + " ~" + n.Reason.String()
}

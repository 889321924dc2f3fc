/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

// L3Packet is one of *Interest, *Data or *Nack.
type L3Packet interface {
	String() string
}

// Packet is a decoded network layer packet crossing the face boundary,
// together with an opaque token that is echoed back on replies.
type Packet struct {
	L3    L3Packet
	Token []byte
	// Cancel marks an Interest that withdraws a previous one from the same face.
	Cancel bool
}

// MakeInterestPacket wraps an Interest.
func MakeInterestPacket(interest *Interest, token []byte) *Packet {
	return &Packet{L3: interest, Token: token}
}

// MakeCancelPacket wraps an Interest cancellation.
func MakeCancelPacket(interest *Interest, token []byte) *Packet {
	return &Packet{L3: interest, Token: token, Cancel: true}
}

// MakeDataPacket wraps a Data.
func MakeDataPacket(data *Data, token []byte) *Packet {
	return &Packet{L3: data, Token: token}
}

// MakeNackPacket wraps a Nack.
func MakeNackPacket(nack *Nack, token []byte) *Packet {
	return &Packet{L3: nack, Token: token}
}

// Name returns the name of the carried packet.
func (p *Packet) Name() Name {
	switch l3 := p.L3.(type) {
	case *Interest:
		return l3.Name
	case *Data:
		return l3.Name
	case *Nack:
		return l3.Interest.Name
	}
	return nil
}

// Kind returns a short label for the packet type.
func (p *Packet) Kind() string {
	switch p.L3.(type) {
	case *Interest:
		if p.Cancel {
			return "Cancel"
		}
		return "Interest"
	case *Data:
		return "Data"
	case *Nack:
		return "Nack"
	}
	return "Unknown"
}

func (p *Packet) String() string {
	if p.L3 == nil {
		return "<empty>"
	}
	return p.Kind() + " " + p.L3.String()
}

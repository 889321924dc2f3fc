/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "time"

// Data represents an NDN Data packet.
type Data struct {
	Name            Name
	FreshnessPeriod time.Duration
	Content         []byte
}

// NewData creates a new Data packet with the given name and content.
func NewData(name Name, content []byte) *Data {
	return &Data{Name: name, Content: content}
}

// CanSatisfy determines whether this Data can satisfy an Interest with the given criteria.
func (d *Data) CanSatisfy(name Name, canBePrefix bool, mustBeFresh bool) bool {
	if mustBeFresh && d.FreshnessPeriod <= 0 {
		return false
	}
	if canBePrefix {
		return name.IsPrefixOf(d.Name)
	}
	return name.Equal(d.Name)
}

func (d *Data) String() string {
	return d.Name.String()
}

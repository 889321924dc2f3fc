/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"strconv"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/named-data/ndnfw/ndn"
)

// rttAlpha is the weight of a new sample in the RTT moving average.
const rttAlpha = 0.125

// Measurements holds per-prefix, per-face round trip time estimates.
// Readers may run on any goroutine.
type Measurements struct {
	table *hashmap.HashMap
}

// NewMeasurements creates an empty measurements table.
func NewMeasurements() *Measurements {
	return &Measurements{table: hashmap.New(256)}
}

func measurementKey(prefix ndn.Name, face uint64) string {
	return prefix.Key() + "@" + strconv.FormatUint(face, 10)
}

// RTT returns the smoothed round trip time measured for the face under the prefix.
func (m *Measurements) RTT(prefix ndn.Name, face uint64) (time.Duration, bool) {
	value, ok := m.table.GetStringKey(measurementKey(prefix, face))
	if !ok {
		return 0, false
	}
	return time.Duration(value.(float64)), true
}

// AddRTTSample folds a sample into the exponentially weighted moving average.
func (m *Measurements) AddRTTSample(prefix ndn.Name, face uint64, sample time.Duration) {
	key := measurementKey(prefix, face)
	for {
		expected, ok := m.table.GetStringKey(key)
		if !ok {
			if _, loaded := m.table.GetOrInsert(key, float64(sample)); !loaded {
				return
			}
			continue
		}
		old := expected.(float64)
		if m.table.Cas(key, expected, old+rttAlpha*(float64(sample)-old)) {
			return
		}
	}
}

// RemoveFace drops all measurements of the face under the prefix.
func (m *Measurements) RemoveFace(prefix ndn.Name, face uint64) {
	m.table.Del(measurementKey(prefix, face))
}

// Len returns the number of measurements.
func (m *Measurements) Len() int {
	return m.table.Len()
}

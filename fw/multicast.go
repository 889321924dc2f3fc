/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

// Multicast is a forwarding strategy that forwards Interests to all nexthop faces.
type Multicast struct{}

func init() {
	RegisterStrategy("multicast", func() Strategy { return &Multicast{} })
}

func (s *Multicast) String() string {
	return "Multicast"
}

// AfterReceiveInterest chooses every candidate.
func (s *Multicast) AfterReceiveInterest(ctx *StrategyContext, candidates []uint64) []uint64 {
	return candidates
}

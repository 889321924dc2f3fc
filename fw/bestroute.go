/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import "github.com/named-data/ndnfw/core"

// BestRoute is a forwarding strategy that forwards Interests to the nexthop with the lowest
// measured round trip time. Nexthops that have not been measured are tried first, in FIB order.
type BestRoute struct{}

func init() {
	RegisterStrategy("best-route", func() Strategy { return &BestRoute{} })
}

func (s *BestRoute) String() string {
	return "BestRoute"
}

// AfterReceiveInterest chooses a single candidate.
func (s *BestRoute) AfterReceiveInterest(ctx *StrategyContext, candidates []uint64) []uint64 {
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	bestRTT, measured := ctx.Measurements.RTT(ctx.Prefix, best)
	if measured {
		for _, nexthop := range candidates[1:] {
			rtt, ok := ctx.Measurements.RTT(ctx.Prefix, nexthop)
			if !ok {
				best = nexthop
				break
			}
			if rtt < bestRTT {
				best, bestRTT = nexthop, rtt
			}
		}
	}

	core.LogTrace(s, "AfterReceiveInterest: Forwarding Interest=", ctx.Interest.Name, " to FaceID=", best)
	return []uint64{best}
}

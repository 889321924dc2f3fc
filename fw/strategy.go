/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"sort"
	"sync"

	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/ndn"
	"github.com/named-data/ndnfw/table"
)

// Strategy is a forwarding strategy.
type Strategy interface {
	String() string

	// AfterReceiveInterest chooses the nexthops for a new PIT entry among the candidates.
	// Candidates never include the incoming face and are in FIB order.
	AfterReceiveInterest(ctx *StrategyContext, candidates []uint64) []uint64
}

// StrategyContext describes the Interest a strategy is deciding on.
type StrategyContext struct {
	Interest *ndn.Interest
	// Prefix is the FIB entry the candidates come from.
	Prefix       ndn.Name
	InFace       uint64
	Measurements *table.Measurements
}

var (
	strategyMutex sync.RWMutex
	strategyTypes = make(map[string]func() Strategy)
)

// RegisterStrategy makes a strategy available by name.
func RegisterStrategy(name string, makeStrategy func() Strategy) {
	strategyMutex.Lock()
	defer strategyMutex.Unlock()
	strategyTypes[name] = makeStrategy
}

// StrategyNames returns the names of registered strategies.
func StrategyNames() []string {
	strategyMutex.RLock()
	defer strategyMutex.RUnlock()
	names := make([]string, 0, len(strategyTypes))
	for name := range strategyTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instantiateStrategies creates an instance of every registered strategy for one forwarder.
func instantiateStrategies() map[string]Strategy {
	strategyMutex.RLock()
	defer strategyMutex.RUnlock()
	strategies := make(map[string]Strategy, len(strategyTypes))
	for name, makeStrategy := range strategyTypes {
		strategies[name] = makeStrategy()
		core.LogDebug("StrategyLoader", "Instantiated Strategy=", name)
	}
	return strategies
}

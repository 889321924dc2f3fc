/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"container/list"

	"github.com/named-data/ndnfw/ndn"
)

// FibEntry is a snapshot of one FIB entry.
type FibEntry struct {
	Name     ndn.Name
	NextHops []uint64
}

// StrategyChoice is a snapshot of one strategy choice entry.
type StrategyChoice struct {
	Name     ndn.Name
	Strategy string
}

type fibNode struct {
	component ndn.Component
	name      ndn.Name
	depth     int

	parent   *fibNode
	children map[string]*fibNode

	nexthops []uint64
	strategy string
}

// Fib is the combined FIB and strategy choice table, organized as a name tree.
// It is not safe for concurrent use: it belongs to the forwarder goroutine.
type Fib struct {
	root     *fibNode
	nEntries int
}

// NewFib creates an empty FIB whose root carries the default strategy.
func NewFib(defaultStrategy string) *Fib {
	return &Fib{
		root: &fibNode{
			name:     ndn.Name{},
			children: make(map[string]*fibNode),
			strategy: defaultStrategy,
		},
	}
}

func (n *fibNode) child(c ndn.Component) *fibNode {
	return n.children[c.Key()]
}

func (n *fibNode) findLongestPrefixNode(name ndn.Name) *fibNode {
	node := n
	for node.depth < len(name) {
		child := node.child(name[node.depth])
		if child == nil {
			break
		}
		node = child
	}
	return node
}

func (n *fibNode) findExactMatchNode(name ndn.Name) *fibNode {
	node := n.findLongestPrefixNode(name)
	if node.depth == len(name) {
		return node
	}
	return nil
}

func (f *Fib) fillTreeToPrefix(name ndn.Name) *fibNode {
	node := f.root.findLongestPrefixNode(name)
	for depth := node.depth; depth < len(name); depth++ {
		component := name[depth].Clone()
		child := &fibNode{
			component: component,
			name:      node.name.Append(component),
			depth:     depth + 1,
			parent:    node,
			children:  make(map[string]*fibNode),
		}
		node.children[component.Key()] = child
		node = child
	}
	return node
}

// pruneIfEmpty removes nodes that no longer carry nexthops, a strategy, or children.
func (n *fibNode) pruneIfEmpty() {
	for node := n; node.parent != nil && len(node.children) == 0 &&
		len(node.nexthops) == 0 && node.strategy == ""; node = node.parent {
		delete(node.parent.children, node.component.Key())
	}
}

// FindNextHops returns the nexthops of the longest prefix of name that has any.
func (f *Fib) FindNextHops(name ndn.Name) []uint64 {
	_, nexthops := f.LongestPrefixMatch(name)
	return nexthops
}

// LongestPrefixMatch returns the longest prefix of name that has nexthops, and those nexthops.
func (f *Fib) LongestPrefixMatch(name ndn.Name) (ndn.Name, []uint64) {
	for node := f.root.findLongestPrefixNode(name); node != nil; node = node.parent {
		if len(node.nexthops) > 0 {
			return node.name, append([]uint64(nil), node.nexthops...)
		}
	}
	return nil, nil
}

// FindStrategy returns the strategy chosen for the longest prefix of name that has one.
func (f *Fib) FindStrategy(name ndn.Name) string {
	for node := f.root.findLongestPrefixNode(name); node != nil; node = node.parent {
		if node.strategy != "" {
			return node.strategy
		}
	}
	return ""
}

// NextHops returns the nexthops registered on exactly this prefix.
func (f *Fib) NextHops(name ndn.Name) []uint64 {
	node := f.root.findExactMatchNode(name)
	if node == nil {
		return nil
	}
	return append([]uint64(nil), node.nexthops...)
}

// InsertNextHop adds a face to the entry of the prefix, creating the entry if needed.
// Returns false if the face was already a nexthop.
func (f *Fib) InsertNextHop(name ndn.Name, face uint64) bool {
	node := f.fillTreeToPrefix(name)
	for _, nh := range node.nexthops {
		if nh == face {
			return false
		}
	}
	if len(node.nexthops) == 0 {
		f.nEntries++
	}
	node.nexthops = append(node.nexthops, face)
	return true
}

// RemoveNextHop removes a face from the entry of the prefix, deleting the entry
// when its last nexthop goes. Returns false if the face was not a nexthop.
func (f *Fib) RemoveNextHop(name ndn.Name, face uint64) bool {
	node := f.root.findExactMatchNode(name)
	if node == nil {
		return false
	}
	for i, nh := range node.nexthops {
		if nh == face {
			node.nexthops = append(node.nexthops[:i], node.nexthops[i+1:]...)
			if len(node.nexthops) == 0 {
				f.nEntries--
				node.nexthops = nil
			}
			node.pruneIfEmpty()
			return true
		}
	}
	return false
}

// SetStrategy sets the strategy for the specified prefix.
func (f *Fib) SetStrategy(name ndn.Name, strategy string) {
	f.fillTreeToPrefix(name).strategy = strategy
}

// UnsetStrategy unsets the strategy for the specified prefix. The root choice cannot be unset.
func (f *Fib) UnsetStrategy(name ndn.Name) {
	node := f.root.findExactMatchNode(name)
	if node == nil || node == f.root {
		return
	}
	node.strategy = ""
	node.pruneIfEmpty()
}

// Size returns the number of FIB entries, i.e. prefixes with at least one nexthop.
func (f *Fib) Size() int {
	return f.nEntries
}

// Entries returns all FIB entries.
func (f *Fib) Entries() []FibEntry {
	entries := make([]FibEntry, 0, f.nEntries)
	f.walk(func(node *fibNode) {
		if len(node.nexthops) > 0 {
			entries = append(entries, FibEntry{
				Name:     node.name,
				NextHops: append([]uint64(nil), node.nexthops...),
			})
		}
	})
	return entries
}

// StrategyChoices returns all strategy choice entries.
func (f *Fib) StrategyChoices() []StrategyChoice {
	choices := make([]StrategyChoice, 0)
	f.walk(func(node *fibNode) {
		if node.strategy != "" {
			choices = append(choices, StrategyChoice{Name: node.name, Strategy: node.strategy})
		}
	})
	return choices
}

func (f *Fib) walk(fn func(*fibNode)) {
	queue := list.New()
	queue.PushBack(f.root)
	for queue.Len() > 0 {
		node := queue.Remove(queue.Front()).(*fibNode)
		for _, child := range node.children {
			queue.PushBack(child)
		}
		fn(node)
	}
}

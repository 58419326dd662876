/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"sort"

	"github.com/ndn-forwarding/corefwd/face"
	"github.com/ndn-forwarding/corefwd/ndn"
)

// FibNextHopEntry is a single next hop within a FIB entry.
type FibNextHopEntry struct {
	Nexthop uint64
	Cost    uint64
}

// FibEntry is a FIB entry attached to a name tree node.
type FibEntry struct {
	node     *Node
	nexthops []*FibNextHopEntry
}

// Name returns the prefix this entry was registered for.
func (e *FibEntry) Name() ndn.Name { return e.node.Name() }

// Nexthops returns a copy of the entry's next hops.
func (e *FibEntry) Nexthops() []*FibNextHopEntry {
	out := make([]*FibNextHopEntry, len(e.nexthops))
	copy(out, e.nexthops)
	return out
}

// NewNextHopEvent is delivered on Fib.AfterNewNextHop when a FIB entry
// gains a next hop.
type NewNextHopEvent struct {
	Prefix  ndn.Name
	NextHop FibNextHopEntry
}

// Fib is the Forwarding Information Base: it shares the name tree
// with PIT/CS/Measurements/StrategyChoice so that FIB update
// propagation (New Next Hop pipeline) can enumerate shadowed PIT
// entries directly off the tree instead of walking a second parallel
// trie.
type Fib struct {
	tree *NameTree

	AfterNewNextHop face.Signal[NewNextHopEvent]
}

// NewFib wraps tree as a FIB view.
func NewFib(tree *NameTree) *Fib {
	return &Fib{tree: tree}
}

// FindLongestPrefixMatch returns the FIB entry with the longest prefix
// match for name, or nil if no entry covers it.
func (f *Fib) FindLongestPrefixMatch(name ndn.Name) *FibEntry {
	for cur := f.tree.FindLongestPrefixMatch(name); cur != nil; cur = cur.parent {
		if cur.fibEntry != nil {
			return cur.fibEntry
		}
	}
	return nil
}

// Insert creates (if absent) a FIB entry for prefix and returns it.
func (f *Fib) Insert(prefix ndn.Name) *FibEntry {
	node := f.tree.Lookup(prefix)
	if node.fibEntry == nil {
		node.fibEntry = &FibEntry{node: node}
	}
	return node.fibEntry
}

// AddOrUpdateNextHop adds nextHop to prefix's FIB entry (creating the
// entry if needed) or updates its cost if it already exists, emitting
// AfterNewNextHop only when the hop is new.
func (f *Fib) AddOrUpdateNextHop(prefix ndn.Name, nextHop uint64, cost uint64) {
	entry := f.Insert(prefix)
	for _, existing := range entry.nexthops {
		if existing.Nexthop == nextHop {
			existing.Cost = cost
			sort.Slice(entry.nexthops, func(i, j int) bool { return entry.nexthops[i].Cost < entry.nexthops[j].Cost })
			return
		}
	}

	hop := &FibNextHopEntry{Nexthop: nextHop, Cost: cost}
	entry.nexthops = append(entry.nexthops, hop)
	sort.Slice(entry.nexthops, func(i, j int) bool { return entry.nexthops[i].Cost < entry.nexthops[j].Cost })
	f.AfterNewNextHop.Emit(NewNextHopEvent{Prefix: prefix, NextHop: *hop})
}

// RemoveNextHop removes nextHop from prefix's FIB entry, erasing the
// entry (and pruning the tree) if no next hops remain.
func (f *Fib) RemoveNextHop(prefix ndn.Name, nextHop uint64) {
	node := f.tree.FindExactMatch(prefix)
	if node == nil || node.fibEntry == nil {
		return
	}
	entry := node.fibEntry
	for i, existing := range entry.nexthops {
		if existing.Nexthop == nextHop {
			entry.nexthops = append(entry.nexthops[:i], entry.nexthops[i+1:]...)
			break
		}
	}
	if len(entry.nexthops) == 0 {
		f.Erase(entry)
	}
}

// RemoveFace drops faceID from every next hop list in the FIB,
// erasing any entry left with no next hops.
func (f *Fib) RemoveFace(faceID uint64) {
	for _, entry := range f.GetAll() {
		f.RemoveNextHop(entry.Name(), faceID)
	}
}

// Erase removes entry from the FIB outright.
func (f *Fib) Erase(entry *FibEntry) {
	entry.node.fibEntry = nil
	f.tree.pruneIfEmpty(entry.node)
}

// GetAll returns every FIB entry in the table.
func (f *Fib) GetAll() []*FibEntry {
	var out []*FibEntry
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.fibEntry != nil {
			out = append(out, n.fibEntry)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(f.tree.Root())
	return out
}

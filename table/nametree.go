/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package table holds the forwarder's shared state: the name tree and
// the FIB, PIT, Content Store, Dead Nonce List, Measurements, and
// Strategy Choice tables attached to it.
package table

import (
	"github.com/ndn-forwarding/corefwd/ndn"
)

// Node is a single name tree node. FIB, PIT, Content Store,
// Measurements, and Strategy Choice entries all attach to the same
// node for a given name, so a single lookup locates every table's
// state for that prefix - the tree itself carries no table-specific
// logic beyond component matching and pruning.
type Node struct {
	component ndn.NameComponent
	depth     int

	parent   *Node
	children []*Node

	fibEntry     *FibEntry
	strategy     ndn.Name
	pitEntries   []*PitEntry
	csEntry      *CsEntry
	measurements *MeasurementEntry
}

// Depth returns the node's distance from the tree root (0 = root).
func (n *Node) Depth() int { return n.depth }

// HasFibEntry reports whether this node carries its own FIB entry,
// used by the New Next Hop pipeline to find nodes shadowed by a more
// specific registration.
func (n *Node) HasFibEntry() bool { return n.fibEntry != nil }

// PitEntries returns a copy of the PIT entries attached to this node.
func (n *Node) PitEntries() []*PitEntry {
	out := make([]*PitEntry, len(n.pitEntries))
	copy(out, n.pitEntries)
	return out
}

// Name reconstructs the full name represented by this node.
func (n *Node) Name() ndn.Name {
	if n.parent == nil {
		return ndn.Name{}
	}
	return append(n.parent.Name(), n.component)
}

// isEmpty reports whether the node carries no information at all and
// can be pruned once it has no children.
func (n *Node) isEmpty() bool {
	return n.fibEntry == nil && n.strategy == nil &&
		len(n.pitEntries) == 0 && n.csEntry == nil && n.measurements == nil
}

// NameTree is the shared trie underlying every forwarding table.
type NameTree struct {
	root *Node
}

// NewNameTree creates an empty name tree with only a root node.
func NewNameTree() *NameTree {
	return &NameTree{root: &Node{}}
}

// Root returns the tree's root node, representing the empty name.
func (t *NameTree) Root() *Node { return t.root }

func (n *Node) findExactMatch(name ndn.Name) *Node {
	if name.Size() > n.depth {
		for _, child := range n.children {
			if name.At(child.depth - 1).Equals(child.component) {
				return child.findExactMatch(name)
			}
		}
	} else if name.Size() == n.depth {
		return n
	}
	return nil
}

func (n *Node) findLongestPrefixMatch(name ndn.Name) *Node {
	if name.Size() > n.depth {
		for _, child := range n.children {
			if name.At(child.depth - 1).Equals(child.component) {
				return child.findLongestPrefixMatch(name)
			}
		}
	}
	return n
}

func (n *Node) fillToPrefix(name ndn.Name) *Node {
	cur := n.findLongestPrefixMatch(name)
	for depth := cur.depth + 1; depth <= name.Size(); depth++ {
		child := &Node{
			component: name.At(depth - 1),
			depth:     depth,
			parent:    cur,
		}
		cur.children = append(cur.children, child)
		cur = child
	}
	return cur
}

// FindExactMatch returns the node whose name exactly equals name, or
// nil if no such node exists.
func (t *NameTree) FindExactMatch(name ndn.Name) *Node {
	return t.root.findExactMatch(name)
}

// FindLongestPrefixMatch returns the deepest existing node whose name
// is a prefix of (or equal to) name.
func (t *NameTree) FindLongestPrefixMatch(name ndn.Name) *Node {
	return t.root.findLongestPrefixMatch(name)
}

// Lookup returns the node for name, creating every missing node along
// the path if necessary.
func (t *NameTree) Lookup(name ndn.Name) *Node {
	return t.root.fillToPrefix(name)
}

// pruneIfEmpty removes n and any now-empty, childless ancestor chain
// from the tree.
func (t *NameTree) pruneIfEmpty(n *Node) {
	for cur := n; cur.parent != nil && len(cur.children) == 0 && cur.isEmpty(); cur = cur.parent {
		parent := cur.parent
		for i, child := range parent.children {
			if child == cur {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
}

// EnumeratePredicate controls PartialEnumerate's traversal: Visit
// decides whether a node is reported, Descend decides whether its
// children are explored.
type EnumeratePredicate func(n *Node) (visit bool, descend bool)

// PartialEnumerate performs a pre-order traversal rooted at the node
// for prefix (creating nothing), visiting a node only when pred
// reports visit=true and descending into its children only when pred
// reports descend=true. This is how a FIB update finds PIT entries
// under a prefix that are not shadowed by a more specific FIB entry.
func (t *NameTree) PartialEnumerate(prefix ndn.Name, pred EnumeratePredicate) []*Node {
	start := t.FindExactMatch(prefix)
	if start == nil {
		return nil
	}

	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		visit, descend := pred(n)
		if visit {
			out = append(out, n)
		}
		if descend {
			for _, child := range n.children {
				walk(child)
			}
		}
	}
	walk(start)
	return out
}

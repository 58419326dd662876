/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import "github.com/ndn-forwarding/corefwd/ndn"

// StrategyChoiceEntry is a single recorded prefix -> strategy mapping.
type StrategyChoiceEntry struct {
	Name     ndn.Name
	Strategy ndn.Name
}

// StrategyChoice maps name prefixes to strategy names, sharing the
// same name tree as the FIB/PIT/CS so the longest-prefix walk is the
// same walk the other tables use.
type StrategyChoice struct {
	tree    *NameTree
	dflt    ndn.Name
}

// NewStrategyChoice creates a StrategyChoice table falling back to
// defaultStrategy for any name with no more specific entry.
func NewStrategyChoice(tree *NameTree, defaultStrategy ndn.Name) *StrategyChoice {
	return &StrategyChoice{tree: tree, dflt: defaultStrategy}
}

// FindEffectiveStrategy returns the strategy name for the longest
// matching prefix of name, falling back to the configured default.
func (s *StrategyChoice) FindEffectiveStrategy(name ndn.Name) ndn.Name {
	for cur := s.tree.FindLongestPrefixMatch(name); cur != nil; cur = cur.parent {
		if cur.strategy != nil {
			return cur.strategy
		}
	}
	return s.dflt
}

// Set assigns strategy to prefix.
func (s *StrategyChoice) Set(prefix ndn.Name, strategy ndn.Name) {
	node := s.tree.Lookup(prefix)
	node.strategy = strategy
}

// Unset removes any strategy assignment at prefix exactly (not its
// descendants), pruning the tree if the node is now empty.
func (s *StrategyChoice) Unset(prefix ndn.Name) {
	node := s.tree.FindExactMatch(prefix)
	if node == nil {
		return
	}
	node.strategy = nil
	s.tree.pruneIfEmpty(node)
}

// GetAll returns every explicit strategy choice entry (not the
// default, and not inherited assignments).
func (s *StrategyChoice) GetAll() []StrategyChoiceEntry {
	var out []StrategyChoiceEntry
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.strategy != nil {
			out = append(out, StrategyChoiceEntry{Name: n.Name(), Strategy: n.strategy})
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(s.tree.Root())
	return out
}

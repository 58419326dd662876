/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// StrategyChoice maps name prefixes to live Strategy instances,
// layering a static Go registry over table.StrategyChoice's
// name-to-strategy-name mapping. table itself cannot hold Strategy
// instances directly without an import cycle (table is imported by
// fw, not the reverse), which is why table.StrategyChoice only stores
// ndn.Name and the instance lookup happens here. Strategies are
// registered statically at construction; there is no dynamic loader.
type StrategyChoice struct {
	names    *table.StrategyChoice
	registry map[string]Strategy
}

// NewStrategyChoice creates a StrategyChoice whose registry initially
// contains the given strategies, keyed by their own Name(). defaultName
// must be a key of one of them.
func NewStrategyChoice(tree *table.NameTree, defaultName ndn.Name, strategies ...Strategy) *StrategyChoice {
	sc := &StrategyChoice{
		names:    table.NewStrategyChoice(tree, defaultName),
		registry: make(map[string]Strategy, len(strategies)),
	}
	for _, s := range strategies {
		sc.registry[s.Name().String()] = s
	}
	return sc
}

// Register adds a strategy instance to the registry without assigning
// it to any prefix.
func (sc *StrategyChoice) Register(s Strategy) {
	sc.registry[s.Name().String()] = s
}

// Set assigns the strategy named strategyName to prefix. It is a
// no-op if no strategy with that name is registered.
func (sc *StrategyChoice) Set(prefix ndn.Name, strategyName ndn.Name) {
	if _, ok := sc.registry[strategyName.String()]; !ok {
		return
	}
	sc.names.Set(prefix, strategyName)
}

// Unset removes any explicit strategy choice at prefix.
func (sc *StrategyChoice) Unset(prefix ndn.Name) {
	sc.names.Unset(prefix)
}

// FindEffectiveStrategy returns the Strategy instance for the longest
// matching prefix of name, falling back to the configured default.
func (sc *StrategyChoice) FindEffectiveStrategy(name ndn.Name) Strategy {
	return sc.registry[sc.names.FindEffectiveStrategy(name).String()]
}

// FindEffectiveStrategyForEntry is a convenience wrapper for the
// common case of dispatching off a PIT entry's name.
func (sc *StrategyChoice) FindEffectiveStrategyForEntry(entry *table.PitEntry) Strategy {
	return sc.FindEffectiveStrategy(entry.Name())
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/cornelk/hashmap"

	"github.com/ndn-forwarding/corefwd/ndn"
)

// MeasurementEntry is the per-name-tree-node measurement slot a
// Strategy uses to keep statistics (RTT estimates, per-nexthop scores)
// keyed by its own string keys. It is backed by a lock-free hash map,
// one instance per node rather than a single process-wide table, so
// per-prefix state survives as long as the node stays in the tree and
// is pruned along with it.
type MeasurementEntry struct {
	values *hashmap.HashMap
}

func newMeasurementEntry() *MeasurementEntry {
	return &MeasurementEntry{values: &hashmap.HashMap{}}
}

// Get returns the value stored at key, or nil if unset.
func (m *MeasurementEntry) Get(key string) any {
	value, ok := m.values.GetStringKey(key)
	if !ok {
		return nil
	}
	return value
}

// CompareAndSwap atomically sets key from expected to value,
// returning success.
func (m *MeasurementEntry) CompareAndSwap(key string, expected, value any) bool {
	return m.values.Cas(key, expected, value)
}

// AddInt adds delta to the integer stored at key (0 if unset).
func (m *MeasurementEntry) AddInt(key string, delta int) {
	for {
		expected := m.Get(key)
		if expected != nil {
			if m.CompareAndSwap(key, expected, expected.(int)+delta) {
				return
			}
			continue
		}
		if _, loaded := m.values.GetOrInsert(key, delta); !loaded {
			return
		}
	}
}

// AddEWMASample folds measurement into the exponentially weighted
// moving average stored at key with smoothing factor alpha, seeding
// the average with the first sample if key is unset.
func (m *MeasurementEntry) AddEWMASample(key string, measurement float64, alpha float64) {
	for {
		expected := m.Get(key)
		if expected != nil {
			current := expected.(float64)
			newValue := current + alpha*(measurement-current)
			if m.CompareAndSwap(key, expected, newValue) {
				return
			}
			continue
		}
		if _, loaded := m.values.GetOrInsert(key, measurement); !loaded {
			return
		}
	}
}

// Measurements is a thin view over the name tree that lazily attaches
// a MeasurementEntry to the node for a given name.
type Measurements struct {
	tree *NameTree
}

// NewMeasurements creates a Measurements view over tree.
func NewMeasurements(tree *NameTree) *Measurements {
	return &Measurements{tree: tree}
}

// Get returns (creating if absent) the measurement slot for name.
func (m *Measurements) Get(name ndn.Name) *MeasurementEntry {
	node := m.tree.Lookup(name)
	if node.measurements == nil {
		node.measurements = newMeasurementEntry()
	}
	return node.measurements
}

// FindLongestPrefixMatch returns the nearest ancestor's measurement
// slot for name, or nil if none of its ancestors have one.
func (m *Measurements) FindLongestPrefixMatch(name ndn.Name) *MeasurementEntry {
	for cur := m.tree.FindLongestPrefixMatch(name); cur != nil; cur = cur.parent {
		if cur.measurements != nil {
			return cur.measurements
		}
	}
	return nil
}

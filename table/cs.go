/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/cespare/xxhash"

	"github.com/ndn-forwarding/corefwd/ndn"
)

// CsEntry is a single cached Data packet.
type CsEntry struct {
	node  *Node
	index uint64

	Data        *ndn.Data
	StaleTime   time.Time
	Unsolicited bool
}

// CsReplacementPolicy is a pluggable Content Store admission/eviction
// policy, notified on every insert, refresh, erase, and use.
type CsReplacementPolicy interface {
	AfterInsert(index uint64, data *ndn.Data)
	AfterRefresh(index uint64, data *ndn.Data)
	BeforeErase(index uint64, data *ndn.Data)
	BeforeUse(index uint64, data *ndn.Data)
	EvictEntries()
}

// UnsolicitedDataPolicy decides what to do with Data that arrived with
// no matching PIT entry.
type UnsolicitedDataPolicy interface {
	Decide(data *ndn.Data, ingress uint64, ingressLocal bool) bool
}

// DropAllUnsolicitedPolicy never admits unsolicited Data to the cache.
type DropAllUnsolicitedPolicy struct{}

// Decide always returns false.
func (DropAllUnsolicitedPolicy) Decide(*ndn.Data, uint64, bool) bool { return false }

// CacheAllUnsolicitedPolicy admits every piece of unsolicited Data.
type CacheAllUnsolicitedPolicy struct{}

// Decide always returns true.
func (CacheAllUnsolicitedPolicy) Decide(*ndn.Data, uint64, bool) bool { return true }

// CacheAdmitLocalUnsolicitedPolicy admits unsolicited Data only when
// it arrived on a local face.
type CacheAdmitLocalUnsolicitedPolicy struct{}

// Decide returns ingressLocal.
func (CacheAdmitLocalUnsolicitedPolicy) Decide(_ *ndn.Data, _ uint64, ingressLocal bool) bool {
	return ingressLocal
}

// CacheAdmitNetworkUnsolicitedPolicy admits unsolicited Data only when
// it arrived on a non-local face.
type CacheAdmitNetworkUnsolicitedPolicy struct{}

// Decide returns !ingressLocal.
func (CacheAdmitNetworkUnsolicitedPolicy) Decide(_ *ndn.Data, _ uint64, ingressLocal bool) bool {
	return !ingressLocal
}

// ContentStore caches Data packets, sharing the name tree with the
// rest of the forwarding tables.
type ContentStore struct {
	tree        *NameTree
	index       map[uint64]*CsEntry
	size        int
	replacement CsReplacementPolicy
}

// NewContentStore creates a Content Store backed by tree. A
// replacement policy must be attached with SetReplacement before
// Insert is called; this two-step construction lets the policy (e.g.
// CsLRU) hold a reference back to the store.
func NewContentStore(tree *NameTree) *ContentStore {
	return &ContentStore{
		tree:  tree,
		index: make(map[uint64]*CsEntry),
	}
}

// SetReplacement attaches the store's eviction policy.
func (c *ContentStore) SetReplacement(replacement CsReplacementPolicy) {
	c.replacement = replacement
}

// Size returns the number of entries presently cached.
func (c *ContentStore) Size() int { return c.size }

func hashName(name ndn.Name) uint64 {
	h := xxhash.New()
	for _, comp := range name {
		_, _ = h.Write(comp.Val)
	}
	return h.Sum64()
}

// Insert admits data into the cache, subject to the replacement
// policy's eviction pass. unsolicited marks Data that arrived with no
// matching PIT entry, so status reporting can distinguish it.
func (c *ContentStore) Insert(data *ndn.Data, unsolicited bool) {
	index := hashName(data.Name())
	staleTime := data.StaleTime(time.Now())

	if entry, ok := c.index[index]; ok {
		entry.Data = data
		entry.StaleTime = staleTime
		entry.Unsolicited = unsolicited
		c.replacement.AfterRefresh(index, data)
		return
	}

	node := c.tree.Lookup(data.Name())
	entry := &CsEntry{node: node, index: index, Data: data, StaleTime: staleTime, Unsolicited: unsolicited}
	node.csEntry = entry
	c.index[index] = entry
	c.size++
	c.replacement.AfterInsert(index, data)
	c.replacement.EvictEntries()
}

// Find returns the best matching cache entry for interest (honoring
// CanBePrefix and MustBeFresh), or nil on a miss.
func (c *ContentStore) Find(interest *ndn.Interest) *CsEntry {
	if !interest.CanBePrefix() {
		node := c.tree.FindExactMatch(interest.Name())
		if node == nil || node.csEntry == nil {
			return nil
		}
		if interest.MustBeFresh() && !time.Now().Before(node.csEntry.StaleTime) {
			return nil
		}
		c.replacement.BeforeUse(node.csEntry.index, node.csEntry.Data)
		return node.csEntry
	}

	node := c.tree.FindExactMatch(interest.Name())
	if node == nil {
		return nil
	}
	entry := findMatchingPrefix(node, interest)
	if entry != nil {
		c.replacement.BeforeUse(entry.index, entry.Data)
	}
	return entry
}

func findMatchingPrefix(n *Node, interest *ndn.Interest) *CsEntry {
	if n.csEntry != nil && (!interest.MustBeFresh() || time.Now().Before(n.csEntry.StaleTime)) {
		return n.csEntry
	}
	nameLen := interest.Name().Size()
	if n.depth < nameLen {
		for _, child := range n.children {
			if interest.Name().At(n.depth).Equals(child.component) {
				return findMatchingPrefix(child, interest)
			}
		}
		return nil
	}
	for _, child := range n.children {
		if found := findMatchingPrefix(child, interest); found != nil {
			return found
		}
	}
	return nil
}

// Erase removes entry from the cache, notifying the replacement policy first.
func (c *ContentStore) Erase(entry *CsEntry) {
	c.replacement.BeforeErase(entry.index, entry.Data)
	c.eraseIndex(entry.index)
}

// eraseIndex is called back by the replacement policy during EvictEntries.
func (c *ContentStore) eraseIndex(index uint64) {
	entry, ok := c.index[index]
	if !ok {
		return
	}
	entry.node.csEntry = nil
	delete(c.index, index)
	c.size--
	c.tree.pruneIfEmpty(entry.node)
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"container/list"

	"github.com/ndn-forwarding/corefwd/ndn"
)

// CsLRU is the default CsReplacementPolicy: evict least-recently-used
// entries once the store exceeds capacity.
type CsLRU struct {
	cs       *ContentStore
	capacity int

	order *list.List
	elems map[uint64]*list.Element
}

// NewCsLRU creates an LRU replacement policy bound to cs with the
// given capacity (entries, not bytes).
func NewCsLRU(cs *ContentStore, capacity int) *CsLRU {
	return &CsLRU{
		cs:       cs,
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[uint64]*list.Element),
	}
}

// AfterInsert records index as most-recently-used.
func (l *CsLRU) AfterInsert(index uint64, _ *ndn.Data) {
	l.elems[index] = l.order.PushFront(index)
}

// AfterRefresh marks index as most-recently-used again.
func (l *CsLRU) AfterRefresh(index uint64, _ *ndn.Data) {
	if elem, ok := l.elems[index]; ok {
		l.order.MoveToFront(elem)
	}
}

// BeforeErase drops index's LRU bookkeeping.
func (l *CsLRU) BeforeErase(index uint64, _ *ndn.Data) {
	if elem, ok := l.elems[index]; ok {
		l.order.Remove(elem)
		delete(l.elems, index)
	}
}

// BeforeUse marks index as most-recently-used on a cache hit.
func (l *CsLRU) BeforeUse(index uint64, _ *ndn.Data) {
	if elem, ok := l.elems[index]; ok {
		l.order.MoveToFront(elem)
	}
}

// EvictEntries evicts least-recently-used entries until the store is
// at or below capacity.
func (l *CsLRU) EvictEntries() {
	for l.cs.Size() > l.capacity {
		back := l.order.Back()
		if back == nil {
			return
		}
		index := back.Value.(uint64)
		l.order.Remove(back)
		delete(l.elems, index)
		l.cs.eraseIndex(index)
	}
}

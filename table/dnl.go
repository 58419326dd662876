/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/cespare/xxhash"

	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/utils/priority_queue"
)

// DeadNonceList bounds memory of recently forwarded (name, nonce)
// pairs independently of Interest rate: entries normally age out after
// lifetime, but once the list reaches capacity the oldest entries are
// evicted immediately regardless of age.
type DeadNonceList struct {
	lifetime time.Duration
	capacity int

	entries map[uint64]struct{}
	order   priority_queue.Queue[uint64, int64]
}

// NewDeadNonceList creates a Dead Nonce List retaining entries for
// lifetime, never growing past capacity entries.
func NewDeadNonceList(lifetime time.Duration, capacity int) *DeadNonceList {
	return &DeadNonceList{
		lifetime: lifetime,
		capacity: capacity,
		entries:  make(map[uint64]struct{}),
		order:    priority_queue.New[uint64, int64](),
	}
}

// GetLifetime returns the list's target retention window.
func (d *DeadNonceList) GetLifetime() time.Duration { return d.lifetime }

// Size returns the current number of entries.
func (d *DeadNonceList) Size() int { return len(d.entries) }

func dnlHash(name ndn.Name, nonce uint32) uint64 {
	h := xxhash.New()
	for _, comp := range name {
		_, _ = h.Write(comp.Val)
	}
	var buf [4]byte
	buf[0] = byte(nonce)
	buf[1] = byte(nonce >> 8)
	buf[2] = byte(nonce >> 16)
	buf[3] = byte(nonce >> 24)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Has reports whether (name, nonce) is present in the list.
func (d *DeadNonceList) Has(name ndn.Name, nonce uint32) bool {
	_, ok := d.entries[dnlHash(name, nonce)]
	return ok
}

// Add inserts (name, nonce) into the list, evicting the oldest entry
// first if the list is already at capacity.
func (d *DeadNonceList) Add(name ndn.Name, nonce uint32) {
	hash := dnlHash(name, nonce)
	if _, exists := d.entries[hash]; exists {
		return
	}
	for len(d.entries) >= d.capacity && d.order.Len() > 0 {
		oldest := d.order.Pop()
		delete(d.entries, oldest)
	}
	d.entries[hash] = struct{}{}
	d.order.Push(hash, time.Now().Add(d.lifetime).UnixNano())
}

// RemoveExpired drops every entry older than lifetime, up to a bound
// per call so a single sweep cannot stall the event loop.
func (d *DeadNonceList) RemoveExpired() {
	const maxPerSweep = 1000
	now := time.Now().UnixNano()
	evicted := 0
	for d.order.Len() > 0 && d.order.PeekPriority() < now && evicted < maxPerSweep {
		hash := d.order.Pop()
		delete(d.entries, hash)
		evicted++
	}
}

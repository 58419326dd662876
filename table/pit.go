/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"math/rand"
	"time"

	"github.com/ndn-forwarding/corefwd/ndn"
)

// NonceDuplication is a bitmask describing where a duplicate nonce was
// found relative to a PIT entry.
type NonceDuplication int

// Bits of NonceDuplication. A nonce can be duplicated in more than one
// record at once, hence the bitmask rather than an enum.
const (
	DuplicateNonceNone     NonceDuplication = 0
	DuplicateNonceInSame   NonceDuplication = 1 << 0
	DuplicateNonceInOther  NonceDuplication = 1 << 1
	DuplicateNonceOutSame  NonceDuplication = 1 << 2
	DuplicateNonceOutOther NonceDuplication = 1 << 3
)

// PitInRecord records an incoming Interest on a given face.
type PitInRecord struct {
	Face           uint64
	LatestNonce    uint32
	LatestInterest *ndn.Interest
	PitToken       uint32
	ExpirationTime time.Time
}

// PitOutRecord records an outgoing Interest on a given face.
type PitOutRecord struct {
	Face           uint64
	LatestNonce    uint32
	LatestInterest *ndn.Interest
	ExpirationTime time.Time
	NackReason     *ndn.NackReason
}

// PitEntry is a single pending Interest. A PIT entry tracks at most
// one in-record and one out-record per face, and owns at most one
// live expiry timer handle, enforced here by always Stop()-ing any
// prior timer before arming a new one.
type PitEntry struct {
	node *Node
	pit  *Pit

	name           ndn.Name
	canBePrefix    bool
	mustBeFresh    bool
	forwardingHint []ndn.Name

	InRecords  map[uint64]*PitInRecord
	OutRecords map[uint64]*PitOutRecord

	ExpirationTime      time.Time
	Satisfied           bool
	Token               uint32
	DataFreshnessPeriod time.Duration

	timer *time.Timer

	// StrategyState is an opaque slot a Strategy may use for per-entry
	// scratch state; the tables never look inside it.
	StrategyState any
}

// Name returns the entry's name.
func (e *PitEntry) Name() ndn.Name { return e.name }

// CanBePrefix reports the CanBePrefix selector recorded for this entry.
func (e *PitEntry) CanBePrefix() bool { return e.canBePrefix }

// MustBeFresh reports the MustBeFresh selector recorded for this entry.
func (e *PitEntry) MustBeFresh() bool { return e.mustBeFresh }

// HasInRecords reports whether the entry has any in-records.
func (e *PitEntry) HasInRecords() bool { return len(e.InRecords) > 0 }

// InRecord returns the in-record for face, or nil.
func (e *PitEntry) InRecord(face uint64) *PitInRecord { return e.InRecords[face] }

// OutRecord returns the out-record for face, or nil.
func (e *PitEntry) OutRecord(face uint64) *PitOutRecord { return e.OutRecords[face] }

// DeleteInRecord removes the in-record for face, if any.
func (e *PitEntry) DeleteInRecord(face uint64) { delete(e.InRecords, face) }

// DeleteOutRecord removes the out-record for face, if any.
func (e *PitEntry) DeleteOutRecord(face uint64) { delete(e.OutRecords, face) }

// ClearInRecords removes every in-record from the entry.
func (e *PitEntry) ClearInRecords() { e.InRecords = make(map[uint64]*PitInRecord) }

// ClearOutRecords removes every out-record from the entry.
func (e *PitEntry) ClearOutRecords() { e.OutRecords = make(map[uint64]*PitOutRecord) }

// InsertOrUpdateInRecord records (or refreshes) an in-record for face.
func (e *PitEntry) InsertOrUpdateInRecord(face uint64, interest *ndn.Interest, pitToken uint32) *PitInRecord {
	record, ok := e.InRecords[face]
	if !ok {
		record = &PitInRecord{Face: face}
		e.InRecords[face] = record
	}
	record.LatestNonce = interest.Nonce()
	record.LatestInterest = interest
	record.PitToken = pitToken
	record.ExpirationTime = time.Now().Add(interest.Lifetime())
	return record
}

// InsertOrUpdateOutRecord records (or refreshes) an out-record for face.
func (e *PitEntry) InsertOrUpdateOutRecord(face uint64, interest *ndn.Interest) *PitOutRecord {
	record, ok := e.OutRecords[face]
	if !ok {
		record = &PitOutRecord{Face: face}
		e.OutRecords[face] = record
	}
	record.LatestNonce = interest.Nonce()
	record.LatestInterest = interest
	record.ExpirationTime = time.Now().Add(interest.Lifetime())
	record.NackReason = nil
	return record
}

// FindNonceDuplication reports where nonce already appears among the
// entry's records, relative to ingress.
func (e *PitEntry) FindNonceDuplication(nonce uint32, ingress uint64) NonceDuplication {
	var result NonceDuplication
	for face, record := range e.InRecords {
		if record.LatestNonce == nonce {
			if face == ingress {
				result |= DuplicateNonceInSame
			} else {
				result |= DuplicateNonceInOther
			}
		}
	}
	for face, record := range e.OutRecords {
		if record.LatestNonce == nonce {
			if face == ingress {
				result |= DuplicateNonceOutSame
			} else {
				result |= DuplicateNonceOutOther
			}
		}
	}
	return result
}

// UpdateExpirationTimer recomputes the entry's expiration time as the
// latest in-record expiration and (re)arms the single timer that will
// push the entry onto the owning Pit's Expired channel when it fires.
// Any previously armed timer is stopped first, so an entry never
// accumulates more than one live handle.
func (e *PitEntry) UpdateExpirationTimer() {
	e.ExpirationTime = time.Now()
	for _, record := range e.InRecords {
		if record.ExpirationTime.After(e.ExpirationTime) {
			e.ExpirationTime = record.ExpirationTime
		}
	}
	e.arm(time.Until(e.ExpirationTime))
}

// SetExpirationTimerToNow forces immediate expiration, used to finalize
// an entry right away (e.g. after it has been satisfied).
func (e *PitEntry) SetExpirationTimerToNow() {
	e.ExpirationTime = time.Now()
	e.arm(0)
}

func (e *PitEntry) arm(d time.Duration) {
	if e.timer != nil {
		e.timer.Stop()
	}
	if d < 0 {
		d = 0
	}
	e.timer = time.AfterFunc(d, func() {
		select {
		case e.pit.Expired <- e:
		default:
		}
	})
}

// cancelTimer stops the entry's timer, if any, without arming a new one.
func (e *PitEntry) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Pit is the Pending Interest Table, sharing the name tree with the
// FIB/CS/Measurements/StrategyChoice.
type Pit struct {
	tree     *NameTree
	tokenMap map[uint32]*PitEntry
	size     int

	// Expired receives entries whose timer fired, for the forwarding
	// loop to run the Interest Finalize pipeline on.
	Expired chan *PitEntry
}

// NewPit creates an empty PIT backed by tree, with an expiry channel
// buffered to queueSize.
func NewPit(tree *NameTree, queueSize int) *Pit {
	return &Pit{
		tree:     tree,
		tokenMap: make(map[uint32]*PitEntry),
		Expired:  make(chan *PitEntry, queueSize),
	}
}

// Size returns the number of entries in the PIT.
func (p *Pit) Size() int { return p.size }

func (p *Pit) generateToken() uint32 {
	for {
		token := rand.Uint32()
		if _, ok := p.tokenMap[token]; !ok {
			return token
		}
	}
}

func sameForwardingHint(a, b []ndn.Name) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Insert finds or creates the PIT entry matching interest's name and
// selectors, returning the entry and whether it was newly created.
func (p *Pit) Insert(interest *ndn.Interest) (*PitEntry, bool) {
	node := p.tree.Lookup(interest.Name())

	for _, entry := range node.pitEntries {
		if entry.canBePrefix == interest.CanBePrefix() &&
			entry.mustBeFresh == interest.MustBeFresh() &&
			sameForwardingHint(entry.forwardingHint, interest.ForwardingHint()) {
			return entry, false
		}
	}

	entry := &PitEntry{
		node:           node,
		pit:            p,
		name:           interest.Name(),
		canBePrefix:    interest.CanBePrefix(),
		mustBeFresh:    interest.MustBeFresh(),
		forwardingHint: interest.ForwardingHint(),
		InRecords:      make(map[uint64]*PitInRecord),
		OutRecords:     make(map[uint64]*PitOutRecord),
		Token:          p.generateToken(),
	}
	node.pitEntries = append(node.pitEntries, entry)
	p.tokenMap[entry.Token] = entry
	p.size++
	return entry, true
}

// Find returns the PIT entry exactly matching interest's name and
// selectors, or nil.
func (p *Pit) Find(interest *ndn.Interest) *PitEntry {
	node := p.tree.FindExactMatch(interest.Name())
	if node == nil {
		return nil
	}
	for _, entry := range node.pitEntries {
		if entry.canBePrefix == interest.CanBePrefix() &&
			entry.mustBeFresh == interest.MustBeFresh() &&
			sameForwardingHint(entry.forwardingHint, interest.ForwardingHint()) {
			return entry
		}
	}
	return nil
}

// FindByToken returns the PIT entry previously issued the given PIT
// token, or nil - the fast path for routing incoming Data directly to
// its entry without a name walk.
func (p *Pit) FindByToken(token uint32) *PitEntry {
	return p.tokenMap[token]
}

// FindAllDataMatches returns every PIT entry whose name is a prefix of
// (or equal to) data's name and whose CanBePrefix selector is
// satisfied (exact-length matches satisfy any entry).
func (p *Pit) FindAllDataMatches(data *ndn.Data) []*PitEntry {
	dataLen := data.Name().Size()
	var matching []*PitEntry
	for cur := p.tree.FindLongestPrefixMatch(data.Name()); cur != nil; cur = cur.parent {
		for _, entry := range cur.pitEntries {
			if entry.canBePrefix || cur.depth == dataLen {
				matching = append(matching, entry)
			}
		}
	}
	return matching
}

// RemoveFace deletes every in-record and out-record referencing
// faceID across every PIT entry, used when a face is removed so no
// entry retains a record for a dead face.
func (p *Pit) RemoveFace(faceID uint64) {
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, entry := range n.pitEntries {
			entry.DeleteInRecord(faceID)
			entry.DeleteOutRecord(faceID)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(p.tree.Root())
}

// Erase detaches entry from the PIT, canceling its timer and pruning
// the name tree if the node is now empty.
func (p *Pit) Erase(entry *PitEntry) {
	entry.cancelTimer()
	delete(p.tokenMap, entry.Token)

	node := entry.node
	for i, e := range node.pitEntries {
		if e == entry {
			node.pitEntries = append(node.pitEntries[:i], node.pitEntries[i+1:]...)
			p.size--
			break
		}
	}
	p.tree.pruneIfEmpty(node)
}

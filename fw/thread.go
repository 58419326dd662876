/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package fw implements the forwarding pipelines: the
// event handlers that drive the PIT/CS/FIB state machine, and the
// pluggable Strategy hooks they call out to. Everything here runs on
// a single goroutine per Thread; multiple Threads can be run side by
// side provided each owns a disjoint name-tree shard.
package fw

import (
	"strconv"
	"time"

	"github.com/ndn-forwarding/corefwd/core"
	"github.com/ndn-forwarding/corefwd/face"
	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// faceCounters holds the per-face counters beyond the thread-wide ones.
type faceCounters struct {
	nInHopLimitZero  uint64
	nOutHopLimitZero uint64
}

type incomingInterestEvent struct {
	interest *ndn.Interest
	ingress  uint64
}

type incomingDataEvent struct {
	data    *ndn.Data
	ingress uint64
}

type incomingNackEvent struct {
	nack    *ndn.Nack
	ingress uint64
}

type droppedInterestEvent struct {
	interest *ndn.Interest
	egress   uint64
}

// Thread is one forwarding event loop: it owns a private name tree
// and the FIB/PIT/CS/DNL/Measurements tables attached to it, a
// registry of faces it has been wired to, and the Strategy Choice
// table used to dispatch every event. The pipelines cover the full
// Interest/Data/Nack/FIB-update/dropped-Interest event set.
type Thread struct {
	id int

	Faces      *face.Table
	Tree       *table.NameTree
	Pit        *table.Pit
	Cs         *table.ContentStore
	Dnl        *table.DeadNonceList
	Regions    *table.NetworkRegionTable
	Strategies *StrategyChoice

	// fib and measurements are unexported because Dispatcher requires
	// Fib()/Measurements() accessor methods, and Go forbids a field and
	// a method sharing one name.
	fib          *table.Fib
	measurements *table.Measurements

	DefaultHopLimit   uint8
	UnsolicitedPolicy table.UnsolicitedDataPolicy

	pendingInterests chan incomingInterestEvent
	pendingData      chan incomingDataEvent
	pendingNacks     chan incomingNackEvent
	pendingDropped   chan droppedInterestEvent
	newNextHop       chan table.NewNextHopEvent
	shouldQuit       chan struct{}

	scheduler    *Scheduler
	dnlSweepFire chan struct{}
	dnlInterval  time.Duration

	counters map[uint64]*faceCounters

	// HasQuit is closed once Run returns.
	HasQuit chan struct{}

	// Thread-wide packet counters.
	NInInterests          uint64
	NOutInterests         uint64
	NInData               uint64
	NOutData              uint64
	NInNacks              uint64
	NOutNacks             uint64
	NCsHits               uint64
	NCsMisses             uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
	NUnsolicitedData      uint64
}

// ThreadConfig bundles the construction-time parameters of a Thread.
type ThreadConfig struct {
	ID                int
	Faces             *face.Table
	QueueSize         int
	ContentStoreCap   int
	DnlLifetime       time.Duration
	DnlCapacity       int
	DefaultHopLimit   uint8
	UnsolicitedPolicy table.UnsolicitedDataPolicy
}

// NewThread builds a Thread with its own name tree and tables, wires
// up the default strategies (best-route as the default, multicast
// available by name), and subscribes to cfg.Faces for face removal
// cleanup.
func NewThread(cfg ThreadConfig) *Thread {
	tree := table.NewNameTree()
	cs := table.NewContentStore(tree)
	cs.SetReplacement(table.NewCsLRU(cs, orDefault(cfg.ContentStoreCap, 1024)))

	t := &Thread{
		id:                cfg.ID,
		Faces:             cfg.Faces,
		Tree:              tree,
		fib:               table.NewFib(tree),
		Pit:               table.NewPit(tree, orDefault(cfg.QueueSize, 1024)),
		Cs:                cs,
		Dnl:               table.NewDeadNonceList(orDefaultDur(cfg.DnlLifetime, 6*time.Second), orDefault(cfg.DnlCapacity, 16384)),
		Regions:           table.NewNetworkRegionTable(),
		DefaultHopLimit:   cfg.DefaultHopLimit,
		UnsolicitedPolicy: cfg.UnsolicitedPolicy,
		pendingInterests:  make(chan incomingInterestEvent, orDefault(cfg.QueueSize, 1024)),
		pendingData:       make(chan incomingDataEvent, orDefault(cfg.QueueSize, 1024)),
		pendingNacks:      make(chan incomingNackEvent, orDefault(cfg.QueueSize, 1024)),
		pendingDropped:    make(chan droppedInterestEvent, orDefault(cfg.QueueSize, 1024)),
		newNextHop:        make(chan table.NewNextHopEvent, 64),
		shouldQuit:        make(chan struct{}, 1),
		HasQuit:           make(chan struct{}),
		counters:          make(map[uint64]*faceCounters),
	}
	t.measurements = table.NewMeasurements(tree)
	if t.UnsolicitedPolicy == nil {
		t.UnsolicitedPolicy = table.DropAllUnsolicitedPolicy{}
	}

	bestRoute := NewBestRoute(t)
	multicast := NewMulticast(t)
	t.Strategies = NewStrategyChoice(tree, bestRoute.Name(), bestRoute, multicast)

	t.fib.AfterNewNextHop.Connect(func(ev table.NewNextHopEvent) {
		select {
		case t.newNextHop <- ev:
		default:
			core.LogWarn(t, "Dropped New Next Hop event for "+ev.Prefix.String()+": queue full")
		}
	})
	if cfg.Faces != nil {
		cfg.Faces.BeforeRemove.Connect(t.removeFace)
	}

	t.scheduler = NewScheduler()
	t.dnlSweepFire = make(chan struct{}, 1)
	t.dnlInterval = t.Dnl.GetLifetime() / 4
	t.armDnlSweep()
	return t
}

// armDnlSweep schedules the next Dead Nonce List sweep. The callback
// runs on the scheduler's own goroutine (per Scheduler.Schedule's
// contract) and only hops onto the thread's event loop via
// dnlSweepFire; Run re-arms it after each sweep so it keeps recurring
// for the Thread's lifetime.
func (t *Thread) armDnlSweep() {
	t.scheduler.Schedule(t.dnlInterval, func() {
		select {
		case t.dnlSweepFire <- struct{}{}:
		default:
		}
	})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDefaultDur(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func (t *Thread) String() string { return "FwThread-" + strconv.Itoa(t.id) }

// Fib implements Dispatcher.
func (t *Thread) Fib() *table.Fib { return t.fib }

// Measurements implements Dispatcher.
func (t *Thread) Measurements() *table.Measurements { return t.measurements }

func (t *Thread) faceCounters(id uint64) *faceCounters {
	fc, ok := t.counters[id]
	if !ok {
		fc = &faceCounters{}
		t.counters[id] = fc
	}
	return fc
}

// NInHopLimitZero returns the per-face ingress hop-limit-zero counter.
func (t *Thread) NInHopLimitZero(face uint64) uint64 { return t.faceCounters(face).nInHopLimitZero }

// NOutHopLimitZero returns the per-face egress hop-limit-zero counter.
func (t *Thread) NOutHopLimitZero(face uint64) uint64 { return t.faceCounters(face).nOutHopLimitZero }

// AddFace registers f with the face table (if not already registered)
// and subscribes this Thread's pipelines to its signals.
func (t *Thread) AddFace(f face.Face) uint64 {
	id, err := t.Faces.Register(f)
	if err != nil {
		core.LogWarn(t, "AddFace called twice for FaceID="+strconv.FormatUint(id, 10)+" - ignoring duplicate subscription")
		return id
	}
	f.OnReceiveInterest().Connect(func(ev face.InterestEvent) {
		t.pendingInterests <- incomingInterestEvent{interest: ev.Interest, ingress: id}
	})
	f.OnReceiveData().Connect(func(ev face.DataEvent) {
		t.pendingData <- incomingDataEvent{data: ev.Data, ingress: id}
	})
	f.OnReceiveNack().Connect(func(ev face.NackEvent) {
		t.pendingNacks <- incomingNackEvent{nack: ev.Nack, ingress: id}
	})
	f.OnDroppedInterest().Connect(func(ev face.DroppedInterestEvent) {
		t.pendingDropped <- droppedInterestEvent{interest: ev.Interest, egress: id}
	})
	return id
}

func (t *Thread) removeFace(id uint64) {
	t.Pit.RemoveFace(id)
	t.fib.RemoveFace(id)
	delete(t.counters, id)
}

// TellToQuit asks the event loop to stop after its current iteration.
func (t *Thread) TellToQuit() {
	t.shouldQuit <- struct{}{}
}

// Run is the single-threaded event loop: it is the only goroutine
// that ever touches this Thread's tables.
func (t *Thread) Run() {
	defer close(t.HasQuit)
	for {
		select {
		case ev := <-t.pendingInterests:
			t.incomingInterest(ev.interest, ev.ingress)
		case ev := <-t.pendingData:
			t.incomingData(ev.data, ev.ingress)
		case ev := <-t.pendingNacks:
			t.incomingNack(ev.nack, ev.ingress)
		case ev := <-t.pendingDropped:
			t.droppedInterest(ev.interest, ev.egress)
		case entry := <-t.Pit.Expired:
			t.interestFinalize(entry)
		case ev := <-t.newNextHop:
			t.afterNewNextHop(ev)
		case <-t.dnlSweepFire:
			t.Dnl.RemoveExpired()
			t.armDnlSweep()
		case <-t.shouldQuit:
			return
		}
	}
}

// --- Incoming Interest ---

func (t *Thread) incomingInterest(interest *ndn.Interest, ingress uint64) {
	t.NInInterests++
	interest.SetTag(ndn.TagIncomingFaceID, ingress)

	ingressFace := t.Faces.Get(ingress)
	if ingressFace == nil {
		core.LogWarn(t, "Interest "+interest.Name().String()+" on unknown FaceID="+strconv.FormatUint(ingress, 10)+" - DROP")
		return
	}

	if hl := interest.HopLimit(); hl != nil {
		if *hl == 0 {
			t.faceCounters(ingress).nInHopLimitZero++
			core.LogDebug(t, "Interest "+interest.Name().String()+" has HopLimit=0 on ingress - DROP")
			return
		}
		interest.DecrementHopLimit()
	}

	if ingressFace.Scope() == ndn.NonLocal && interest.Name().IsLocalhost() {
		core.LogWarn(t, "Interest "+interest.Name().String()+" from non-local face violates /localhost scope - DROP")
		return
	}

	if t.Dnl.Has(interest.Name(), interest.Nonce()) {
		t.interestLoop(interest, ingress)
		return
	}

	if hints := interest.ForwardingHint(); len(hints) > 0 {
		for _, h := range hints {
			if t.Regions.IsInProducerRegion(h) {
				interest.ClearForwardingHint()
				break
			}
		}
	}

	entry, _ := t.Pit.Insert(interest)

	if mask := entry.FindNonceDuplication(interest.Nonce(), ingress); mask != table.DuplicateNonceNone {
		// A duplicate nonce arriving on the same point-to-point face
		// that already has an in-record for it is a retransmission,
		// even if the Interest was also forwarded upstream meanwhile.
		hasLoop := true
		if ingressFace.LinkType() == ndn.PointToPoint && mask&table.DuplicateNonceInSame != 0 {
			hasLoop = false
		}
		if hasLoop {
			t.interestLoop(interest, ingress)
			return
		}
	}

	if !entry.HasInRecords() {
		if csEntry := t.Cs.Find(interest); csEntry != nil {
			t.NCsHits++
			t.csHit(csEntry, interest, ingress, entry)
			return
		}
	}
	t.NCsMisses++
	t.csMiss(interest, ingress, entry)
}

func (t *Thread) interestLoop(interest *ndn.Interest, ingress uint64) {
	ingressFace := t.Faces.Get(ingress)
	if ingressFace == nil || ingressFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Interest "+interest.Name().String()+" loop on non-p2p face - DROP silently")
		return
	}
	strategy := t.Strategies.FindEffectiveStrategy(interest.Name())
	strategy.OnInterestLoop(interest, ingress)
}

func (t *Thread) csMiss(interest *ndn.Interest, ingress uint64, entry *table.PitEntry) {
	if t.DefaultHopLimit > 0 && interest.HopLimit() == nil {
		interest.SetHopLimit(t.DefaultHopLimit)
	}

	entry.InsertOrUpdateInRecord(ingress, interest, entry.Token)
	entry.UpdateExpirationTimer()

	if raw, ok := interest.Tag(ndn.TagNextHopFaceID); ok {
		if nextHop, ok := raw.(uint64); ok {
			if t.Faces.Get(nextHop) != nil {
				t.outgoingInterest(interest, entry, nextHop)
			} else {
				core.LogInfo(t, "next-hop-face-id FaceID="+strconv.FormatUint(nextHop, 10)+" does not exist - DROP")
			}
			return
		}
	}

	strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
	strategy.AfterReceiveInterest(interest, ingress, entry)
}

func (t *Thread) csHit(csEntry *table.CsEntry, interest *ndn.Interest, ingress uint64, entry *table.PitEntry) {
	data := csEntry.Data
	data.SetTag(ndn.TagIncomingFaceID, ndn.ContentStoreFaceID)
	if token, ok := interest.Tag(ndn.TagPitToken); ok {
		data.SetTag(ndn.TagPitToken, token)
	}
	entry.Satisfied = true
	entry.DataFreshnessPeriod = data.MetaInfo().FreshnessPeriod
	entry.SetExpirationTimerToNow()

	strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
	strategy.AfterContentStoreHit(data, ingress, entry)
}

// --- Outgoing Interest ---

func (t *Thread) outgoingInterest(interest *ndn.Interest, pitEntry *table.PitEntry, egress uint64) *table.PitOutRecord {
	egressFace := t.Faces.Get(egress)
	if egressFace == nil {
		core.LogWarn(t, "Outgoing Interest "+interest.Name().String()+" to unknown FaceID="+strconv.FormatUint(egress, 10)+" - DROP")
		return nil
	}

	if hl := interest.HopLimit(); hl != nil && *hl == 0 && egressFace.Scope() == ndn.NonLocal {
		t.faceCounters(egress).nOutHopLimitZero++
		core.LogDebug(t, "Outgoing Interest "+interest.Name().String()+" has HopLimit=0 to non-local face - DROP")
		return nil
	}

	out := pitEntry.InsertOrUpdateOutRecord(egress, interest)
	pitEntry.UpdateExpirationTimer()
	egressFace.SendInterest(interest)
	t.NOutInterests++
	return out
}

// --- Interest Finalize ---

func (t *Thread) interestFinalize(entry *table.PitEntry) {
	t.dnlInsertIfNeeded(entry, nil)

	if entry.Satisfied {
		t.NSatisfiedInterests++
	} else {
		t.NUnsatisfiedInterests++
	}

	t.Pit.Erase(entry)
}

// dnlInsertIfNeeded records nonces in the Dead Nonce List when the
// entry warrants it: always for unsatisfied entries, and for satisfied
// ones only when MustBeFresh Data went stale faster than the DNL
// lifetime. With upstream nil, every out-record's nonce is considered;
// with upstream set, only that face's.
func (t *Thread) dnlInsertIfNeeded(entry *table.PitEntry, upstream *uint64) {
	insert := !entry.Satisfied
	if entry.Satisfied {
		insert = entry.MustBeFresh() && entry.DataFreshnessPeriod < t.Dnl.GetLifetime()
	}
	if !insert {
		return
	}

	if upstream != nil {
		if rec := entry.OutRecord(*upstream); rec != nil {
			t.Dnl.Add(entry.Name(), rec.LatestNonce)
		}
		return
	}
	for _, rec := range entry.OutRecords {
		t.Dnl.Add(entry.Name(), rec.LatestNonce)
	}
}

// --- Incoming Data ---

func (t *Thread) incomingData(data *ndn.Data, ingress uint64) {
	t.NInData++
	data.SetTag(ndn.TagIncomingFaceID, ingress)

	ingressFace := t.Faces.Get(ingress)
	if ingressFace == nil {
		core.LogWarn(t, "Data "+data.Name().String()+" on unknown FaceID="+strconv.FormatUint(ingress, 10)+" - DROP")
		return
	}
	if ingressFace.Scope() == ndn.NonLocal && data.Name().IsLocalhost() {
		core.LogWarn(t, "Data "+data.Name().String()+" from non-local face violates /localhost scope - DROP")
		return
	}

	matches := t.Pit.FindAllDataMatches(data)
	if len(matches) == 0 {
		t.dataUnsolicited(data, ingress, ingressFace)
		return
	}

	t.Cs.Insert(data, false)

	if len(matches) == 1 {
		entry := matches[0]
		entry.DataFreshnessPeriod = data.MetaInfo().FreshnessPeriod
		entry.SetExpirationTimerToNow()

		strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
		strategy.AfterReceiveData(data, ingress, entry)

		entry.Satisfied = true
		t.dnlInsertIfNeeded(entry, &ingress)
		entry.DeleteOutRecord(ingress)
		return
	}

	pending := make(map[uint64]struct{})
	includeIngress := ingressFace.LinkType() == ndn.AdHoc
	for _, entry := range matches {
		for f, rec := range entry.InRecords {
			if f == ingress && !includeIngress {
				continue
			}
			if rec.ExpirationTime.After(time.Now()) {
				pending[f] = struct{}{}
			}
		}

		entry.DataFreshnessPeriod = data.MetaInfo().FreshnessPeriod
		entry.SetExpirationTimerToNow()

		strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
		strategy.BeforeSatisfyInterest(data, ingress, entry)

		entry.Satisfied = true
		t.dnlInsertIfNeeded(entry, nil)
		entry.ClearInRecords()
		entry.DeleteOutRecord(ingress)
	}

	for downstream := range pending {
		t.outgoingData(data, downstream)
	}
}

func (t *Thread) dataUnsolicited(data *ndn.Data, ingress uint64, ingressFace face.Face) {
	t.NUnsolicitedData++
	if t.UnsolicitedPolicy.Decide(data, ingress, ingressFace.Scope() == ndn.Local) {
		t.Cs.Insert(data, true)
	} else {
		core.LogDebug(t, "Unsolicited Data "+data.Name().String()+" - DROP")
	}
}

// --- Outgoing Data ---

func (t *Thread) outgoingData(data *ndn.Data, egress uint64) bool {
	egressFace := t.Faces.Get(egress)
	if egressFace == nil {
		core.LogWarn(t, "Outgoing Data "+data.Name().String()+" to unknown FaceID="+strconv.FormatUint(egress, 10)+" - DROP")
		return false
	}
	if egressFace.Scope() == ndn.NonLocal && data.Name().IsLocalhost() {
		core.LogWarn(t, "Data "+data.Name().String()+" cannot be sent to non-local face: violates /localhost scope - DROP")
		return false
	}
	egressFace.SendData(data)
	t.NOutData++
	return true
}

// --- Incoming / Outgoing Nack ---

func (t *Thread) incomingNack(nack *ndn.Nack, ingress uint64) {
	t.NInNacks++

	ingressFace := t.Faces.Get(ingress)
	if ingressFace == nil || ingressFace.LinkType() != ndn.PointToPoint {
		core.LogDebug(t, "Nack on non-p2p or unknown face - DROP")
		return
	}

	entry := t.Pit.Find(nack.Interest)
	if entry == nil {
		core.LogDebug(t, "Nack for unknown Interest "+nack.Interest.Name().String()+" - DROP")
		return
	}

	outRecord := entry.OutRecord(ingress)
	if outRecord == nil {
		core.LogDebug(t, "Nack with no matching out-record - DROP")
		return
	}
	if nack.Interest.Nonce() != outRecord.LatestNonce {
		core.LogDebug(t, "Nack nonce mismatch - DROP")
		return
	}

	reason := nack.Reason
	outRecord.NackReason = &reason

	pending := false
	now := time.Now()
	for _, rec := range entry.OutRecords {
		if rec.NackReason == nil && rec.ExpirationTime.After(now) {
			pending = true
			break
		}
	}
	if !pending {
		entry.SetExpirationTimerToNow()
	}

	strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
	strategy.AfterReceiveNack(nack, ingress, entry)
}

func (t *Thread) outgoingNack(pitEntry *table.PitEntry, egress uint64, reason ndn.NackReason) bool {
	egressFace := t.Faces.Get(egress)
	if egressFace == nil || egressFace.LinkType() != ndn.PointToPoint {
		return false
	}
	inRecord := pitEntry.InRecord(egress)
	if inRecord == nil {
		return false
	}

	nack := ndn.NewNack(inRecord.LatestInterest, reason)
	pitEntry.DeleteInRecord(egress)
	egressFace.SendNack(nack)
	t.NOutNacks++
	return true
}

// --- New Next Hop / Dropped Interest ---

func (t *Thread) afterNewNextHop(ev table.NewNextHopEvent) {
	start := t.Tree.FindExactMatch(ev.Prefix)
	pred := func(n *table.Node) (visit bool, descend bool) {
		if n != start && n.HasFibEntry() {
			return false, false
		}
		return true, true
	}
	for _, node := range t.Tree.PartialEnumerate(ev.Prefix, pred) {
		for _, entry := range node.PitEntries() {
			strategy := t.Strategies.FindEffectiveStrategyForEntry(entry)
			strategy.AfterNewNextHop(ev.NextHop, entry)
		}
	}
}

func (t *Thread) droppedInterest(interest *ndn.Interest, egress uint64) {
	strategy := t.Strategies.FindEffectiveStrategy(interest.Name())
	strategy.OnDroppedInterest(interest, egress)
}

// --- Dispatcher implementation, the Strategy callback surface ---

// SendInterest implements Dispatcher.
func (t *Thread) SendInterest(interest *ndn.Interest, pitEntry *table.PitEntry, egress uint64) {
	t.outgoingInterest(interest, pitEntry, egress)
}

// SendData implements Dispatcher.
func (t *Thread) SendData(data *ndn.Data, pitEntry *table.PitEntry, egress uint64) {
	if pitEntry != nil {
		pitEntry.DeleteInRecord(egress)
	}
	t.outgoingData(data, egress)
}

// SendNack implements Dispatcher.
func (t *Thread) SendNack(pitEntry *table.PitEntry, egress uint64, reason ndn.NackReason) {
	t.outgoingNack(pitEntry, egress, reason)
}

// SendNackDirect implements Dispatcher.
func (t *Thread) SendNackDirect(interest *ndn.Interest, ingress uint64, reason ndn.NackReason) {
	ingressFace := t.Faces.Get(ingress)
	if ingressFace == nil {
		return
	}
	ingressFace.SendNack(ndn.NewNack(interest, reason))
	t.NOutNacks++
}

var _ Dispatcher = (*Thread)(nil)

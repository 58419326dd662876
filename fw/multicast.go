/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// Multicast forwards every Interest to every known next hop.
type Multicast struct {
	StrategyBase
}

// NewMulticast constructs the multicast strategy bound to d.
func NewMulticast(d Dispatcher) *Multicast {
	name := ndn.NameFromString(StrategyPrefix + "/multicast/v1")
	return &Multicast{StrategyBase{name: name, d: d}}
}

// AfterReceiveInterest forwards to every FIB next hop except the one
// the Interest arrived on.
func (s *Multicast) AfterReceiveInterest(interest *ndn.Interest, ingress uint64, pitEntry *table.PitEntry) {
	var nexthops []*table.FibNextHopEntry
	if hints := interest.ForwardingHint(); len(hints) > 0 {
		if entry := s.d.Fib().FindLongestPrefixMatch(hints[0]); entry != nil {
			nexthops = entry.Nexthops()
		}
	} else if entry := s.d.Fib().FindLongestPrefixMatch(interest.Name()); entry != nil {
		nexthops = entry.Nexthops()
	}

	if len(nexthops) == 0 {
		s.d.SendNackDirect(interest, ingress, ndn.NackReasonNoRoute)
		return
	}

	for _, nh := range nexthops {
		if nh.Nexthop == ingress {
			continue
		}
		s.d.SendInterest(interest, pitEntry, nh.Nexthop)
	}
}

// AfterContentStoreHit sends the cached Data back to the face the
// Interest arrived on.
func (s *Multicast) AfterContentStoreHit(data *ndn.Data, ingress uint64, pitEntry *table.PitEntry) {
	s.d.SendData(data, pitEntry, ingress)
}

// AfterReceiveData forwards data to every downstream that still has
// an in-record on pitEntry.
func (s *Multicast) AfterReceiveData(data *ndn.Data, _ uint64, pitEntry *table.PitEntry) {
	for f := range pitEntry.InRecords {
		s.d.SendData(data, pitEntry, f)
	}
}

// BeforeSatisfyInterest does nothing in Multicast, same as BestRoute.
func (s *Multicast) BeforeSatisfyInterest(*ndn.Data, uint64, *table.PitEntry) {}

// AfterReceiveNack forwards the Nack downstream once no out-record
// remains pending.
func (s *Multicast) AfterReceiveNack(nack *ndn.Nack, _ uint64, pitEntry *table.PitEntry) {
	forwardNackToInRecords(s.d, pitEntry, nack.Reason)
}

// AfterNewNextHop always retries on a freshly registered next hop,
// relying on out-record/nonce bookkeeping to suppress duplicates.
func (s *Multicast) AfterNewNextHop(nextHop table.FibNextHopEntry, pitEntry *table.PitEntry) {
	if pitEntry.Satisfied {
		return
	}
	for _, in := range pitEntry.InRecords {
		s.d.SendInterest(in.LatestInterest, pitEntry, nextHop.Nexthop)
		return
	}
}

// OnInterestLoop replies with a duplicate Nack.
func (s *Multicast) OnInterestLoop(interest *ndn.Interest, ingress uint64) {
	s.d.SendNackDirect(interest, ingress, ndn.NackReasonDuplicate)
}

// OnDroppedInterest records the drop against measurements.
func (s *Multicast) OnDroppedInterest(interest *ndn.Interest, _ uint64) {
	s.d.Measurements().Get(interest.Name()).AddInt("nDropped", 1)
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// BestRoute forwards each Interest to the single lowest-cost next hop
// that does not already have a pending out-record. FIB next hops are
// kept sorted ascending by cost (table.Fib.AddOrUpdateNextHop), so
// the first untried candidate wins.
type BestRoute struct {
	StrategyBase
}

// NewBestRoute constructs the best-route strategy bound to d.
func NewBestRoute(d Dispatcher) *BestRoute {
	name := ndn.NameFromString(StrategyPrefix + "/best-route/v1")
	return &BestRoute{StrategyBase{name: name, d: d}}
}

// AfterReceiveInterest picks the cheapest next hop that hasn't
// already been tried for this entry and forwards there; with no route
// at all it Nacks the ingress face with reason no-route.
func (s *BestRoute) AfterReceiveInterest(interest *ndn.Interest, ingress uint64, pitEntry *table.PitEntry) {
	nexthops := s.candidateNexthops(interest)
	if len(nexthops) == 0 {
		s.d.SendNackDirect(interest, ingress, ndn.NackReasonNoRoute)
		return
	}

	for _, nh := range nexthops {
		if nh.Nexthop == ingress {
			continue
		}
		if pitEntry.OutRecord(nh.Nexthop) != nil {
			continue
		}
		s.d.SendInterest(interest, pitEntry, nh.Nexthop)
		return
	}
	// Every candidate already has a pending out-record; retry the
	// cheapest one anyway so a lost Interest still gets a retransmission.
	s.d.SendInterest(interest, pitEntry, nexthops[0].Nexthop)
}

func (s *BestRoute) candidateNexthops(interest *ndn.Interest) []*table.FibNextHopEntry {
	if hints := interest.ForwardingHint(); len(hints) > 0 {
		if entry := s.d.Fib().FindLongestPrefixMatch(hints[0]); entry != nil {
			return entry.Nexthops()
		}
		return nil
	}
	entry := s.d.Fib().FindLongestPrefixMatch(interest.Name())
	if entry == nil {
		return nil
	}
	return entry.Nexthops()
}

// AfterContentStoreHit sends the cached Data back to the face the
// Interest arrived on.
func (s *BestRoute) AfterContentStoreHit(data *ndn.Data, ingress uint64, pitEntry *table.PitEntry) {
	s.d.SendData(data, pitEntry, ingress)
}

// AfterReceiveData forwards data to every downstream that still has
// an in-record on pitEntry.
func (s *BestRoute) AfterReceiveData(data *ndn.Data, _ uint64, pitEntry *table.PitEntry) {
	for f := range pitEntry.InRecords {
		s.d.SendData(data, pitEntry, f)
	}
}

// BeforeSatisfyInterest does nothing in BestRoute: the forwarding
// thread performs the actual downstream fan-out for the multi-match
// case itself, after every matching entry has run this hook.
func (s *BestRoute) BeforeSatisfyInterest(*ndn.Data, uint64, *table.PitEntry) {}

// AfterReceiveNack forwards the Nack downstream once the incoming
// Nack pipeline has determined no out-record remains pending.
func (s *BestRoute) AfterReceiveNack(nack *ndn.Nack, _ uint64, pitEntry *table.PitEntry) {
	forwardNackToInRecords(s.d, pitEntry, nack.Reason)
}

// AfterNewNextHop retries the Interest on a freshly registered next
// hop if the entry is still unsatisfied and hasn't already tried it.
func (s *BestRoute) AfterNewNextHop(nextHop table.FibNextHopEntry, pitEntry *table.PitEntry) {
	if pitEntry.Satisfied || pitEntry.OutRecord(nextHop.Nexthop) != nil {
		return
	}
	for _, in := range pitEntry.InRecords {
		s.d.SendInterest(in.LatestInterest, pitEntry, nextHop.Nexthop)
		return
	}
}

// OnInterestLoop replies with a duplicate Nack.
func (s *BestRoute) OnInterestLoop(interest *ndn.Interest, ingress uint64) {
	s.d.SendNackDirect(interest, ingress, ndn.NackReasonDuplicate)
}

// OnDroppedInterest counts the drop under the "nDropped" key of the
// measurement entry for the Interest's name. The egress face is not
// recorded, and AfterReceiveInterest does not read this count.
func (s *BestRoute) OnDroppedInterest(interest *ndn.Interest, _ uint64) {
	s.d.Measurements().Get(interest.Name()).AddInt("nDropped", 1)
}

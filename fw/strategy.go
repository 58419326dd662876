/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// StrategyPrefix is the prefix under which strategy names live.
const StrategyPrefix = "/localhost/corefwd/strategy"

// Strategy is a pluggable forwarding policy, invoked at fixed hook
// points in the pipelines. A Strategy never touches a table
// directly - it only sees the packet, the ingress/egress face-id, and
// the PIT entry, and acts back on the forwarder through its
// Dispatcher.
type Strategy interface {
	Name() ndn.Name

	AfterReceiveInterest(interest *ndn.Interest, ingress uint64, pitEntry *table.PitEntry)
	AfterContentStoreHit(data *ndn.Data, ingress uint64, pitEntry *table.PitEntry)
	AfterReceiveData(data *ndn.Data, ingress uint64, pitEntry *table.PitEntry)
	BeforeSatisfyInterest(data *ndn.Data, ingress uint64, pitEntry *table.PitEntry)
	AfterReceiveNack(nack *ndn.Nack, ingress uint64, pitEntry *table.PitEntry)
	AfterNewNextHop(nextHop table.FibNextHopEntry, pitEntry *table.PitEntry)
	OnInterestLoop(interest *ndn.Interest, ingress uint64)
	OnDroppedInterest(interest *ndn.Interest, egress uint64)
}

// Dispatcher is the callback surface a Strategy uses to act: send
// packets on egress faces (driving the Outgoing Interest/Data/Nack
// pipelines) and read the FIB/Measurements tables it needs to pick
// next hops. It is implemented by *Thread, borrowed for
// the lifetime of one hook invocation and never retained.
type Dispatcher interface {
	// SendInterest runs the Outgoing Interest pipeline for interest on
	// egress, recording an out-record on pitEntry.
	SendInterest(interest *ndn.Interest, pitEntry *table.PitEntry, egress uint64)

	// SendData runs the Outgoing Data pipeline for data on egress. If
	// pitEntry has an in-record for egress it is consumed (deleted)
	// first.
	SendData(data *ndn.Data, pitEntry *table.PitEntry, egress uint64)

	// SendNack runs the Outgoing Nack pipeline: it requires pitEntry to
	// have an in-record for egress and consumes it.
	SendNack(pitEntry *table.PitEntry, egress uint64, reason ndn.NackReason)

	// SendNackDirect builds a Nack directly from interest and sends it
	// on ingress without requiring a PIT in-record, used by the
	// default OnInterestLoop response.
	SendNackDirect(interest *ndn.Interest, ingress uint64, reason ndn.NackReason)

	Fib() *table.Fib
	Measurements() *table.Measurements
}

// StrategyBase holds the Dispatcher and name every concrete Strategy
// needs.
type StrategyBase struct {
	name ndn.Name
	d    Dispatcher
}

// Name returns the strategy's registered name.
func (s *StrategyBase) Name() ndn.Name { return s.name }

// forwardNackToInRecords is the shared Nack fan-in policy both
// built-in strategies use: once a PIT entry has no more out-records
// pending (none left without a Nack and unexpired, so the Incoming
// Nack pipeline has already set the entry's expiry to now), propagate
// a Nack downstream to every remaining in-record with the reason that
// triggered the fan-in. While any out-record is still pending it does
// nothing.
func forwardNackToInRecords(d Dispatcher, pitEntry *table.PitEntry, reason ndn.NackReason) {
	now := time.Now()
	for _, rec := range pitEntry.OutRecords {
		if rec.NackReason == nil && rec.ExpirationTime.After(now) {
			return
		}
	}
	for f := range pitEntry.InRecords {
		d.SendNack(pitEntry, f, reason)
	}
}

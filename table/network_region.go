/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import "github.com/ndn-forwarding/corefwd/ndn"

// NetworkRegionTable holds the name prefixes this forwarder's routing
// layer has announced as terminable here. Incoming Interests carrying
// a forwarding hint that names one of these regions have the hint
// stripped, since the Interest has reached the producer region.
type NetworkRegionTable struct {
	regions []ndn.Name
}

// NewNetworkRegionTable creates an empty network region table.
func NewNetworkRegionTable() *NetworkRegionTable {
	return &NetworkRegionTable{}
}

// Add records name as a producer region, if not already present.
func (t *NetworkRegionTable) Add(name ndn.Name) {
	for _, region := range t.regions {
		if region.Equals(name) {
			return
		}
	}
	t.regions = append(t.regions, name)
}

// IsInProducerRegion reports whether any registered region is a prefix
// of name (or equals it).
func (t *NetworkRegionTable) IsInProducerRegion(name ndn.Name) bool {
	for _, region := range t.regions {
		if region.PrefixOf(name) {
			return true
		}
	}
	return false
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/ndn-forwarding/corefwd/core"
	"github.com/ndn-forwarding/corefwd/ndn"
)

// QueueSize holds tables.pit.queue_size as read by Configure. No table
// reads it; NewPit takes its queue size as an argument.
var QueueSize int

// ContentStoreCapacity holds tables.content_store.capacity as read by
// Configure. No table reads it; NewCsLRU takes its capacity as an
// argument.
var ContentStoreCapacity int

// DeadNonceListLifetime holds tables.dead_nonce_list.lifetime_ms as
// read by Configure. No table reads it; NewDeadNonceList takes its
// lifetime as an argument.
var DeadNonceListLifetime time.Duration

// DeadNonceListCapacity holds tables.dead_nonce_list.capacity as read
// by Configure. No table reads it; NewDeadNonceList takes its capacity
// as an argument.
var DeadNonceListCapacity int

// Configure loads the tables.* configuration section, applying
// defaults for anything unset and registering configured network
// regions into regionTable.
func Configure(regionTable *NetworkRegionTable) {
	QueueSize = core.GetConfigIntDefault("tables.pit.queue_size", 1024)
	ContentStoreCapacity = core.GetConfigIntDefault("tables.content_store.capacity", 1024)
	DeadNonceListLifetime = time.Duration(core.GetConfigIntDefault("tables.dead_nonce_list.lifetime_ms", 6000)) * time.Millisecond
	DeadNonceListCapacity = core.GetConfigIntDefault("tables.dead_nonce_list.capacity", 16384)

	for _, region := range core.GetConfigArrayString("tables.network_region.regions") {
		name := ndn.NameFromString(region)
		regionTable.Add(name)
		core.LogDebug("NetworkRegionTable", "Added name="+region+" to table")
	}
}

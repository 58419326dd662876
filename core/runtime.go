/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "time"

// Version of corefwd.
var Version string

// BuildTime contains the timestamp of when this build was produced.
var BuildTime string

// StartTimestamp is the time the forwarder was started.
var StartTimestamp time.Time

// NumForwardingThreads is the number of forwarding threads configured.
var NumForwardingThreads int

// ShouldQuit is set once the daemon begins shutting down, so
// long-running loops outside the forwarding threads can bail out.
var ShouldQuit bool

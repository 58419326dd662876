/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"math/rand"
	"time"
)

// DefaultInterestLifetime is used when an Interest is constructed
// without an explicit lifetime.
const DefaultInterestLifetime = 4000 * time.Millisecond

// Tag keys used in the mutable tag map carried by Interests and Data.
const (
	TagIncomingFaceID = "incoming-face-id"
	TagNextHopFaceID  = "next-hop-face-id"
	TagPitToken       = "pit-token"
)

// InvalidFaceID is the reserved face-id meaning "no face".
const InvalidFaceID uint64 = 0

// ContentStoreFaceID is the sentinel face-id tagging Data served from
// the Content Store rather than received on a real face. It never
// collides with a real face-id (real ids start at 1) or with
// InvalidFaceID.
const ContentStoreFaceID uint64 = ^uint64(0)

// Interest represents an NDN Interest packet.
type Interest struct {
	name                  Name
	nonce                 uint32
	canBePrefix           bool
	mustBeFresh           bool
	forwardingHint        []Name
	applicationParameters []byte
	lifetime              time.Duration
	hopLimit              *uint8

	tags map[string]any
}

// NewInterest creates an Interest with a freshly generated nonce and
// the default lifetime.
func NewInterest(name Name) *Interest {
	return &Interest{
		name:     name.DeepCopy(),
		nonce:    rand.Uint32(),
		lifetime: DefaultInterestLifetime,
		tags:     make(map[string]any),
	}
}

// Name returns the Interest's name.
func (i *Interest) Name() Name { return i.name }

// Nonce returns the Interest's 32-bit nonce.
func (i *Interest) Nonce() uint32 { return i.nonce }

// SetNonce overrides the nonce (used when cloning for retransmission tests).
func (i *Interest) SetNonce(nonce uint32) { i.nonce = nonce }

// CanBePrefix reports whether the Interest may be satisfied by Data
// whose name has the Interest's name as a strict or non-strict prefix.
func (i *Interest) CanBePrefix() bool { return i.canBePrefix }

// SetCanBePrefix sets the CanBePrefix flag.
func (i *Interest) SetCanBePrefix(v bool) { i.canBePrefix = v }

// MustBeFresh reports whether only non-stale Data may satisfy the Interest.
func (i *Interest) MustBeFresh() bool { return i.mustBeFresh }

// SetMustBeFresh sets the MustBeFresh flag.
func (i *Interest) SetMustBeFresh(v bool) { i.mustBeFresh = v }

// ForwardingHint returns the Interest's forwarding hint names, if any.
func (i *Interest) ForwardingHint() []Name { return i.forwardingHint }

// SetForwardingHint sets the forwarding hint.
func (i *Interest) SetForwardingHint(hint []Name) { i.forwardingHint = hint }

// ClearForwardingHint strips the forwarding hint, per the Incoming
// Interest pipeline step that fires upon reaching the producer region.
func (i *Interest) ClearForwardingHint() { i.forwardingHint = nil }

// ApplicationParameters returns the opaque application parameters.
func (i *Interest) ApplicationParameters() []byte { return i.applicationParameters }

// SetApplicationParameters sets the opaque application parameters.
func (i *Interest) SetApplicationParameters(p []byte) { i.applicationParameters = p }

// Lifetime returns how long a PIT in-record created for this Interest should live.
func (i *Interest) Lifetime() time.Duration { return i.lifetime }

// SetLifetime sets the Interest's lifetime.
func (i *Interest) SetLifetime(d time.Duration) { i.lifetime = d }

// HopLimit returns the hop limit, or nil if unset (no limit).
func (i *Interest) HopLimit() *uint8 { return i.hopLimit }

// SetHopLimit sets the hop limit.
func (i *Interest) SetHopLimit(v uint8) { i.hopLimit = &v }

// DecrementHopLimit decrements the hop limit by one in place. It is a
// no-op if no hop limit is set.
func (i *Interest) DecrementHopLimit() {
	if i.hopLimit != nil && *i.hopLimit > 0 {
		*i.hopLimit--
	}
}

// Tag returns the value stored under key in the Interest's mutable tag map.
func (i *Interest) Tag(key string) (any, bool) {
	v, ok := i.tags[key]
	return v, ok
}

// SetTag stores a value under key in the Interest's mutable tag map.
func (i *Interest) SetTag(key string, value any) {
	if i.tags == nil {
		i.tags = make(map[string]any)
	}
	i.tags[key] = value
}

// DeepCopy returns an independent copy of the Interest, including its
// tag map but with a fresh copy of the name and forwarding hint.
func (i *Interest) DeepCopy() *Interest {
	out := *i
	out.name = i.name.DeepCopy()
	if i.hopLimit != nil {
		v := *i.hopLimit
		out.hopLimit = &v
	}
	if i.forwardingHint != nil {
		out.forwardingHint = make([]Name, len(i.forwardingHint))
		copy(out.forwardingHint, i.forwardingHint)
	}
	out.tags = make(map[string]any, len(i.tags))
	for k, v := range i.tags {
		out.tags[k] = v
	}
	return &out
}

func (i *Interest) String() string {
	return "Interest(" + i.name.String() + ")"
}

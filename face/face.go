/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import "github.com/ndn-forwarding/corefwd/ndn"

// Face is the interface the forwarding core requires of any link or
// transport adapter. It is intentionally small: everything about how
// bytes move between hosts is the face subsystem's problem; the core
// only needs identity, scope/link-type classification, the ability to
// send the three packet types, and the four reception signals.
type Face interface {
	FaceID() uint64
	SetFaceID(id uint64)
	String() string

	Scope() ndn.Scope
	LinkType() ndn.LinkType
	State() ndn.State

	// SendInterest, SendData, and SendNack hand a packet to the face
	// for transmission. They do not block and do not report delivery;
	// failures are reported asynchronously via OnDroppedInterest.
	SendInterest(interest *ndn.Interest)
	SendData(data *ndn.Data)
	SendNack(nack *ndn.Nack)

	// OnReceiveInterest, OnReceiveData, OnReceiveNack, and
	// OnDroppedInterest are the four signals the forwarder subscribes
	// to at face-registration time.
	OnReceiveInterest() *Signal[InterestEvent]
	OnReceiveData() *Signal[DataEvent]
	OnReceiveNack() *Signal[NackEvent]
	OnDroppedInterest() *Signal[DroppedInterestEvent]
}

// InterestEvent is delivered on a face's OnReceiveInterest signal.
type InterestEvent struct {
	Interest *ndn.Interest
	// EndpointID distinguishes multiple logical endpoints multiplexed
	// over one face (e.g. different remote peers on a multi-access
	// face); 0 when the face does not multiplex.
	EndpointID uint64
}

// DataEvent is delivered on a face's OnReceiveData signal.
type DataEvent struct {
	Data       *ndn.Data
	EndpointID uint64
}

// NackEvent is delivered on a face's OnReceiveNack signal.
type NackEvent struct {
	Nack       *ndn.Nack
	EndpointID uint64
}

// DroppedInterestEvent is delivered on a face's OnDroppedInterest
// signal when the face's transport discarded an outgoing Interest
// without transmitting it.
type DroppedInterestEvent struct {
	Interest *ndn.Interest
}

// BaseFace provides the signal plumbing every concrete Face
// implementation needs, so implementations only have to provide
// identity, classification, and transmission.
type BaseFace struct {
	faceID   uint64
	scope    ndn.Scope
	linkType ndn.LinkType
	state    ndn.State

	onInterest *Signal[InterestEvent]
	onData     *Signal[DataEvent]
	onNack     *Signal[NackEvent]
	onDropped  *Signal[DroppedInterestEvent]
}

// NewBaseFace constructs a BaseFace with the given scope and link type.
func NewBaseFace(scope ndn.Scope, linkType ndn.LinkType) BaseFace {
	return BaseFace{
		scope:      scope,
		linkType:   linkType,
		state:      ndn.Up,
		onInterest: &Signal[InterestEvent]{},
		onData:     &Signal[DataEvent]{},
		onNack:     &Signal[NackEvent]{},
		onDropped:  &Signal[DroppedInterestEvent]{},
	}
}

// FaceID returns the face's stable integer id.
func (b *BaseFace) FaceID() uint64 { return b.faceID }

// SetFaceID assigns the face's stable integer id, called once by the
// face table at registration time.
func (b *BaseFace) SetFaceID(id uint64) { b.faceID = id }

// Scope returns whether the face is local or non-local.
func (b *BaseFace) Scope() ndn.Scope { return b.scope }

// LinkType returns the face's link type.
func (b *BaseFace) LinkType() ndn.LinkType { return b.linkType }

// State returns the face's operational state.
func (b *BaseFace) State() ndn.State { return b.state }

// SetState updates the face's operational state.
func (b *BaseFace) SetState(s ndn.State) { b.state = s }

// OnReceiveInterest returns the Interest-reception signal.
func (b *BaseFace) OnReceiveInterest() *Signal[InterestEvent] { return b.onInterest }

// OnReceiveData returns the Data-reception signal.
func (b *BaseFace) OnReceiveData() *Signal[DataEvent] { return b.onData }

// OnReceiveNack returns the Nack-reception signal.
func (b *BaseFace) OnReceiveNack() *Signal[NackEvent] { return b.onNack }

// OnDroppedInterest returns the dropped-outgoing-Interest signal.
func (b *BaseFace) OnDroppedInterest() *Signal[DroppedInterestEvent] { return b.onDropped }

// DisconnectAll releases every subscription on every signal, used by
// the face table when a face is removed.
func (b *BaseFace) DisconnectAll() {
	b.onInterest.DisconnectAll()
	b.onData.DisconnectAll()
	b.onNack.DisconnectAll()
	b.onDropped.DisconnectAll()
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ndn-forwarding/corefwd/core"
	"github.com/ndn-forwarding/corefwd/ndn"
)

// WebSocketFace is a concrete Face backed by a gorilla/websocket
// connection. It exists to give the forwarding core a real transport
// to drive end to end in the demo daemon, without pulling in NDN's TLV wire format or NDNLPv2 framing:
// packets are framed as small JSON
// envelopes instead, which is this face's own application-level
// framing, not the NDN wire format. A production face implementation
// would decode real TLV packets before handing them to the core the
// same way this one hands over envelopes.
type WebSocketFace struct {
	BaseFace

	conn      *websocket.Conn
	localURI  string
	remoteURI string

	writeMu sync.Mutex
}

// NewWebSocketFace wraps an already-established websocket connection
// as a Face. A WebSocket face is always point-to-point.
func NewWebSocketFace(conn *websocket.Conn, scope ndn.Scope, localURI, remoteURI string) *WebSocketFace {
	return &WebSocketFace{
		BaseFace:  NewBaseFace(scope, ndn.PointToPoint),
		conn:      conn,
		localURI:  localURI,
		remoteURI: remoteURI,
	}
}

func (f *WebSocketFace) String() string {
	return "WebSocketFace(" + f.remoteURI + ")"
}

// LocalURI returns the local endpoint URI.
func (f *WebSocketFace) LocalURI() string { return f.localURI }

// RemoteURI returns the remote endpoint URI.
func (f *WebSocketFace) RemoteURI() string { return f.remoteURI }

type envelopeKind string

const (
	envelopeInterest envelopeKind = "interest"
	envelopeData     envelopeKind = "data"
	envelopeNack     envelopeKind = "nack"
)

type envelope struct {
	Kind envelopeKind `json:"kind"`

	Name        string   `json:"name"`
	Nonce       uint32   `json:"nonce,omitempty"`
	CanBePrefix bool     `json:"can_be_prefix,omitempty"`
	MustBeFresh bool     `json:"must_be_fresh,omitempty"`
	HopLimit    *uint8   `json:"hop_limit,omitempty"`
	LifetimeMs  int64    `json:"lifetime_ms,omitempty"`
	Content     []byte   `json:"content,omitempty"`
	FreshnessMs int64    `json:"freshness_ms,omitempty"`
	NackReason  int      `json:"nack_reason,omitempty"`
}

// SendInterest encodes and writes an Interest to the socket, emitting
// OnDroppedInterest if the frame could not be written.
func (f *WebSocketFace) SendInterest(interest *ndn.Interest) {
	env := envelope{
		Kind:        envelopeInterest,
		Name:        interest.Name().String(),
		Nonce:       interest.Nonce(),
		CanBePrefix: interest.CanBePrefix(),
		MustBeFresh: interest.MustBeFresh(),
		HopLimit:    interest.HopLimit(),
		LifetimeMs:  interest.Lifetime().Milliseconds(),
	}
	if !f.write(env) {
		f.OnDroppedInterest().Emit(DroppedInterestEvent{Interest: interest})
	}
}

// SendData encodes and writes a Data packet to the socket.
func (f *WebSocketFace) SendData(data *ndn.Data) {
	env := envelope{
		Kind:        envelopeData,
		Name:        data.Name().String(),
		Content:     data.Content(),
		FreshnessMs: data.MetaInfo().FreshnessPeriod.Milliseconds(),
	}
	f.write(env)
}

// SendNack encodes and writes a Nack to the socket.
func (f *WebSocketFace) SendNack(nack *ndn.Nack) {
	env := envelope{
		Kind:       envelopeNack,
		Name:       nack.Interest.Name().String(),
		Nonce:      nack.Interest.Nonce(),
		NackReason: int(nack.Reason),
	}
	f.write(env)
}

func (f *WebSocketFace) write(env envelope) bool {
	buf, err := json.Marshal(env)
	if err != nil {
		core.LogWarn(f, "Unable to encode outgoing packet: "+err.Error())
		return false
	}
	f.writeMu.Lock()
	err = f.conn.WriteMessage(websocket.TextMessage, buf)
	f.writeMu.Unlock()
	if err != nil {
		core.LogWarn(f, "Unable to write to websocket: "+err.Error())
		return false
	}
	return true
}

// RunReceiveLoop blocks reading frames from the socket, decoding each
// into the matching Interest/Data/Nack event and emitting it on this
// face's signals, until the connection closes.
func (f *WebSocketFace) RunReceiveLoop(endpointID uint64) {
	for {
		_, raw, err := f.conn.ReadMessage()
		if err != nil {
			f.SetState(ndn.Down)
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			core.LogDebug(f, "Unable to decode incoming frame - DROP")
			continue
		}

		switch env.Kind {
		case envelopeInterest:
			interest := ndn.NewInterest(ndn.NameFromString(env.Name))
			interest.SetNonce(env.Nonce)
			interest.SetCanBePrefix(env.CanBePrefix)
			interest.SetMustBeFresh(env.MustBeFresh)
			if env.HopLimit != nil {
				interest.SetHopLimit(*env.HopLimit)
			}
			if env.LifetimeMs > 0 {
				interest.SetLifetime(time.Duration(env.LifetimeMs) * time.Millisecond)
			}
			f.OnReceiveInterest().Emit(InterestEvent{Interest: interest, EndpointID: endpointID})
		case envelopeData:
			data := ndn.NewData(ndn.NameFromString(env.Name), env.Content)
			data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Duration(env.FreshnessMs) * time.Millisecond})
			f.OnReceiveData().Emit(DataEvent{Data: data, EndpointID: endpointID})
		case envelopeNack:
			interest := ndn.NewInterest(ndn.NameFromString(env.Name))
			interest.SetNonce(env.Nonce)
			nack := ndn.NewNack(interest, ndn.NackReason(env.NackReason))
			f.OnReceiveNack().Emit(NackEvent{Nack: nack, EndpointID: endpointID})
		default:
			core.LogDebug(f, "Unknown frame kind - DROP")
		}
	}
}

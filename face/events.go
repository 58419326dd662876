/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import "github.com/ndn-forwarding/corefwd/ndn"

// EventKind classifies a face lifecycle event.
type EventKind int

// Face lifecycle event kinds.
const (
	EventCreated EventKind = iota
	EventDestroyed
	EventUp
	EventDown
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventDestroyed:
		return "destroyed"
	case EventUp:
		return "up"
	default:
		return "down"
	}
}

// Event records a single face lifecycle transition. Unlike the NFD
// FaceEventNotification this mirrors, it carries no TLV encoding -
// management/status reporting over the wire is the face subsystem's
// problem, not the forwarding core's.
type Event struct {
	ID       uint64
	Kind     EventKind
	FaceID   uint64
	Scope    ndn.Scope
	LinkType ndn.LinkType
}

// EventsCacheSize bounds how many recent face events are retained.
const EventsCacheSize = 100

// Events is a small ring buffer of recent face lifecycle events,
// useful for tests and for any future status surface to poll without
// subscribing ahead of time.
type Events struct {
	ring   [EventsCacheSize]Event
	idx    int
	nextID uint64
}

// Emit appends an event to the ring buffer.
func (e *Events) Emit(kind EventKind, f Face) Event {
	ev := Event{
		ID:       e.nextID,
		Kind:     kind,
		FaceID:   f.FaceID(),
		Scope:    f.Scope(),
		LinkType: f.LinkType(),
	}
	e.ring[e.idx] = ev
	e.idx = (e.idx + 1) % EventsCacheSize
	e.nextID++
	return ev
}

// Get returns the event with the given id, or false if it has aged
// out of the ring buffer or never existed.
func (e *Events) Get(id uint64) (Event, bool) {
	if id >= e.nextID || id+EventsCacheSize < e.nextID {
		return Event{}, false
	}
	idx := (e.idx + int(id+EventsCacheSize-e.nextID)) % EventsCacheSize
	return e.ring[idx], true
}

// LastID returns the id of the most recently emitted event.
func (e *Events) LastID() uint64 {
	if e.nextID == 0 {
		return 0
	}
	return e.nextID - 1
}

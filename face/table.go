/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ndn-forwarding/corefwd/core"
)

// Table is the face registry: the forwarder's only source of truth
// for "which face-ids currently exist". Tables in package table
// reference faces exclusively by id, never by pointer, so that
// cleanup after a face is removed is a matter of iterating by id
// rather than chasing pointers.
type Table struct {
	mu         sync.RWMutex
	faces      map[uint64]Face
	nextFaceID atomic.Uint64

	// BeforeRemove fires just before a face is deleted from the table,
	// giving subscribers (the forwarding threads, via FIB/PIT cleanup)
	// a chance to erase all state referencing the face.
	BeforeRemove Signal[uint64]

	// Events records recent face lifecycle transitions for diagnostics.
	Events Events
}

// NewTable creates an empty face table. Face-ids start at 1; 0 is
// reserved as ndn.InvalidFaceID.
func NewTable() *Table {
	t := &Table{faces: make(map[uint64]Face)}
	t.nextFaceID.Store(1)
	return t
}

// Add registers a face, assigns it a fresh face-id, and returns that id.
func (t *Table) Add(f Face) uint64 {
	id := t.nextFaceID.Add(1) - 1
	f.SetFaceID(id)

	t.mu.Lock()
	t.faces[id] = f
	t.mu.Unlock()

	t.Events.Emit(EventCreated, f)
	core.LogInfo("FaceTable", "Registered FaceID="+strconv.FormatUint(id, 10))
	return id
}

// Register is Add guarded against double-registering the same Face
// value: if f is already present under its current FaceID, it returns
// that id and core.ErrFaceExists instead of minting a second id for
// the same face.
func (t *Table) Register(f Face) (uint64, error) {
	t.mu.RLock()
	existing, ok := t.faces[f.FaceID()]
	t.mu.RUnlock()
	if ok && existing == f {
		return f.FaceID(), core.ErrFaceExists
	}
	return t.Add(f), nil
}

// Get returns the face with the given id, or nil if none exists.
func (t *Table) Get(id uint64) Face {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.faces[id]
}

// MustGet returns the face with the given id, or core.ErrFaceNotFound
// if none exists - for call sites where a missing face is a caller
// bug rather than a routine lookup miss.
func (t *Table) MustGet(id uint64) (Face, error) {
	f := t.Get(id)
	if f == nil {
		return nil, core.ErrFaceNotFound
	}
	return f, nil
}

// GetAll returns every registered face.
func (t *Table) GetAll() []Face {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Face, 0, len(t.faces))
	for _, f := range t.faces {
		out = append(out, f)
	}
	return out
}

// Remove unregisters the face with the given id, emitting
// BeforeRemove first so table/FIB/PIT cleanup can run while the face
// is still resolvable by id.
func (t *Table) Remove(id uint64) {
	t.BeforeRemove.Emit(id)

	t.mu.Lock()
	f, ok := t.faces[id]
	if ok {
		delete(t.faces, id)
	}
	t.mu.Unlock()

	if ok {
		t.Events.Emit(EventDestroyed, f)
		if bf, ok := f.(interface{ DisconnectAll() }); ok {
			bf.DisconnectAll()
		}
	}
	core.LogInfo("FaceTable", "Unregistered FaceID="+strconv.FormatUint(id, 10))
}

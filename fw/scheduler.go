/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import "time"

// Scheduler generalizes the single-timer-per-caller pattern that
// table.PitEntry uses for its own expiry handle into a reusable
// abstraction for any other delayed, cancelable work a forwarding
// thread needs to post to itself, instead of repeating a raw
// *time.Timer field for every recurring task a thread needs (here,
// just the Dead Nonce List sweep).
type Scheduler struct{}

// NewScheduler creates a Scheduler. The zero value is also ready to use.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Task is a handle to a single scheduled callback, cancelable before
// it fires.
type Task struct {
	timer *time.Timer
}

// Schedule arms cb to run after delay on its own goroutine. Callbacks
// that touch forwarder state must hop back onto the thread's event
// loop (e.g. by sending on a channel the loop selects on) rather than
// mutating tables directly, preserving the single-threaded model.
func (s *Scheduler) Schedule(delay time.Duration, cb func()) *Task {
	return &Task{timer: time.AfterFunc(delay, cb)}
}

// Cancel stops the task if it has not yet fired.
func (t *Task) Cancel() {
	if t != nil && t.timer != nil {
		t.timer.Stop()
	}
}

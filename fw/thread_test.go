/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarding/corefwd/face"
	"github.com/ndn-forwarding/corefwd/fw"
	"github.com/ndn-forwarding/corefwd/ndn"
)

// testFace is a Face double that records every outgoing packet on a
// channel instead of writing to a transport, so tests can drive the
// forwarder end to end through its real Face signals rather than
// reaching into unexported pipeline steps.
type testFace struct {
	face.BaseFace
	name string

	sentInterests chan *ndn.Interest
	sentData      chan *ndn.Data
	sentNacks     chan *ndn.Nack
}

func newTestFace(name string, scope ndn.Scope, linkType ndn.LinkType) *testFace {
	return &testFace{
		BaseFace:      face.NewBaseFace(scope, linkType),
		name:          name,
		sentInterests: make(chan *ndn.Interest, 16),
		sentData:      make(chan *ndn.Data, 16),
		sentNacks:     make(chan *ndn.Nack, 16),
	}
}

func (f *testFace) String() string { return f.name }

func (f *testFace) SendInterest(i *ndn.Interest) { f.sentInterests <- i }
func (f *testFace) SendData(d *ndn.Data)         { f.sentData <- d }
func (f *testFace) SendNack(n *ndn.Nack)         { f.sentNacks <- n }

func newTestThread(t *testing.T) (*fw.Thread, *face.Table) {
	faces := face.NewTable()
	th := fw.NewThread(fw.ThreadConfig{Faces: faces})
	go th.Run()
	t.Cleanup(func() {
		th.TellToQuit()
		<-th.HasQuit
	})
	return th, faces
}

func deliverInterest(f *testFace, interest *ndn.Interest) {
	f.OnReceiveInterest().Emit(face.InterestEvent{Interest: interest})
}

func deliverData(f *testFace, data *ndn.Data) {
	f.OnReceiveData().Emit(face.DataEvent{Data: data})
}

// Basic hit: a primed Content Store answers synchronously off
// the face the Interest arrived on, with no PIT entry and no outgoing
// Interest.
func TestContentStoreHit(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.Local, ndn.PointToPoint)
	th.AddFace(f1)

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("X"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Second})
	th.Cs.Insert(data, false)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetNonce(1)
	deliverInterest(f1, interest)

	select {
	case got := <-f1.sentData:
		assert.Equal(t, "/a/b", got.Name().String())
		raw, ok := got.Tag(ndn.TagIncomingFaceID)
		require.True(t, ok)
		assert.Equal(t, ndn.ContentStoreFaceID, raw)
	case <-time.After(time.Second):
		t.Fatal("expected cached Data on F1")
	}

	select {
	case <-f1.sentInterests:
		t.Fatal("CS hit must not forward an Interest")
	default:
	}

	assert.Eventually(t, func() bool { return th.NCsHits == 1 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, th.Pit.Find(interest))
}

// Miss then satisfy: a CS miss with a FIB route forwards upstream
// with the hop limit decremented, and the returned Data is forwarded
// back downstream and cached.
func TestMissThenSatisfy(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.Local, ndn.PointToPoint)
	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	th.AddFace(f1)
	id2 := th.AddFace(f2)

	th.Fib().Insert(ndn.NameFromString("/a"))
	th.Fib().AddOrUpdateNextHop(ndn.NameFromString("/a"), id2, 1)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetNonce(2)
	interest.SetMustBeFresh(true)
	interest.SetHopLimit(5)
	deliverInterest(f1, interest)

	var outInterest *ndn.Interest
	select {
	case outInterest = <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected outgoing Interest on F2")
	}
	assert.Equal(t, uint32(2), outInterest.Nonce())
	require.NotNil(t, outInterest.HopLimit())
	assert.Equal(t, uint8(4), *outInterest.HopLimit())

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("Y"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Second})
	deliverData(f2, data)

	select {
	case got := <-f1.sentData:
		assert.Equal(t, "/a/b", got.Name().String())
	case <-time.After(time.Second):
		t.Fatal("expected Data forwarded to F1")
	}

	assert.Eventually(t, func() bool { return th.NSatisfiedInterests == 1 }, time.Second, 5*time.Millisecond)
	assert.NotNil(t, th.Cs.Find(ndn.NewInterest(ndn.NameFromString("/a/b"))))
}

// A downstream retransmission is not a loop: the same nonce arriving
// again on the point-to-point face that originated it, after the
// Interest has already been forwarded upstream, must not draw a
// duplicate Nack. The strategy retries the upstream hop instead.
func TestRetransmissionAfterForwarding(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.Local, ndn.PointToPoint)
	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	th.AddFace(f1)
	id2 := th.AddFace(f2)

	th.Fib().Insert(ndn.NameFromString("/a"))
	th.Fib().AddOrUpdateNextHop(ndn.NameFromString("/a"), id2, 1)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetNonce(42)
	deliverInterest(f1, interest)

	select {
	case <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected outgoing Interest on F2")
	}

	retx := ndn.NewInterest(ndn.NameFromString("/a/b"))
	retx.SetNonce(42)
	deliverInterest(f1, retx)

	select {
	case <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected retransmitted Interest on F2")
	}
	select {
	case <-f1.sentNacks:
		t.Fatal("retransmission must not draw a duplicate Nack")
	default:
	}
}

// Loop via DNL: replaying the nonce that just satisfied an Interest
// (with mustBeFresh + short freshness, so finalization recorded it in
// the Dead Nonce List) triggers the Interest Loop pipeline: a point-
// to-point face gets a duplicate Nack and no new outgoing Interest.
func TestLoopViaDeadNonceList(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.Local, ndn.PointToPoint)
	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	th.AddFace(f1)
	id2 := th.AddFace(f2)

	th.Fib().Insert(ndn.NameFromString("/a"))
	th.Fib().AddOrUpdateNextHop(ndn.NameFromString("/a"), id2, 1)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetNonce(2)
	interest.SetMustBeFresh(true)
	deliverInterest(f1, interest)

	select {
	case <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected outgoing Interest on F2")
	}

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("Y"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: 10 * time.Millisecond})
	deliverData(f2, data)

	select {
	case <-f1.sentData:
	case <-time.After(time.Second):
		t.Fatal("expected first Data delivery to F1")
	}

	// Wait for finalization so the nonce has reached the Dead Nonce List
	// before the replay arrives.
	require.Eventually(t, func() bool { return th.NSatisfiedInterests == 1 }, time.Second, 5*time.Millisecond)

	replay := ndn.NewInterest(ndn.NameFromString("/a/b"))
	replay.SetNonce(2)
	replay.SetMustBeFresh(true)
	deliverInterest(f1, replay)

	select {
	case nack := <-f1.sentNacks:
		assert.Equal(t, ndn.NackReasonDuplicate, nack.Reason)
	case <-time.After(time.Second):
		t.Fatal("expected duplicate Nack on F1")
	}

	select {
	case <-f2.sentInterests:
		t.Fatal("a detected loop must not forward a new Interest")
	default:
	}
}

// Hop-limit exhaustion: an Interest with hop-limit 1 is
// decremented to 0 at ingress and dropped at the non-local egress
// before transmission, counted against that face.
func TestHopLimitExhaustion(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.NonLocal, ndn.PointToPoint)
	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	th.AddFace(f1)
	id2 := th.AddFace(f2)

	th.Fib().Insert(ndn.NameFromString("/x"))
	th.Fib().AddOrUpdateNextHop(ndn.NameFromString("/x"), id2, 1)

	interest := ndn.NewInterest(ndn.NameFromString("/x"))
	interest.SetNonce(9)
	interest.SetHopLimit(1)
	deliverInterest(f1, interest)

	select {
	case <-f2.sentInterests:
		t.Fatal("Interest with HopLimit exhausted at egress must not be sent")
	case <-time.After(100 * time.Millisecond):
	}

	assert.Eventually(t, func() bool { return th.NOutHopLimitZero(id2) == 1 }, time.Second, 5*time.Millisecond)
}

// Scope violation: an Interest under /localhost arriving on a
// non-local face is silently dropped with no PIT entry.
func TestLocalhostScopeViolation(t *testing.T) {
	th, _ := newTestThread(t)

	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	th.AddFace(f2)

	interest := ndn.NewInterest(ndn.NameFromString("/localhost/status"))
	interest.SetNonce(3)
	deliverInterest(f2, interest)

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, th.Pit.Find(interest))
}

// Multi-match Data: two PIT entries under /a are both satisfied
// by a single incoming Data; each downstream gets exactly one copy
// and the upstream face does not get one back.
func TestMultiMatchData(t *testing.T) {
	th, _ := newTestThread(t)

	f1 := newTestFace("F1", ndn.Local, ndn.PointToPoint)
	f2 := newTestFace("F2", ndn.NonLocal, ndn.PointToPoint)
	f3 := newTestFace("F3", ndn.Local, ndn.PointToPoint)
	th.AddFace(f1)
	id2 := th.AddFace(f2)
	th.AddFace(f3)

	th.Fib().Insert(ndn.NameFromString("/a"))
	th.Fib().AddOrUpdateNextHop(ndn.NameFromString("/a"), id2, 1)

	exact := ndn.NewInterest(ndn.NameFromString("/a/b"))
	exact.SetNonce(11)
	deliverInterest(f1, exact)
	select {
	case <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected first outgoing Interest on F2")
	}

	prefix := ndn.NewInterest(ndn.NameFromString("/a"))
	prefix.SetNonce(12)
	prefix.SetCanBePrefix(true)
	deliverInterest(f3, prefix)
	select {
	case <-f2.sentInterests:
	case <-time.After(time.Second):
		t.Fatal("expected second outgoing Interest on F2")
	}

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("Z"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Second})
	deliverData(f2, data)

	select {
	case <-f1.sentData:
	case <-time.After(time.Second):
		t.Fatal("expected Data delivered to F1")
	}
	select {
	case <-f3.sentData:
	case <-time.After(time.Second):
		t.Fatal("expected Data delivered to F3")
	}
	select {
	case <-f2.sentData:
		t.Fatal("upstream face must not receive its own Data back")
	case <-time.After(100 * time.Millisecond):
	}
}

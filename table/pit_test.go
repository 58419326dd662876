/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

func TestPitInsertFindsExisting(t *testing.T) {
	pit := table.NewPit(table.NewNameTree(), 16)

	i1 := ndn.NewInterest(ndn.NameFromString("/a/b"))
	entry, isNew := pit.Insert(i1)
	assert.True(t, isNew)
	assert.Equal(t, 1, pit.Size())

	i2 := ndn.NewInterest(ndn.NameFromString("/a/b"))
	entry2, isNew2 := pit.Insert(i2)
	assert.False(t, isNew2)
	assert.Same(t, entry, entry2)
	assert.Equal(t, 1, pit.Size())

	// Different CanBePrefix selector gets its own entry.
	i3 := ndn.NewInterest(ndn.NameFromString("/a/b"))
	i3.SetCanBePrefix(true)
	_, isNew3 := pit.Insert(i3)
	assert.True(t, isNew3)
	assert.Equal(t, 2, pit.Size())
}

func TestPitFindAllDataMatches(t *testing.T) {
	pit := table.NewPit(table.NewNameTree(), 16)

	exact := ndn.NewInterest(ndn.NameFromString("/a/b"))
	prefix := ndn.NewInterest(ndn.NameFromString("/a"))
	prefix.SetCanBePrefix(true)
	unrelated := ndn.NewInterest(ndn.NameFromString("/x"))

	eEntry, _ := pit.Insert(exact)
	pEntry, _ := pit.Insert(prefix)
	pit.Insert(unrelated)

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("payload"))
	matches := pit.FindAllDataMatches(data)

	assert.Contains(t, matches, eEntry)
	assert.Contains(t, matches, pEntry)
	assert.Equal(t, 2, len(matches))
}

func TestPitNonceDuplication(t *testing.T) {
	pit := table.NewPit(table.NewNameTree(), 16)
	interest := ndn.NewInterest(ndn.NameFromString("/a"))
	interest.SetNonce(42)
	entry, _ := pit.Insert(interest)
	entry.InsertOrUpdateInRecord(1, interest, 0)

	assert.Equal(t, table.DuplicateNonceInSame, entry.FindNonceDuplication(42, 1))
	assert.Equal(t, table.DuplicateNonceInOther, entry.FindNonceDuplication(42, 2))
	assert.Equal(t, table.DuplicateNonceNone, entry.FindNonceDuplication(7, 1))
}

func TestPitExpiryArmsSingleTimer(t *testing.T) {
	pit := table.NewPit(table.NewNameTree(), 16)
	interest := ndn.NewInterest(ndn.NameFromString("/a"))
	interest.SetLifetime(10 * time.Millisecond)
	entry, _ := pit.Insert(interest)
	entry.InsertOrUpdateInRecord(1, interest, 0)
	entry.UpdateExpirationTimer()

	select {
	case expired := <-pit.Expired:
		assert.Same(t, entry, expired)
	case <-time.After(time.Second):
		t.Fatal("PIT entry did not expire in time")
	}
}

func TestPitErase(t *testing.T) {
	pit := table.NewPit(table.NewNameTree(), 16)
	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	entry, _ := pit.Insert(interest)
	assert.Equal(t, 1, pit.Size())

	pit.Erase(entry)
	assert.Equal(t, 0, pit.Size())
	assert.Nil(t, pit.Find(interest))
}

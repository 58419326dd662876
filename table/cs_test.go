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

func newLRUContentStore(capacity int) *table.ContentStore {
	cs := table.NewContentStore(table.NewNameTree())
	cs.SetReplacement(table.NewCsLRU(cs, capacity))
	return cs
}

func TestContentStoreExactHit(t *testing.T) {
	cs := newLRUContentStore(10)

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("X"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Second})
	cs.Insert(data, false)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	entry := cs.Find(interest)
	assert.NotNil(t, entry)
	assert.Equal(t, "X", string(entry.Data.Content()))
}

func TestContentStoreMustBeFresh(t *testing.T) {
	cs := newLRUContentStore(10)

	data := ndn.NewData(ndn.NameFromString("/a/b"), []byte("X"))
	cs.Insert(data, false) // zero freshness -> immediately stale

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetMustBeFresh(true)
	assert.Nil(t, cs.Find(interest))

	interest.SetMustBeFresh(false)
	assert.NotNil(t, cs.Find(interest))
}

func TestContentStoreCanBePrefix(t *testing.T) {
	cs := newLRUContentStore(10)

	data := ndn.NewData(ndn.NameFromString("/a/b/v=1"), []byte("X"))
	data.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Second})
	cs.Insert(data, false)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.SetCanBePrefix(true)
	assert.NotNil(t, cs.Find(interest))

	interest.SetCanBePrefix(false)
	assert.Nil(t, cs.Find(interest))
}

func TestCsLRUEviction(t *testing.T) {
	cs := newLRUContentStore(2)

	mk := func(name string) *ndn.Data {
		d := ndn.NewData(ndn.NameFromString(name), []byte("v"))
		d.SetMetaInfo(ndn.MetaInfo{FreshnessPeriod: time.Minute})
		return d
	}

	cs.Insert(mk("/a"), false)
	cs.Insert(mk("/b"), false)
	cs.Insert(mk("/c"), false)

	assert.Equal(t, 2, cs.Size())
	assert.Nil(t, cs.Find(ndn.NewInterest(ndn.NameFromString("/a"))))
	assert.NotNil(t, cs.Find(ndn.NewInterest(ndn.NameFromString("/c"))))
}

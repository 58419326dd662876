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

func TestDeadNonceListAddAndHas(t *testing.T) {
	dnl := table.NewDeadNonceList(time.Minute, 10)
	name := ndn.NameFromString("/a/b")

	assert.False(t, dnl.Has(name, 7))
	dnl.Add(name, 7)
	assert.True(t, dnl.Has(name, 7))
	assert.False(t, dnl.Has(name, 8))
}

func TestDeadNonceListCapacityEviction(t *testing.T) {
	dnl := table.NewDeadNonceList(time.Hour, 2)
	name := ndn.NameFromString("/a")

	dnl.Add(name, 1)
	dnl.Add(name, 2)
	dnl.Add(name, 3)

	assert.Equal(t, 2, dnl.Size())
	assert.False(t, dnl.Has(name, 1))
	assert.True(t, dnl.Has(name, 3))
}

func TestDeadNonceListRemoveExpired(t *testing.T) {
	dnl := table.NewDeadNonceList(time.Millisecond, 10)
	name := ndn.NameFromString("/a")
	dnl.Add(name, 1)

	time.Sleep(5 * time.Millisecond)
	dnl.RemoveExpired()
	assert.Equal(t, 0, dnl.Size())
}

/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

func TestMeasurementsAddInt(t *testing.T) {
	m := table.NewMeasurements(table.NewNameTree())
	entry := m.Get(ndn.NameFromString("/a"))

	assert.Nil(t, entry.Get("retx"))
	entry.AddInt("retx", 1)
	entry.AddInt("retx", 2)
	assert.Equal(t, 3, entry.Get("retx"))
}

func TestMeasurementsCompareAndSwap(t *testing.T) {
	m := table.NewMeasurements(table.NewNameTree())
	entry := m.Get(ndn.NameFromString("/a"))
	entry.AddInt("score", 1)

	assert.False(t, entry.CompareAndSwap("score", 2, 9))
	assert.Equal(t, 1, entry.Get("score"))
	assert.True(t, entry.CompareAndSwap("score", 1, 9))
	assert.Equal(t, 9, entry.Get("score"))
}

func TestMeasurementsEWMA(t *testing.T) {
	m := table.NewMeasurements(table.NewNameTree())
	entry := m.Get(ndn.NameFromString("/a"))

	entry.AddEWMASample("rtt", 100, 0.5)
	assert.Equal(t, 100.0, entry.Get("rtt"))

	entry.AddEWMASample("rtt", 200, 0.5)
	assert.Equal(t, 150.0, entry.Get("rtt"))
}

func TestMeasurementsLongestPrefixMatch(t *testing.T) {
	m := table.NewMeasurements(table.NewNameTree())

	assert.Nil(t, m.FindLongestPrefixMatch(ndn.NameFromString("/a/b")))

	parent := m.Get(ndn.NameFromString("/a"))
	parent.AddInt("score", 5)

	found := m.FindLongestPrefixMatch(ndn.NameFromString("/a/b/c"))
	assert.Same(t, parent, found)
}

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

func TestFibNexthops(t *testing.T) {
	fib := table.NewFib(table.NewNameTree())

	root := ndn.NameFromString("/")
	assert.Nil(t, fib.FindLongestPrefixMatch(root))

	name := ndn.NameFromString("/test")
	assert.Nil(t, fib.FindLongestPrefixMatch(name))

	fib.AddOrUpdateNextHop(name, 25, 1)
	fib.AddOrUpdateNextHop(name, 101, 10)
	hops := fib.FindLongestPrefixMatch(name).Nexthops()
	assert.Equal(t, 2, len(hops))
	assert.Equal(t, uint64(25), hops[0].Nexthop)
	assert.Equal(t, uint64(1), hops[0].Cost)
	assert.Equal(t, uint64(101), hops[1].Nexthop)
	assert.Equal(t, uint64(10), hops[1].Cost)

	deeper := ndn.NameFromString("/test/name/202=abc123")
	hops2 := fib.FindLongestPrefixMatch(deeper).Nexthops()
	assert.Equal(t, 2, len(hops2))

	fib.RemoveNextHop(name, 25)
	hops3 := fib.FindLongestPrefixMatch(name).Nexthops()
	assert.Equal(t, 1, len(hops3))
	assert.Equal(t, uint64(101), hops3[0].Nexthop)

	// Removing the last next hop erases and prunes the entry.
	fib.RemoveNextHop(name, 101)
	assert.Nil(t, fib.FindLongestPrefixMatch(name))
}

func TestFibAfterNewNextHop(t *testing.T) {
	fib := table.NewFib(table.NewNameTree())

	var events []table.NewNextHopEvent
	fib.AfterNewNextHop.Connect(func(e table.NewNextHopEvent) {
		events = append(events, e)
	})

	name := ndn.NameFromString("/a/b")
	fib.AddOrUpdateNextHop(name, 1, 1)
	fib.AddOrUpdateNextHop(name, 1, 5) // update, not a new hop
	fib.AddOrUpdateNextHop(name, 2, 1)

	assert.Equal(t, 2, len(events))
	assert.Equal(t, uint64(1), events[0].NextHop.Nexthop)
	assert.Equal(t, uint64(2), events[1].NextHop.Nexthop)
}

func TestStrategyChoice(t *testing.T) {
	tree := table.NewNameTree()
	bestRoute := ndn.NameFromString("/localhost/corefwd/strategy/best-route")
	multicast := ndn.NameFromString("/localhost/corefwd/strategy/multicast")
	sc := table.NewStrategyChoice(tree, bestRoute)

	root := ndn.NameFromString("/")
	assert.True(t, bestRoute.Equals(sc.FindEffectiveStrategy(root)))

	name := ndn.NameFromString("/test")
	sc.Set(name, multicast)
	assert.True(t, bestRoute.Equals(sc.FindEffectiveStrategy(root)))
	assert.True(t, multicast.Equals(sc.FindEffectiveStrategy(name)))

	deeper := ndn.NameFromString("/test/inner")
	assert.True(t, multicast.Equals(sc.FindEffectiveStrategy(deeper)))

	sc.Unset(name)
	assert.True(t, bestRoute.Equals(sc.FindEffectiveStrategy(name)))
}

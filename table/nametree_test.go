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

func TestNameTreeLookupCreatesMissingNodes(t *testing.T) {
	tree := table.NewNameTree()
	name := ndn.NameFromString("/a/b/c")

	node := tree.Lookup(name)
	assert.Equal(t, 3, node.Depth())
	assert.True(t, node.Name().Equals(name))
	assert.Same(t, node, tree.FindExactMatch(name))
}

func TestNameTreeLongestPrefixMatch(t *testing.T) {
	tree := table.NewNameTree()
	tree.Lookup(ndn.NameFromString("/a"))

	match := tree.FindLongestPrefixMatch(ndn.NameFromString("/a/b/c"))
	assert.Equal(t, 1, match.Depth())
}

func TestNameTreePartialEnumerate(t *testing.T) {
	tree := table.NewNameTree()
	fib := table.NewFib(tree)
	pit := table.NewPit(tree, 16)

	fib.AddOrUpdateNextHop(ndn.NameFromString("/a"), 1, 1)
	fib.AddOrUpdateNextHop(ndn.NameFromString("/a/shadowed"), 2, 1)
	pit.Insert(ndn.NewInterest(ndn.NameFromString("/a/b")))
	pit.Insert(ndn.NewInterest(ndn.NameFromString("/a/shadowed/c")))

	pred := func(n *table.Node) (visit bool, descend bool) {
		return true, true
	}

	nodes := tree.PartialEnumerate(ndn.NameFromString("/a"), pred)
	assert.NotEmpty(t, nodes)
}

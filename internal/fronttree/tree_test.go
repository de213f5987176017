package fronttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/tag"
	"github.com/starford/tagtree/internal/tagdoc"
	"github.com/starford/tagtree/internal/testutil"
)

type fixture struct {
	store *datanode.Store
	root  *datanode.RootNode
	doc   *datanode.TagFileNode
	tree  *Tree
}

func newFixture(t *testing.T, opts ...datanode.StoreOption) *fixture {
	t.Helper()
	s := datanode.NewStore(opts...)
	root := datanode.NewRoot(s)
	doc, err := tagdoc.Decode([]byte(testutil.SampleDoc))
	require.NoError(t, err)
	n := datanode.NewDocumentNode(s, root, "level", doc)
	root.Add(n)
	tree := New(root, nil)
	tree.RefreshRootNodes()
	return &fixture{store: s, root: root, doc: n, tree: tree}
}

func dataChild(t *testing.T, n datanode.Node, display string) datanode.Node {
	t.Helper()
	n.Expand()
	for _, c := range n.Children() {
		if c.Display() == display {
			return c
		}
	}
	t.Fatalf("%s has no child %q", n.Display(), display)
	return nil
}

func texts(ns []*Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Text()
	}
	return out
}

func TestCreateUnexpandedHasPlaceholder(t *testing.T) {
	f := newFixture(t)
	n := f.tree.CreateUnexpanded(f.doc)
	assert.Equal(t, "level", n.Text())
	assert.Equal(t, 12, n.Icon())
	assert.True(t, n.HasPlaceholder())
	assert.False(t, n.IsExpanded())
	assert.False(t, f.doc.IsExpanded(), "creation must not load children")

	leaf := f.tree.CreateUnexpanded(dataChild(t, f.doc, "version: 3"))
	assert.Empty(t, leaf.Children())
}

func TestExpandMirrorsDataChildren(t *testing.T) {
	f := newFixture(t)
	n := f.tree.CreateUnexpanded(f.doc)
	f.tree.Expand(n)

	data := f.doc.Children()
	require.Len(t, n.Children(), len(data))
	for i, c := range n.Children() {
		assert.Same(t, n, c.Parent())
		assert.Equal(t, data[i].ID(), c.Data().ID())
		assert.Equal(t, data[i].Display(), c.Text())
	}

	before := n.Children()
	f.tree.Expand(n)
	assert.Equal(t, before, n.Children(), "expanding twice is a no-op")
}

func TestCollapseRoundTrip(t *testing.T) {
	f := newFixture(t)
	n := f.tree.CreateUnexpanded(f.doc)
	f.tree.Expand(n)
	count := len(n.Children())

	require.True(t, f.tree.Collapse(n))
	assert.False(t, n.IsExpanded())
	assert.True(t, n.HasPlaceholder())

	f.tree.Expand(n)
	assert.Len(t, n.Children(), count)
}

func TestCollapseRefusedWhenModified(t *testing.T) {
	f := newFixture(t, datanode.WithPrompter(datanode.FixedPrompter{Value: "4"}))
	n := f.tree.CreateUnexpanded(f.doc)
	f.tree.Expand(n)
	player := n.Children()[2]
	f.tree.Expand(player)
	require.True(t, player.Children()[0].Data().Edit())

	before := n.Children()
	assert.False(t, f.tree.Collapse(n))
	assert.False(t, f.tree.Collapse(player))
	assert.True(t, n.IsExpanded())
	assert.Equal(t, before, n.Children())
	assert.True(t, f.doc.IsExpanded())
}

func TestRefreshChildrenReusesByIdentity(t *testing.T) {
	f := newFixture(t, datanode.WithPrompter(datanode.FixedPrompter{Name: "extra"}))
	n := f.tree.CreateUnexpanded(f.doc)
	f.tree.Expand(n)
	before := n.Children()
	f.tree.Expand(before[2])

	require.True(t, dataChild(t, f.doc, "version: 3").Delete())
	require.True(t, f.doc.CreateNode(tag.Int))
	f.tree.RefreshChildren(n, f.doc)

	after := n.Children()
	require.Len(t, after, 4)
	assert.Same(t, before[1], after[0])
	assert.Same(t, before[2], after[1])
	assert.Same(t, before[3], after[2])
	assert.True(t, after[1].IsExpanded(), "reused node keeps its expansion")
	assert.Equal(t, "extra: 0", after[3].Text())
	assert.Nil(t, before[0].Parent(), "dropped node is unlinked")
}

func TestRefreshChildrenRepopulatesReloadedNode(t *testing.T) {
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "level.yaml", testutil.SampleDoc)
	s := datanode.NewStore()
	root := datanode.NewRoot(s)
	file, err := datanode.Open(s, root, p)
	require.NoError(t, err)
	tree := New(root, nil)
	tree.RefreshRootNodes()

	n := tree.CreateUnexpanded(file)
	tree.Expand(n)
	require.True(t, file.Refresh())
	require.False(t, file.IsExpanded())

	tree.RefreshChildren(n, file)
	assert.True(t, file.IsExpanded())
	assert.Len(t, n.Children(), 4)
}

func TestVirtualRootLabel(t *testing.T) {
	f := newFixture(t)
	top := f.tree.TopLevel()
	require.Len(t, top, 1)
	assert.Equal(t, datanode.DefaultRootName, top[0].Text())
	assert.Equal(t, 16, top[0].Icon())

	f.root.SetDisplayName("Worlds")
	f.tree.UpdateText(top[0])
	assert.Equal(t, "Worlds", f.tree.TopLevel()[0].Text())
	assert.Len(t, f.root.Children(), 1)
}

func TestNonVirtualTopLevel(t *testing.T) {
	f := newFixture(t)
	f.tree.SetVirtualRoot(false)
	top := f.tree.TopLevel()
	require.Len(t, top, 1)
	assert.Equal(t, "level", top[0].Text())

	other := datanode.NewDocumentNode(f.store, f.root, "other", &tagdoc.Document{})
	f.root.Add(other)
	f.tree.RefreshRootNodes()
	next := f.tree.TopLevel()
	require.Len(t, next, 2)
	assert.Same(t, top[0], next[0])
	assert.Equal(t, "other", next[1].Text())
	assert.Nil(t, f.tree.FindDisplayNode(f.root))
}

func TestFindDisplayNodeExpandsOnlyAncestors(t *testing.T) {
	f := newFixture(t)
	player := dataChild(t, f.doc, "player: 3 entries")
	pos := dataChild(t, player, "pos: 1 entries")
	x := dataChild(t, pos, "x: 1.5")

	top := f.tree.TopLevel()[0]
	require.False(t, top.IsExpanded())

	got := f.tree.FindDisplayNode(x)
	require.NotNil(t, got)
	assert.Equal(t, x.ID(), got.Data().ID())

	var expanded []string
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsExpanded() {
			expanded = append(expanded, n.Text())
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(top)
	assert.Equal(t, []string{datanode.DefaultRootName, "level", "player: 3 entries", "pos: 1 entries"}, expanded)
	assert.False(t, got.IsExpanded())
}

func TestFindDisplayNodeDetached(t *testing.T) {
	f := newFixture(t)
	version := dataChild(t, f.doc, "version: 3")
	require.True(t, version.Delete())
	assert.Nil(t, f.tree.FindDisplayNode(version))
}

func TestCollapseBelow(t *testing.T) {
	f := newFixture(t)
	player := dataChild(t, f.doc, "player: 3 entries")

	// Not reachable through expanded nodes: nothing happens.
	f.tree.CollapseBelow(player)
	assert.False(t, f.tree.TopLevel()[0].IsExpanded())

	n := f.tree.FindDisplayNode(player)
	require.NotNil(t, n)
	f.tree.Expand(n)
	require.True(t, n.IsExpanded())

	f.tree.CollapseBelow(player)
	assert.False(t, n.IsExpanded())
	assert.True(t, n.Parent().IsExpanded())
	assert.False(t, player.IsExpanded())
}

func TestExpandToEdge(t *testing.T) {
	f := newFixture(t)
	f.root.Expand()
	player := dataChild(t, f.doc, "player: 3 entries")
	dataChild(t, player, "pos: 1 entries").Expand()

	top := f.tree.TopLevel()[0]
	f.tree.ExpandToEdge(top)

	n := f.tree.Lookup(player.ID())
	require.NotNil(t, n)
	assert.True(t, n.IsExpanded())
	pos := n.Children()[2]
	assert.True(t, pos.IsExpanded())
	inv := f.tree.Lookup(dataChild(t, f.doc, "inventory: 2 entries").ID())
	assert.False(t, inv.IsExpanded())
}

func TestRemovePurgesSelection(t *testing.T) {
	f := newFixture(t)
	player := f.tree.FindDisplayNode(dataChild(t, f.doc, "player: 3 entries"))
	f.tree.Expand(player)
	name := player.Children()[0]
	version := player.Parent().Children()[0]

	sel := f.tree.Selection()
	sel.Set(name, version, player)
	assert.Same(t, name, sel.Primary())

	assert.True(t, f.tree.Remove(player))
	assert.Equal(t, []*Node{version}, sel.Nodes())
	assert.Same(t, version, sel.Primary())
	assert.Len(t, version.Parent().Children(), 3)
}

func TestCollapsePurgesSelection(t *testing.T) {
	f := newFixture(t)
	player := f.tree.FindDisplayNode(dataChild(t, f.doc, "player: 3 entries"))
	f.tree.Expand(player)
	f.tree.Selection().Set(player.Children()[1])

	require.True(t, f.tree.Collapse(player))
	assert.Equal(t, 0, f.tree.Selection().Len())
	assert.Nil(t, f.tree.Selection().Primary())
}

func TestSelectionIgnoresPlaceholders(t *testing.T) {
	f := newFixture(t)
	top := f.tree.TopLevel()[0]
	require.True(t, top.HasPlaceholder())
	f.tree.Selection().Set(top.Children()[0], nil, top, top)
	assert.Equal(t, []*Node{top}, f.tree.Selection().Nodes())
}

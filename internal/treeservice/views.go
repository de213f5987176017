package treeservice

import (
	"github.com/starford/tagtree/internal/controller"
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
)

// NodeView is one display node in a tree snapshot.
type NodeView struct {
	ID          uint64     `json:"id"`
	Text        string     `json:"text"`
	Icon        int        `json:"icon"`
	Kind        string     `json:"kind"`
	Expanded    bool       `json:"expanded"`
	Modified    bool       `json:"modified"`
	Selected    bool       `json:"selected"`
	HasChildren bool       `json:"has_children"`
	Children    []NodeView `json:"children,omitempty"`
}

// TreeView is a snapshot of the display tree.
type TreeView struct {
	VirtualRoot bool       `json:"virtual_root"`
	RootLabel   string     `json:"root_label"`
	Modified    bool       `json:"modified"`
	Searching   bool       `json:"searching"`
	Nodes       []NodeView `json:"nodes"`
}

// SelectionView lists the selected data node ids, primary first.
type SelectionView struct {
	IDs     []uint64 `json:"ids"`
	Primary uint64   `json:"primary,omitempty"`
}

// ChildRef names a loaded data child.
type ChildRef struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// NodeDetail describes one data node.
type NodeDetail struct {
	ID                    uint64     `json:"id"`
	Kind                  string     `json:"kind"`
	Text                  string     `json:"text"`
	Name                  string     `json:"name,omitempty"`
	Value                 string     `json:"value,omitempty"`
	Path                  string     `json:"path,omitempty"`
	Modified              bool       `json:"modified"`
	Expanded              bool       `json:"expanded"`
	HasUnexpandedChildren bool       `json:"has_unexpanded_children"`
	Children              []ChildRef `json:"children"`
}

func snapshot(c *controller.Controller) *TreeView {
	sel := c.Selection()
	var build func(n *fronttree.Node) NodeView
	build = func(n *fronttree.Node) NodeView {
		d := n.Data()
		v := NodeView{
			ID:          uint64(d.ID()),
			Text:        n.Text(),
			Icon:        n.Icon(),
			Kind:        d.Kind().String(),
			Expanded:    n.IsExpanded(),
			Modified:    d.IsModified(),
			Selected:    sel.Contains(n),
			HasChildren: len(n.Children()) > 0,
		}
		for _, ch := range n.Children() {
			if ch.IsPlaceholder() {
				continue
			}
			v.Children = append(v.Children, build(ch))
		}
		return v
	}
	tv := &TreeView{
		VirtualRoot: c.ShowVirtualRoot(),
		RootLabel:   c.VirtualRootDisplay(),
		Modified:    c.CheckModifications(),
		Searching:   c.Searching(),
		Nodes:       []NodeView{},
	}
	for _, n := range c.Tree().TopLevel() {
		tv.Nodes = append(tv.Nodes, build(n))
	}
	return tv
}

func selectionView(sel *fronttree.Selection) SelectionView {
	v := SelectionView{IDs: []uint64{}}
	for _, d := range sel.Data() {
		v.IDs = append(v.IDs, uint64(d.ID()))
	}
	if p := sel.Primary(); p != nil {
		v.Primary = uint64(p.Data().ID())
	}
	return v
}

func detail(d datanode.Node) *NodeDetail {
	nd := &NodeDetail{
		ID:                    uint64(d.ID()),
		Kind:                  d.Kind().String(),
		Text:                  d.Display(),
		Modified:              d.IsModified(),
		Expanded:              d.IsExpanded(),
		HasUnexpandedChildren: d.HasUnexpandedChildren(),
		Children:              []ChildRef{},
	}
	if n, ok := d.(datanode.Named); ok {
		nd.Name = n.TagName()
	}
	if v, ok := d.(datanode.Valued); ok {
		nd.Value = v.ValueText()
	}
	if p, ok := d.(datanode.Pathed); ok {
		nd.Path = p.Path()
	}
	for _, ch := range d.Children() {
		nd.Children = append(nd.Children, ChildRef{
			ID:   uint64(ch.ID()),
			Text: ch.Display(),
			Kind: ch.Kind().String(),
		})
	}
	return nd
}

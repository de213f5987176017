package controller

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
	"github.com/starford/tagtree/internal/negotiator"
	"github.com/starford/tagtree/internal/tag"
)

func dataOf(n *fronttree.Node) datanode.Node {
	if n == nil {
		return nil
	}
	return n.Data()
}

func (c *Controller) primary() *fronttree.Node { return c.tree.Selection().Primary() }

// CreateNode creates a child tag of type t under n.
func (c *Controller) CreateNode(n *fronttree.Node, t tag.Type) bool {
	d := dataOf(n)
	if d == nil || !d.CanCreateTag(t) {
		return false
	}
	if !d.CreateNode(t) {
		return false
	}
	c.tree.UpdateText(n)
	c.tree.RefreshChildren(n, d)
	c.invalidate()
	return true
}

// CreateInSelection creates a child tag under the primary selected node.
func (c *Controller) CreateInSelection(t tag.Type) bool {
	return c.CreateNode(c.primary(), t)
}

// DeleteNode deletes the data node behind n and removes n from the display.
func (c *Controller) DeleteNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanDelete() {
		return false
	}
	if !d.Delete() {
		return false
	}
	c.detach(n)
	c.invalidate()
	return true
}

// DeleteSelection deletes every selected node when the group may be deleted
// jointly. Selected descendants of selected nodes are skipped when the
// nodes ask for it.
func (c *Controller) DeleteSelection() bool {
	nodes := c.tree.Selection().Nodes()
	ok, elide := negotiator.CanOperateEx(nodes, negotiator.Delete)
	if !ok {
		return false
	}
	if elide {
		nodes = negotiator.ElideChildren(nodes)
	}
	changed := false
	for _, n := range nodes {
		if n.Data().Delete() {
			c.detach(n)
			changed = true
		}
	}
	if changed {
		c.invalidate()
	}
	return changed
}

// detach removes a display node whose data node is gone and relabels its
// display parent.
func (c *Controller) detach(n *fronttree.Node) {
	parent := n.Parent()
	c.tree.Remove(n)
	c.tree.UpdateText(parent)
}

// EditNode edits the value of the data node behind n.
func (c *Controller) EditNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanEdit() || !d.Edit() {
		return false
	}
	c.tree.UpdateText(n)
	c.invalidate()
	return true
}

// EditSelection edits the primary selected node.
func (c *Controller) EditSelection() bool { return c.EditNode(c.primary()) }

// RenameNode renames the data node behind n.
func (c *Controller) RenameNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanRename() || !d.Rename() {
		return false
	}
	c.tree.UpdateText(n)
	c.invalidate()
	return true
}

// RenameSelection renames the primary selected node.
func (c *Controller) RenameSelection() bool { return c.RenameNode(c.primary()) }

// MoveNodeUp swaps n with its previous sibling.
func (c *Controller) MoveNodeUp(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanMoveUp() {
		return false
	}
	return c.move(n, d, -1)
}

// MoveNodeDown swaps n with its next sibling.
func (c *Controller) MoveNodeDown(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanMoveDown() {
		return false
	}
	return c.move(n, d, 1)
}

func (c *Controller) move(n *fronttree.Node, d datanode.Node, delta int) bool {
	if !d.ChangeRelativePosition(delta) {
		return false
	}
	c.tree.RefreshChildren(n.Parent(), d.Parent())
	c.invalidate()
	return true
}

// MoveSelectionUp moves the primary selected node up.
func (c *Controller) MoveSelectionUp() bool { return c.MoveNodeUp(c.primary()) }

// MoveSelectionDown moves the primary selected node down.
func (c *Controller) MoveSelectionDown() bool { return c.MoveNodeDown(c.primary()) }

// CutNode moves the data behind n to the clipboard and removes n.
func (c *Controller) CutNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanCut() || !d.Cut() {
		return false
	}
	c.detach(n)
	c.invalidate()
	return true
}

// CutSelection cuts the primary selected node.
func (c *Controller) CutSelection() bool { return c.CutNode(c.primary()) }

// CopyNode copies the data behind n to the clipboard. Nothing in the trees
// changes, so no notification is raised.
func (c *Controller) CopyNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanCopy() {
		return false
	}
	return d.Copy()
}

// CopySelection copies the primary selected node.
func (c *Controller) CopySelection() bool { return c.CopyNode(c.primary()) }

// PasteNode pastes the clipboard into n.
func (c *Controller) PasteNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanPasteInto() || !d.Paste() {
		return false
	}
	c.tree.UpdateText(n)
	c.tree.RefreshChildren(n, d)
	c.invalidate()
	return true
}

// PasteIntoSelection pastes into the primary selected node.
func (c *Controller) PasteIntoSelection() bool { return c.PasteNode(c.primary()) }

// ExpandNode shows the children of n.
func (c *Controller) ExpandNode(n *fronttree.Node) bool {
	if dataOf(n) == nil {
		return false
	}
	c.tree.Expand(n)
	return true
}

// ExpandSelectedNode expands the primary selected node.
func (c *Controller) ExpandSelectedNode() bool { return c.ExpandNode(c.primary()) }

// CollapseNode hides and releases the children of n unless they hold
// unsaved edits.
func (c *Controller) CollapseNode(n *fronttree.Node) bool {
	sel := c.tree.Selection()
	before := sel.Len()
	if !c.tree.Collapse(n) {
		return false
	}
	if sel.Len() != before {
		c.invalidate()
	}
	return true
}

// CollapseSelectedNode collapses the primary selected node.
func (c *Controller) CollapseSelectedNode() bool { return c.CollapseNode(c.primary()) }

// RefreshNode reloads the data behind n from its source after confirmation,
// then restores the previously visible depth.
func (c *Controller) RefreshNode(n *fronttree.Node) bool {
	d := dataOf(n)
	if d == nil || !d.CanRefresh() {
		return false
	}
	if !c.confirm.Confirm(RefreshMessage) {
		return false
	}
	if !d.Refresh() {
		return false
	}
	c.tree.UpdateText(n)
	c.tree.RefreshChildren(n, d)
	c.tree.ExpandToEdge(n)
	c.invalidate()
	return true
}

// RefreshSelection refreshes the primary selected node.
func (c *Controller) RefreshSelection() bool { return c.RefreshNode(c.primary()) }

// Save persists every top-level data node. The notification is raised even
// when some saves fail.
func (c *Controller) Save() error {
	var errs []error
	for _, n := range c.tree.TopLevel() {
		if d := n.Data(); d != nil {
			if err := d.Save(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.invalidate()
	err := errors.Join(errs...)
	if err != nil {
		c.logger.Error("controller: save failed", slog.String("error", err.Error()))
	}
	return err
}

// OpenPaths replaces the opened containers with paths, in order.
// Directories become directory nodes, files the first matching file type;
// other files are skipped. Paths that cannot be opened are reported in the
// returned error while the rest still open. The first top-level node is
// expanded afterwards.
func (c *Controller) OpenPaths(paths []string) ([]datanode.Node, error) {
	c.CancelSearch()
	c.root.Clear()

	var (
		opened []datanode.Node
		errs   []error
	)
	for _, p := range paths {
		n, err := datanode.Open(c.store, c.root, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n == nil {
			c.logger.Debug("controller: skipped unrecognized file", slog.String("path", p))
			continue
		}
		opened = append(opened, n)
	}
	c.tree.RefreshRootNodes()
	if top := c.tree.TopLevel(); len(top) > 0 {
		c.tree.Expand(top[0])
	}
	c.invalidate()
	return opened, errors.Join(errs...)
}

// Select replaces the selection.
func (c *Controller) Select(nodes ...*fronttree.Node) {
	c.tree.Selection().Set(nodes...)
	c.invalidate()
}

// SelectNode selects the display node of data, expanding its display
// ancestors. It reports whether the node could be found.
func (c *Controller) SelectNode(data datanode.Node) bool {
	n := c.tree.FindDisplayNode(data)
	if n == nil {
		c.tree.Selection().Clear()
	} else {
		c.tree.Selection().Set(n)
	}
	c.invalidate()
	return n != nil
}

// CollapseBelow collapses the display node of data if it is visible and
// expanded.
func (c *Controller) CollapseBelow(data datanode.Node) {
	c.tree.CollapseBelow(data)
}

// RefreshRootNodes rebuilds the top level of the display.
func (c *Controller) RefreshRootNodes() {
	c.tree.RefreshRootNodes()
}

// RefreshTreeNode reconciles the display children of data after a change
// made directly on the data tree.
func (c *Controller) RefreshTreeNode(data datanode.Node) bool {
	if data == nil {
		return false
	}
	if data.ID() == c.root.ID() && !c.tree.VirtualRoot() {
		c.tree.RefreshChildren(nil, data)
		return true
	}
	n := c.tree.FindDisplayNode(data)
	if n == nil {
		return false
	}
	c.tree.RefreshChildren(n, data)
	return true
}

// SyncPath brings the trees in line with an external change at path: loaded
// directories at or containing path are listed again, and loaded tag files
// at path without unsaved edits are reloaded when their bytes changed.
// Display nodes are reconciled only where they are already visible.
func (c *Controller) SyncPath(path string) bool {
	var hits []datanode.Node
	datanode.Walk(c.root, func(n datanode.Node) bool {
		p, ok := n.(datanode.Pathed)
		if !ok {
			return true
		}
		switch f := n.(type) {
		case *datanode.DirectoryNode:
			if f.IsExpanded() && (p.Path() == path || filepath.Dir(path) == p.Path()) {
				hits = append(hits, n)
			}
		case *datanode.TagFileNode:
			if p.Path() == path && !f.IsModified() && f.ChangedOnDisk() {
				hits = append(hits, n)
			}
		}
		return true
	})
	for _, n := range hits {
		if !datanode.Attached(n) || !n.Refresh() {
			continue
		}
		if d := c.tree.Lookup(n.ID()); d != nil {
			c.tree.UpdateText(d)
			if d.IsExpanded() {
				c.tree.RefreshChildren(d, n)
				c.tree.ExpandToEdge(d)
			}
		}
	}
	if len(hits) > 0 {
		c.invalidate()
	}
	return len(hits) > 0
}

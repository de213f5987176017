// Package controller turns user intents into coordinated changes of the
// data tree, the display tree and the selection.
//
// Every intent checks its precondition first; a denied precondition is a
// silent no-op reported as false. Intents that change state raise a single
// selection-invalidated notification. A Controller is not safe for
// concurrent use: drive it from one goroutine, normally through a Loop.
package controller

import (
	"log/slog"

	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
	"github.com/starford/tagtree/internal/iconreg"
	"github.com/starford/tagtree/internal/negotiator"
	"github.com/starford/tagtree/internal/search"
)

// RefreshMessage is the confirmation text shown before a refresh discards
// unsaved data.
const RefreshMessage = "Refresh data anyway?"

// Confirmer answers yes/no questions before destructive reloads.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Controller coordinates one session's trees.
type Controller struct {
	store   *datanode.Store
	root    *datanode.RootNode
	tree    *fronttree.Tree
	icons   *iconreg.Registry
	confirm Confirmer
	logger  *slog.Logger

	invalidated []func()
	searchSubs  []func(search.Message)

	loop   *Loop
	search *search.Worker
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore sets the data node arena.
func WithStore(s *datanode.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithIcons sets the presentation index table.
func WithIcons(r *iconreg.Registry) Option {
	return func(c *Controller) { c.icons = r }
}

// WithConfirmer sets the confirmation collaborator. Without one every
// confirmation is declined.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirm = cf }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller with an empty root shown as a virtual root.
func New(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.store == nil {
		c.store = datanode.NewStore(datanode.WithLogger(c.logger))
	}
	if c.confirm == nil {
		c.confirm = ConfirmFunc(func(string) bool { return false })
	}
	c.root = datanode.NewRoot(c.store)
	c.tree = fronttree.New(c.root, c.icons)
	c.tree.RefreshRootNodes()
	return c
}

// Store returns the data node arena.
func (c *Controller) Store() *datanode.Store { return c.store }

// Root returns the data root.
func (c *Controller) Root() *datanode.RootNode { return c.root }

// Tree returns the display tree.
func (c *Controller) Tree() *fronttree.Tree { return c.tree }

// Selection returns the current selection.
func (c *Controller) Selection() *fronttree.Selection { return c.tree.Selection() }

// SetConfirmer replaces the confirmation collaborator.
func (c *Controller) SetConfirmer(cf Confirmer) {
	if cf == nil {
		cf = ConfirmFunc(func(string) bool { return false })
	}
	c.confirm = cf
}

// WithPrompter runs fn with p answering every name and value prompt, then
// restores the previous prompter.
func (c *Controller) WithPrompter(p datanode.Prompter, fn func() bool) bool {
	prev := c.store.Prompter()
	c.store.SetPrompter(p)
	defer c.store.SetPrompter(prev)
	return fn()
}

// WithConfirmation runs fn with cf answering confirmations, then restores
// the previous confirmer.
func (c *Controller) WithConfirmation(cf Confirmer, fn func() bool) bool {
	prev := c.confirm
	c.SetConfirmer(cf)
	defer func() { c.confirm = prev }()
	return fn()
}

// OnSelectionInvalidated registers fn to run after every state change.
// Listeners must re-read the selection; no payload is passed.
func (c *Controller) OnSelectionInvalidated(fn func()) {
	c.invalidated = append(c.invalidated, fn)
}

// OnSearchMessage registers fn to run for every applied search message.
func (c *Controller) OnSearchMessage(fn func(search.Message)) {
	c.searchSubs = append(c.searchSubs, fn)
}

func (c *Controller) invalidate() {
	for _, fn := range c.invalidated {
		fn()
	}
}

// VirtualRootDisplay returns the root label.
func (c *Controller) VirtualRootDisplay() string { return c.root.Display() }

// SetVirtualRootDisplay relabels the root and, in virtual-root mode, the
// sole top-level display node.
func (c *Controller) SetVirtualRootDisplay(label string) {
	c.root.SetDisplayName(label)
	if top := c.tree.TopLevel(); c.tree.VirtualRoot() && len(top) > 0 {
		c.tree.UpdateText(top[0])
	}
}

// ShowVirtualRoot reports the display mode.
func (c *Controller) ShowVirtualRoot() bool { return c.tree.VirtualRoot() }

// SetShowVirtualRoot switches between showing the root as the only
// top-level node and showing its children at the top level.
func (c *Controller) SetShowVirtualRoot(on bool) {
	if c.tree.VirtualRoot() == on {
		return
	}
	c.tree.SetVirtualRoot(on)
	c.invalidate()
}

// CheckModifications reports whether any top-level data node holds unsaved
// edits.
func (c *Controller) CheckModifications() bool {
	for _, n := range c.tree.TopLevel() {
		if d := n.Data(); d != nil && d.IsModified() {
			return true
		}
	}
	return false
}

// CanOperateOnSelection reports whether pred allows an operation on the
// current selection as a whole.
func (c *Controller) CanOperateOnSelection(pred negotiator.Predicate) bool {
	return negotiator.CanOperate(c.tree.Selection().Nodes(), pred)
}

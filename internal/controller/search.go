package controller

import (
	"context"
	"log/slog"

	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
	"github.com/starford/tagtree/internal/negotiator"
	"github.com/starford/tagtree/internal/search"
)

// StartSearch searches below n for q on a worker goroutine. Each match
// selects its node and pauses the worker until ContinueSearch. A running
// search is cancelled first. The controller must be driven by a Loop.
func (c *Controller) StartSearch(ctx context.Context, n *fronttree.Node, q search.Query) bool {
	if c.loop == nil || !q.Valid() || n == nil {
		return false
	}
	if !negotiator.CanOperate([]*fronttree.Node{n}, negotiator.Search) {
		return false
	}
	c.CancelSearch()
	l := c.loop
	deliver := func(m search.Message) {
		l.Post(func(c *Controller) { c.applySearch(m) })
	}
	c.search = search.Start(ctx, l.Executor(), deliver, n.Data(), q)
	c.logger.Info("controller: search started",
		slog.String("name", q.Name), slog.String("value", q.Value), slog.String("from", n.Text()))
	return true
}

// SearchSelection searches below the primary selected node.
func (c *Controller) SearchSelection(ctx context.Context, q search.Query) bool {
	return c.StartSearch(ctx, c.primary(), q)
}

// Searching reports whether a search is in flight.
func (c *Controller) Searching() bool { return c.search != nil }

// ContinueSearch resumes a search paused on a match.
func (c *Controller) ContinueSearch() bool {
	if c.search == nil {
		return false
	}
	c.search.Continue()
	return true
}

// CancelSearch asks the running search to stop. Its end message still
// arrives later.
func (c *Controller) CancelSearch() {
	if c.search != nil {
		c.search.Cancel()
	}
}

// applySearch applies one worker message as a complete intent. Messages of
// a search that has been replaced are dropped, except that the end message
// is always accepted.
func (c *Controller) applySearch(m search.Message) {
	current := c.search != nil && c.search.ID() == m.Search
	if !current && m.Event != search.EventEnd {
		return
	}
	switch m.Event {
	case search.EventDiscover:
		if datanode.Attached(m.Node) {
			c.SelectNode(m.Node)
		}
	case search.EventCollapse:
		if !datanode.Attached(m.Node) {
			break
		}
		c.tree.CollapseBelow(m.Node)
		if d := c.tree.Lookup(m.Node.ID()); (d == nil || !d.IsExpanded()) && !m.Node.IsModified() {
			m.Node.Collapse()
		}
	case search.EventEnd:
		if current {
			c.search = nil
			c.invalidate()
		}
	}
	for _, fn := range c.searchSubs {
		fn(m)
	}
}

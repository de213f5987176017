// Package search walks the data tree for tags matching a name and value
// query. The walk runs on its own goroutine but touches data nodes only
// through an Executor that runs closures on the controller's thread, and it
// reports back through queued messages.
package search

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"

	"github.com/starford/tagtree/internal/datanode"
)

// Query matches tags whose name and value contain the given texts,
// ignoring case. An empty field matches anything.
type Query struct {
	Name  string
	Value string
}

// Valid reports whether the query constrains anything.
func (q Query) Valid() bool { return q.Name != "" || q.Value != "" }

// Match reports whether d satisfies q. Nodes without a value never match a
// value query.
func (q Query) Match(d datanode.Node) bool {
	if !q.Valid() {
		return false
	}
	if q.Name != "" {
		n, ok := d.(datanode.Named)
		if !ok || !contains(n.TagName(), q.Name) {
			return false
		}
	}
	if q.Value != "" {
		v, ok := d.(datanode.Valued)
		if !ok || !contains(v.ValueText(), q.Value) {
			return false
		}
	}
	return true
}

// contains matches under Unicode case folding.
func contains(s, sub string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(sub))
}

// Event is the kind of a worker message.
type Event uint8

const (
	// EventDiscover reports a match; the worker waits for Continue.
	EventDiscover Event = iota
	// EventProgress reports the node about to be examined.
	EventProgress
	// EventCollapse reports a node the worker expanded and found nothing in.
	EventCollapse
	// EventEnd is always the last message of a search.
	EventEnd
)

func (e Event) String() string {
	switch e {
	case EventDiscover:
		return "discovered"
	case EventProgress:
		return "progress"
	case EventCollapse:
		return "collapse"
	case EventEnd:
		return "ended"
	}
	return "unknown"
}

// Message is one report from a worker.
type Message struct {
	Search uint64
	Event  Event
	Node   datanode.Node
}

// Executor runs fn on the thread that owns the data tree and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, fn func()) error

// Do implements Executor.
func (f ExecutorFunc) Do(ctx context.Context, fn func()) error { return f(ctx, fn) }

var lastID atomic.Uint64

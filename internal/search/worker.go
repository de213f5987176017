package search

import (
	"context"

	"github.com/starford/tagtree/internal/datanode"
)

// Worker is one running search.
type Worker struct {
	id      uint64
	query   Query
	start   datanode.Node
	exec    Executor
	deliver func(Message)

	ctx    context.Context
	cancel context.CancelFunc
	resume chan struct{}
	done   chan struct{}
}

// Start launches a depth-first search below start (start itself is not
// examined). deliver must queue the message for the controller's thread and
// return without waiting for it to be applied.
func Start(ctx context.Context, exec Executor, deliver func(Message), start datanode.Node, q Query) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		id:      lastID.Add(1),
		query:   q,
		start:   start,
		exec:    exec,
		deliver: deliver,
		ctx:     ctx,
		cancel:  cancel,
		resume:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// ID identifies the messages of this search.
func (w *Worker) ID() uint64 { return w.id }

// Query returns the query being searched.
func (w *Worker) Query() Query { return w.query }

// Continue resumes a worker paused on a discovery.
func (w *Worker) Continue() {
	select {
	case w.resume <- struct{}{}:
	default:
	}
}

// Cancel asks the worker to stop. It does not wait; the end message still
// follows.
func (w *Worker) Cancel() { w.cancel() }

// Done is closed after the end message has been handed to deliver.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) run() {
	defer close(w.done)
	defer w.cancel()
	defer w.send(EventEnd, w.start)
	w.walk(w.start)
}

func (w *Worker) send(e Event, n datanode.Node) {
	w.deliver(Message{Search: w.id, Event: e, Node: n})
}

// walk searches below n and reports whether anything matched there. A node
// the walk had to expand is reported for collapse when nothing matched.
func (w *Worker) walk(n datanode.Node) bool {
	var (
		expanded bool
		kids     []datanode.Node
	)
	err := w.exec.Do(w.ctx, func() {
		if !datanode.Attached(n) {
			return
		}
		if !n.IsExpanded() {
			n.Expand()
			expanded = true
		}
		kids = n.Children()
	})
	if err != nil {
		return false
	}

	found := false
	for _, c := range kids {
		if w.ctx.Err() != nil {
			return true
		}
		w.send(EventProgress, c)

		var match, descend bool
		if err := w.exec.Do(w.ctx, func() {
			if !datanode.Attached(c) {
				return
			}
			match = w.query.Match(c)
			descend = c.CanSearch()
		}); err != nil {
			return true
		}
		if match {
			found = true
			w.send(EventDiscover, c)
			select {
			case <-w.resume:
			case <-w.ctx.Done():
				return true
			}
		}
		if descend && w.walk(c) {
			found = true
		}
	}
	if expanded && !found && w.ctx.Err() == nil {
		w.send(EventCollapse, n)
	}
	return found
}

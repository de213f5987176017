// Package treeservice runs tree intents on the controller loop on behalf of
// the HTTP and MCP front ends, bridges controller notifications to
// subscribers and records opened paths and saves in the session store.
package treeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/tagtree/internal/apperr"
	"github.com/starford/tagtree/internal/checksum"
	"github.com/starford/tagtree/internal/controller"
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
	"github.com/starford/tagtree/internal/negotiator"
	"github.com/starford/tagtree/internal/search"
	"github.com/starford/tagtree/internal/session"
	"github.com/starford/tagtree/internal/sse"
	"github.com/starford/tagtree/internal/storage"
	"github.com/starford/tagtree/internal/tag"
)

// Publisher receives notifications for subscribers.
type Publisher interface {
	Publish(event sse.Event)
}

// RootSetter follows the opened paths, normally a watch.Watcher.
type RootSetter interface {
	SetRoots(paths []string)
}

// Service coordinates the controller loop, the session store and the
// notification publisher.
type Service struct {
	loop      *controller.Loop
	db        *session.DB
	fs        storage.Provider
	roots     RootSetter
	pub       Publisher
	logger    *slog.Logger
	searchCtx context.Context

	mu        sync.Mutex
	sessionID string
}

// Option configures a Service.
type Option func(*Service)

// WithSession records opens and saves in db.
func WithSession(db *session.DB) Option {
	return func(s *Service) { s.db = db }
}

// WithProvider sets the file store used to check documents on restore.
func WithProvider(p storage.Provider) Option {
	return func(s *Service) { s.fs = p }
}

// WithRootSetter makes r follow the opened paths.
func WithRootSetter(r RootSetter) Option {
	return func(s *Service) { s.roots = r }
}

// WithPublisher sets the notification sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSearchContext bounds the lifetime of searches, which outlive the
// request that started them.
func WithSearchContext(ctx context.Context) Option {
	return func(s *Service) { s.searchCtx = ctx }
}

// New creates a service over a running (or soon running) loop.
func New(loop *controller.Loop, opts ...Option) *Service {
	s := &Service{loop: loop}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fs == nil {
		s.fs = storage.NewFS(false)
	}
	if s.searchCtx == nil {
		s.searchCtx = context.Background()
	}
	return s
}

// answers replies to prompts with preset text. An empty name accepts the
// suggested name; the value is always taken as given.
type answers struct {
	name  string
	value string
}

func (a answers) PromptName(current string) (string, bool) {
	if a.name == "" {
		return current, true
	}
	return a.name, true
}

func (a answers) PromptValue(tag.Type, string) (string, bool) { return a.value, true }

var selectionIntents = map[string]func(*controller.Controller) bool{
	"delete":    (*controller.Controller).DeleteSelection,
	"cut":       (*controller.Controller).CutSelection,
	"copy":      (*controller.Controller).CopySelection,
	"paste":     (*controller.Controller).PasteIntoSelection,
	"move-up":   (*controller.Controller).MoveSelectionUp,
	"move-down": (*controller.Controller).MoveSelectionDown,
	"refresh":   (*controller.Controller).RefreshSelection,
	"expand":    (*controller.Controller).ExpandSelectedNode,
	"collapse":  (*controller.Controller).CollapseSelectedNode,
}

// Intents returns the names accepted by Apply, sorted.
func Intents() []string {
	out := make([]string, 0, len(selectionIntents))
	for k := range selectionIntents {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Service) do(ctx context.Context, fn func(c *controller.Controller) error) error {
	var err error
	if lerr := s.loop.Do(ctx, func(c *controller.Controller) { err = fn(c) }); lerr != nil {
		return lerr
	}
	return err
}

func (s *Service) publish(typ string, data any) {
	if s.pub != nil {
		s.pub.Publish(sse.Event{Type: typ, Data: data})
	}
}

// Attach subscribes the publisher to controller notifications.
func (s *Service) Attach(ctx context.Context) error {
	return s.do(ctx, func(c *controller.Controller) error {
		c.OnSelectionInvalidated(func() {
			s.publish(sse.TypeSelectionInvalidated, selectionView(c.Selection()))
		})
		c.OnSearchMessage(func(m search.Message) {
			typ := ""
			switch m.Event {
			case search.EventDiscover:
				typ = sse.TypeSearchDiscovered
			case search.EventProgress:
				typ = sse.TypeSearchProgress
			case search.EventEnd:
				typ = sse.TypeSearchEnded
			default:
				return
			}
			data := map[string]any{"search": m.Search}
			if m.Node != nil {
				data["node"] = uint64(m.Node.ID())
				data["text"] = m.Node.Display()
			}
			s.publish(typ, data)
		})
		return nil
	})
}

// resolve finds the data node with id and its display node, expanding
// display ancestors as needed.
func resolve(c *controller.Controller, id uint64) (*fronttree.Node, error) {
	d, ok := c.Store().Lookup(datanode.NodeID(id))
	if !ok {
		return nil, fmt.Errorf("treeservice: node %d: %w", id, apperr.ErrNotFound)
	}
	n := c.Tree().FindDisplayNode(d)
	if n == nil {
		return nil, fmt.Errorf("treeservice: node %d not displayed: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// Tree returns a snapshot of the display tree.
func (s *Service) Tree(ctx context.Context) (*TreeView, error) {
	var tv *TreeView
	err := s.do(ctx, func(c *controller.Controller) error {
		tv = snapshot(c)
		return nil
	})
	return tv, err
}

// Node describes the data node with id.
func (s *Service) Node(ctx context.Context, id uint64) (*NodeDetail, error) {
	var nd *NodeDetail
	err := s.do(ctx, func(c *controller.Controller) error {
		d, ok := c.Store().Lookup(datanode.NodeID(id))
		if !ok {
			return fmt.Errorf("treeservice: node %d: %w", id, apperr.ErrNotFound)
		}
		nd = detail(d)
		return nil
	})
	return nd, err
}

// Selection returns the current selection.
func (s *Service) Selection(ctx context.Context) (SelectionView, error) {
	var v SelectionView
	err := s.do(ctx, func(c *controller.Controller) error {
		v = selectionView(c.Selection())
		return nil
	})
	return v, err
}

// Select replaces the selection with the nodes of ids, in order. Nothing
// changes when an id cannot be resolved.
func (s *Service) Select(ctx context.Context, ids []uint64) (SelectionView, error) {
	var v SelectionView
	err := s.do(ctx, func(c *controller.Controller) error {
		nodes := make([]*fronttree.Node, 0, len(ids))
		for _, id := range ids {
			n, err := resolve(c, id)
			if err != nil {
				return err
			}
			nodes = append(nodes, n)
		}
		c.Select(nodes...)
		v = selectionView(c.Selection())
		return nil
	})
	return v, err
}

// Expand expands the display node of id.
func (s *Service) Expand(ctx context.Context, id uint64) (bool, error) {
	return s.onNode(ctx, id, (*controller.Controller).ExpandNode)
}

// Collapse collapses the display node of id.
func (s *Service) Collapse(ctx context.Context, id uint64) (bool, error) {
	return s.onNode(ctx, id, (*controller.Controller).CollapseNode)
}

func (s *Service) onNode(ctx context.Context, id uint64, fn func(*controller.Controller, *fronttree.Node) bool) (bool, error) {
	var applied bool
	err := s.do(ctx, func(c *controller.Controller) error {
		n, err := resolve(c, id)
		if err != nil {
			return err
		}
		applied = fn(c, n)
		return nil
	})
	return applied, err
}

// Apply runs a named intent on the selection. confirm answers the
// confirmation a refresh asks for.
func (s *Service) Apply(ctx context.Context, intent string, confirm bool) (bool, error) {
	fn, ok := selectionIntents[intent]
	if !ok {
		return false, fmt.Errorf("treeservice: intent %q: %w", intent, apperr.ErrNotFound)
	}
	var applied bool
	err := s.do(ctx, func(c *controller.Controller) error {
		cf := controller.ConfirmFunc(func(string) bool { return confirm })
		applied = c.WithConfirmation(cf, func() bool { return fn(c) })
		return nil
	})
	return applied, err
}

// Rename renames the primary selected node.
func (s *Service) Rename(ctx context.Context, name string) (bool, error) {
	return s.prompted(ctx, answers{name: name}, (*controller.Controller).RenameSelection)
}

// Edit sets the value of the primary selected node from its text form.
func (s *Service) Edit(ctx context.Context, value string) (bool, error) {
	return s.prompted(ctx, answers{value: value}, (*controller.Controller).EditSelection)
}

// Create adds a tag of the named type under the primary selected node. An
// empty name takes a generated unique one.
func (s *Service) Create(ctx context.Context, kind, name, value string) (bool, error) {
	t, err := tag.ParseType(kind)
	if err != nil {
		return false, fmt.Errorf("treeservice: create: %w: %w", apperr.ErrInvalid, err)
	}
	return s.prompted(ctx, answers{name: name, value: value}, func(c *controller.Controller) bool {
		return c.CreateInSelection(t)
	})
}

func (s *Service) prompted(ctx context.Context, p datanode.Prompter, fn func(*controller.Controller) bool) (bool, error) {
	var applied bool
	err := s.do(ctx, func(c *controller.Controller) error {
		applied = c.WithPrompter(p, func() bool { return fn(c) })
		return nil
	})
	return applied, err
}

// Capabilities reports, per operation name, whether the current selection
// may run it as a group.
func (s *Service) Capabilities(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(negotiator.ByName))
	err := s.do(ctx, func(c *controller.Controller) error {
		for name, pred := range negotiator.ByName {
			out[name] = c.CanOperateOnSelection(pred)
		}
		return nil
	})
	return out, err
}

type savedFile struct {
	path string
	sum  string
}

// Save persists every modified document and records the saved checksums.
func (s *Service) Save(ctx context.Context) error {
	var saved []savedFile
	err := s.do(ctx, func(c *controller.Controller) error {
		var dirty []*datanode.TagFileNode
		datanode.Walk(c.Root(), func(n datanode.Node) bool {
			if f, ok := n.(*datanode.TagFileNode); ok && f.Path() != "" && f.IsModified() {
				dirty = append(dirty, f)
			}
			return true
		})
		err := c.Save()
		for _, f := range dirty {
			if !f.IsModified() {
				saved = append(saved, savedFile{path: f.Path(), sum: f.Checksum()})
			}
		}
		return err
	})
	if s.db != nil {
		for _, f := range saved {
			if rerr := s.db.RecordSave(f.path, f.sum); rerr != nil {
				s.logger.Warn("treeservice: record save failed", slog.String("path", f.path), slog.String("error", rerr.Error()))
			}
		}
	}
	return err
}

// Open replaces the opened paths and starts a new session. It refuses with
// ErrConflict while unsaved edits exist, unless discard is set. Paths that
// fail to open are reported in the error; the others stay open.
func (s *Service) Open(ctx context.Context, paths []string, discard bool) ([]string, error) {
	var (
		opened []string
		label  string
	)
	err := s.do(ctx, func(c *controller.Controller) error {
		if c.CheckModifications() && !discard {
			return fmt.Errorf("treeservice: open: unsaved changes: %w", apperr.ErrConflict)
		}
		nodes, err := c.OpenPaths(paths)
		for _, n := range nodes {
			if p, ok := n.(datanode.Pathed); ok {
				opened = append(opened, p.Path())
			}
		}
		label = c.VirtualRootDisplay()
		return err
	})
	if errors.Is(err, apperr.ErrConflict) || errors.Is(err, controller.ErrStopped) {
		return nil, err
	}
	if s.roots != nil {
		s.roots.SetRoots(opened)
	}
	s.startSession(label, opened)
	s.logger.Info("treeservice: opened", slog.Int("count", len(opened)))
	return opened, err
}

func (s *Service) startSession(label string, paths []string) {
	if s.db == nil {
		return
	}
	sess, err := s.db.Start(label)
	if err != nil {
		s.logger.Warn("treeservice: start session failed", slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	s.sessionID = sess.ID
	s.mu.Unlock()
	for _, p := range paths {
		if err := s.db.RecordOpen(sess.ID, p); err != nil {
			s.logger.Warn("treeservice: record open failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}

// SessionID returns the current session, empty before the first open.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// SetRootLabel relabels the data root.
func (s *Service) SetRootLabel(ctx context.Context, label string) error {
	err := s.do(ctx, func(c *controller.Controller) error {
		c.SetVirtualRootDisplay(label)
		return nil
	})
	if err != nil {
		return err
	}
	if id := s.SessionID(); s.db != nil && id != "" {
		return s.db.SetRootLabel(id, label)
	}
	return nil
}

// Restore reopens the paths of the most recent session and reapplies its
// root label. It reports false when there is nothing to restore. Documents
// whose bytes differ from their last recorded save are logged.
func (s *Service) Restore(ctx context.Context) ([]string, bool, error) {
	if s.db == nil {
		return nil, false, nil
	}
	last, ok, err := s.db.Latest(s.SessionID())
	if err != nil || !ok {
		return nil, false, err
	}
	paths, err := s.db.Paths(last.ID)
	if err != nil {
		return nil, false, err
	}
	if len(paths) == 0 {
		return nil, false, nil
	}
	for _, p := range paths {
		s.checkSaved(p)
	}
	opened, err := s.Open(ctx, paths, false)
	if last.RootLabel != "" {
		if lerr := s.SetRootLabel(ctx, last.RootLabel); lerr != nil {
			err = errors.Join(err, lerr)
		}
	}
	return opened, true, err
}

func (s *Service) checkSaved(path string) {
	want, err := s.db.SavedChecksum(path)
	if err != nil || want == "" {
		return
	}
	data, err := s.fs.Read(path)
	if err != nil {
		return
	}
	if checksum.Changed(want, data) {
		s.logger.Warn("treeservice: changed since last save", slog.String("path", path))
	}
}

// SyncPaths applies external changes reported by the watcher and publishes
// the paths that changed the tree.
func (s *Service) SyncPaths(ctx context.Context, paths []string) error {
	var changed []string
	err := s.do(ctx, func(c *controller.Controller) error {
		for _, p := range paths {
			if c.SyncPath(p) {
				changed = append(changed, p)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		s.logger.Debug("treeservice: synced", slog.Int("count", len(changed)))
		s.publish(sse.TypeTreeChanged, map[string][]string{"paths": changed})
	}
	return nil
}

// Search starts a search below the primary selected node, or below the
// first top-level node when nothing is selected.
func (s *Service) Search(ctx context.Context, name, value string) (bool, error) {
	q := search.Query{Name: name, Value: value}
	if !q.Valid() {
		return false, fmt.Errorf("treeservice: search: empty query: %w", apperr.ErrInvalid)
	}
	var started bool
	err := s.do(ctx, func(c *controller.Controller) error {
		n := c.Selection().Primary()
		if n == nil {
			if top := c.Tree().TopLevel(); len(top) > 0 {
				n = top[0]
			}
		}
		started = c.StartSearch(s.searchCtx, n, q)
		return nil
	})
	return started, err
}

// ContinueSearch resumes a search paused on a match.
func (s *Service) ContinueSearch(ctx context.Context) (bool, error) {
	var ok bool
	err := s.do(ctx, func(c *controller.Controller) error {
		ok = c.ContinueSearch()
		return nil
	})
	return ok, err
}

// CancelSearch stops the running search.
func (s *Service) CancelSearch(ctx context.Context) (bool, error) {
	var ok bool
	err := s.do(ctx, func(c *controller.Controller) error {
		ok = c.Searching()
		c.CancelSearch()
		return nil
	})
	return ok, err
}

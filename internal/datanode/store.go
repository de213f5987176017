package datanode

import (
	"log/slog"

	"github.com/starford/tagtree/internal/clipboard"
	"github.com/starford/tagtree/internal/storage"
	"github.com/starford/tagtree/internal/tag"
)

// Store is the arena that issues node identities and holds the collaborators
// shared by every node of one session. It is owned by the controller thread.
type Store struct {
	next  NodeID
	nodes map[NodeID]Node

	fs        storage.Provider
	fileTypes *FileTypeRegistry
	clip      *clipboard.Holder
	prompter  Prompter
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithProvider sets the backing file store.
func WithProvider(p storage.Provider) StoreOption {
	return func(s *Store) { s.fs = p }
}

// WithFileTypes sets the registry used to recognize files in directories.
func WithFileTypes(r *FileTypeRegistry) StoreOption {
	return func(s *Store) { s.fileTypes = r }
}

// WithClipboard sets the cut/copy holding slot.
func WithClipboard(h *clipboard.Holder) StoreOption {
	return func(s *Store) { s.clip = h }
}

// WithPrompter sets the edit surface.
func WithPrompter(p Prompter) StoreOption {
	return func(s *Store) { s.prompter = p }
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty arena.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{nodes: make(map[NodeID]Node)}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = storage.NewFS(false)
	}
	if s.fileTypes == nil {
		s.fileTypes = NewFileTypeRegistry(DefaultTagFilePatterns...)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clip == nil {
		s.clip = clipboard.New(nil, s.logger)
	}
	if s.prompter == nil {
		s.prompter = DeclinePrompter{}
	}
	return s
}

// Lookup resolves an identity to a live node.
func (s *Store) Lookup(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Len returns the number of live nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Prompter returns the current edit surface.
func (s *Store) Prompter() Prompter { return s.prompter }

// SetPrompter replaces the edit surface.
func (s *Store) SetPrompter(p Prompter) {
	if p == nil {
		p = DeclinePrompter{}
	}
	s.prompter = p
}

// Clipboard returns the cut/copy holding slot.
func (s *Store) Clipboard() *clipboard.Holder { return s.clip }

// Provider returns the backing file store.
func (s *Store) Provider() storage.Provider { return s.fs }

// FileTypes returns the file recognition registry.
func (s *Store) FileTypes() *FileTypeRegistry { return s.fileTypes }

// attach issues an identity for n and links it under parent (nil for a root).
func (s *Store) attach(n Node, parent Node) {
	s.next++
	b := n.base()
	b.store = s
	b.id = s.next
	b.self = n
	if parent != nil {
		b.parentID = parent.ID()
	}
	s.nodes[b.id] = n
}

// detach removes n and every loaded descendant from the arena.
func (s *Store) detach(n Node) {
	b := n.base()
	for _, c := range b.children {
		s.detach(c)
	}
	b.children = nil
	b.parentID = 0
	delete(s.nodes, b.id)
}

// DeclinePrompter declines every prompt.
type DeclinePrompter struct{}

func (DeclinePrompter) PromptName(string) (string, bool)            { return "", false }
func (DeclinePrompter) PromptValue(tag.Type, string) (string, bool) { return "", false }

// FixedPrompter answers prompts with preset text. An empty field accepts the
// current text unchanged.
type FixedPrompter struct {
	Name  string
	Value string
}

func (p FixedPrompter) PromptName(current string) (string, bool) {
	if p.Name == "" {
		return current, true
	}
	return p.Name, true
}

func (p FixedPrompter) PromptValue(_ tag.Type, current string) (string, bool) {
	if p.Value == "" {
		return current, true
	}
	return p.Value, true
}

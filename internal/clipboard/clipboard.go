// Package clipboard holds the tag most recently cut or copied, and can mirror
// it as a tag document onto the operating system clipboard.
package clipboard

import (
	"log/slog"

	"github.com/atotto/clipboard"

	"github.com/starford/tagtree/internal/tag"
	"github.com/starford/tagtree/internal/tagdoc"
)

// Item is a named tag value waiting to be pasted.
type Item struct {
	Name  string
	Value tag.Value
}

// Sink receives the text form of every copied item.
type Sink interface {
	WriteAll(text string) error
}

// SystemSink writes to the operating system clipboard.
type SystemSink struct{}

// WriteAll implements Sink.
func (SystemSink) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Holder is a single-slot clipboard. It is owned by the controller thread
// and is not safe for concurrent use.
type Holder struct {
	item   *Item
	sink   Sink
	logger *slog.Logger
}

// New creates an empty holder. sink may be nil.
func New(sink Sink, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{sink: sink, logger: logger}
}

// Put stores a deep copy of v under name, replacing any previous item.
func (h *Holder) Put(name string, v tag.Value) {
	h.item = &Item{Name: name, Value: tag.Clone(v)}
	if h.sink == nil {
		return
	}
	root := tag.NewCompound()
	_, _ = root.Add(name, tag.Clone(v))
	text, err := tagdoc.Encode(&tagdoc.Document{Root: root})
	if err != nil {
		h.logger.Warn("clipboard: encode failed", slog.String("error", err.Error()))
		return
	}
	if err := h.sink.WriteAll(string(text)); err != nil {
		h.logger.Warn("clipboard: system write failed", slog.String("error", err.Error()))
	}
}

// Peek returns a fresh deep copy of the held item.
func (h *Holder) Peek() (Item, bool) {
	if h.item == nil {
		return Item{}, false
	}
	return Item{Name: h.item.Name, Value: tag.Clone(h.item.Value)}, true
}

// Empty reports whether nothing has been cut or copied.
func (h *Holder) Empty() bool { return h.item == nil }

// Clear drops the held item.
func (h *Holder) Clear() { h.item = nil }

// Type returns the type of the held value.
func (h *Holder) Type() (tag.Type, bool) {
	if h.item == nil {
		return tag.End, false
	}
	return h.item.Value.Type(), true
}

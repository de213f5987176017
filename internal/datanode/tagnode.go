package datanode

import (
	"log/slog"

	"github.com/starford/tagtree/internal/capability"
	"github.com/starford/tagtree/internal/tag"
)

// containerHost is implemented by nodes whose children mirror the entries of
// a tag container.
type containerHost interface {
	Node
	container() tag.Container
}

// tagNode is the state shared by every tag kind: the slot it mirrors inside
// its parent's container.
type tagNode struct {
	Base
	entry *tag.Entry
}

func (n *tagNode) Kind() Kind { return KindOf(n.entry.Value.Type()) }

func (n *tagNode) Display() string { return label(n.entry.Name, n.entry.Value) }

// TagName returns the slot name; list items have none.
func (n *tagNode) TagName() string { return n.entry.Name }

// Value returns the mirrored tag value.
func (n *tagNode) Value() tag.Value { return n.entry.Value }

func (n *tagNode) owner() tag.Container {
	if h, ok := n.Parent().(containerHost); ok {
		return h.container()
	}
	return nil
}

func (n *tagNode) GroupCapabilities(op Op) capability.Flags {
	if op == OpDelete {
		return capability.AnyGroup | capability.ElideChildren
	}
	return capability.Single
}

func (n *tagNode) CanDelete() bool { return n.owner() != nil }

func (n *tagNode) Delete() bool {
	c := n.owner()
	if c == nil || !c.Remove(n.entry) {
		return false
	}
	p := n.Parent()
	p.base().removeChild(n.self)
	n.store.detach(n.self)
	markModified(p)
	return true
}

func (n *tagNode) CanRename() bool {
	_, ok := n.owner().(*tag.Compound)
	return ok
}

func (n *tagNode) Rename() bool {
	c, ok := n.owner().(*tag.Compound)
	if !ok {
		return false
	}
	name, ok := n.store.prompter.PromptName(n.entry.Name)
	if !ok || name == "" || name == n.entry.Name {
		return false
	}
	if err := c.Rename(n.entry, name); err != nil {
		n.store.logger.Debug("datanode: rename refused", slog.String("name", name), slog.String("error", err.Error()))
		return false
	}
	markModified(n.self)
	return true
}

func (n *tagNode) CanMoveUp() bool {
	c := n.owner()
	return c != nil && c.IndexOf(n.entry) > 0
}

func (n *tagNode) CanMoveDown() bool {
	c := n.owner()
	if c == nil {
		return false
	}
	i := c.IndexOf(n.entry)
	return i >= 0 && i < c.Len()-1
}

func (n *tagNode) ChangeRelativePosition(delta int) bool {
	c := n.owner()
	if c == nil || !c.Move(n.entry, delta) {
		return false
	}
	p := n.Parent()
	p.base().moveChild(n.self, delta)
	markModified(p)
	return true
}

func (n *tagNode) CanCopy() bool { return true }

func (n *tagNode) Copy() bool {
	n.store.clip.Put(n.entry.Name, n.entry.Value)
	return true
}

func (n *tagNode) CanCut() bool { return n.CanDelete() }

func (n *tagNode) Cut() bool {
	if !n.CanDelete() {
		return false
	}
	n.Copy()
	return n.Delete()
}

// ValueNode mirrors a scalar or array tag.
type ValueNode struct {
	tagNode
}

// ValueText returns the value in its editable form.
func (n *ValueNode) ValueText() string { return tag.EditText(n.entry.Value) }

func (n *ValueNode) CanEdit() bool { return true }

func (n *ValueNode) Edit() bool {
	t := n.entry.Value.Type()
	current := tag.EditText(n.entry.Value)
	text, ok := n.store.prompter.PromptValue(t, current)
	if !ok || text == current {
		return false
	}
	v, err := tag.Parse(t, text)
	if err != nil {
		n.store.logger.Debug("datanode: edit refused", slog.String("error", err.Error()))
		return false
	}
	n.entry.Value = v
	markModified(n)
	return true
}

// branch is the shared behavior of compound and list tags.
type branch struct {
	tagNode
}

func (n *branch) container() tag.Container { return n.entry.Value.(tag.Container) }

func (n *branch) HasUnexpandedChildren() bool {
	return !n.expanded && n.container().Len() > 0
}

func (n *branch) Expand() {
	n.expandWith(func() []Node { return mirror(n.store, n.self, n.container()) })
}

func (n *branch) CanSearch() bool { return true }

func (n *branch) CanCreateTag(t tag.Type) bool { return canCreateIn(n.container(), t) }

func (n *branch) CreateNode(t tag.Type) bool {
	return createIn(n.self, n.container(), t)
}

func (n *branch) CanPasteInto() bool { return canPasteInto(n.store, n.container()) }

func (n *branch) Paste() bool { return pasteInto(n.self, n.container()) }

// CompoundNode mirrors a compound tag.
type CompoundNode struct {
	branch
}

// ListNode mirrors a list tag.
type ListNode struct {
	branch
}

// Elem returns the list's element type.
func (n *ListNode) Elem() tag.Type { return n.entry.Value.(*tag.List).Elem() }

func newTagNode(s *Store, parent Node, e *tag.Entry) Node {
	var n Node
	switch e.Value.(type) {
	case *tag.Compound:
		n = &CompoundNode{branch{tagNode{entry: e}}}
	case *tag.List:
		n = &ListNode{branch{tagNode{entry: e}}}
	default:
		n = &ValueNode{tagNode{entry: e}}
	}
	s.attach(n, parent)
	return n
}

// mirror creates one node per entry of c, in order.
func mirror(s *Store, host Node, c tag.Container) []Node {
	es := c.Entries()
	out := make([]Node, 0, len(es))
	for _, e := range es {
		out = append(out, newTagNode(s, host, e))
	}
	return out
}

func label(name string, v tag.Value) string {
	if name == "" {
		return tag.Format(v)
	}
	return name + ": " + tag.Format(v)
}

func canCreateIn(c tag.Container, t tag.Type) bool {
	switch c := c.(type) {
	case *tag.Compound:
		return t != tag.End
	case *tag.List:
		return c.Accepts(t)
	}
	return false
}

// createIn prompts for the name (compounds only) and initial value (scalars
// only) of a new tag of type t and appends it to c. Declining either prompt
// cancels the creation.
func createIn(host Node, c tag.Container, t tag.Type) bool {
	if !canCreateIn(c, t) {
		return false
	}
	s := host.base().store
	v, err := tag.Zero(t)
	if err != nil {
		return false
	}
	var name string
	if comp, ok := c.(*tag.Compound); ok {
		name, ok = s.prompter.PromptName(comp.UniqueName(t.String()))
		if !ok || name == "" {
			return false
		}
	}
	if !t.Container() {
		text, ok := s.prompter.PromptValue(t, tag.EditText(v))
		if !ok {
			return false
		}
		if v, err = tag.Parse(t, text); err != nil {
			s.logger.Debug("datanode: create refused", slog.String("error", err.Error()))
			return false
		}
	}
	return insert(host, c, name, v)
}

func canPasteInto(s *Store, c tag.Container) bool {
	t, ok := s.clip.Type()
	return ok && canCreateIn(c, t)
}

// pasteInto appends the clipboard item to c. Compounds rename a clashing
// item rather than refuse it.
func pasteInto(host Node, c tag.Container) bool {
	s := host.base().store
	item, ok := s.clip.Peek()
	if !ok || !canCreateIn(c, item.Value.Type()) {
		return false
	}
	name := item.Name
	if comp, ok := c.(*tag.Compound); ok {
		if name == "" {
			name = item.Value.Type().String()
		}
		name = comp.UniqueName(name)
	}
	return insert(host, c, name, item.Value)
}

func insert(host Node, c tag.Container, name string, v tag.Value) bool {
	s := host.base().store
	var (
		e   *tag.Entry
		err error
	)
	switch c := c.(type) {
	case *tag.Compound:
		e, err = c.Add(name, v)
	case *tag.List:
		e, err = c.Add(v)
	}
	if err != nil || e == nil {
		if err != nil {
			s.logger.Debug("datanode: insert refused", slog.String("error", err.Error()))
		}
		return false
	}
	if host.IsExpanded() {
		host.base().appendChild(newTagNode(s, host, e))
	} else {
		host.Expand()
	}
	markModified(host)
	return true
}

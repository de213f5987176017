package treeservice

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tagtree/internal/apperr"
	"github.com/starford/tagtree/internal/checksum"
	"github.com/starford/tagtree/internal/controller"
	"github.com/starford/tagtree/internal/session"
	"github.com/starford/tagtree/internal/sse"
	"github.com/starford/tagtree/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) has(typ, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type != typ {
			continue
		}
		if text == "" {
			return true
		}
		if d, ok := e.Data.(map[string]any); ok && d["text"] == text {
			return true
		}
	}
	return false
}

type rootRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *rootRecorder) SetRoots(paths []string) {
	r.mu.Lock()
	r.paths = paths
	r.mu.Unlock()
}

type fixture struct {
	svc   *Service
	pub   *recorder
	roots *rootRecorder
	db    *session.DB
}

func newFixture(t *testing.T, db *session.DB) *fixture {
	t.Helper()
	c := controller.New()
	loop := controller.NewLoop(c)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	f := &fixture{pub: &recorder{}, roots: &rootRecorder{}, db: db}
	f.svc = New(loop,
		WithSession(db),
		WithPublisher(f.pub),
		WithRootSetter(f.roots),
		WithSearchContext(ctx),
	)
	require.NoError(t, f.svc.Attach(context.Background()))
	return f
}

func find(nodes []NodeView, text string) (NodeView, bool) {
	for _, n := range nodes {
		if n.Text == text {
			return n, true
		}
		if c, ok := find(n.Children, text); ok {
			return c, true
		}
	}
	return NodeView{}, false
}

func (f *fixture) id(t *testing.T, text string) uint64 {
	t.Helper()
	tv, err := f.svc.Tree(context.Background())
	require.NoError(t, err)
	n, ok := find(tv.Nodes, text)
	require.True(t, ok, "no node %q", text)
	return n.ID
}

func (f *fixture) openSample(t *testing.T) string {
	t.Helper()
	p := testutil.WriteFile(t, t.TempDir(), "level.yaml", testutil.SampleDoc)
	opened, err := f.svc.Open(context.Background(), []string{p}, false)
	require.NoError(t, err)
	require.Equal(t, []string{p}, opened)
	return p
}

func TestOpenRecordsSession(t *testing.T) {
	f := newFixture(t, testutil.TestDB(t))
	p := f.openSample(t)

	tv, err := f.svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tv.Nodes, 1)
	root := tv.Nodes[0]
	assert.Equal(t, "Data Sources", root.Text)
	assert.True(t, root.Expanded)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "level.yaml", root.Children[0].Text)
	assert.True(t, root.Children[0].HasChildren)
	assert.Empty(t, root.Children[0].Children)

	id := f.svc.SessionID()
	require.NotEmpty(t, id)
	paths, err := f.db.Paths(id)
	require.NoError(t, err)
	assert.Equal(t, []string{p}, paths)
	assert.Equal(t, []string{p}, f.roots.paths)
}

func TestSelectAndEdit(t *testing.T) {
	f := newFixture(t, nil)
	f.openSample(t)
	ctx := context.Background()

	ok, err := f.svc.Expand(ctx, f.id(t, "level.yaml"))
	require.NoError(t, err)
	require.True(t, ok)

	version := f.id(t, "version: 3")
	sel, err := f.svc.Select(ctx, []uint64{version})
	require.NoError(t, err)
	assert.Equal(t, version, sel.Primary)

	caps, err := f.svc.Capabilities(ctx)
	require.NoError(t, err)
	assert.True(t, caps["edit"])
	assert.False(t, caps["paste"])

	ok, err = f.svc.Edit(ctx, "7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, version, f.id(t, "version: 7"))

	ok, err = f.svc.Rename(ctx, "build")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.Apply(ctx, "delete", false)
	require.NoError(t, err)
	require.True(t, ok)
	sel, err = f.svc.Selection(ctx)
	require.NoError(t, err)
	assert.Empty(t, sel.IDs)

	assert.Eventually(t, func() bool { return f.pub.has(sse.TypeSelectionInvalidated, "") },
		time.Second, 10*time.Millisecond)
}

func TestCreateUnderSelection(t *testing.T) {
	f := newFixture(t, nil)
	f.openSample(t)
	ctx := context.Background()

	_, err := f.svc.Select(ctx, []uint64{f.id(t, "level.yaml")})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "nonsense", "x", "")
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	ok, err := f.svc.Create(ctx, "string", "motd", "")
	require.NoError(t, err)
	require.True(t, ok)
	f.id(t, "motd: ")

	ok, err = f.svc.Create(ctx, "compound", "", "")
	require.NoError(t, err)
	require.True(t, ok)
	f.id(t, "compound: 0 entries")
}

func TestErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.openSample(t)
	ctx := context.Background()

	_, err := f.svc.Select(ctx, []uint64{9999})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Node(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Apply(ctx, "explode", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Search(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestNodeDetail(t *testing.T) {
	f := newFixture(t, nil)
	p := f.openSample(t)
	ctx := context.Background()

	nd, err := f.svc.Node(ctx, f.id(t, "level.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tag_file", nd.Kind)
	assert.Equal(t, p, nd.Path)
	assert.True(t, nd.HasUnexpandedChildren)
	assert.Empty(t, nd.Children)

	_, err = f.svc.Expand(ctx, nd.ID)
	require.NoError(t, err)
	nd, err = f.svc.Node(ctx, f.id(t, "title: hello"))
	require.NoError(t, err)
	assert.Equal(t, "title", nd.Name)
	assert.Equal(t, "hello", nd.Value)
}

func TestRefreshNeedsConfirm(t *testing.T) {
	f := newFixture(t, nil)
	f.openSample(t)
	ctx := context.Background()

	_, err := f.svc.Select(ctx, []uint64{f.id(t, "level.yaml")})
	require.NoError(t, err)
	ok, err := f.svc.Apply(ctx, "refresh", false)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.svc.Apply(ctx, "refresh", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveRecordsChecksum(t *testing.T) {
	f := newFixture(t, testutil.TestDB(t))
	p := f.openSample(t)
	ctx := context.Background()

	_, err := f.svc.Expand(ctx, f.id(t, "level.yaml"))
	require.NoError(t, err)
	_, err = f.svc.Select(ctx, []uint64{f.id(t, "title: hello")})
	require.NoError(t, err)
	ok, err := f.svc.Edit(ctx, "bye")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.svc.Save(ctx))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	sum, err := f.db.SavedChecksum(p)
	require.NoError(t, err)
	assert.Equal(t, checksum.Sum(data), sum)
}

func TestOpenRefusesUnsavedChanges(t *testing.T) {
	f := newFixture(t, nil)
	p := f.openSample(t)
	ctx := context.Background()

	_, err := f.svc.Expand(ctx, f.id(t, "level.yaml"))
	require.NoError(t, err)
	_, err = f.svc.Select(ctx, []uint64{f.id(t, "version: 3")})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, "delete", false)
	require.NoError(t, err)

	_, err = f.svc.Open(ctx, []string{p}, false)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	opened, err := f.svc.Open(ctx, []string{p}, true)
	require.NoError(t, err)
	assert.Len(t, opened, 1)
}

func TestRestore(t *testing.T) {
	db := testutil.TestDB(t)
	first := newFixture(t, db)
	p := first.openSample(t)
	require.NoError(t, first.svc.SetRootLabel(context.Background(), "Worlds"))

	second := newFixture(t, db)
	opened, ok, err := second.svc.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{p}, opened)

	tv, err := second.svc.Tree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Worlds", tv.RootLabel)
	assert.NotEqual(t, first.svc.SessionID(), second.svc.SessionID())
}

func TestRestoreWithoutHistory(t *testing.T) {
	f := newFixture(t, testutil.TestDB(t))
	_, ok, err := f.svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncPathsPublishes(t *testing.T) {
	f := newFixture(t, nil)
	dir := testutil.TestTree(t)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, []string{dir}, false)
	require.NoError(t, err)
	_, err = f.svc.Expand(ctx, f.id(t, filepath.Base(dir)))
	require.NoError(t, err)

	added := testutil.WriteFile(t, dir, "added.tag", testutil.SampleDoc)
	require.NoError(t, f.svc.SyncPaths(ctx, []string{added}))
	f.id(t, "added.tag")
	assert.True(t, f.pub.has(sse.TypeTreeChanged, ""))
}

func TestSearchWalksMatches(t *testing.T) {
	f := newFixture(t, nil)
	f.openSample(t)
	ctx := context.Background()

	ok, err := f.svc.Search(ctx, "", "st")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool { return f.pub.has(sse.TypeSearchDiscovered, "name: steve") },
		2*time.Second, 10*time.Millisecond)
	sel, err := f.svc.Selection(ctx)
	require.NoError(t, err)
	require.Len(t, sel.IDs, 1)

	ok, err = f.svc.ContinueSearch(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Eventually(t, func() bool { return f.pub.has(sse.TypeSearchDiscovered, "stone") },
		2*time.Second, 10*time.Millisecond)

	_, err = f.svc.ContinueSearch(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.pub.has(sse.TypeSearchEnded, "") },
		2*time.Second, 10*time.Millisecond)

	ok, err = f.svc.CancelSearch(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

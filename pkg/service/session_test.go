package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/store"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `[
  {"group A": [{"region": [8, 9], "dim": "t", "text": "L1"}]},
  {"region": [35, 45], "dim": "x"}
]`

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	tempDir := t.TempDir()

	docPath := filepath.Join(tempDir, "regions.json")
	require.NoError(t, os.WriteFile(docPath, []byte(sampleDoc), 0644))

	svc, err := New(&Config{
		DataDir:  filepath.Join(tempDir, "data"),
		Document: docPath,
		PlotDim:  "x",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, docPath
}

func TestOpenUsesConfiguredDocument(t *testing.T) {
	svc, docPath := newTestService(t)

	sess, err := svc.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, docPath, sess.Path)
	assert.False(t, sess.IsNew)
	assert.False(t, sess.Dirty())
	assert.Len(t, sess.Tree.Regions(), 2)
}

func TestOpenMissingDocumentStartsEmpty(t *testing.T) {
	svc, docPath := newTestService(t)
	ctx := context.Background()
	path := filepath.Join(filepath.Dir(docPath), "fresh.yaml")

	sess, err := svc.Open(ctx, path)
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	assert.Empty(t, sess.Tree.Document().Items)

	_, err = sess.AddGroup("")
	require.NoError(t, err)
	require.NoError(t, sess.Save(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "- New Group: []\n", string(data))
}

func TestOpenErrors(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Config.Document = ""

	_, err := svc.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = svc.Open(context.Background(), "regions.txt")
	assert.Error(t, err)
}

func TestMoveAndSave(t *testing.T) {
	svc, docPath := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Open(ctx, docPath)
	require.NoError(t, err)

	n, err := sess.Lookup("/group A/L1")
	require.NoError(t, err)
	require.NoError(t, sess.Move(n, sess.Tree.Root(), 0))
	assert.True(t, sess.Dirty())

	require.NoError(t, sess.Save(ctx))
	assert.False(t, sess.Dirty())

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"region": [8, 9], "dim": "t", "text": "L1"}, {"group A": []}, {"region": [35, 45], "dim": "x"}]`,
		string(data))
}

func TestRenameMarksDirty(t *testing.T) {
	svc, docPath := newTestService(t)
	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)

	group, err := sess.Lookup("/group A")
	require.NoError(t, err)

	_, err = sess.Rename(group, "region")
	assert.ErrorIs(t, err, regions.ErrReservedName)
	assert.False(t, sess.Dirty())

	changed, err := sess.Rename(group, "peaks")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, sess.Dirty())
}

func TestEditExpandsGroups(t *testing.T) {
	svc, docPath := newTestService(t)
	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)

	nodes, err := sess.LookupAll("/group A", "/group A/L1", "/#1")
	require.NoError(t, err)

	count, err := sess.SetLocked(true, nodes...)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	for _, r := range sess.Tree.Regions() {
		assert.False(t, r.IsMovable())
	}

	region, err := sess.Lookup("/#1")
	require.NoError(t, err)
	err = sess.DragRegion(region, 0, 1)
	assert.ErrorIs(t, err, overlay.ErrImmovable)

	lower := 50.0
	_, err = sess.Edit(regions.RegionEdit{Lower: &lower}, region)
	assert.ErrorIs(t, err, regions.ErrInvalidEdit)
	assert.Equal(t, 35.0, region.Region().Lower())
}

func TestSelectionDrivesOverlay(t *testing.T) {
	svc, docPath := newTestService(t)
	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)

	var drawn [][]overlay.Marker
	sess.Overlay.SetSink(func(_ overlay.Plot, markers []overlay.Marker) {
		drawn = append(drawn, markers)
	})

	group, err := sess.Lookup("/group A")
	require.NoError(t, err)
	region, err := sess.Lookup("/#1")
	require.NoError(t, err)

	sess.Selection.Select(group, region)
	require.Len(t, drawn, 1)
	// the plot shows dimension x only
	require.Len(t, drawn[0], 1)
	assert.Equal(t, "x: 35-45", drawn[0][0].Label)
	assert.Equal(t, drawn[0], sess.Markers())

	require.NoError(t, sess.DragRegion(region, 30, 40))
	require.Len(t, drawn, 3)
	assert.Equal(t, 30.0, drawn[2][0].Lower)
}

func TestRemovePrunesSelection(t *testing.T) {
	svc, docPath := newTestService(t)
	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)

	group, err := sess.Lookup("/group A")
	require.NoError(t, err)
	sess.Selection.Select(group)
	require.Equal(t, 2, sess.Selection.Len())

	removed, err := sess.Remove(group, group.Child(0))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Zero(t, sess.Selection.Len())

	removed, err = sess.Remove(group)
	require.NoError(t, err)
	assert.Zero(t, removed, "already detached")

	_, err = sess.Remove(sess.Tree.Root())
	assert.ErrorIs(t, err, regions.ErrImmutableRoot)
}

func TestSnapshotRestore(t *testing.T) {
	svc, docPath := newTestService(t)
	ctx := context.Background()
	sess, err := svc.Open(ctx, docPath)
	require.NoError(t, err)

	snap, err := sess.Snapshot(ctx, "original")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Regions)

	region, err := sess.Lookup("/#1")
	require.NoError(t, err)
	_, err = sess.Remove(region)
	require.NoError(t, err)
	require.NoError(t, sess.Save(ctx))

	snaps, err := sess.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	_, err = sess.Restore(ctx, "original")
	require.NoError(t, err)
	assert.True(t, sess.Dirty())
	assert.Len(t, sess.Tree.Regions(), 2)
	require.NoError(t, sess.Save(ctx))

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.JSONEq(t, sampleDoc, string(data))
}

func TestSnapshotsAreScopedToDocument(t *testing.T) {
	svc, docPath := newTestService(t)
	ctx := context.Background()

	otherPath := filepath.Join(filepath.Dir(docPath), "other.json")
	require.NoError(t, os.WriteFile(otherPath, []byte(`[{"region": [1, 2], "dim": "x"}]`), 0644))
	other, err := svc.Open(ctx, otherPath)
	require.NoError(t, err)
	_, err = other.Snapshot(ctx, "before")
	require.NoError(t, err)

	sess, err := svc.Open(ctx, docPath)
	require.NoError(t, err)

	_, err = sess.Restore(ctx, "before")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	assert.False(t, sess.Dirty())
	assert.Len(t, sess.Tree.Regions(), 2)

	_, err = sess.DeleteSnapshot(ctx, "before")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	own, err := sess.Snapshot(ctx, "before")
	require.NoError(t, err)
	snap, err := sess.Restore(ctx, "before")
	require.NoError(t, err)
	assert.Equal(t, own.ID, snap.ID)

	deleted, err := sess.DeleteSnapshot(ctx, "before")
	require.NoError(t, err)
	assert.Equal(t, own.ID, deleted.ID)

	left, err := other.Snapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestReadBackFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tempDir := t.TempDir()
	docPath := filepath.Join(tempDir, "regions.json")
	require.NoError(t, os.WriteFile(docPath, []byte(sampleDoc), 0644))

	svc, err := New(&Config{DataDir: filepath.Join(tempDir, "data"), PlotDim: "x"}, logrus.NewEntry(logger))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)
	require.NotNil(t, sess.onDisk)

	require.NoError(t, os.Remove(docPath))
	assert.Nil(t, sess.readOnDisk())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Data, logrus.ErrorKey)
}

func TestReload(t *testing.T) {
	svc, docPath := newTestService(t)
	ctx := context.Background()
	sess, err := svc.Open(ctx, docPath)
	require.NoError(t, err)

	changed, err := sess.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, sess.Save(ctx))
	changed, err = sess.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "own save is not a change")

	require.NoError(t, os.WriteFile(docPath, []byte(`[{"region": [1, 2]}]`), 0644))
	changed, err = sess.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"/", "1-2"}, labels(sess.Tree))
}

func labels(tree *regions.Tree) []string {
	var out []string
	for n := range tree.DepthFirst() {
		out = append(out, n.Label())
	}
	return out
}

func TestEditRedrawsOnce(t *testing.T) {
	svc, docPath := newTestService(t)
	sess, err := svc.Open(context.Background(), docPath)
	require.NoError(t, err)

	var drawn int
	sess.Overlay.SetSink(func(overlay.Plot, []overlay.Marker) { drawn++ })

	nodes, err := sess.LookupAll("/group A", "/#1")
	require.NoError(t, err)
	sess.Selection.Select(nodes...)
	drawn = 0

	color := "red"
	count, err := sess.Edit(regions.RegionEdit{Color: &color}, nodes...)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, drawn)
	assert.True(t, sess.Dirty())
	assert.Equal(t, "red", sess.Markers()[0].Color)
}

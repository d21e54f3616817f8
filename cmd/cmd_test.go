package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
	"github.com/mattsolo1/grove-axisregions/pkg/store"
)

const sampleDoc = `[
  {"group A": [{"region": [8, 9], "dim": "t", "text": "L1"}]},
  {"region": [35, 45], "dim": "x"}
]`

// newTestService writes sampleDoc to a temp dir and returns a service that
// uses it as the configured document.
func newTestService(t *testing.T, plotDim string) (**service.Service, string) {
	t.Helper()
	dir := t.TempDir()
	docPath := filepath.Join(dir, "regions.json")
	require.NoError(t, os.WriteFile(docPath, []byte(sampleDoc), 0644))

	svc, err := service.New(&service.Config{
		DataDir:          filepath.Join(dir, "data"),
		Document:         docPath,
		PlotDim:          plotDim,
		DefaultGroupName: "New Group",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return &svc, docPath
}

func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	// nil args make cobra fall back to os.Args
	c.SetArgs(append([]string{}, args...))
	err := c.Execute()
	return out.String(), err
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestShowTree(t *testing.T) {
	svc, _ := newTestService(t, "x")

	out, err := run(t, NewShowCmd(svc))
	require.NoError(t, err)
	assert.Equal(t, "group A/ (1)\n  L1  [t: 8-9]\nx: 35-45\n", out)

	out, err = run(t, NewShowCmd(svc), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- group A:\n")

	_, err = run(t, NewShowCmd(svc), "--format", "toml")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	svc, _ := newTestService(t, "x")

	out, err := run(t, NewCheckCmd(svc))
	require.NoError(t, err)
	assert.Equal(t, "OK: 2 region(s), 1 group(s)\n", out)
}

func TestLabelsJSON(t *testing.T) {
	svc, _ := newTestService(t, "x")

	out, err := run(t, NewLabelsCmd(svc), "--json")
	require.NoError(t, err)

	var rows []nodeInfo
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "/group A/L1", rows[0].Path)
	assert.Equal(t, "x: 35-45", rows[1].Label)

	out, err = run(t, NewLabelsCmd(svc), "--dim", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "/group A/L1")
	assert.NotContains(t, out, "35-45")
}

func TestMoveRegionOutOfGroup(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	_, err := run(t, NewMvCmd(svc), "/group A/L1", "/", "--index", "0")
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"region": [8, 9], "dim": "t", "text": "L1"}, {"group A": []}, {"region": [35, 45], "dim": "x"}]`,
		readDoc(t, docPath))
}

func TestMoveGroupIntoGroupFails(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	_, err := run(t, NewGroupCmd(svc), "B")
	require.NoError(t, err)
	before := readDoc(t, docPath)

	_, err = run(t, NewMvCmd(svc), "/group A", "/B")
	require.Error(t, err)
	assert.ErrorIs(t, err, regions.ErrStructuralViolation)
	assert.Equal(t, before, readDoc(t, docPath))
}

func TestRenameRejectsReservedName(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	_, err := run(t, NewRenameCmd(svc), "/group A", "region")
	require.Error(t, err)
	assert.ErrorIs(t, err, regions.ErrReservedName)
	assert.JSONEq(t, sampleDoc, readDoc(t, docPath))

	out, err := run(t, NewRenameCmd(svc), "/group A", "peaks")
	require.NoError(t, err)
	assert.Equal(t, "Renamed to /peaks\n", out)
	assert.Contains(t, readDoc(t, docPath), `"peaks"`)
}

func TestGroupCollectsRegions(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewGroupCmd(svc), "peaks", "/#1")
	require.NoError(t, err)
	assert.Equal(t, "Created group peaks with 1 region(s)\n", out)

	assert.JSONEq(t,
		`[{"peaks": [{"region": [35, 45], "dim": "x"}]}, {"group A": [{"region": [8, 9], "dim": "t", "text": "L1"}]}]`,
		readDoc(t, docPath))
}

func TestAddAndRemove(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewAddCmd(svc), "60", "50", "--text", "bump", "--group", "/group A")
	require.NoError(t, err)
	assert.Equal(t, "Added /group A/bump\n", out)
	assert.Contains(t, readDoc(t, docPath), `"region": [`)

	_, err = run(t, NewAddCmd(svc), "NaN", "1")
	assert.Error(t, err)

	_, err = run(t, NewRmCmd(svc), "/group A")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"region": [35, 45], "dim": "x"}]`, readDoc(t, docPath))
}

func TestEdit(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewEditCmd(svc), "/group A", "/#1", "--color", "red", "--lock")
	require.NoError(t, err)
	assert.Equal(t, "Updated 2 region(s)\n", out)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal([]byte(readDoc(t, docPath)), &doc))
	assert.Equal(t, "red", doc[1]["color"])
	assert.Equal(t, false, doc[1]["movable"])

	out, err = run(t, NewEditCmd(svc), "/group A", "/#1")
	require.NoError(t, err)
	assert.Regexp(t, `color\s+red`, out)
	assert.Regexp(t, `lower\s+\*`, out)

	_, err = run(t, NewEditCmd(svc), "/#1", "--lower", "100")
	assert.ErrorIs(t, err, regions.ErrInvalidEdit)

	_, err = run(t, NewEditCmd(svc), "/#1", "--lock", "--unlock")
	assert.Error(t, err)
}

func TestSelectCascade(t *testing.T) {
	svc, _ := newTestService(t, "t")

	out, err := run(t, NewSelectCmd(svc), "/group A", "--json")
	require.NoError(t, err)

	var result struct {
		Selected []nodeInfo       `json:"selected"`
		Markers  []overlay.Marker `json:"markers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Selected, 2)
	assert.Equal(t, "/group A", result.Selected[0].Path)
	assert.Equal(t, "/group A/L1", result.Selected[1].Path)
	require.Len(t, result.Markers, 1)
	assert.Equal(t, "L1", result.Markers[0].Label)

	out, err = run(t, NewSelectCmd(svc), "/group A", "--deselect", "/group A")
	require.NoError(t, err)
	assert.Contains(t, out, "0 selected, 0 marker(s) on the t plot")
}

func TestOverlayMarkers(t *testing.T) {
	svc, _ := newTestService(t, "x")

	out, err := run(t, NewOverlayCmd(svc), "--json")
	require.NoError(t, err)
	var markers []overlay.Marker
	require.NoError(t, json.Unmarshal([]byte(out), &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, "x: 35-45", markers[0].Label)

	out, err = run(t, NewOverlayCmd(svc), "--dim", "", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &markers))
	assert.Len(t, markers, 2)

	out, err = run(t, NewOverlayCmd(svc), "/group A", "--dim", "x")
	require.NoError(t, err)
	assert.Equal(t, "No markers on the x plot\n", out)
}

func TestOverlayDrag(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewOverlayCmd(svc), "drag", "/#1", "50", "30")
	require.NoError(t, err)
	assert.Equal(t, "Moved x: 30-50 to 30-50\n", out)
	assert.Contains(t, readDoc(t, docPath), "30")

	_, err = run(t, NewEditCmd(svc), "/#1", "--lock")
	require.NoError(t, err)
	_, err = run(t, NewOverlayCmd(svc), "drag", "/#1", "0", "1")
	assert.ErrorIs(t, err, overlay.ErrImmovable)
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewSnapshotCmd(svc), "save", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved snapshot before")

	_, err = run(t, NewRmCmd(svc), "/group A", "/#1")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, readDoc(t, docPath))

	out, err = run(t, NewSnapshotCmd(svc), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "before")

	_, err = run(t, NewSnapshotCmd(svc), "restore", "before")
	require.NoError(t, err)
	assert.JSONEq(t, sampleDoc, readDoc(t, docPath))

	_, err = run(t, NewSnapshotCmd(svc), "delete", "before")
	require.NoError(t, err)
	out, err = run(t, NewSnapshotCmd(svc), "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestSnapshotDeleteIsScopedToDocument(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	otherPath := filepath.Join(filepath.Dir(docPath), "other.json")
	require.NoError(t, os.WriteFile(otherPath, []byte(`[]`), 0644))
	other, err := (*svc).Open(context.Background(), otherPath)
	require.NoError(t, err)
	_, err = other.Snapshot(context.Background(), "before")
	require.NoError(t, err)

	_, err = run(t, NewSnapshotCmd(svc), "restore", "before")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	assert.JSONEq(t, sampleDoc, readDoc(t, docPath))

	_, err = run(t, NewSnapshotCmd(svc), "delete", "before")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	out, err := run(t, NewSnapshotCmd(svc), "delete", "before", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted snapshot before")
}

func TestRmCountsDetachedNodes(t *testing.T) {
	svc, docPath := newTestService(t, "x")

	out, err := run(t, NewRmCmd(svc), "/group A", "/group A/L1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 item(s)\n", out)
	assert.JSONEq(t, `[{"region": [35, 45], "dim": "x"}]`, readDoc(t, docPath))
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, NewVersionCmd(), "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

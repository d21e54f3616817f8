package regions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const exampleDoc = `[
  {"group A": [{"region": [8, 9], "dim": "t", "text": "L1"}]},
  {"region": [35, 45], "dim": "x"}
]`

func TestParseJSONRoundTrip(t *testing.T) {
	docs := []string{
		exampleDoc,
		`[]`,
		`[{"empty": []}]`,
		`[{"region": [0.5, 1.25], "movable": false, "linewidth": 2.5, "color": "#ff0000", "linecolor": "#00ff00", "text": "a\nb\nc"}]`,
		`[{"region": [0, 1], "text": ""}, {"region": [-3, -1], "custom": {"nested": [1, 2.5, "x"]}, "flag": true}]`,
		`[{"g1": [{"region": [1, 2]}]}, {"g2": [{"region": [3, 4], "dim": "x"}, {"region": [5, 6]}]}]`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			root, err := ParseJSON([]byte(doc))
			require.NoError(t, err)

			out, err := json.Marshal(root)
			require.NoError(t, err)
			assert.JSONEq(t, doc, string(out))
		})
	}
}

func TestParseJSONRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"top level mapping", `{"group": []}`},
		{"scalar item", `[42]`},
		{"string item", `["region"]`},
		{"two-entry group", `[{"a": [], "b": []}]`},
		{"group maps to scalar", `[{"a": 3}]`},
		{"region with one bound", `[{"region": [1]}]`},
		{"region with text bound", `[{"region": [1, "x"]}]`},
		{"region as mapping", `[{"region": {"x": [0, 1]}}]`},
		{"dim not a string", `[{"region": [1, 2], "dim": 3}]`},
		{"movable not a bool", `[{"region": [1, 2], "movable": "yes"}]`},
		{"linewidth not a number", `[{"region": [1, 2], "linewidth": "wide"}]`},
		{"nested bare list", `[[{"region": [1, 2]}]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFragment)
		})
	}
}

func TestClassifyShapes(t *testing.T) {
	f, err := Classify([]any{})
	require.NoError(t, err)
	g, ok := f.(*Group)
	require.True(t, ok)
	assert.True(t, g.IsRoot())

	f, err = Classify(map[string]any{"named": []any{}})
	require.NoError(t, err)
	g, ok = f.(*Group)
	require.True(t, ok)
	assert.False(t, g.IsRoot())
	assert.Equal(t, "named", g.Name)

	f, err = Classify(map[string]any{"region": []any{1, 2.5}, "dim": "x"})
	require.NoError(t, err)
	r, ok := f.(*Region)
	require.True(t, ok)
	assert.Equal(t, [2]float64{1, 2.5}, r.Bounds)
	assert.Equal(t, "x", r.DimValue())

	// typed fragments pass through untouched
	existing := NewRegion(0, 1, "t")
	f, err = Classify(existing)
	require.NoError(t, err)
	assert.Same(t, existing, f)
}

func TestRegionDefaults(t *testing.T) {
	r := NewRegion(1, 2, "")
	assert.Nil(t, r.Dim)
	assert.True(t, r.IsMovable())
	assert.Equal(t, 1.0, r.LineWidthValue())
	assert.Equal(t, "", r.TextValue())

	no := false
	r.Movable = &no
	assert.False(t, r.IsMovable())
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := `
- group A:
    - region: [8, 9]
      dim: t
      text: |-
        my label
        details...
- region: [35, 45]
  dim: x
  movable: false
`
	root, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, root.Items, 2)

	out, err := yaml.Marshal(root)
	require.NoError(t, err)

	again, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Equal(t, Value(root), Value(again))

	group := again.Items[0].(*Group)
	assert.Equal(t, "group A", group.Name)
	assert.Equal(t, "my label\ndetails...", group.Items[0].(*Region).TextValue())
	assert.False(t, again.Items[1].(*Region).IsMovable())
}

func TestParseYAMLEmptyDocument(t *testing.T) {
	root, err := ParseYAML([]byte(""))
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Empty(t, root.Items)
}

func TestJSONToYAMLKeepsNumbers(t *testing.T) {
	root, err := ParseJSON([]byte(`[{"region": [1, 2], "weight": 3, "ratio": 0.5}]`))
	require.NoError(t, err)

	out, err := yaml.Marshal(root)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, 3, raw[0]["weight"])
	assert.Equal(t, 0.5, raw[0]["ratio"])
}

package regions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Document keys of a region fragment.
const (
	KeyRegion    = "region"
	KeyDim       = "dim"
	KeyText      = "text"
	KeyMovable   = "movable"
	KeyColor     = "color"
	KeyLineColor = "linecolor"
	KeyLineWidth = "linewidth"
)

// Fragment is one value of a region document, either a *Region or a *Group.
// Fragments are shared by pointer with the nodes that wrap them.
type Fragment interface {
	isFragment()
}

// Region is a labeled interval on one axis dimension.
// Optional attributes are pointers so that a missing key stays missing when
// the document is written back.
type Region struct {
	Bounds    [2]float64
	Dim       *string
	Text      *string
	Movable   *bool
	Color     *string
	LineColor *string
	LineWidth *float64

	// Extra holds keys this package does not interpret, preserved verbatim.
	Extra map[string]any
}

// Group is an ordered collection of fragments. The root group of a document
// is the top-level sequence and has no name.
type Group struct {
	Name  string
	Items []Fragment

	root bool
}

func (*Region) isFragment() {}
func (*Group) isFragment()  {}

// NewRegion returns a region over [lower, upper] on dimension dim. An empty
// dim leaves the key unset.
func NewRegion(lower, upper float64, dim string) *Region {
	r := &Region{Bounds: [2]float64{lower, upper}}
	if dim != "" {
		r.Dim = &dim
	}
	return r
}

// NewGroup returns a named group holding items.
func NewGroup(name string, items ...Fragment) *Group {
	if items == nil {
		items = []Fragment{}
	}
	return &Group{Name: name, Items: items}
}

// NewRoot returns an unnamed root group holding items.
func NewRoot(items ...Fragment) *Group {
	if items == nil {
		items = []Fragment{}
	}
	return &Group{Items: items, root: true}
}

// IsRoot reports whether g is the unnamed top-level sequence of a document.
func (g *Group) IsRoot() bool {
	return g.root
}

// Lower returns the lower bound.
func (r *Region) Lower() float64 { return r.Bounds[0] }

// Upper returns the upper bound.
func (r *Region) Upper() float64 { return r.Bounds[1] }

// DimValue returns the dimension tag or "".
func (r *Region) DimValue() string {
	if r.Dim == nil {
		return ""
	}
	return *r.Dim
}

// TextValue returns the free-form text or "".
func (r *Region) TextValue() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}

// IsMovable reports whether the region may be dragged. Regions are movable
// unless the document says otherwise.
func (r *Region) IsMovable() bool {
	return r.Movable == nil || *r.Movable
}

// LineWidthValue returns the line width, 1 when unset.
func (r *Region) LineWidthValue() float64 {
	if r.LineWidth == nil {
		return 1
	}
	return *r.LineWidth
}

func (g *Group) indexOf(f Fragment) int {
	for i, item := range g.Items {
		if item == f {
			return i
		}
	}
	return -1
}

func (g *Group) removeItem(f Fragment) bool {
	i := g.indexOf(f)
	if i < 0 {
		return false
	}
	g.Items = append(g.Items[:i], g.Items[i+1:]...)
	return true
}

func (g *Group) appendItem(f Fragment) {
	if g.indexOf(f) < 0 {
		g.Items = append(g.Items, f)
	}
}

// Classify turns a generic decoded value (from encoding/json or yaml.v3) into
// a typed fragment. Sequences become root groups, single-entry mappings to a
// sequence become named groups and mappings with a "region" key become regions.
// Typed fragments are returned unchanged.
func Classify(raw any) (Fragment, error) {
	return classify(raw, "$")
}

func classify(raw any, path string) (Fragment, error) {
	switch v := raw.(type) {
	case *Region:
		return v, nil
	case *Group:
		return v, nil
	case []any:
		root := NewRoot()
		items, err := classifyItems(v, path)
		if err != nil {
			return nil, err
		}
		root.Items = items
		return root, nil
	case []Fragment:
		return NewRoot(v...), nil
	}

	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("%s: %w: unexpected %T", path, ErrInvalidFragment, raw)
	}
	if _, ok := m[KeyRegion]; ok {
		return classifyRegion(m, path)
	}
	if len(m) != 1 {
		return nil, fmt.Errorf("%s: %w: group mapping must have exactly one entry, got %d", path, ErrInvalidFragment, len(m))
	}
	var name string
	var value any
	for name, value = range m {
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: group %q must map to a sequence", path, ErrInvalidFragment, name)
	}
	items, err := classifyItems(list, fmt.Sprintf("%s[%q]", path, name))
	if err != nil {
		return nil, err
	}
	return NewGroup(name, items...), nil
}

func classifyItems(list []any, path string) ([]Fragment, error) {
	items := make([]Fragment, 0, len(list))
	for i, raw := range list {
		f, err := classify(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if g, ok := f.(*Group); ok && g.root {
			return nil, fmt.Errorf("%s[%d]: %w: nested sequence without a group name", path, i, ErrInvalidFragment)
		}
		items = append(items, f)
	}
	return items, nil
}

func classifyRegion(m map[string]any, path string) (*Region, error) {
	r := &Region{}

	bounds, ok := m[KeyRegion].([]any)
	if !ok || len(bounds) != 2 {
		return nil, fmt.Errorf("%s: %w: %q must be a [lower, upper] pair", path, ErrInvalidFragment, KeyRegion)
	}
	for i, b := range bounds {
		f, ok := asFloat(b)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q bound %d is not a number", path, ErrInvalidFragment, KeyRegion, i)
		}
		r.Bounds[i] = f
	}

	for key, value := range m {
		var err error
		switch key {
		case KeyRegion:
			continue
		case KeyDim:
			r.Dim, err = asStringPtr(value)
		case KeyText:
			r.Text, err = asStringPtr(value)
		case KeyColor:
			r.Color, err = asStringPtr(value)
		case KeyLineColor:
			r.LineColor, err = asStringPtr(value)
		case KeyMovable:
			b, ok := value.(bool)
			if !ok {
				err = fmt.Errorf("not a boolean")
			}
			r.Movable = &b
		case KeyLineWidth:
			f, ok := asFloat(value)
			if !ok {
				err = fmt.Errorf("not a number")
			}
			r.LineWidth = &f
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[key] = normalizeValue(value)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q %v", path, ErrInvalidFragment, key, err)
		}
	}
	return r, nil
}

func asMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, value := range v {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			m[s] = value
		}
		return m, true
	}
	return nil, false
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return math.NaN(), false
}

// normalizeValue replaces json.Number leaves with int64 or float64 so that
// preserved values encode as numbers in both JSON and YAML.
func normalizeValue(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeValue(item)
		}
		return out
	}
	return raw
}

func asStringPtr(raw any) (*string, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("not a string")
	}
	return &s, nil
}

// Value returns the generic form of a fragment: []any for the root, a
// single-entry map for named groups and a map for regions. It is the shape
// both encoders write.
func Value(f Fragment) any {
	switch v := f.(type) {
	case *Group:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, Value(item))
		}
		if v.root {
			return items
		}
		return map[string]any{v.Name: items}
	case *Region:
		m := make(map[string]any, len(v.Extra)+7)
		for k, value := range v.Extra {
			m[k] = value
		}
		m[KeyRegion] = []any{v.Bounds[0], v.Bounds[1]}
		if v.Dim != nil {
			m[KeyDim] = *v.Dim
		}
		if v.Text != nil {
			m[KeyText] = *v.Text
		}
		if v.Movable != nil {
			m[KeyMovable] = *v.Movable
		}
		if v.Color != nil {
			m[KeyColor] = *v.Color
		}
		if v.LineColor != nil {
			m[KeyLineColor] = *v.LineColor
		}
		if v.LineWidth != nil {
			m[KeyLineWidth] = *v.LineWidth
		}
		return m
	}
	return nil
}

// ParseJSON decodes a whole document. The top level must be a sequence.
func ParseJSON(data []byte) (*Group, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return documentRoot(raw)
}

// ParseYAML decodes a whole document written as YAML.
func ParseYAML(data []byte) (*Group, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if raw == nil {
		return NewRoot(), nil
	}
	return documentRoot(raw)
}

func documentRoot(raw any) (*Group, error) {
	if _, ok := raw.([]any); !ok {
		return nil, fmt.Errorf("$: %w: document must be a sequence", ErrInvalidFragment)
	}
	f, err := Classify(raw)
	if err != nil {
		return nil, err
	}
	return f.(*Group), nil
}

// MarshalJSON writes the root as a bare array and named groups as {name: [...]}.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(Value(g))
}

// UnmarshalJSON accepts either group shape.
func (g *Group) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return g.fromValue(raw)
}

// MarshalJSON writes the region mapping including preserved extra keys.
func (r *Region) MarshalJSON() ([]byte, error) {
	return json.Marshal(Value(r))
}

// UnmarshalJSON accepts a region mapping.
func (r *Region) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return r.fromValue(raw)
}

// MarshalYAML implements yaml.Marshaler.
func (g *Group) MarshalYAML() (any, error) {
	return Value(g), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return g.fromValue(raw)
}

// MarshalYAML implements yaml.Marshaler.
func (r *Region) MarshalYAML() (any, error) {
	return Value(r), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Region) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return r.fromValue(raw)
}

func (g *Group) fromValue(raw any) error {
	f, err := Classify(raw)
	if err != nil {
		return err
	}
	parsed, ok := f.(*Group)
	if !ok {
		return fmt.Errorf("$: %w: expected a group", ErrInvalidFragment)
	}
	*g = *parsed
	return nil
}

func (r *Region) fromValue(raw any) error {
	f, err := Classify(raw)
	if err != nil {
		return err
	}
	parsed, ok := f.(*Region)
	if !ok {
		return fmt.Errorf("$: %w: expected a region", ErrInvalidFragment)
	}
	*r = *parsed
	return nil
}

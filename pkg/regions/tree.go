package regions

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultGroupName is used by AddGroup when no name is given.
const DefaultGroupName = "New Group"

// Tree owns the node graph built over one document and keeps both in step.
// Exactly one Tree should wrap a given document at a time.
type Tree struct {
	root        *Node
	logger      *logrus.Entry
	defaultName string
	onEdit      []func(*Node)
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger mutations are reported to.
func WithLogger(logger *logrus.Entry) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDefaultGroupName sets the name AddGroup falls back to.
func WithDefaultGroupName(name string) TreeOption {
	return func(t *Tree) {
		if name = NormalizeLabel(name); name != "" {
			t.defaultName = name
		}
	}
}

// NewTree builds the node graph for a document root.
func NewTree(root *Group, opts ...TreeOption) (*Tree, error) {
	if root == nil {
		root = NewRoot()
	}
	if !root.root {
		return nil, fmt.Errorf("%w: document root must be a sequence", ErrInvalidFragment)
	}
	n, err := build(root, make(map[Fragment]struct{}))
	if err != nil {
		return nil, err
	}

	t := &Tree{
		root:        n,
		logger:      logrus.NewEntry(logrus.New()),
		defaultName: DefaultGroupName,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithField("component", "region-tree")
	return t, nil
}

// Load classifies a generic decoded document and builds its tree.
func Load(raw any, opts ...TreeOption) (*Tree, error) {
	f, err := Classify(raw)
	if err != nil {
		return nil, err
	}
	root, ok := f.(*Group)
	if !ok || !root.root {
		return nil, fmt.Errorf("%w: document root must be a sequence", ErrInvalidFragment)
	}
	return NewTree(root, opts...)
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Document returns the root fragment, which reflects every edit made through
// the tree.
func (t *Tree) Document() *Group { return t.root.group }

// OnEdit registers fn to be called after a node's label changes.
func (t *Tree) OnEdit(fn func(*Node)) {
	t.onEdit = append(t.onEdit, fn)
}

// SetParent moves n under parent, or detaches it when parent is nil.
// Validation happens before anything is changed.
func (t *Tree) SetParent(n, parent *Node) error {
	if n == nil {
		return ErrNotFound
	}
	from := n.parent
	if err := setParent(n, parent); err != nil {
		return err
	}
	if from != parent {
		t.logger.WithFields(logrus.Fields{
			"node": n.Label(),
			"from": labelOf(from),
			"to":   labelOf(parent),
		}).Debug("Reparented node")
	}
	return nil
}

// InsertChild moves n under group and places it at index among the
// children, mirroring the position in the group's fragment list. Indexes
// outside the child range are clamped, so an index equal to the current
// child count lands on the last slot.
func (t *Tree) InsertChild(group *Node, index int, n *Node) error {
	if group == nil || !group.IsGroup() {
		return fmt.Errorf("%q: %w", labelOf(group), ErrInvalidParent)
	}
	if n == nil {
		return ErrNotFound
	}
	if err := t.SetParent(n, group); err != nil {
		return err
	}

	index = max(0, min(index, len(group.children)-1))
	pos := slices.Index(group.children, n)
	if pos != index {
		group.children = moveElem(group.children, pos, index)
	}
	if fpos := group.group.indexOf(n.Fragment()); fpos != index {
		group.group.Items = moveElem(group.group.Items, fpos, index)
	}

	t.logger.WithFields(logrus.Fields{
		"node":  n.Label(),
		"group": group.Label(),
		"index": index,
	}).Debug("Inserted node")
	return nil
}

// DropAt applies drag-and-drop semantics: n is placed before the row that
// currently sits at row. When n already precedes that row in the same group
// the row is shifted down by one to account for n's own removal.
func (t *Tree) DropAt(group *Node, row int, n *Node) error {
	if n != nil && group != nil && n.parent == group {
		if pos := n.Index(); pos < row {
			row--
		}
	}
	return t.InsertChild(group, row, n)
}

// RemoveChild detaches n and its subtree from the tree and the document.
func (t *Tree) RemoveChild(n *Node) error {
	return t.SetParent(n, nil)
}

// Remove detaches every node that is still part of the tree and returns how
// many were detached. A node already detached by an earlier entry (a region
// inside a removed group) is skipped and not counted.
func (t *Tree) Remove(nodes ...*Node) (int, error) {
	for _, n := range nodes {
		if n != nil && n.IsRoot() {
			return 0, ErrImmutableRoot
		}
	}
	removed := 0
	for _, n := range nodes {
		if n == nil || !t.Contains(n) {
			continue
		}
		if err := t.RemoveChild(n); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Contains reports whether n is reachable from the root.
func (t *Tree) Contains(n *Node) bool {
	for ; n != nil; n = n.parent {
		if n == t.root {
			return true
		}
	}
	return false
}

// SetLabel renames n after checking that a group name stays unique among its
// siblings. Edit observers run when the label changed.
func (t *Tree) SetLabel(n *Node, value string) (bool, error) {
	if n == nil {
		return false, ErrNotFound
	}
	if n.IsGroup() && !n.group.root && n.parent != nil {
		name := NormalizeLabel(value)
		if name != n.group.Name && siblingGroup(n.parent, name, n) != nil {
			return false, fmt.Errorf("%q: %w", name, ErrDuplicateName)
		}
	}

	old := n.Label()
	changed, err := n.SetLabel(value)
	if err != nil || !changed {
		return changed, err
	}
	t.logger.WithFields(logrus.Fields{
		"from": old,
		"to":   n.Label(),
	}).Debug("Renamed node")
	for _, fn := range t.onEdit {
		fn(n)
	}
	return true, nil
}

// NotifyEdited runs the edit observers for n. Callers that change a region's
// attributes directly use it to keep observers current.
func (t *Tree) NotifyEdited(n *Node) {
	for _, fn := range t.onEdit {
		fn(n)
	}
}

// AddGroup creates an empty group at the top of the root. Taken names get a
// numeric suffix.
func (t *Tree) AddGroup(name string) (*Node, error) {
	name = NormalizeLabel(name)
	if name == "" {
		name = t.defaultName
	}
	if err := ValidateGroupName(name); err != nil {
		return nil, err
	}
	name = UniqueName(name, func(s string) bool {
		return siblingGroup(t.root, s, nil) != nil
	})

	n, err := Construct(NewGroup(name), nil)
	if err != nil {
		return nil, err
	}
	if err := t.InsertChild(t.root, 0, n); err != nil {
		return nil, err
	}
	return n, nil
}

// AddRegion appends r to group, or to the root when group is nil.
func (t *Tree) AddRegion(group *Node, r *Region) (*Node, error) {
	if group == nil {
		group = t.root
	}
	n, err := Construct(r, nil)
	if err != nil {
		return nil, err
	}
	if err := t.SetParent(n, group); err != nil {
		return nil, err
	}
	return n, nil
}

// DepthFirst walks the whole tree in pre-order, root first.
func (t *Tree) DepthFirst() iter.Seq[*Node] {
	return Walk(t.root)
}

// Walk returns a pre-order iterator over the subtree rooted at n.
func Walk(n *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walk(n, yield)
	}
}

func walk(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// Regions returns every region fragment in depth-first order.
func (t *Tree) Regions() []*Region {
	var out []*Region
	for n := range t.DepthFirst() {
		if n.IsRegion() {
			out = append(out, n.region)
		}
	}
	return out
}

// Find returns the first node in depth-first order whose label is label.
func (t *Tree) Find(label string) (*Node, error) {
	for n := range t.DepthFirst() {
		if n.Label() == label {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", label, ErrNotFound)
}

// NodeOf returns the node wrapping fragment f.
func (t *Tree) NodeOf(f Fragment) (*Node, error) {
	for n := range t.DepthFirst() {
		if n.Fragment() == f {
			return n, nil
		}
	}
	return nil, ErrNotFound
}

// Path returns the slash separated label path of n, "/" for the root. A
// label that Lookup could not resolve back to n (shared with a sibling,
// containing a slash or starting with #) is written as #N instead.
func (t *Tree) Path(n *Node) string {
	var parts []string
	for ; n != nil && n.parent != nil; n = n.parent {
		parts = append(parts, segment(n))
	}
	slices.Reverse(parts)
	return RootLabel + strings.Join(parts, "/")
}

func segment(n *Node) string {
	label := n.Label()
	if label == "" || strings.Contains(label, "/") || strings.HasPrefix(label, "#") {
		return "#" + strconv.Itoa(n.Index())
	}
	for _, c := range n.parent.children {
		if c != n && c.Label() == label {
			return "#" + strconv.Itoa(n.Index())
		}
	}
	return label
}

// Lookup resolves a path produced by Path. A segment of the form #N selects
// the N-th child; a label shared by several siblings is ErrAmbiguousPath.
func (t *Tree) Lookup(path string) (*Node, error) {
	n := t.root
	path = strings.Trim(path, "/")
	if path == "" {
		return n, nil
	}
	for _, seg := range strings.Split(path, "/") {
		next, err := childBySegment(n, seg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		n = next
	}
	return n, nil
}

func childBySegment(n *Node, seg string) (*Node, error) {
	if i, ok := strings.CutPrefix(seg, "#"); ok {
		idx, err := strconv.Atoi(i)
		if err == nil && idx >= 0 && idx < len(n.children) {
			return n.children[idx], nil
		}
	}
	var found *Node
	for _, c := range n.children {
		if c.Label() != seg {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousPath
		}
		found = c
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// Validate checks that the node graph and the document agree: every child
// sits at the same position as its fragment, parents are groups, named
// groups live directly under the root with unique names and no fragment is
// listed twice.
func (t *Tree) Validate() error {
	seen := make(map[Fragment]struct{})
	for n := range t.DepthFirst() {
		f := n.Fragment()
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%q: %w: fragment listed twice", n.Label(), ErrInvalidFragment)
		}
		seen[f] = struct{}{}

		if n.IsRegion() {
			if len(n.children) > 0 {
				return fmt.Errorf("region %q has children: %w", n.Label(), ErrInvalidParent)
			}
			continue
		}
		if n != t.root {
			if !n.parent.IsRoot() {
				return fmt.Errorf("group %q: %w", n.Label(), ErrStructuralViolation)
			}
			if err := ValidateGroupName(n.group.Name); err != nil {
				return err
			}
			if siblingGroup(n.parent, n.group.Name, n) != nil {
				return fmt.Errorf("%q: %w", n.group.Name, ErrDuplicateName)
			}
		}
		if len(n.children) != len(n.group.Items) {
			return fmt.Errorf("group %q: %d nodes for %d fragments", n.Label(), len(n.children), len(n.group.Items))
		}
		for i, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("group %q: child %d has parent %q", n.Label(), i, labelOf(c.parent))
			}
			if n.group.Items[i] != c.Fragment() {
				return fmt.Errorf("group %q: child %d out of step with its fragment list", n.Label(), i)
			}
		}
	}
	return nil
}

func labelOf(n *Node) string {
	if n == nil {
		return "<none>"
	}
	return n.Label()
}

// moveElem moves s[from] to position to, shifting the elements between.
func moveElem[T any](s []T, from, to int) []T {
	v := s[from]
	s = slices.Delete(s, from, from+1)
	return slices.Insert(s, to, v)
}

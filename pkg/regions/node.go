package regions

import (
	"fmt"
	"slices"
)

// Kind discriminates the two node shapes.
type Kind int

const (
	KindRegion Kind = iota
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindGroup:
		return "group"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one entry of the region tree. It wraps exactly one document
// fragment by pointer, so edits made through the node are edits of the
// document.
type Node struct {
	kind   Kind
	region *Region
	group  *Group

	parent   *Node
	children []*Node
}

// Construct classifies raw and builds a node for it, recursively creating one
// child per element of a group's list. When parent is non-nil the node is
// attached to it, appending its fragment to the parent's list.
func Construct(raw any, parent *Node) (*Node, error) {
	f, err := Classify(raw)
	if err != nil {
		return nil, err
	}
	n, err := build(f, make(map[Fragment]struct{}))
	if err != nil {
		return nil, err
	}
	if parent != nil {
		if err := setParent(n, parent); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func build(f Fragment, seen map[Fragment]struct{}) (*Node, error) {
	if _, dup := seen[f]; dup {
		return nil, fmt.Errorf("%w: fragment appears more than once", ErrInvalidFragment)
	}
	seen[f] = struct{}{}

	switch v := f.(type) {
	case *Region:
		return &Node{kind: KindRegion, region: v}, nil
	case *Group:
		n := &Node{kind: KindGroup, group: v}
		names := make(map[string]struct{})
		for _, item := range v.Items {
			if g, ok := item.(*Group); ok {
				if !v.root || g.root {
					return nil, fmt.Errorf("group %q: %w", g.Name, ErrStructuralViolation)
				}
				if err := ValidateGroupName(g.Name); err != nil {
					return nil, err
				}
				if _, dup := names[g.Name]; dup {
					return nil, fmt.Errorf("%q: %w", g.Name, ErrDuplicateName)
				}
				names[g.Name] = struct{}{}
			}
			child, err := build(item, seen)
			if err != nil {
				return nil, err
			}
			child.parent = n
			n.children = append(n.children, child)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: unexpected %T", ErrInvalidFragment, f)
}

// Kind returns the node discriminant.
func (n *Node) Kind() Kind { return n.kind }

// IsRegion reports whether n wraps a region fragment.
func (n *Node) IsRegion() bool { return n.kind == KindRegion }

// IsGroup reports whether n wraps a group, the root included.
func (n *Node) IsGroup() bool { return n.kind == KindGroup }

// IsRoot reports whether n is the unnamed, unparented document root.
func (n *Node) IsRoot() bool {
	return n.kind == KindGroup && n.group.root && n.parent == nil
}

// Parent returns the enclosing group node, nil for the root or a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Region returns the wrapped region fragment, nil for groups.
func (n *Node) Region() *Region { return n.region }

// Group returns the wrapped group fragment, nil for regions.
func (n *Node) Group() *Group { return n.group }

// Fragment returns the wrapped fragment.
func (n *Node) Fragment() Fragment {
	if n.kind == KindRegion {
		return n.region
	}
	return n.group
}

// Index returns the position of n among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.children, n)
}

// Label returns the display label: the region label, the group name, or "/"
// for the root.
func (n *Node) Label() string {
	switch {
	case n.IsRegion():
		return RegionLabel(n.region)
	case n.group.root:
		return RootLabel
	}
	return n.group.Name
}

func (n *Node) String() string { return n.Label() }

// SetLabel edits the wrapped fragment in place. For a region the first line
// of its text is replaced; for a named group the name changes. It reports
// false when value already is the label. Sibling name collisions are not
// checked here, see Tree.SetLabel.
func (n *Node) SetLabel(value string) (bool, error) {
	value = NormalizeLabel(value)
	if value == n.Label() {
		return false, nil
	}

	if n.IsRegion() {
		text := value
		if n.region.Text != nil {
			text = replaceFirstLine(*n.region.Text, value)
		}
		n.region.Text = &text
		return true, nil
	}

	if n.group.root {
		return false, ErrImmutableRoot
	}
	if err := ValidateGroupName(value); err != nil {
		return false, err
	}
	n.group.Name = value
	return true, nil
}

// siblingGroup returns the child group of parent named name, ignoring except.
func siblingGroup(parent *Node, name string, except *Node) *Node {
	for _, c := range parent.children {
		if c != except && c.IsGroup() && c.group.Name == name {
			return c
		}
	}
	return nil
}

// setParent validates the move and then, in order, splices the fragment out
// of the old group list, relinks the nodes and appends the fragment to the
// new group list.
func setParent(n, parent *Node) error {
	if n.kind == KindGroup && n.group.root {
		return ErrImmutableRoot
	}
	if n.parent == parent {
		return nil
	}
	f := n.Fragment()
	if parent != nil {
		if !parent.IsGroup() {
			return fmt.Errorf("%q: %w", parent.Label(), ErrInvalidParent)
		}
		if n.IsGroup() {
			if !parent.IsRoot() {
				return fmt.Errorf("group %q under %q: %w", n.Label(), parent.Label(), ErrStructuralViolation)
			}
			if siblingGroup(parent, n.group.Name, n) != nil {
				return fmt.Errorf("%q: %w", n.group.Name, ErrDuplicateName)
			}
		}
		if parent.group.indexOf(f) >= 0 {
			return fmt.Errorf("%w: fragment already listed in %q", ErrInvalidFragment, parent.Label())
		}
	}

	if old := n.parent; old != nil {
		old.group.removeItem(f)
		if i := slices.Index(old.children, n); i >= 0 {
			old.children = slices.Delete(old.children, i, i+1)
		}
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
		parent.group.appendItem(f)
	}
	return nil
}

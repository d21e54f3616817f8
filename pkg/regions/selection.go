package regions

import (
	"github.com/sirupsen/logrus"
)

// SelectionView is the list widget showing a Selection. Selection edits
// induced by a group cascade are pushed to it. The view may echo them back
// through Apply; echoes that arrive while a cascade is running are recorded
// without cascading again.
type SelectionView interface {
	SetRowSelected(n *Node, selected bool)
}

// Selection is the multi-selection state over the flat row list of a tree
// (all nodes in depth-first order, the root excluded). A group being selected
// stands for all of its regions: selecting or deselecting a group cascades
// to its direct children.
type Selection struct {
	tree     *Tree
	selected map[*Node]struct{}
	view     SelectionView
	logger   *logrus.Entry

	cascading bool
	observers []func()
}

// NewSelection returns an empty selection over t.
func NewSelection(t *Tree) *Selection {
	return &Selection{
		tree:     t,
		selected: make(map[*Node]struct{}),
		logger:   t.logger.WithField("component", "selection"),
	}
}

// SetView attaches the widget that mirrors induced selection edits.
func (s *Selection) SetView(v SelectionView) {
	s.view = v
}

// OnChange registers fn to run once after every settled gesture.
func (s *Selection) OnChange(fn func()) {
	s.observers = append(s.observers, fn)
}

// Rows returns the selectable nodes in display order.
func (s *Selection) Rows() []*Node {
	var rows []*Node
	for n := range s.tree.DepthFirst() {
		if n != s.tree.root {
			rows = append(rows, n)
		}
	}
	return rows
}

// IsSelected reports whether n is selected.
func (s *Selection) IsSelected(n *Node) bool {
	_, ok := s.selected[n]
	return ok
}

// Len returns the number of selected rows.
func (s *Selection) Len() int {
	return len(s.selected)
}

// Selected returns the selected nodes in row order.
func (s *Selection) Selected() []*Node {
	var out []*Node
	for _, n := range s.Rows() {
		if s.IsSelected(n) {
			out = append(out, n)
		}
	}
	return out
}

// SelectedRegions returns the fragments of the selected regions in row order.
func (s *Selection) SelectedRegions() []*Region {
	var out []*Region
	for _, n := range s.Selected() {
		if n.IsRegion() {
			out = append(out, n.region)
		}
	}
	return out
}

// Apply processes the raw selection delta of one user gesture. The delta is
// recorded, then every group in selected pulls in its children and every
// group in deselected drops the children that were not themselves selected by
// the gesture. Observers are notified exactly once afterwards.
func (s *Selection) Apply(selected, deselected []*Node) {
	if s.cascading {
		s.record(selected, deselected)
		return
	}

	changed := func() int {
		release := s.suppress()
		defer release()
		return s.cascade(selected, deselected)
	}()

	s.logger.WithFields(logrus.Fields{
		"selected":   len(selected),
		"deselected": len(deselected),
		"induced":    changed,
		"total":      len(s.selected),
	}).Debug("Selection settled")

	for _, fn := range s.observers {
		fn()
	}
}

// suppress marks a cascade as running until the returned release is called.
func (s *Selection) suppress() (release func()) {
	s.cascading = true
	released := false
	return func() {
		if !released {
			released = true
			s.cascading = false
		}
	}
}

func (s *Selection) record(selected, deselected []*Node) map[*Node]struct{} {
	picked := make(map[*Node]struct{}, len(selected))
	for _, n := range selected {
		if s.selectable(n) {
			picked[n] = struct{}{}
			s.selected[n] = struct{}{}
		}
	}
	for _, n := range deselected {
		if _, ok := picked[n]; !ok {
			delete(s.selected, n)
		}
	}
	return picked
}

func (s *Selection) cascade(selected, deselected []*Node) int {
	picked := s.record(selected, deselected)

	induced := 0
	for _, g := range selected {
		if !s.selectable(g) || !g.IsGroup() {
			continue
		}
		for _, c := range g.children {
			if !s.IsSelected(c) {
				s.selected[c] = struct{}{}
				s.push(c, true)
				induced++
			}
		}
	}
	for _, g := range deselected {
		if !s.selectable(g) || !g.IsGroup() {
			continue
		}
		for _, c := range g.children {
			if _, ok := picked[c]; ok {
				continue
			}
			if s.IsSelected(c) {
				delete(s.selected, c)
				s.push(c, false)
				induced++
			}
		}
	}
	return induced
}

func (s *Selection) push(n *Node, selected bool) {
	if s.view != nil {
		s.view.SetRowSelected(n, selected)
	}
}

func (s *Selection) selectable(n *Node) bool {
	return n != nil && n != s.tree.root && s.tree.Contains(n)
}

// Select is a gesture adding nodes to the selection.
func (s *Selection) Select(nodes ...*Node) {
	s.Apply(nodes, nil)
}

// Deselect is a gesture removing nodes from the selection.
func (s *Selection) Deselect(nodes ...*Node) {
	s.Apply(nil, nodes)
}

// Toggle flips the selection state of one row.
func (s *Selection) Toggle(n *Node) {
	if s.IsSelected(n) {
		s.Deselect(n)
		return
	}
	s.Select(n)
}

// Set replaces the selection with nodes as a single gesture. Nodes in the new
// set are never dropped by the cascade of a deselected group, so clicking a
// region inside a selected group leaves exactly that region selected.
func (s *Selection) Set(nodes ...*Node) {
	keep := make(map[*Node]struct{}, len(nodes))
	for _, n := range nodes {
		keep[n] = struct{}{}
	}
	var dropped []*Node
	for _, n := range s.Selected() {
		if _, ok := keep[n]; !ok {
			dropped = append(dropped, n)
		}
	}
	s.Apply(nodes, dropped)
}

// Click behaves like a plain mouse click on a row: the previous selection is
// replaced by n.
func (s *Selection) Click(n *Node) {
	s.Set(n)
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.Apply(nil, s.Selected())
}

// Prune forgets nodes that are no longer part of the tree and reports how
// many were dropped.
func (s *Selection) Prune() int {
	dropped := 0
	for n := range s.selected {
		if !s.tree.Contains(n) {
			delete(s.selected, n)
			dropped++
		}
	}
	return dropped
}

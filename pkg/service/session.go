package service

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/mattsolo1/grove-axisregions/pkg/document"
	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/store"
	"github.com/sirupsen/logrus"
)

// Session is one open document with its tree, selection and plot overlay.
// Tree and Selection are replaced when the document is reloaded or restored
// from a snapshot.
type Session struct {
	Path      string
	IsNew     bool
	Tree      *regions.Tree
	Selection *regions.Selection
	Overlay   *overlay.Refresher

	svc    *Service
	logger *logrus.Entry
	dirty  bool
	onDisk []byte
}

func (s *Session) reset(root *regions.Group) error {
	tree, err := regions.NewTree(root,
		regions.WithLogger(s.svc.logger),
		regions.WithDefaultGroupName(s.svc.Config.DefaultGroupName),
	)
	if err != nil {
		return fmt.Errorf("build region tree: %w", err)
	}
	sel := regions.NewSelection(tree)
	tree.OnEdit(func(*regions.Node) {
		s.dirty = true
		s.refresh()
	})
	sel.OnChange(s.refresh)

	s.Tree = tree
	s.Selection = sel
	s.refresh()
	return nil
}

func (s *Session) refresh() {
	if s.Overlay != nil && s.Selection != nil {
		s.Overlay.Refresh(s.Selection.SelectedRegions())
	}
}

// Dirty reports whether the tree has changes not yet saved.
func (s *Session) Dirty() bool { return s.dirty }

// Save writes the document back to its file.
func (s *Session) Save(ctx context.Context) error {
	if err := s.Tree.Validate(); err != nil {
		return fmt.Errorf("validate tree: %w", err)
	}
	if err := s.svc.Documents.Save(ctx, s.Path, s.Tree.Document()); err != nil {
		return err
	}
	s.onDisk = s.readOnDisk()
	s.dirty = false
	s.IsNew = false
	return nil
}

// readOnDisk returns the current file content. A failed read leaves nil, so
// the next Reload treats the file as changed.
func (s *Session) readOnDisk() []byte {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read back document; the next reload will reread it")
		return nil
	}
	return data
}

// Reload re-reads the document when the file differs from what this session
// last read or wrote. Unsaved changes are discarded. It reports whether the
// tree was replaced.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return false, fmt.Errorf("read document: %w", err)
	}
	if bytes.Equal(data, s.onDisk) {
		return false, nil
	}
	root, err := s.svc.Documents.Load(ctx, s.Path)
	if err != nil {
		return false, err
	}
	if err := s.reset(root); err != nil {
		return false, err
	}
	s.onDisk = data
	s.dirty = false
	s.logger.Info("Reloaded document changed on disk")
	return true, nil
}

// Lookup resolves a tree path such as "/group A/L1" or "/#0".
func (s *Session) Lookup(path string) (*regions.Node, error) {
	return s.Tree.Lookup(path)
}

// LookupAll resolves several paths, failing on the first unknown one.
func (s *Session) LookupAll(paths ...string) ([]*regions.Node, error) {
	nodes := make([]*regions.Node, 0, len(paths))
	for _, p := range paths {
		n, err := s.Lookup(p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Move places n at index within group. A negative index appends.
func (s *Session) Move(n, group *regions.Node, index int) error {
	if index < 0 {
		if err := s.Tree.SetParent(n, group); err != nil {
			return err
		}
	} else if err := s.Tree.InsertChild(group, index, n); err != nil {
		return err
	}
	s.changed()
	return nil
}

// Rename sets the label of n.
func (s *Session) Rename(n *regions.Node, label string) (bool, error) {
	return s.Tree.SetLabel(n, label)
}

// AddGroup creates a group at the top of the document.
func (s *Session) AddGroup(name string) (*regions.Node, error) {
	n, err := s.Tree.AddGroup(name)
	if err != nil {
		return nil, err
	}
	s.changed()
	return n, nil
}

// AddRegion appends a region to group, or to the root when group is nil.
func (s *Session) AddRegion(group *regions.Node, r *regions.Region) (*regions.Node, error) {
	n, err := s.Tree.AddRegion(group, r)
	if err != nil {
		return nil, err
	}
	s.changed()
	return n, nil
}

// Remove deletes nodes and forgets them in the selection. It returns how
// many nodes were detached; regions inside a removed group are not counted.
func (s *Session) Remove(nodes ...*regions.Node) (int, error) {
	removed, err := s.Tree.Remove(nodes...)
	if err != nil {
		return removed, err
	}
	if removed == 0 {
		return 0, nil
	}
	s.Selection.Prune()
	s.changed()
	return removed, nil
}

// Regions expands nodes into the regions they stand for: a region stands
// for itself and a group for its direct children. Duplicates are dropped.
func Regions(nodes ...*regions.Node) []*regions.Region {
	seen := make(map[*regions.Region]struct{})
	var out []*regions.Region
	add := func(r *regions.Region) {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	for _, n := range nodes {
		if n.IsRegion() {
			add(n.Region())
			continue
		}
		for _, c := range n.Children() {
			if c.IsRegion() {
				add(c.Region())
			}
		}
	}
	return out
}

// Edit applies e to the regions nodes stand for. Nothing changes on error.
func (s *Session) Edit(e regions.RegionEdit, nodes ...*regions.Node) (int, error) {
	targets := Regions(nodes...)
	if len(targets) == 0 || e.IsZero() {
		return 0, nil
	}
	if err := e.Apply(targets...); err != nil {
		return 0, err
	}
	// one redraw for the whole batch
	s.Overlay.Hold(func() {
		for _, r := range targets {
			if n, err := s.Tree.NodeOf(r); err == nil {
				s.Tree.NotifyEdited(n)
			}
		}
	}, s.Selection.SelectedRegions)
	s.dirty = true
	return len(targets), nil
}

// SetLocked locks or unlocks the regions nodes stand for.
func (s *Session) SetLocked(locked bool, nodes ...*regions.Node) (int, error) {
	movable := !locked
	return s.Edit(regions.RegionEdit{Movable: &movable}, nodes...)
}

// DragRegion writes bounds from a dragged plot marker into n.
func (s *Session) DragRegion(n *regions.Node, lower, upper float64) error {
	if !n.IsRegion() {
		return fmt.Errorf("%q: %w", n.Label(), regions.ErrInvalidParent)
	}
	if err := overlay.UpdateRegion(n.Region(), lower, upper); err != nil {
		return err
	}
	s.Tree.NotifyEdited(n)
	s.changed()
	return nil
}

// Markers returns the overlay markers of the current selection for the
// configured plot dimension.
func (s *Session) Markers() []overlay.Marker {
	return overlay.Markers(s.svc.Config.PlotDim, s.Selection.SelectedRegions())
}

// Snapshot stores the current document under name.
func (s *Session) Snapshot(ctx context.Context, name string) (*store.Snapshot, error) {
	return s.svc.Snapshots.Save(ctx, name, s.Path, s.Tree.Document())
}

// Snapshots lists the snapshots of this document, newest first.
func (s *Session) Snapshots(ctx context.Context) ([]*store.Snapshot, error) {
	return s.svc.Snapshots.List(ctx, s.Path)
}

// DeleteSnapshot removes a snapshot of this document.
func (s *Session) DeleteSnapshot(ctx context.Context, ref string) (*store.Snapshot, error) {
	return s.svc.Snapshots.Delete(ctx, s.Path, ref)
}

// Restore replaces the tree with the snapshot of this document that ref
// resolves to. The document is marked dirty; call Save to write it.
func (s *Session) Restore(ctx context.Context, ref string) (*store.Snapshot, error) {
	snap, err := s.svc.Snapshots.Get(ctx, s.Path, ref)
	if err != nil {
		return nil, err
	}
	root, err := snap.Root()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.reset(root); err != nil {
		return nil, err
	}
	s.changed()
	s.logger.WithField("snapshot", snap.ID).Info("Restored snapshot")
	return snap, nil
}

// Encode serializes the current document in format.
func (s *Session) Encode(format document.Format) ([]byte, error) {
	return document.Encode(s.Tree.Document(), format)
}

func (s *Session) changed() {
	s.dirty = true
	s.refresh()
}

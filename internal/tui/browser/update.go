package browser

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-axisregions/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case fileChangedMsg:
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = watchFileCmd(m.watcher)
		}
		// rename and delete hold nodes of the current tree
		if m.isRenaming || m.confirm.Active || m.pendingNodes != nil {
			m.reloadPending = true
			return m, cmd
		}
		m.reloadFromDisk()
		return m, cmd

	case confirm.ConfirmedMsg:
		if msg.Tag == confirmDelete {
			m.deletePending()
		}
		m.flushReload()
		return m, nil

	case confirm.CancelledMsg:
		m.pendingNodes = nil
		m.setStatus("")
		m.flushReload()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// reloadFromDisk replaces the tree with the file content unless there are
// unsaved changes, which win until the user saves or quits.
func (m *Model) reloadFromDisk() {
	m.reloadPending = false
	if m.session.Dirty() {
		m.setStatus("Document changed on disk; save to overwrite or quit to keep it")
		return
	}
	changed, err := m.session.Reload(context.Background())
	if err != nil {
		m.setError(fmt.Errorf("reload: %w", err))
		return
	}
	if changed {
		m.attach()
		m.setStatus("Reloaded from disk")
	}
}

// flushReload runs a reload that arrived while a rename or delete was open.
func (m *Model) flushReload() {
	if m.reloadPending {
		m.reloadFromDisk()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		m.help.ShowAll = false
		return m, nil
	}
	if m.confirm.Active {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	if m.isRenaming {
		return m.updateRename(msg)
	}

	if !key.Matches(msg, m.keys.Quit) {
		m.quitArmed = false
	}
	clear(m.echo.rows)

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.setStatus("Unsaved changes. Press q again to quit without saving, w to save")
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursor = max(0, m.cursor-max(1, m.getViewportHeight()/2))
		m.adjustScroll()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor = max(0, min(len(m.rows)-1, m.cursor+max(1, m.getViewportHeight()/2)))
		m.adjustScroll()
	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
		m.adjustScroll()
	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = max(0, len(m.rows)-1)
		m.adjustScroll()

	case key.Matches(msg, m.keys.ToggleSelect):
		if n := m.current(); n != nil {
			m.session.Selection.Toggle(n)
			m.reportSelection()
		}
	case key.Matches(msg, m.keys.Click):
		if n := m.current(); n != nil {
			m.session.Selection.Click(n)
			m.reportSelection()
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.session.Selection.Set(m.rows...)
		m.reportSelection()
	case key.Matches(msg, m.keys.SelectNone):
		m.session.Selection.Clear()
		m.reportSelection()

	case key.Matches(msg, m.keys.MoveUp):
		m.moveBy(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveBy(1)
	case key.Matches(msg, m.keys.MoveIn):
		m.moveIn()
	case key.Matches(msg, m.keys.MoveOut):
		m.moveOut()

	case key.Matches(msg, m.keys.NewGroup):
		n, err := m.session.AddGroup("")
		if err != nil {
			m.setError(err)
			break
		}
		m.rebuildRows()
		m.focus(n)
		m.startRename(n)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Rename):
		if n := m.current(); n != nil {
			m.startRename(n)
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Delete):
		m.askDelete()
	case key.Matches(msg, m.keys.ToggleLock):
		m.toggleLock()
	case key.Matches(msg, m.keys.Snapshot):
		snap, err := m.session.Snapshot(context.Background(), "")
		if err != nil {
			m.setError(fmt.Errorf("snapshot: %w", err))
			break
		}
		m.setStatus(fmt.Sprintf("Saved snapshot %q (%s)", snap.Name, snap.ID[:8]))
	case key.Matches(msg, m.keys.Save):
		if err := m.session.Save(context.Background()); err != nil {
			m.setError(fmt.Errorf("save: %w", err))
			break
		}
		m.setStatus("Saved " + shortenPath(m.session.Path))
	}
	return m, nil
}

func (m *Model) reportSelection() {
	induced := len(m.echo.rows)
	msg := fmt.Sprintf("%d selected", m.session.Selection.Len())
	if induced > 0 {
		msg += fmt.Sprintf(" (%d via group)", induced)
	}
	m.setStatus(msg)
}

// moveBy shifts the cursor row within its group.
func (m *Model) moveBy(delta int) {
	n := m.current()
	if n == nil || n.Parent() == nil {
		return
	}
	index := n.Index() + delta
	if index < 0 || index >= n.Parent().Len() {
		return
	}
	if err := m.session.Move(n, n.Parent(), index); err != nil {
		m.setError(err)
		return
	}
	m.rebuildRows()
	m.focus(n)
}

// moveIn moves a top-level region into the closest group above it.
func (m *Model) moveIn() {
	n := m.current()
	if n == nil || !n.IsRegion() || n.Parent() == nil || !n.Parent().IsRoot() {
		return
	}
	root := n.Parent()
	for i := n.Index() - 1; i >= 0; i-- {
		if g := root.Child(i); g.IsGroup() {
			if err := m.session.Move(n, g, -1); err != nil {
				m.setError(err)
				return
			}
			m.rebuildRows()
			m.focus(n)
			m.setStatus("Moved into " + g.Label())
			return
		}
	}
	m.setStatus("No group above")
}

// moveOut moves a region out of its group to the slot after the group.
func (m *Model) moveOut() {
	n := m.current()
	if n == nil || n.Parent() == nil || n.Parent().IsRoot() {
		return
	}
	group := n.Parent()
	root := group.Parent()
	if err := m.session.Move(n, root, group.Index()+1); err != nil {
		m.setError(err)
		return
	}
	m.rebuildRows()
	m.focus(n)
}

func (m *Model) startRename(n *regions.Node) {
	m.isRenaming = true
	m.nodeToRename = n
	m.renameInput.SetValue(n.Label())
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.isRenaming = false
		m.nodeToRename = nil
		m.renameInput.Blur()
		m.flushReload()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		changed, err := m.session.Rename(m.nodeToRename, m.renameInput.Value())
		if err != nil {
			// stay in the editor so the name can be fixed
			m.setError(err)
			return m, nil
		}
		m.isRenaming = false
		m.renameInput.Blur()
		if changed {
			m.setStatus("Renamed to " + m.nodeToRename.Label())
		}
		m.nodeToRename = nil
		m.rebuildRows()
		m.flushReload()
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m *Model) askDelete() {
	m.pendingNodes = nil
	var details []string
	for _, n := range m.targets() {
		if n.IsRoot() {
			continue
		}
		m.pendingNodes = append(m.pendingNodes, n)
		details = append(details, m.session.Tree.Path(n))
	}
	if len(m.pendingNodes) == 0 {
		return
	}
	m.confirm.Activate(confirmDelete, fmt.Sprintf("Delete %d item(s)?", len(m.pendingNodes)), details...)
}

func (m *Model) deletePending() {
	nodes := m.pendingNodes
	m.pendingNodes = nil
	removed, err := m.session.Remove(nodes...)
	if err != nil {
		m.setError(err)
		return
	}
	m.rebuildRows()
	m.setStatus(fmt.Sprintf("Deleted %d item(s)", removed))
}

// toggleLock locks the target regions unless all of them are locked
// already, in which case it unlocks them.
func (m *Model) toggleLock() {
	targets := m.targets()
	lock := false
	for _, r := range service.Regions(targets...) {
		if r.IsMovable() {
			lock = true
			break
		}
	}
	count, err := m.session.SetLocked(lock, targets...)
	if err != nil {
		m.setError(err)
		return
	}
	verb := "Unlocked"
	if lock {
		verb = "Locked"
	}
	m.setStatus(fmt.Sprintf("%s %d region(s)", verb, count))
}

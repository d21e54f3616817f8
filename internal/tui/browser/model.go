package browser

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-axisregions/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
	"github.com/mattsolo1/grove-axisregions/pkg/watcher"
)

const confirmDelete = "delete"

// rowEcho records the rows whose selection the cascade changed during the
// last gesture, so the view can highlight them.
type rowEcho struct {
	rows map[*regions.Node]bool
}

func (e *rowEcho) SetRowSelected(n *regions.Node, selected bool) {
	e.rows[n] = selected
}

// plotPanel receives overlay markers for the side panel.
type plotPanel struct {
	plot    overlay.Plot
	markers []overlay.Marker
}

func (p *plotPanel) draw(plot overlay.Plot, markers []overlay.Marker) {
	p.plot = plot
	p.markers = markers
}

// Model is the main model for the region browser TUI
type Model struct {
	session *service.Session
	watcher *watcher.Watcher

	rows         []*regions.Node
	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	echo  *rowEcho
	panel *plotPanel

	confirm       confirm.Model
	pendingNodes  []*regions.Node
	reloadPending bool

	isRenaming   bool
	renameInput  textinput.Model
	nodeToRename *regions.Node

	statusMessage string
	statusIsError bool
	quitArmed     bool
}

// New creates a browser over an open session. w may be nil when live
// reload is off.
func New(sess *service.Session, w *watcher.Watcher) Model {
	renameInput := textinput.New()
	renameInput.Placeholder = "New label..."
	renameInput.CharLimit = 200
	renameInput.Width = 50

	m := Model{
		session:     sess,
		watcher:     w,
		keys:        keys,
		help:        help.New(),
		echo:        &rowEcho{rows: make(map[*regions.Node]bool)},
		panel:       &plotPanel{},
		confirm:     confirm.New(),
		renameInput: renameInput,
	}
	m.attach()
	return m
}

// attach wires the browser into the current tree and selection. It must be
// called again whenever the session replaces them.
func (m *Model) attach() {
	m.session.Selection.SetView(m.echo)
	m.session.Overlay.SetSink(m.panel.draw)
	m.session.Overlay.Refresh(m.session.Selection.SelectedRegions())
	m.rebuildRows()
}

// rebuildRows refreshes the flat row list and keeps the cursor in range.
func (m *Model) rebuildRows() {
	m.rows = m.session.Selection.Rows()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

// current returns the row under the cursor, nil for an empty document.
func (m Model) current() *regions.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// targets returns the selected rows, or the cursor row when nothing is
// selected.
func (m Model) targets() []*regions.Node {
	if sel := m.session.Selection.Selected(); len(sel) > 0 {
		return sel
	}
	if n := m.current(); n != nil {
		return []*regions.Node{n}
	}
	return nil
}

func (m *Model) focus(n *regions.Node) {
	for i, r := range m.rows {
		if r == n {
			m.cursor = i
			m.adjustScroll()
			return
		}
	}
}

func (m Model) getViewportHeight() int {
	// header, blank, blank, status, help
	h := m.height - 6
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) adjustScroll() {
	vh := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+vh {
		m.scrollOffset = m.cursor - vh + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m *Model) setStatus(msg string) {
	m.statusMessage = msg
	m.statusIsError = false
}

func (m *Model) setError(err error) {
	m.statusMessage = regions.UserMessage(err)
	m.statusIsError = true
}

// Init starts watching the document when live reload is on.
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return watchFileCmd(m.watcher)
}

package browser

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-axisregions/pkg/watcher"
)

// fileChangedMsg is sent when the document changed on disk
type fileChangedMsg struct{}

// watchFileCmd waits for the next settled change of the document. The
// session itself is only ever touched from Update, which reloads it.
func watchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return fileChangedMsg{}
	}
}

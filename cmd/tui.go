package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/internal/tui/browser"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
	"github.com/mattsolo1/grove-axisregions/pkg/watcher"
)

// NewTuiCmd creates the `axr tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch an interactive tree editor for the document",
		Long: `Launch an interactive Terminal User Interface for arranging regions into
groups. Selecting rows shows the matching markers in the plot panel; the
document is only written when you save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			s := *svc
			sess, err := openSession(cmd, s)
			if err != nil {
				return err
			}

			var w *watcher.Watcher
			if watch || s.Config.Watch {
				w, err = watcher.NewWatcher(sess.Path, watcher.WithLogger(s.Logger()))
				if err != nil {
					return fmt.Errorf("watch document: %w", err)
				}
				if err := w.Start(); err != nil {
					return fmt.Errorf("watch document: %w", err)
				}
				defer w.Stop()
			}

			model := browser.New(sess, w)
			p := tea.NewProgram(model, tea.WithAltScreen())

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the document when it changes on disk")

	return cmd
}

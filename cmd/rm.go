package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewRmCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <node>...",
		Short: "Delete regions or groups",
		Long: `Delete nodes from the document. Deleting a group deletes the regions in it.
Take a snapshot first if you may want them back.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			nodes, err := sess.LookupAll(args...)
			if err != nil {
				return err
			}

			removed, err := sess.Remove(nodes...)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d item(s)\n", removed)
			return saveSession(cmd, sess)
		},
	}
	return cmd
}

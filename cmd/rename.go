package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewRenameCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <node> <label>",
		Short: "Rename a group or relabel a region",
		Long: `Rename a group, or replace the first line of a region's text.

Group names must be non-empty, unique among groups and may not be "region".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			n, err := sess.Lookup(args[0])
			if err != nil {
				return err
			}

			changed, err := sess.Rename(n, args[1])
			if err != nil {
				return fmt.Errorf("rename %s: %w", args[0], err)
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", sess.Tree.Path(n))
			return saveSession(cmd, sess)
		},
	}
	return cmd
}

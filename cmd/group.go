package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewGroupCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [name] [node...]",
		Short: "Create a group, optionally moving regions into it",
		Long: `Create a named group at the top of the document. When the name is
taken a numeric suffix is added. Any regions given after the name are moved
into the new group.

Examples:
  axr group peaks
  axr group peaks /#3 "/old/L2"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}

			var name string
			if len(args) > 0 {
				name, args = args[0], args[1:]
			}
			members, err := sess.LookupAll(args...)
			if err != nil {
				return err
			}

			group, err := sess.AddGroup(name)
			if err != nil {
				return fmt.Errorf("create group: %w", err)
			}
			for i, n := range members {
				if err := sess.Move(n, group, -1); err != nil {
					return fmt.Errorf("move %s: %w", args[i], err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created group %s with %d region(s)\n", group.Label(), group.Len())
			return saveSession(cmd, sess)
		},
	}
	return cmd
}

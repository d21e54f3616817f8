package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewMvCmd(svc **service.Service) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "mv <node> <group>",
		Short: "Move a region or group to another position",
		Long: `Move a node into a group. Nodes are addressed by path, for example
"/group A/L1"; a "#N" segment selects the N-th child. The root group is "/".

Examples:
  axr mv "/group A/L1" /            # append to the top level
  axr mv "/group A/L1" / --index 0  # make it the first top-level entry
  axr mv /#2 "/group B"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			nodes, err := sess.LookupAll(args[0], args[1])
			if err != nil {
				return err
			}
			n, group := nodes[0], nodes[1]

			if err := sess.Move(n, group, index); err != nil {
				return fmt.Errorf("move %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", n.Label(), sess.Tree.Path(n))
			return saveSession(cmd, sess)
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", -1, "Position within the group (default: append)")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewCheckCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the document",
		Long: `Parse the document, build its tree and verify that the tree and the
document agree. Exits non-zero when the document is malformed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			if err := sess.Tree.Validate(); err != nil {
				return fmt.Errorf("check %s: %w", sess.Path, err)
			}

			groups := 0
			for _, n := range sess.Tree.Root().Children() {
				if n.IsGroup() {
					groups++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d region(s), %d group(s)\n", len(sess.Tree.Regions()), groups)
			return nil
		},
	}
	return cmd
}

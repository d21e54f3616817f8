package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/document"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewShowCmd(svc **service.Service) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the region tree of the document",
		Long: `Print the groups and regions of the document as a tree.

Examples:
  axr show                 # indented tree
  axr show --format json   # the document itself, re-encoded
  axr show --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "", "tree":
				if sess.Tree.Root().Len() == 0 {
					fmt.Fprintln(out, "(empty document)")
					return nil
				}
				renderTree(out, sess.Tree)
				return nil
			case string(document.FormatJSON), string(document.FormatYAML):
				data, err := sess.Encode(document.Format(format))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			return fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree, json or yaml")

	return cmd
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewLabelsCmd(svc **service.Service) *cobra.Command {
	var (
		dim        string
		labelsJSON bool
	)

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List regions with their labels and paths",
		Long: `List every region of the document in tree order.

A region's label is the first non-empty line of its text, or
"dim: lower-upper" when it has none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}

			var rows []nodeInfo
			for n := range sess.Tree.DepthFirst() {
				if !n.IsRegion() {
					continue
				}
				if dim != "" && n.Region().DimValue() != dim {
					continue
				}
				rows = append(rows, describe(sess.Tree, n))
			}

			if labelsJSON {
				if rows == nil {
					rows = []nodeInfo{}
				}
				return outputJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No regions found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tLABEL\tDIM\tLOWER\tUPPER\tLOCKED")
			for _, r := range rows {
				locked := ""
				if !*r.Movable {
					locked = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Path, r.Label, r.Dim,
					regions.FormatBound(*r.Lower), regions.FormatBound(*r.Upper), locked)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dim, "dim", "", "Only list regions of this dimension")
	cmd.Flags().BoolVar(&labelsJSON, "json", false, "Output in JSON format")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewSelectCmd(svc **service.Service) *cobra.Command {
	var (
		deselect   []string
		selectJSON bool
	)

	cmd := &cobra.Command{
		Use:   "select <node>...",
		Short: "Show what a selection resolves to",
		Long: `Select nodes the way the tree view does and print the result. Selecting a
group selects the regions in it; deselecting a group deselects them again.
The selection is not stored.

Examples:
  axr select "/group A"
  axr select "/group A" --deselect "/group A/L1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			picked, err := sess.LookupAll(args...)
			if err != nil {
				return err
			}
			dropped, err := sess.LookupAll(deselect...)
			if err != nil {
				return err
			}

			sess.Selection.Select(picked...)
			if len(dropped) > 0 {
				sess.Selection.Deselect(dropped...)
			}
			markers := sess.Markers()

			selected := []nodeInfo{}
			for _, n := range sess.Selection.Selected() {
				selected = append(selected, describe(sess.Tree, n))
			}

			if selectJSON {
				if markers == nil {
					markers = []overlay.Marker{}
				}
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"selected": selected,
					"markers":  markers,
				})
			}

			out := cmd.OutOrStdout()
			for _, info := range selected {
				fmt.Fprintf(out, "%s\t%s\n", info.Kind, info.Path)
			}
			fmt.Fprintf(out, "%d selected, %d marker(s) on %s\n", len(selected), len(markers), plotName((*svc).Config.PlotDim))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&deselect, "deselect", "d", nil, "Deselect a node after selecting (repeatable)")
	cmd.Flags().BoolVar(&selectJSON, "json", false, "Output in JSON format")

	return cmd
}

func plotName(dim string) string {
	if dim == "" {
		return "the plot"
	}
	return "the " + dim + " plot"
}

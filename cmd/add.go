package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewAddCmd(svc **service.Service) *cobra.Command {
	var (
		dim   string
		text  string
		group string
	)

	cmd := &cobra.Command{
		Use:   "add <lower> <upper>",
		Short: "Add a region to the document",
		Long: `Append a new region. Without --group it goes to the top level.

Examples:
  axr add 35 45
  axr add 8 9 --dim t --text L1 --group "/group A"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lower, err := parseBound(args[0])
			if err != nil {
				return err
			}
			upper, err := parseBound(args[1])
			if err != nil {
				return err
			}

			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			if dim == "" {
				dim = (*svc).Config.PlotDim
			}

			var parent *regions.Node
			if group != "" {
				if parent, err = sess.Lookup(group); err != nil {
					return err
				}
			}

			r := regions.NewRegion(min(lower, upper), max(lower, upper), dim)
			if text != "" {
				r.Text = &text
			}
			n, err := sess.AddRegion(parent, r)
			if err != nil {
				return fmt.Errorf("add region: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", sess.Tree.Path(n))
			return saveSession(cmd, sess)
		},
	}

	cmd.Flags().StringVar(&dim, "dim", "", "Dimension of the region (default: the configured plot_dim)")
	cmd.Flags().StringVar(&text, "text", "", "Region text; its first line is the label")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to add the region to")

	return cmd
}

func parseBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid bound %q: must be a finite number", s)
	}
	return v, nil
}

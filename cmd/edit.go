package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewEditCmd(svc **service.Service) *cobra.Command {
	var (
		lower, upper, lineWidth float64
		color, lineColor, text  string
		lock, unlock            bool
	)

	cmd := &cobra.Command{
		Use:   "edit <node>...",
		Short: "Edit the attributes of one or more regions",
		Long: `Change bounds, colors, line width, lock state or text of regions. A group
stands for the regions directly in it. Without flags the values shared by all
targets are printed; "*" marks a value that differs between them or is
unset.

Examples:
  axr edit "/group A" --color red --line-width 2
  axr edit /#1 --lower 30 --upper 50
  axr edit "/group A/L1" --lock`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lock && unlock {
				return errors.New("--lock and --unlock are mutually exclusive")
			}

			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			nodes, err := sess.LookupAll(args...)
			if err != nil {
				return err
			}
			targets := service.Regions(nodes...)
			if len(targets) == 0 {
				return fmt.Errorf("no regions in %v", args)
			}

			var e regions.RegionEdit
			flags := cmd.Flags()
			if flags.Changed("lower") {
				e.Lower = &lower
			}
			if flags.Changed("upper") {
				e.Upper = &upper
			}
			if flags.Changed("line-width") {
				e.LineWidth = &lineWidth
			}
			if flags.Changed("color") {
				e.Color = &color
			}
			if flags.Changed("line-color") {
				e.LineColor = &lineColor
			}
			if flags.Changed("text") {
				e.Text = &text
			}
			if lock || unlock {
				movable := unlock
				e.Movable = &movable
			}

			if e.IsZero() {
				printCommon(cmd, regions.Common(targets...), len(targets))
				return nil
			}

			count, err := sess.Edit(e, nodes...)
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d region(s)\n", count)
			return saveSession(cmd, sess)
		},
	}

	cmd.Flags().Float64Var(&lower, "lower", 0, "Lower bound")
	cmd.Flags().Float64Var(&upper, "upper", 0, "Upper bound")
	cmd.Flags().Float64Var(&lineWidth, "line-width", 0, "Marker line width")
	cmd.Flags().StringVar(&color, "color", "", "Fill color")
	cmd.Flags().StringVar(&lineColor, "line-color", "", "Outline color")
	cmd.Flags().StringVar(&text, "text", "", "Region text")
	cmd.Flags().BoolVar(&lock, "lock", false, "Prevent the region from being dragged")
	cmd.Flags().BoolVar(&unlock, "unlock", false, "Allow the region to be dragged")

	return cmd
}

func printCommon(cmd *cobra.Command, e regions.RegionEdit, count int) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "regions\t%d\n", count)
	fmt.Fprintf(w, "lower\t%s\n", floatOrMixed(e.Lower))
	fmt.Fprintf(w, "upper\t%s\n", floatOrMixed(e.Upper))
	movable := "*"
	if e.Movable != nil {
		movable = fmt.Sprint(*e.Movable)
	}
	fmt.Fprintf(w, "movable\t%s\n", movable)
	fmt.Fprintf(w, "color\t%s\n", stringOrMixed(e.Color))
	fmt.Fprintf(w, "linecolor\t%s\n", stringOrMixed(e.LineColor))
	fmt.Fprintf(w, "linewidth\t%s\n", floatOrMixed(e.LineWidth))
	fmt.Fprintf(w, "text\t%q\n", stringOrMixed(e.Text))
	w.Flush()
}

func floatOrMixed(v *float64) string {
	if v == nil {
		return "*"
	}
	return regions.FormatBound(*v)
}

func stringOrMixed(v *string) string {
	if v == nil {
		return "*"
	}
	return *v
}

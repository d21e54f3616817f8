package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func NewOverlayCmd(svc **service.Service) *cobra.Command {
	var (
		dim         string
		overlayJSON bool
	)

	cmd := &cobra.Command{
		Use:   "overlay [node...]",
		Short: "Print the plot markers for regions",
		Long: `Print the markers a plot would draw for the given nodes, or for the whole
document when none are given. Only regions of the plot's dimension are drawn.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}

			nodes := sess.Tree.Root().Children()
			if len(args) > 0 {
				if nodes, err = sess.LookupAll(args...); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("dim") {
				dim = (*svc).Config.PlotDim
			}

			var markers []overlay.Marker
			sess.Overlay.SetSink(func(p overlay.Plot, m []overlay.Marker) {
				markers = m
			})
			sess.Overlay.Plots = []overlay.Plot{{Name: "cli", Dim: dim}}
			sess.Selection.Set(nodes...)

			if overlayJSON {
				if markers == nil {
					markers = []overlay.Marker{}
				}
				return outputJSON(cmd.OutOrStdout(), markers)
			}
			if len(markers) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No markers on %s\n", plotName(dim))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tLOWER\tUPPER\tMOVABLE\tCOLOR\tLINE")
			for _, m := range markers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
					m.Label, regions.FormatBound(m.Lower), regions.FormatBound(m.Upper),
					m.Movable, m.Color, m.LineColor)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dim, "dim", "", "Plot dimension (default: the configured plot_dim; empty shows all)")
	cmd.Flags().BoolVar(&overlayJSON, "json", false, "Output in JSON format")

	cmd.AddCommand(newOverlayDragCmd(svc))

	return cmd
}

func newOverlayDragCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drag <node> <lower> <upper>",
		Short: "Move a region's marker to new bounds",
		Long: `Write new bounds into a region as if its marker had been dragged on the
plot. Locked regions refuse to move.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lower, err := parseBound(args[1])
			if err != nil {
				return err
			}
			upper, err := parseBound(args[2])
			if err != nil {
				return err
			}

			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			n, err := sess.Lookup(args[0])
			if err != nil {
				return err
			}
			if err := sess.DragRegion(n, lower, upper); err != nil {
				return fmt.Errorf("drag %s: %w", args[0], err)
			}

			r := n.Region()
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s-%s\n", n.Label(),
				regions.FormatBound(r.Lower()), regions.FormatBound(r.Upper()))
			return saveSession(cmd, sess)
		},
	}
	return cmd
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
	"github.com/mattsolo1/grove-axisregions/pkg/store"
)

func NewSnapshotCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save and restore copies of the document",
		Long: `Snapshots are full copies of a region document kept in a local database.
They are addressed by id, id prefix or name.`,
	}

	cmd.AddCommand(newSnapshotSaveCmd(svc))
	cmd.AddCommand(newSnapshotListCmd(svc))
	cmd.AddCommand(newSnapshotRestoreCmd(svc))
	cmd.AddCommand(newSnapshotDeleteCmd(svc))

	return cmd
}

func newSnapshotSaveCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Snapshot the current document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			snap, err := sess.Snapshot(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%s, %d regions)\n", snap.Name, snap.ID[:8], snap.Regions)
			return nil
		},
	}
}

func newSnapshotListCmd(svc **service.Service) *cobra.Command {
	var (
		listAll  bool
		listJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots of the document",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			var (
				snaps []*store.Snapshot
				err   error
			)
			if listAll {
				snaps, err = s.Snapshots.List(cmd.Context(), "")
			} else {
				sess, openErr := openSession(cmd, s)
				if openErr != nil {
					return openErr
				}
				snaps, err = sess.Snapshots(cmd.Context())
			}
			if err != nil {
				return err
			}

			if listJSON {
				if snaps == nil {
					snaps = []*store.Snapshot{}
				}
				return outputJSON(cmd.OutOrStdout(), snaps)
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if listAll {
				fmt.Fprintln(w, "ID\tNAME\tCREATED\tREGIONS\tDOCUMENT")
			} else {
				fmt.Fprintln(w, "ID\tNAME\tCREATED\tREGIONS")
			}
			for _, snap := range snaps {
				line := fmt.Sprintf("%s\t%s\t%s\t%d", snap.ID[:8], snap.Name, snap.CreatedAt.Local().Format("2006-01-02 15:04"), snap.Regions)
				if listAll {
					line += "\t" + snap.Document
				}
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&listAll, "all", "a", false, "List snapshots of every document")
	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	return cmd
}

func newSnapshotRestoreCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <ref>",
		Short: "Replace the document with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, *svc)
			if err != nil {
				return err
			}
			snap, err := sess.Restore(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("restore %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s (%s)\n", snap.Name, snap.ID[:8])
			return saveSession(cmd, sess)
		},
	}
}

func newSnapshotDeleteCmd(svc **service.Service) *cobra.Command {
	var deleteAny bool

	cmd := &cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete a snapshot of the document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				snap *store.Snapshot
				err  error
			)
			if deleteAny {
				snap, err = (*svc).Snapshots.Delete(cmd.Context(), "", args[0])
			} else {
				sess, openErr := openSession(cmd, *svc)
				if openErr != nil {
					return openErr
				}
				snap, err = sess.DeleteSnapshot(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("delete snapshot %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s (%s)\n", snap.Name, snap.ID[:8])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&deleteAny, "all", "a", false, "Resolve the reference among the snapshots of every document")

	return cmd
}

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

func newAdminCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}

	cmd.AddCommand(newAdminGCCmd(cfg, out))
	return cmd
}

func newAdminGCCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove clip files that have no clip record",
		Long: "Remove clip files that have no clip record. These are left behind when adding a clip\n" +
			"stores its content but fails to record it. Runs as a dry run unless --apply is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AdminSweepOrphans(cmd.Context(), api.OrphanSweepRequest{DryRun: !apply})
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				mode := "dry run"
				if !resp.DryRun {
					mode = "applied"
				}
				if err := writePlain("%s: orphans=%d deleted=%d failed=%d reclaimed=%s\n",
					mode, len(resp.OrphanIDs), resp.DeletedCount, resp.FailedCount, humanize.IBytes(uint64(resp.ReclaimedBytes))); err != nil {
					return err
				}
				for _, id := range resp.OrphanIDs {
					if err := writePlain("  %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "delete orphaned files")
	return cmd
}

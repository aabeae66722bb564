package main

import (
	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

func newInfoCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show collection statistics and storage locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				info, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(info)
				}
				return writePlain("db_path: %s\nblob_dir: %s\nclips: %d\nfavorites: %d\nlabels: %d\nattachments: %d\n",
					info.DBPath, info.BlobDir, info.TotalClips, info.FavoriteClips, info.TotalLabels, info.TotalAttachments)
			})
		},
	}
}

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

func newImportLegacyCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	var (
		gifDir string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import-legacy <collection.json>",
		Short: "Import clips and labels from a flat-file JSON collection",
		Long: "Import clips and labels from a flat-file JSON collection ({gifs, tags, gifTags, nextTagId}).\n" +
			"Clip files are read from --gif-dir, which defaults to a \"gifs\" directory next to the JSON file.",
		Args: requireExactlyArgs(1, "collection file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			req := api.LegacyImportRequest{Path: path, DryRun: dryRun}
			if gifDir != "" {
				if req.GIFDir, err = filepath.Abs(gifDir); err != nil {
					return err
				}
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AdminImportLegacy(cmd.Context(), req)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}

				mode := "imported"
				if resp.DryRun {
					mode = "dry run"
				}
				if err := writePlain("%s: clips=%d skipped=%d labels_created=%d labels_reused=%d attachments=%d\n",
					mode, resp.ClipsImported, resp.ClipsSkipped, resp.LabelsCreated, resp.LabelsReused, resp.AttachmentsLinked); err != nil {
					return err
				}
				for _, missing := range resp.MissingFiles {
					if err := writePlain("  missing: %s\n", missing); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&gifDir, "gif-dir", "", "directory holding the legacy <id>.gif files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be imported without writing")
	return cmd
}

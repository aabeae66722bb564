package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
	"gifstash/internal/format"
)

// exportDocument is a point-in-time snapshot of the collection metadata.
type exportDocument struct {
	ExportedAt string              `json:"exported_at"`
	Clips      []api.ClipResponse  `json:"clips"`
	Labels     []api.LabelResponse `json:"labels"`
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var (
		outputPath string
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export clip and label metadata as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := format.New(formatName)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				doc, err := buildExport(cmd.Context(), client, time.Now())
				if err != nil {
					return err
				}

				w := os.Stdout
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return formatter.Write(w, doc)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func buildExport(ctx context.Context, collection api.CollectionAPI, now time.Time) (exportDocument, error) {
	clips, err := collection.ListClips(ctx)
	if err != nil {
		return exportDocument{}, err
	}
	labels, err := collection.ListLabels(ctx)
	if err != nil {
		return exportDocument{}, err
	}
	if clips == nil {
		clips = []api.ClipResponse{}
	}
	if labels == nil {
		labels = []api.LabelResponse{}
	}
	return exportDocument{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Clips:      clips,
		Labels:     labels,
	}, nil
}

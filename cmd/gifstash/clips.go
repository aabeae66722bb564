package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

func newAddCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "add <name> <file|data-url>",
		Short: "Add a clip from a file or a data URL",
		Args:  requireExactlyArgs(2, "name and source are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceType = strings.ToLower(strings.TrimSpace(sourceType))
			source, err := resolveClipSource(args[1], sourceType)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				clip, err := client.AddClip(cmd.Context(), api.ClipCreateRequest{
					Name:       args[0],
					SourceData: source,
					SourceType: sourceType,
				})
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(clip)
				}
				return writePlain("added %s\n", formatClipLine(clip))
			})
		},
	}

	cmd.Flags().StringVar(&sourceType, "type", "", "source type: file or data_url (default: inferred)")
	return cmd
}

// The server resolves paths against its own working directory, so relative
// file sources are made absolute here.
func resolveClipSource(raw, sourceType string) (string, error) {
	switch sourceType {
	case "data_url":
		return raw, nil
	case "", "file":
	default:
		return "", fmt.Errorf("invalid --type %q (allowed: file, data_url)", sourceType)
	}
	if sourceType == "" && strings.HasPrefix(raw, "data:") {
		return raw, nil
	}
	return filepath.Abs(raw)
}

func newShowCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a clip",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				clip, err := client.GetClip(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if clip == nil {
					return fmt.Errorf("clip not found: %s", args[0])
				}
				if out.structured() {
					return writeJSON(clip)
				}
				file, err := localClipFile(cmd.Context(), client, clip.ID)
				if err != nil {
					return err
				}
				return writeClipDetail(*clip, file)
			})
		},
	}
}

// localClipFile returns nil when the content file is not readable from here.
func localClipFile(ctx context.Context, client api.PopupAPI, id string) (*clipFileInfo, error) {
	path, err := client.ClipFilePath(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil
	}
	file := &clipFileInfo{Path: path, Size: info.Size()}
	if mt, err := mimetype.DetectFile(path); err == nil {
		file.MediaType = mt.String()
	}
	return file, nil
}

func newListCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	var favorites bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				clips, err := client.ListClips(cmd.Context())
				if err != nil {
					return err
				}
				if favorites {
					clips = filterFavorites(clips)
				}
				if out.structured() {
					return writeJSON(clips)
				}
				return writeClipList(clips)
			})
		},
	}

	cmd.Flags().BoolVar(&favorites, "favorites", false, "only list favorite clips")
	return cmd
}

func filterFavorites(clips []api.ClipResponse) []api.ClipResponse {
	out := make([]api.ClipResponse, 0, len(clips))
	for _, clip := range clips {
		if clip.IsFavorite {
			out = append(out, clip)
		}
	}
	return out
}

func newSearchCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search clips by name (case-insensitive substring)",
		Args:  requireAtLeastArgs(1, "query is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				return runSearch(cmd.Context(), client, strings.Join(args, " "), out)
			})
		},
	}
}

func runSearch(ctx context.Context, popup api.PopupAPI, query string, out *outputFlags) error {
	clips, err := popup.SearchClips(ctx, query)
	if err != nil {
		return err
	}
	if out.structured() {
		return writeJSON(clips)
	}
	return writeClipList(clips)
}

func newUpdateCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	var (
		name     string
		favorite bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a clip or change its favorite flag",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ClipUpdateRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("favorite") {
				req.IsFavorite = &favorite
			}
			if req.Name == nil && req.IsFavorite == nil {
				return errors.New("nothing to update; pass --name or --favorite")
			}
			return withClient(cfg, func(client *api.Client) error {
				clip, err := client.UpdateClip(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(clip)
				}
				return writePlain("%s\n", formatClipLine(clip))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new clip name")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark or unmark as favorite (--favorite=false)")
	return cmd
}

func newFavCmd(cfg *config.Config, out *outputFlags, favorite bool) *cobra.Command {
	use, short := "fav <id> [<id>...]", "Mark clips as favorite"
	if !favorite {
		use, short = "unfav <id> [<id>...]", "Remove clips from favorites"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  requireAtLeastArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				updated := make([]api.ClipResponse, 0, len(args))
				for _, id := range args {
					clip, err := client.UpdateClip(cmd.Context(), id, api.ClipUpdateRequest{IsFavorite: &favorite})
					if err != nil {
						return err
					}
					updated = append(updated, clip)
				}
				if out.structured() {
					return writeJSON(updated)
				}
				return writeClipList(updated)
			})
		},
	}
}

func newRemoveCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id> [<id>...]",
		Aliases: []string{"delete"},
		Short:   "Delete clips and their content",
		Args:    requireAtLeastArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range args {
					if err := client.DeleteClip(cmd.Context(), id); err != nil {
						return err
					}
				}
				if out.structured() {
					return writeJSON(map[string][]string{"deleted": args})
				}
				for _, id := range args {
					if err := writePlain("deleted %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newPathCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the local path of a clip's content",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				path, err := client.ClipFilePath(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(api.ClipPathResponse{Path: path})
				}
				return writePlain("%s\n", path)
			})
		},
	}
}

func newCopyCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a clip to the system clipboard",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CopyClip(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(resp)
				}
				if !resp.Success {
					return fmt.Errorf("no clipboard method succeeded for %s; try: gifstash path %s", args[0], args[0])
				}
				return writePlain("copied %s (%s)\n", args[0], resp.Method)
			})
		},
	}
}

func newCatCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "cat <id>",
		Short: "Write a clip's raw content to stdout or a file",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				w := os.Stdout
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return client.ClipContent(cmd.Context(), args[0], w)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	return cmd
}

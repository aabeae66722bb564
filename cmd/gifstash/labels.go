package main

import (
	"github.com/spf13/cobra"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

func newLabelCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	labelCmd := &cobra.Command{
		Use:     "label",
		Aliases: []string{"labels"},
		Short:   "Manage labels",
	}

	labelCmd.AddCommand(
		newLabelListCmd(cfg, out),
		newLabelCreateCmd(cfg, out),
		newLabelRenameCmd(cfg, out),
		newLabelDeleteCmd(cfg, out),
		newLabelAttachCmd(cfg, out),
		newLabelDetachCmd(cfg, out),
		newLabelClipsCmd(cfg, out),
	)
	return labelCmd
}

func newLabelListCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				labels, err := client.ListLabels(cmd.Context())
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(labels)
				}
				return writeLabelList(labels)
			})
		},
	}
}

func newLabelCreateCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label",
		Args:  requireExactlyArgs(1, "label name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				label, err := client.CreateLabel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(label)
				}
				return writePlain("%s\n", formatLabelLine(label))
			})
		},
	}
}

func newLabelRenameCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <label-id> <name>",
		Short: "Rename a label",
		Args:  requireExactlyArgs(2, "label id and name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLabelID(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				label, err := client.RenameLabel(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(label)
				}
				return writePlain("%s\n", formatLabelLine(label))
			})
		},
	}
}

func newLabelDeleteCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <label-id> [<label-id>...]",
		Aliases: []string{"rm"},
		Short:   "Delete labels and detach them from every clip",
		Args:    requireAtLeastArgs(1, "label id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseLabelIDs(args)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range ids {
					if err := client.DeleteLabel(cmd.Context(), id); err != nil {
						return err
					}
				}
				if out.structured() {
					return writeJSON(map[string][]int64{"deleted": ids})
				}
				for _, id := range ids {
					if err := writePlain("deleted label %d\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newLabelAttachCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <clip-id> <label-id> [<label-id>...]",
		Short: "Attach labels to a clip",
		Args:  requireAtLeastArgs(2, "clip id and label id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelLink(cmd, cfg, out, args, true)
		},
	}
}

func newLabelDetachCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <clip-id> <label-id> [<label-id>...]",
		Short: "Detach labels from a clip",
		Args:  requireAtLeastArgs(2, "clip id and label id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelLink(cmd, cfg, out, args, false)
		},
	}
}

func newLabelClipsCmd(cfg *config.Config, out *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clips <label-id>",
		Short: "List clips carrying a label",
		Args:  requireExactlyArgs(1, "label id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLabelID(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				clips, err := client.ClipsForLabel(cmd.Context(), id)
				if err != nil {
					return err
				}
				if out.structured() {
					return writeJSON(clips)
				}
				return writeClipList(clips)
			})
		},
	}
}

// runLabelLink attaches or detaches labels, then prints the clip's labels.
func runLabelLink(cmd *cobra.Command, cfg *config.Config, out *outputFlags, args []string, attach bool) error {
	clipID := args[0]
	labelIDs, err := parseLabelIDs(args[1:])
	if err != nil {
		return err
	}
	return withClient(cfg, func(client *api.Client) error {
		for _, labelID := range labelIDs {
			if attach {
				err = client.AttachLabel(cmd.Context(), clipID, labelID)
			} else {
				err = client.DetachLabel(cmd.Context(), clipID, labelID)
			}
			if err != nil {
				return err
			}
		}

		clip, err := client.GetClip(cmd.Context(), clipID)
		if err != nil {
			return err
		}
		if clip == nil {
			return nil
		}
		if out.structured() {
			return writeJSON(clip.Tags)
		}
		return writePlain("%s\n", formatLabelNames(clip.Tags))
	})
}

func parseLabelIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseLabelID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

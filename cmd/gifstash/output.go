package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gifstash/internal/api"
	"gifstash/internal/format"
	"gifstash/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeClipList(clips []api.ClipResponse) error {
	for _, clip := range clips {
		if err := writePlain("%s\n", formatClipLine(clip)); err != nil {
			return err
		}
	}
	return nil
}

// clipFileInfo is what the CLI can learn about a clip's content locally.
type clipFileInfo struct {
	Path      string
	Size      int64
	MediaType string
}

func writeClipDetail(clip api.ClipResponse, file *clipFileInfo) error {
	lines := []string{
		fmt.Sprintf("id: %s", clip.ID),
		fmt.Sprintf("name: %s", clip.Name),
		fmt.Sprintf("created_at: %s (%s)", formatMillis(clip.CreatedAt), humanize.Time(time.UnixMilli(clip.CreatedAt))),
		fmt.Sprintf("favorite: %t", clip.IsFavorite),
	}
	if len(clip.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("labels: %s", formatLabelNames(clip.Tags)))
	}
	if file != nil {
		lines = append(lines, fmt.Sprintf("path: %s", file.Path))
		lines = append(lines, fmt.Sprintf("size: %s", humanize.IBytes(uint64(file.Size))))
		if file.MediaType != "" {
			lines = append(lines, fmt.Sprintf("media_type: %s", file.MediaType))
		}
	} else {
		lines = append(lines, fmt.Sprintf("file: %s", clip.FilePath))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeLabelList(labels []api.LabelResponse) error {
	for _, label := range labels {
		if err := writePlain("%s\n", formatLabelLine(label)); err != nil {
			return err
		}
	}
	return nil
}

func formatClipLine(clip api.ClipResponse) string {
	marker := "○"
	if clip.IsFavorite {
		marker = "★"
	}
	line := fmt.Sprintf("%s %s %s", marker, clip.ID, clip.Name)
	if len(clip.Tags) > 0 {
		line += " [" + formatLabelNames(clip.Tags) + "]"
	}
	return line
}

func formatLabelLine(label api.LabelResponse) string {
	return fmt.Sprintf("%d\t%s", label.ID, label.Name)
}

func formatLabelNames(labels []models.Label) string {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return strings.Join(names, ", ")
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

package main

import (
	"context"
	"errors"
	"net"

	"gifstash/internal/api"
)

const clipboardErrorCode = 4005

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: verify GIFSTASH_API_TOKEN and GIFSTASH_ADMIN_TOKEN configuration.")
		case "resource_exhausted":
			lines = append(lines, "hint: retry shortly; another import, sweep or copy is still running.")
		case "conflict":
			lines = append(lines, "hint: label names are unique; list existing labels with: gifstash label list")
		case "not_found":
			lines = append(lines, "hint: list clip ids with: gifstash list, and label ids with: gifstash label list")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify GIFSTASH_API_URL points to a gifstash server.")
		}
		if apiErr.ErrorCode == clipboardErrorCode {
			lines = append(lines, "hint: install a clipboard tool (wl-clipboard or xclip on Linux) or set clipboard.methods.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase GIFSTASH_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a gifstash server is running at GIFSTASH_API_URL.",
			"hint: start local server manually with: gifstash srv",
			"hint: you can increase GIFSTASH_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

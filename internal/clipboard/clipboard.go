package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"gifstash/internal/blobstore"
)

// Method names how a clip ended up on the clipboard.
type Method string

const (
	MethodFile  Method = "file"
	MethodImage Method = "image"
	MethodPath  Method = "path"
)

// DefaultMethods is the fallback chain used when none is configured.
var DefaultMethods = []Method{MethodFile, MethodImage, MethodPath}

// ErrUnavailable is returned when every configured method failed.
var ErrUnavailable = errors.New("no clipboard method succeeded")

// Result reports the outcome of one copy.
type Result struct {
	Success bool
	Method  Method
}

// Runner executes an external clipboard tool.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, stdin io.Reader, name string, args ...string) error

func (f RunnerFunc) Run(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	return f(ctx, stdin, name, args...)
}

// toolWaitDelay bounds how long Run waits for a tool's output pipes after the
// tool exits. xclip and wl-copy leave a child serving the selection that keeps
// stderr open.
const toolWaitDelay = 250 * time.Millisecond

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = toolWaitDelay
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrWaitDelay) {
			return nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Copier places clip files on the system clipboard, trying each method in
// order until one succeeds.
type Copier struct {
	runner  Runner
	methods []Method
	goos    string
	wayland bool
	logger  *slog.Logger
}

// Option customises a Copier.
type Option func(*Copier)

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option {
	return func(c *Copier) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithPlatform overrides the detected platform.
func WithPlatform(goos string, wayland bool) Option {
	return func(c *Copier) {
		c.goos = goos
		c.wayland = wayland
	}
}

// WithLogger sets the logger used for per-method failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Copier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Copier using methods in order. An empty list selects DefaultMethods.
func New(methods []Method, opts ...Option) *Copier {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	c := &Copier{
		runner:  execRunner{},
		methods: append([]Method(nil), methods...),
		goos:    runtime.GOOS,
		wayland: os.Getenv("WAYLAND_DISPLAY") != "",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseMethods validates configured method names.
func ParseMethods(values []string) ([]Method, error) {
	out := make([]Method, 0, len(values))
	seen := map[Method]bool{}
	for _, raw := range values {
		method := Method(strings.ToLower(strings.TrimSpace(raw)))
		if method == "" {
			continue
		}
		switch method {
		case MethodFile, MethodImage, MethodPath:
		default:
			return nil, fmt.Errorf("invalid clipboard method: %s", raw)
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		out = append(out, method)
	}
	return out, nil
}

// Methods returns the configured fallback chain.
func (c *Copier) Methods() []Method {
	return append([]Method(nil), c.methods...)
}

// Copy puts the file at path on the clipboard.
func (c *Copier) Copy(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, fmt.Errorf("path is required")
	}
	var errs []error
	for _, method := range c.methods {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := c.copyWith(ctx, method, path); err != nil {
			c.logger.Debug("clipboard method failed", "method", method, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", method, err))
			continue
		}
		return Result{Success: true, Method: method}, nil
	}
	return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

func (c *Copier) copyWith(ctx context.Context, method Method, path string) error {
	switch method {
	case MethodFile:
		return c.copyFile(ctx, path)
	case MethodImage:
		return c.copyImage(ctx, path)
	case MethodPath:
		return c.copyText(ctx, path)
	default:
		return fmt.Errorf("unsupported method")
	}
}

func (c *Copier) copyFile(ctx context.Context, path string) error {
	uri := blobstore.FileURI(path)
	switch c.goos {
	case "darwin":
		return c.runner.Run(ctx, nil, "osascript", "-e", fmt.Sprintf("set the clipboard to (POSIX file %q)", path))
	case "windows":
		return c.runner.Run(ctx, nil, "powershell", "-NoProfile", "-Command", "Set-Clipboard -LiteralPath "+psQuote(path))
	default:
		if c.wayland {
			return c.runner.Run(ctx, strings.NewReader(uri+"\n"), "wl-copy", "--type", "text/uri-list")
		}
		return c.runner.Run(ctx, strings.NewReader(uri+"\n"), "xclip", "-selection", "clipboard", "-t", "text/uri-list")
	}
}

func (c *Copier) copyImage(ctx context.Context, path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("content is %s, not an image", mtype.String())
	}

	switch c.goos {
	case "darwin":
		return c.runner.Run(ctx, nil, "osascript", "-e", fmt.Sprintf("set the clipboard to (read (POSIX file %q) as %s)", path, appleImageClass(mtype.String())))
	case "windows":
		script := "Add-Type -AssemblyName System.Windows.Forms; Add-Type -AssemblyName System.Drawing; " +
			"[System.Windows.Forms.Clipboard]::SetImage([System.Drawing.Image]::FromFile(" + psQuote(path) + "))"
		return c.runner.Run(ctx, nil, "powershell", "-NoProfile", "-STA", "-Command", script)
	default:
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if c.wayland {
			return c.runner.Run(ctx, f, "wl-copy", "--type", mtype.String())
		}
		return c.runner.Run(ctx, f, "xclip", "-selection", "clipboard", "-t", mtype.String())
	}
}

func (c *Copier) copyText(ctx context.Context, text string) error {
	switch c.goos {
	case "darwin":
		return c.runner.Run(ctx, strings.NewReader(text), "pbcopy")
	case "windows":
		return c.runner.Run(ctx, strings.NewReader(text), "clip")
	default:
		if c.wayland {
			return c.runner.Run(ctx, strings.NewReader(text), "wl-copy")
		}
		return c.runner.Run(ctx, strings.NewReader(text), "xclip", "-selection", "clipboard")
	}
}

func appleImageClass(mediaType string) string {
	switch mediaType {
	case "image/png":
		return "«class PNGf»"
	case "image/jpeg":
		return "JPEG picture"
	default:
		return "GIF picture"
	}
}

func psQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

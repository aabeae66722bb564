package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gifstash/internal/api"
	"gifstash/internal/config"
)

const (
	serverProbeTimeout = 500 * time.Millisecond
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverLogFileName  = "server.log"
	serverLogTailBytes = 2048
)

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	spawned, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	if spawned != nil {
		defer spawned.stop()
	}
	return fn(api.NewClient(cfg.APIURL))
}

// ensureServer makes sure a gifstash server for cfg's collection answers on
// the API URL. When nothing listens it starts "gifstash srv" for the duration
// of one command and returns it so the caller can stop it.
func ensureServer(cfg *config.Config) (*spawnedServer, error) {
	client := api.NewClient(cfg.APIURL)
	ctx, cancel := context.WithTimeout(context.Background(), serverProbeTimeout)
	info, err := client.GetInfo(ctx)
	cancel()
	if err == nil {
		return nil, checkServedCollection(cfg, info)
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		// A server is there but will not describe itself, e.g. without a token.
		return nil, nil
	}

	spawned, err := spawnServer(cfg)
	if err != nil {
		return nil, err
	}
	if err := spawned.waitReady(client, serverStartTimeout); err != nil {
		spawned.stop()
		return nil, err
	}
	return spawned, nil
}

// checkServedCollection refuses to talk to a server that is running against
// a different database than the one this command was configured for.
func checkServedCollection(cfg *config.Config, info api.InfoResponse) error {
	if info.DBPath == "" || cfg.DBPath == "" || sameFile(info.DBPath, cfg.DBPath) {
		return nil
	}
	return fmt.Errorf("server at %s serves %s, not %s; stop it or point GIFSTASH_API_URL elsewhere", cfg.APIURL, info.DBPath, cfg.DBPath)
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}

type spawnedServer struct {
	cmd     *exec.Cmd
	exited  chan error
	logPath string
}

func spawnServer(cfg *config.Config) (*spawnedServer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	args := []string{"srv"}
	if spawnedServerLogLevel != "" {
		args = append(args, "--log-level", spawnedServerLogLevel)
	}
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(),
		"GIFSTASH_DB="+cfg.DBPath,
		"GIFSTASH_API_URL="+cfg.APIURL,
		"GIFSTASH_DATA_DIR="+cfg.DataDir,
	)
	cmd.Stdout = io.Discard

	s := &spawnedServer{cmd: cmd, exited: make(chan error, 1)}
	logFile, logPath := openServerLog(cfg.DataDir)
	if logFile != nil {
		cmd.Stderr = logFile
		s.logPath = logPath
		defer logFile.Close()
	} else {
		cmd.Stderr = io.Discard
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() { s.exited <- cmd.Wait() }()
	return s, nil
}

// openServerLog truncates <dataDir>/server.log for a new server run. A nil
// file means the log is unavailable and output is discarded.
func openServerLog(dataDir string) (*os.File, string) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, ""
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, ""
	}
	path := filepath.Join(dataDir, serverLogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ""
	}
	return f, path
}

func (s *spawnedServer) waitReady(client *api.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case err := <-s.exited:
			s.exited <- err
			return fmt.Errorf("server exited during startup (%v)%s", err, s.logTail())
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := client.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			// Port taken by something that is not a gifstash server.
			return err
		}
		time.Sleep(serverPollInterval)
	}
	return fmt.Errorf("server did not start within %s%s", timeout, s.logTail())
}

func (s *spawnedServer) stop() {
	_ = s.cmd.Process.Kill()
	<-s.exited
}

// logTail returns the end of the server log formatted for an error message.
func (s *spawnedServer) logTail() string {
	tail := readTail(s.logPath, serverLogTailBytes)
	if tail == "" {
		return ""
	}
	return ":\n" + tail
}

func readTail(path string, limit int64) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return ""
	}
	offset := max(info.Size()-limit, 0)
	data := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(data, offset); err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

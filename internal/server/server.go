package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gifstash/internal/clipboard"
)

const (
	apiTokenEnvKey        = "GIFSTASH_API_TOKEN"
	adminTokenEnvKey      = "GIFSTASH_ADMIN_TOKEN"
	allowRemoteEnvKey     = "GIFSTASH_ALLOW_REMOTE"
	readHeaderTimeout     = 5 * time.Second
	readTimeout           = 30 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	adminConcurrencyLimit = 1
	copyConcurrencyLimit  = 2
)

// Copier places a file on the system clipboard.
type Copier interface {
	Copy(ctx context.Context, path string) (clipboard.Result, error)
}

// Options carries the optional collaborators of a Server.
type Options struct {
	DBPath    string
	BlobDir   string
	Clipboard Copier
	Logger    *slog.Logger
}

// Server wraps HTTP handlers for the gifstash API.
type Server struct {
	addr         string
	service      *CollectionService
	clipboard    Copier
	dbPath       string
	blobDir      string
	logger       *slog.Logger
	apiToken     string
	adminToken   string
	adminLimiter chan struct{}
	copyLimiter  chan struct{}
}

// New creates a new server instance.
func New(addr string, service *CollectionService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:         addr,
		service:      service,
		clipboard:    opts.Clipboard,
		dbPath:       opts.DBPath,
		blobDir:      opts.BlobDir,
		logger:       logger,
		apiToken:     strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken:   strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		adminLimiter: make(chan struct{}, adminConcurrencyLimit),
		copyLimiter:  make(chan struct{}, copyConcurrencyLimit),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "db", s.dbPath, "blob_dir", s.blobDir)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

func (s *Server) withLimiter(w http.ResponseWriter, r *http.Request, limiter chan struct{}, name string, fn func()) {
	if !s.acquireLimiter(limiter, w, r, name) {
		return
	}
	defer s.releaseLimiter(limiter)
	fn()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

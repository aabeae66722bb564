package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gifstash/internal/blobstore"
	"gifstash/internal/clipboard"
	"gifstash/internal/config"
	"gifstash/internal/server"
	"gifstash/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the gifstash API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			methods, err := clipboard.ParseMethods(cfg.Clipboard.Methods)
			if err != nil {
				return fmt.Errorf("clipboard.methods: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return err
			}
			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := blobstore.NewLocalDir(cfg.BlobDir)
			if err != nil {
				return err
			}
			logger.Info("using blob directory", "path", blobs.Root())

			service := server.NewCollectionService(st, blobs)
			srv := server.New(addr, service, server.Options{
				DBPath:    cfg.DBPath,
				BlobDir:   blobs.Root(),
				Clipboard: clipboard.New(methods, clipboard.WithLogger(logger.With("component", "clipboard"))),
				Logger:    logger,
			})
			return srv.ListenAndServe()
		},
	}
}

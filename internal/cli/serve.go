package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/config"
	"github.com/haskel/runeconomy/internal/server"
	"github.com/haskel/runeconomy/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	Long: `Start the HTTP API in foreground mode.

Endpoints:
  POST /v1/analyze                  analyze a CSV body or multipart "file" upload
  GET  /v1/runs                     list stored runs
  GET  /v1/runs/{id}                fetch a stored report
  DELETE /v1/runs/{id}              delete a stored run
  GET  /v1/subjects/{id}/history    running economy of a subject across runs
  GET  /health

SIGHUP reloads the auth settings from the config file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if specified via flag
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg)

	log.Info("runeconomy starting",
		"version", Version,
		"config", cfgFile,
		"policy", cfg.Analysis.Policy,
	)

	analyzer, err := analysis.New(analysisOptions(cfg), log)
	if err != nil {
		return err
	}

	var store *storage.Storage
	if cfg.Storage.Enabled {
		store, err = storage.Open(cfg.Storage.Path, log)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()
	}

	srv := server.New(cfg, analyzer, store, log, Version)

	// Signal channels
	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Handle SIGHUP for hot-reload
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg, err := config.LoadOrDefault(cfgFile)
				if err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	// Handle shutdown signals
	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("runeconomy ready",
		"addr", srv.Addr(),
		"history", store != nil,
	)

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("runeconomy stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"phrasesync/internal/config"
	"phrasesync/internal/daemon"
	"phrasesync/internal/library"
	"phrasesync/internal/logging"
	"phrasesync/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var activate string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the phrasesync daemon and its HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runDaemonProcess(signalCtx, cfg, activate, nil)
		},
	}
	cmd.Flags().StringVar(&activate, "script", "", "Activate this script as soon as the daemon starts")
	return cmd
}

// runDaemonProcess runs the daemon until ctx is done. ready, when set, is
// called once the daemon is listening.
func runDaemonProcess(ctx context.Context, cfg *config.Config, activate string, ready func(*daemon.Daemon)) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "phrasesyncd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library", logging.Error(err))
		return err
	}

	for _, r := range preflight.Failed(preflight.RunAll(ctx, cfg, store)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "run `phrasesync config validate` for details"),
			logging.String(logging.FieldImpact, "daemon starts anyway"),
		)
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}
	if activate != "" {
		if _, err := d.ActivateScript(ctx, activate); err != nil {
			logger.Warn("initial script activation failed",
				logging.Script(activate),
				logging.Error(err),
				logging.String(logging.FieldImpact, "daemon is running without an active session"),
			)
		}
	}
	if ready != nil {
		ready(d)
	}

	<-ctx.Done()
	logger.Info("phrasesync daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

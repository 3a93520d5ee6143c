package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"phrasesync/internal/config"
	"phrasesync/internal/daemon"
	"phrasesync/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	apiAddress string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PHRASESYNC_API_TOKEN", "")
	cfg.Logging.Level = "error"

	configPath := filepath.Join(homeDir, ".config", "phrasesync", "config.toml")
	writeTestConfig(t, configPath, cfg)
	testsupport.WriteScript(t, cfg.Paths.ScriptDir, "conversation.json", testsupport.ConversationJSON)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

// startDaemon runs the daemon in-process and records its API address.
func (e *cliTestEnv) startDaemon(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- runDaemonProcess(ctx, e.cfg, "", func(d *daemon.Daemon) {
			ready <- d.APIAddress()
		})
	}()

	select {
	case addr := <-ready:
		e.apiAddress = addr
	case err := <-done:
		cancel()
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("daemon did not start")
	}

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("daemon returned error: %v", err)
		}
	})
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	flags := []string{"--config", e.configPath}
	if e.apiAddress != "" {
		flags = append(flags, "--api", e.apiAddress)
	}
	return runCLI(t, append(flags, args...))
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

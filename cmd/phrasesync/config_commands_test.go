package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "Default script")
	requireContains(t, out, "[OK]")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := env.run(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[playback]\nrepeat_rate = 2.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := env.run(t, "config", "validate"); err == nil {
		t.Fatal("expected validation failure for repeat_rate above 1")
	}
}

func TestConfigValidateReportsMissingDefaultScript(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Playback.DefaultScript = "nowhere"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := env.run(t, "config", "validate")
	if err == nil {
		t.Fatal("expected preflight failure for missing default script")
	}
	requireContains(t, out, "[ERROR] nowhere")
}

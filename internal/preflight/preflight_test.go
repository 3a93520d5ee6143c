package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"phrasesync/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDefaultScript(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		write    bool
		wantPass bool
	}{
		{name: "embedded example", script: "example", wantPass: true},
		{name: "file in script dir", script: "conversation", write: true, wantPass: true},
		{name: "missing", script: "nowhere", wantPass: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithDefaultScript(tt.script))
			if tt.write {
				testsupport.WriteScript(t, cfg.Paths.ScriptDir, tt.script+".json", testsupport.ConversationJSON)
			}
			result := CheckDefaultScript(context.Background(), cfg, nil)
			if result.Passed != tt.wantPass {
				t.Fatalf("Passed = %v, detail %q", result.Passed, result.Detail)
			}
		})
	}
}

func TestCheckDefaultScriptUsesCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultScript("catalogued"))
	path := testsupport.WriteScript(t, filepath.Join(testsupport.BaseDir(cfg), "elsewhere"), "catalogued.json", testsupport.ConversationJSON)
	store := testsupport.MustOpenLibrary(t, cfg)
	if _, err := store.Add(context.Background(), path); err != nil {
		t.Fatalf("library add: %v", err)
	}

	result := CheckDefaultScript(context.Background(), cfg, store)
	if !result.Passed {
		t.Fatalf("expected catalogued default to pass, got %q", result.Detail)
	}
}

func TestCheckAPIBind(t *testing.T) {
	if result := CheckAPIBind(context.Background(), "", ""); !result.Passed {
		t.Fatalf("disabled api should pass, got %q", result.Detail)
	}
	if result := CheckAPIBind(context.Background(), "127.0.0.1:0", ""); !result.Passed {
		t.Fatalf("ephemeral port should bind, got %q", result.Detail)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	result := CheckAPIBind(context.Background(), listener.Addr().String(), "")
	if result.Passed {
		t.Fatalf("expected occupied address to fail, got %q", result.Detail)
	}
}

func TestRunAllAndFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	if err := os.RemoveAll(cfg.Paths.LogDir); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(context.Background(), cfg, nil))
	if len(failed) != 1 || failed[0].Name != "Log directory" {
		t.Fatalf("expected log directory failure, got %+v", failed)
	}
}

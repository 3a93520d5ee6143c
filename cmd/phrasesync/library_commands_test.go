package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"phrasesync/internal/api"
	"phrasesync/internal/testsupport"
)

func TestLibraryCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScript(t, filepath.Join(env.baseDir, "incoming"), "greeting.json", testsupport.ConversationJSON)

	out, _, err := env.run(t, "library", "add", path)
	if err != nil {
		t.Fatalf("library add: %v", err)
	}
	requireContains(t, out, `Added "greeting"`)
	requireContains(t, out, "4 phrases")

	out, _, err = env.run(t, "library", "add", path)
	if err != nil {
		t.Fatalf("library add again: %v", err)
	}
	requireContains(t, out, "Already catalogued")

	out, _, err = env.run(t, "library", "list")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "greeting")
	requireContains(t, out, "John, Jane")

	out, _, err = env.run(t, "library", "list", "--json")
	if err != nil {
		t.Fatalf("library list --json: %v", err)
	}
	var resp api.ScriptListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Scripts) != 1 || resp.Scripts[0].SourcePath != path {
		t.Fatalf("unexpected scripts: %+v", resp.Scripts)
	}

	out, _, err = env.run(t, "timeline", "greeting")
	if err != nil {
		t.Fatalf("timeline from library: %v", err)
	}
	requireContains(t, out, "Hi! How are you?")

	out, _, err = env.run(t, "library", "remove", "greeting")
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, `Removed "greeting"`)

	out, _, err = env.run(t, "library", "list")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Library is empty")

	if _, _, err := env.run(t, "library", "remove", "greeting"); err == nil {
		t.Fatal("expected removing an unknown script to fail")
	}
}

func TestLibraryAddRejectsInvalidScript(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScript(t, env.baseDir, "broken.yaml", "speakers: [")
	if _, _, err := env.run(t, "library", "add", path); err == nil {
		t.Fatal("expected invalid script to be rejected")
	}
}

func TestLibraryAddCopiesIntoScriptDir(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteScript(t, filepath.Join(env.baseDir, "incoming"), "lesson.json", testsupport.ConversationJSON)

	out, _, err := env.run(t, "library", "add", "--copy", path)
	if err != nil {
		t.Fatalf("library add --copy: %v", err)
	}
	requireContains(t, out, `Added "lesson"`)

	out, _, err = env.run(t, "library", "list", "--json")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	var resp api.ScriptListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := filepath.Join(env.cfg.Paths.ScriptDir, "lesson.json")
	if len(resp.Scripts) != 1 || resp.Scripts[0].SourcePath != want {
		t.Fatalf("expected catalogued copy at %s, got %+v", want, resp.Scripts)
	}
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"phrasesync/internal/script"
)

// ConversationJSON is a two-speaker script whose timeline has four phrases
// starting at 0, 1250, 2600 and 4050 ms and a total of 5200 ms.
const ConversationJSON = `{
  "pause": 250,
  "speakers": [
    {"name": "John", "phrases": [{"words": "Hello there.", "time": 1000}, {"words": "Fine, thanks.", "time": 1200}]},
    {"name": "Jane", "phrases": [{"words": "Hi! How are you?", "time": 1100}, {"words": "Good to hear.", "time": 900}]}
  ]
}`

// WriteScript writes contents to name inside dir, creating dir as needed, and
// returns the full path.
func WriteScript(t testing.TB, dir, name, contents string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteEncodedScript encodes s in the format implied by name and writes it.
func WriteEncodedScript(t testing.TB, dir, name string, s script.Script) string {
	t.Helper()

	format, err := script.FormatFromPath(name)
	if err != nil {
		t.Fatalf("format for %s: %v", name, err)
	}
	data, err := script.Encode(s, format)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return WriteScript(t, dir, name, string(data))
}

package main

import (
	"encoding/json"
	"testing"

	"phrasesync/internal/api"
)

func TestTimelineCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "timeline", "conversation")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	requireContains(t, out, "Hello there.")
	requireContains(t, out, "Good to hear.")
	requireContains(t, out, "John, Jane")
	requireContains(t, out, "4 phrases")
}

func TestTimelineCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "timeline", "conversation", "--json")
	if err != nil {
		t.Fatalf("timeline --json: %v", err)
	}
	var resp api.TimelineResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Script != "conversation" || resp.TotalMS != 5200 || len(resp.Phrases) != 4 {
		t.Fatalf("unexpected timeline: %+v", resp)
	}
	wantStarts := []int64{0, 1250, 2600, 4050}
	wantSpeakers := []string{"John", "Jane", "John", "Jane"}
	for i, p := range resp.Phrases {
		if p.StartMS != wantStarts[i] || p.Speaker != wantSpeakers[i] {
			t.Fatalf("phrase %d = %+v", i, p)
		}
	}
}

func TestTimelineCommandFallsBack(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "timeline", "missing")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	requireContains(t, out, `Script "missing" not found; showing example`)
}

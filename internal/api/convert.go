package api

import (
	"time"

	"phrasesync/internal/library"
	"phrasesync/internal/playback"
	"phrasesync/internal/timeline"
)

// FromSnapshot converts a coordinator snapshot.
func FromSnapshot(s playback.Snapshot) PlaybackState {
	state := PlaybackState{
		State:       s.State.String(),
		PositionMS:  s.Position.Milliseconds(),
		DurationMS:  s.Duration.Milliseconds(),
		PhraseCount: s.PhraseCount,
		IsPlaying:   s.IsPlaying,
		HasEnded:    s.HasEnded,
		Repeat:      RepeatMode{Active: s.Repeat.Active},
		Rate:        s.Rate,
		Progress:    s.Progress,
		Elapsed:     s.Elapsed,
		Total:       s.Total,
	}
	if s.HasPhrase() {
		current := s.CurrentPhrase
		state.CurrentPhrase = &current
	}
	if s.Repeat.Active {
		target := s.Repeat.Target
		state.Repeat.Target = &target
	}
	return state
}

// FromTimeline converts a timeline for the named script.
func FromTimeline(name string, tl timeline.Timeline) TimelineResponse {
	resp := TimelineResponse{
		Script:   name,
		TotalMS:  tl.Total.Milliseconds(),
		Total:    timeline.FormatTime(tl.Total),
		Speakers: tl.Speakers(),
		Phrases:  make([]Phrase, 0, tl.Len()),
	}
	for _, p := range tl.Phrases {
		resp.Phrases = append(resp.Phrases, Phrase{
			Index:    p.Index,
			Speaker:  p.Speaker,
			Text:     p.Text,
			StartMS:  p.Start.Milliseconds(),
			EndMS:    p.End.Milliseconds(),
			SpokenMS: p.Spoken.Milliseconds(),
			PauseMS:  p.PauseAfter.Milliseconds(),
			Start:    timeline.FormatTime(p.Start),
		})
	}
	return resp
}

// FromEntry converts a library entry.
func FromEntry(e *library.Entry) Script {
	if e == nil {
		return Script{}
	}
	out := Script{
		ID:          e.ID,
		Name:        e.Name,
		Title:       e.Title,
		SourcePath:  e.SourcePath,
		Format:      e.Format,
		Speakers:    e.Speakers,
		PhraseCount: e.PhraseCount,
		TotalMS:     e.Total.Milliseconds(),
		Total:       timeline.FormatTime(e.Total),
	}
	out.UpdatedAt = FormatTimestamp(e.UpdatedAt)
	return out
}

// FromEntries converts a slice of library entries.
func FromEntries(entries []*library.Entry) []Script {
	out := make([]Script, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}

// FormatTimestamp renders t in the API timestamp format.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeFormat)
}

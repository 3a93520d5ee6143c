package timeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"phrasesync/internal/script"
)

// Phrase is one timed entry of a Timeline.
type Phrase struct {
	Index         int           `json:"index"`
	Speaker       string        `json:"speaker"`
	Text          string        `json:"text"`
	Spoken        time.Duration `json:"spoken"`
	PauseAfter    time.Duration `json:"pause_after"`
	TotalDuration time.Duration `json:"total_duration"`
	Start         time.Duration `json:"start"`
	End           time.Duration `json:"end"`
}

// Timeline is the ordered phrase sequence plus its total duration. It is
// immutable once built.
type Timeline struct {
	Phrases []Phrase      `json:"phrases"`
	Total   time.Duration `json:"total"`
}

// Build interleaves the script round-robin. A script with no phrases yields an
// empty timeline with zero total.
func Build(s script.Script) Timeline {
	maxLen := 0
	for _, speaker := range s.Speakers {
		if len(speaker.Phrases) > maxLen {
			maxLen = len(speaker.Phrases)
		}
	}

	phrases := make([]Phrase, 0, s.PhraseCount())
	var cumulative time.Duration
	for round := 0; round < maxLen; round++ {
		for _, speaker := range s.Speakers {
			if round >= len(speaker.Phrases) {
				continue
			}
			src := speaker.Phrases[round]
			phrases = append(phrases, Phrase{
				Index:         len(phrases),
				Speaker:       speaker.Name,
				Text:          src.Text,
				Spoken:        src.Spoken,
				PauseAfter:    s.Pause,
				TotalDuration: src.Spoken + s.Pause,
				Start:         cumulative,
				End:           cumulative + src.Spoken,
			})
			cumulative += src.Spoken + s.Pause
		}
	}
	return Timeline{Phrases: phrases, Total: cumulative}
}

// Len returns the number of phrases.
func (t Timeline) Len() int {
	return len(t.Phrases)
}

// Empty reports whether the timeline has no phrases.
func (t Timeline) Empty() bool {
	return len(t.Phrases) == 0
}

// Phrase returns the phrase at index i.
func (t Timeline) Phrase(i int) (Phrase, bool) {
	if i < 0 || i >= len(t.Phrases) {
		return Phrase{}, false
	}
	return t.Phrases[i], true
}

// PhraseAt returns the index of the phrase being spoken at position, that is
// the phrase with Start <= position < End. Pause gaps, positions before the
// first phrase and positions past the last End report false.
func (t Timeline) PhraseAt(position time.Duration) (int, bool) {
	// First phrase starting after position; the candidate is the one before it.
	next := sort.Search(len(t.Phrases), func(i int) bool {
		return t.Phrases[i].Start > position
	})
	if next == 0 {
		return 0, false
	}
	candidate := t.Phrases[next-1]
	if position < candidate.End {
		return candidate.Index, true
	}
	return 0, false
}

// Speakers lists distinct speaker names in first-appearance order.
func (t Timeline) Speakers() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range t.Phrases {
		if _, ok := seen[p.Speaker]; ok {
			continue
		}
		seen[p.Speaker] = struct{}{}
		names = append(names, p.Speaker)
	}
	return names
}

// FormatTime renders d as MM:SS using floored whole seconds. Minutes are not
// wrapped at 60. Negative values are not special-cased: the floor/remainder
// arithmetic carries the sign into both segments, so -1s renders "-1:-1".
func FormatTime(d time.Duration) string {
	totalSeconds := int64(math.Floor(float64(d) / float64(time.Second)))
	minutes := int64(math.Floor(float64(totalSeconds) / 60))
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Progress returns position/total, or 0 when total is not positive. The result
// is not clamped.
func Progress(position, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(position) / float64(total)
}

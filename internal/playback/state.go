package playback

import (
	"fmt"
	"log/slog"
	"time"
)

// State is the coordinator's transport state.
type State int

const (
	StateIdle State = iota
	StatePaused
	StatePlaying
	StateRepeating
	StateEnded
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StatePaused:    "paused",
	StatePlaying:   "playing",
	StateRepeating: "repeating",
	StateEnded:     "ended",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name for JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown playback state %q", string(text))
}

// NoPhrase marks the absence of a current phrase.
const NoPhrase = -1

// RepeatMode describes an active single-phrase repeat.
type RepeatMode struct {
	Active bool `json:"active"`
	Target int  `json:"target"`
}

// Snapshot is the derived, read-only view of a session. Every field is
// computed from the single stored position and state.
type Snapshot struct {
	State         State         `json:"state"`
	Position      time.Duration `json:"position"`
	Duration      time.Duration `json:"duration"`
	CurrentPhrase int           `json:"current_phrase"`
	PhraseCount   int           `json:"phrase_count"`
	IsPlaying     bool          `json:"is_playing"`
	HasEnded      bool          `json:"has_ended"`
	Repeat        RepeatMode    `json:"repeat"`
	Rate          float64       `json:"rate"`
	Progress      float64       `json:"progress"`
	Elapsed       string        `json:"elapsed"`
	Total         string        `json:"total"`
}

// LogValue keeps the formatted elapsed and total strings out of log lines.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("state", s.State.String()),
		slog.Duration("position", s.Position),
		slog.Int("phrase", s.CurrentPhrase),
		slog.Float64("rate", s.Rate),
		slog.Float64("progress", s.Progress),
	}
	if s.Repeat.Active {
		attrs = append(attrs, slog.Int("repeat_target", s.Repeat.Target))
	}
	return slog.GroupValue(attrs...)
}

// HasPhrase reports whether a phrase is current.
func (s Snapshot) HasPhrase() bool {
	return s.CurrentPhrase != NoPhrase
}

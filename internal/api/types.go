package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Phrase describes one timeline entry.
type Phrase struct {
	Index    int    `json:"index"`
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	StartMS  int64  `json:"startMs"`
	EndMS    int64  `json:"endMs"`
	SpokenMS int64  `json:"spokenMs"`
	PauseMS  int64  `json:"pauseMs"`
	Start    string `json:"start"`
}

// TimelineResponse wraps the active session's timeline.
type TimelineResponse struct {
	Script   string   `json:"script"`
	TotalMS  int64    `json:"totalMs"`
	Total    string   `json:"total"`
	Speakers []string `json:"speakers"`
	Phrases  []Phrase `json:"phrases"`
}

// RepeatMode mirrors the coordinator's repeat state.
type RepeatMode struct {
	Active bool `json:"active"`
	Target *int `json:"target,omitempty"`
}

// PlaybackState is the transport view of a playback snapshot.
type PlaybackState struct {
	State         string     `json:"state"`
	PositionMS    int64      `json:"positionMs"`
	DurationMS    int64      `json:"durationMs"`
	CurrentPhrase *int       `json:"currentPhrase"`
	PhraseCount   int        `json:"phraseCount"`
	IsPlaying     bool       `json:"isPlaying"`
	HasEnded      bool       `json:"hasEnded"`
	Repeat        RepeatMode `json:"repeat"`
	Rate          float64    `json:"rate"`
	Progress      float64    `json:"progress"`
	Elapsed       string     `json:"elapsed"`
	Total         string     `json:"total"`
}

// Session describes the active playback session.
type Session struct {
	ID        string        `json:"id"`
	Script    string        `json:"script"`
	Source    string        `json:"source"`
	Path      string        `json:"path,omitempty"`
	Fallback  bool          `json:"fallback"`
	StartedAt string        `json:"startedAt"`
	Playback  PlaybackState `json:"playback"`
}

// SessionRequest asks the daemon to activate a script.
type SessionRequest struct {
	Script string `json:"script"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool     `json:"running"`
	PID          int      `json:"pid"`
	LibraryPath  string   `json:"libraryPath"`
	LockFilePath string   `json:"lockFilePath"`
	ScriptDir    string   `json:"scriptDir"`
	Session      *Session `json:"session,omitempty"`
}

// Script describes a catalogued script.
type Script struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	SourcePath  string   `json:"sourcePath"`
	Format      string   `json:"format"`
	Speakers    []string `json:"speakers"`
	PhraseCount int      `json:"phraseCount"`
	TotalMS     int64    `json:"totalMs"`
	Total       string   `json:"total"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// ScriptListResponse wraps catalog entries.
type ScriptListResponse struct {
	Scripts []Script `json:"scripts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

package script

import (
	"time"
)

// Phrase is one contiguous spoken segment with a known duration.
type Phrase struct {
	Text   string
	Spoken time.Duration
}

// Speaker owns an ordered list of phrases.
type Speaker struct {
	Name    string
	Phrases []Phrase
}

// Script is the immutable input to the timeline builder.
type Script struct {
	Pause    time.Duration
	Speakers []Speaker
}

// PhraseCount returns the total number of phrases across all speakers.
func (s Script) PhraseCount() int {
	total := 0
	for _, speaker := range s.Speakers {
		total += len(speaker.Phrases)
	}
	return total
}

// SpeakerNames lists speaker names in script order.
func (s Script) SpeakerNames() []string {
	names := make([]string, 0, len(s.Speakers))
	for _, speaker := range s.Speakers {
		names = append(names, speaker.Name)
	}
	return names
}

// Empty reports whether the script has no phrases at all.
func (s Script) Empty() bool {
	return s.PhraseCount() == 0
}

package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"phrasesync/internal/services"
)

// Format identifies a script file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Extensions lists the file extensions recognised as scripts, in lookup order.
var Extensions = []string{".json", ".toml", ".yaml", ".yml"}

type document struct {
	Pause    float64       `json:"pause" toml:"pause" yaml:"pause"`
	Speakers []speakerData `json:"speakers" toml:"speakers" yaml:"speakers"`
}

type speakerData struct {
	Name    string       `json:"name" toml:"name" yaml:"name"`
	Phrases []phraseData `json:"phrases" toml:"phrases" yaml:"phrases"`
}

type phraseData struct {
	Words string  `json:"words" toml:"words" yaml:"words"`
	Time  float64 `json:"time" toml:"time" yaml:"time"`
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", services.Wrap(services.ErrUnsupported, "script", "detect format", fmt.Sprintf("unsupported extension %q", filepath.Ext(path)), nil)
	}
}

// LoadFile reads and parses a script file, choosing the decoder by extension.
func LoadFile(path string) (Script, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Script{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script %s: %w", path, err)
	}
	parsed, err := Parse(data, format)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

// Parse decodes a script document. Missing speakers or phrase lists produce an
// empty script rather than an error; negative durations are rejected.
func Parse(data []byte, format Format) (Script, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return Script{}, services.Wrap(services.ErrUnsupported, "script", "parse", fmt.Sprintf("unknown format %q", format), nil)
	}
	if err != nil {
		return Script{}, services.Wrap(services.ErrValidation, "script", "decode "+string(format), "", err)
	}
	return doc.toScript()
}

func (d document) toScript() (Script, error) {
	pause, err := millis(d.Pause)
	if err != nil {
		return Script{}, services.Wrap(services.ErrValidation, "script", "parse", "pause", err)
	}
	out := Script{Pause: pause, Speakers: make([]Speaker, 0, len(d.Speakers))}
	for si, sp := range d.Speakers {
		speaker := Speaker{
			Name:    norm.NFC.String(strings.TrimSpace(sp.Name)),
			Phrases: make([]Phrase, 0, len(sp.Phrases)),
		}
		for pi, ph := range sp.Phrases {
			spoken, err := millis(ph.Time)
			if err != nil {
				return Script{}, services.Wrap(services.ErrValidation, "script", "parse",
					fmt.Sprintf("speaker %d (%s) phrase %d", si, speaker.Name, pi), err)
			}
			speaker.Phrases = append(speaker.Phrases, Phrase{
				Text:   norm.NFC.String(strings.TrimSpace(ph.Words)),
				Spoken: spoken,
			})
		}
		out.Speakers = append(out.Speakers, speaker)
	}
	return out, nil
}

// maxMillis is the longest duration, in milliseconds, a time.Duration holds.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// millis converts a wire duration in (possibly fractional) milliseconds.
func millis(value float64) (time.Duration, error) {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return 0, fmt.Errorf("duration %vms is not a number", value)
	case value < 0:
		return 0, fmt.Errorf("duration %vms must not be negative", value)
	case value > maxMillis:
		return 0, fmt.Errorf("duration %vms exceeds the maximum of %.0fms", value, maxMillis)
	}
	return time.Duration(math.Round(value * float64(time.Millisecond))), nil
}

func wireMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Encode renders a script back to its wire format.
func Encode(s Script, format Format) ([]byte, error) {
	doc := document{Pause: wireMillis(s.Pause)}
	for _, sp := range s.Speakers {
		data := speakerData{Name: sp.Name}
		for _, ph := range sp.Phrases {
			data.Phrases = append(data.Phrases, phraseData{Words: ph.Text, Time: wireMillis(ph.Spoken)})
		}
		doc.Speakers = append(doc.Speakers, data)
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, services.Wrap(services.ErrUnsupported, "script", "encode", fmt.Sprintf("unknown format %q", format), nil)
	}
}

// TitleFromPath derives a human-friendly title from a script file name.
func TitleFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" || title == "." {
		return "Untitled Script"
	}
	return cases.Title(language.Und).String(title)
}

// NameFromPath derives the catalog name (lower-case file stem) for a script.
func NameFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"phrasesync/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// playbackKind maps a playback state name to a status colour.
func playbackKind(state string) statusKind {
	switch state {
	case "playing":
		return statusOK
	case "repeating":
		return statusWarn
	default:
		return statusInfo
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// renderSession formats a session summary block.
func renderSession(s api.Session, colorize bool) []string {
	lines := renderSectionHeader("Session "+shortID(s.ID), colorize)
	script := s.Script
	if s.Fallback {
		script += " (fallback)"
	}
	lines = append(lines, renderStatusLine("Script", statusInfo, fmt.Sprintf("%s [%s]", script, s.Source), colorize))

	pb := s.Playback
	lines = append(lines, renderStatusLine("State", playbackKind(pb.State), pb.State, colorize))
	lines = append(lines, renderStatusLine("Position", statusInfo, fmt.Sprintf("%s / %s (%.0f%%)", pb.Elapsed, pb.Total, pb.Progress*100), colorize))
	phrase := "none"
	if pb.CurrentPhrase != nil {
		phrase = fmt.Sprintf("%d of %d", *pb.CurrentPhrase+1, pb.PhraseCount)
	}
	lines = append(lines, renderStatusLine("Phrase", statusInfo, phrase, colorize))
	if pb.Repeat.Active && pb.Repeat.Target != nil {
		lines = append(lines, renderStatusLine("Repeat", statusWarn, fmt.Sprintf("phrase %d at %.2fx", *pb.Repeat.Target, pb.Rate), colorize))
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

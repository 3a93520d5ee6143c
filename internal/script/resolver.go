package script

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"phrasesync/internal/logging"
)

// Lookup resolves a catalog identifier (name or numeric id) to a script file
// path. ok is false when the identifier is unknown.
type Lookup interface {
	Lookup(ctx context.Context, identifier string) (path string, ok bool, err error)
}

// Source describes where a resolved script came from.
type Source string

const (
	SourceLibrary  Source = "library"
	SourceFile     Source = "file"
	SourceEmbedded Source = "embedded"
)

// Resolved is a script together with the identity it was resolved under.
type Resolved struct {
	Name     string
	Path     string
	Source   Source
	Fallback bool
	Script   Script
}

// Resolver maps identifiers to scripts. Unknown identifiers fall back to the
// default script, then to the embedded example; only unreadable or malformed
// files produce errors.
type Resolver struct {
	Catalog   Lookup
	ScriptDir string
	Default   string
	Logger    *slog.Logger
}

// Resolve returns the script for identifier.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Resolved, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier != "" {
		resolved, ok, err := r.find(ctx, identifier)
		if err != nil || ok {
			return resolved, err
		}
	}

	fallback := strings.TrimSpace(r.Default)
	if fallback != "" && fallback != identifier && fallback != ExampleName {
		resolved, ok, err := r.find(ctx, fallback)
		if err != nil {
			return Resolved{}, err
		}
		if ok {
			resolved.Fallback = identifier != ""
			r.logFallback(identifier, resolved.Name)
			return resolved, nil
		}
	}

	if identifier != "" && identifier != ExampleName {
		r.logFallback(identifier, ExampleName)
	}
	return Resolved{
		Name:     ExampleName,
		Source:   SourceEmbedded,
		Fallback: identifier != "" && identifier != ExampleName,
		Script:   Example(),
	}, nil
}

func (r *Resolver) find(ctx context.Context, identifier string) (Resolved, bool, error) {
	if r.Catalog != nil {
		path, ok, err := r.Catalog.Lookup(ctx, identifier)
		if err != nil {
			return Resolved{}, false, err
		}
		if ok {
			s, err := LoadFile(path)
			switch {
			case err == nil:
				return Resolved{Name: NameFromPath(path), Path: path, Source: SourceLibrary, Script: s}, true, nil
			case errors.Is(err, fs.ErrNotExist):
				// The catalog outlived its file; keep looking.
				logging.WarnWithContext(r.Logger, "catalogued script file is missing", "library_file_missing",
					logging.Script(identifier),
					logging.String("path", path),
					logging.String(logging.FieldErrorHint, "re-add the script or run `phrasesync library remove`"),
					logging.String(logging.FieldImpact, "falling back to the next match"),
				)
			default:
				return Resolved{}, false, err
			}
		}
	}

	for _, candidate := range r.candidates(identifier) {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Resolved{}, false, err
		}
		if info.IsDir() {
			continue
		}
		s, err := LoadFile(candidate)
		if err != nil {
			return Resolved{}, false, err
		}
		return Resolved{Name: NameFromPath(candidate), Path: candidate, Source: SourceFile, Script: s}, true, nil
	}
	return Resolved{}, false, nil
}

func (r *Resolver) candidates(identifier string) []string {
	var out []string
	if filepath.Ext(identifier) != "" {
		out = append(out, identifier)
		if r.ScriptDir != "" && !filepath.IsAbs(identifier) {
			out = append(out, filepath.Join(r.ScriptDir, identifier))
		}
		return out
	}
	if r.ScriptDir == "" || strings.ContainsRune(identifier, filepath.Separator) {
		return out
	}
	for _, ext := range Extensions {
		out = append(out, filepath.Join(r.ScriptDir, identifier+ext))
	}
	return out
}

func (r *Resolver) logFallback(requested, used string) {
	if r.Logger == nil || requested == "" {
		return
	}
	r.Logger.Info("script not found; using fallback",
		logging.String("requested", requested),
		logging.Script(used),
	)
}

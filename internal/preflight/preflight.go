package preflight

import (
	"context"

	"phrasesync/internal/config"
	"phrasesync/internal/script"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg. catalog may be nil, in
// which case the default script is only looked up on disk.
func RunAll(ctx context.Context, cfg *config.Config, catalog script.Lookup) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckDirectoryAccess("Script directory", cfg.Paths.ScriptDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDefaultScript(ctx, cfg, catalog),
		CheckAPIBind(ctx, cfg.Paths.APIBind, cfg.Paths.APIToken),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

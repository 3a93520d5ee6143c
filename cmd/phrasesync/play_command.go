package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phrasesync/internal/config"
	"phrasesync/internal/library"
	"phrasesync/internal/logging"
	"phrasesync/internal/playback"
	"phrasesync/internal/script"
	"phrasesync/internal/timeline"
)

type playOptions struct {
	from   int
	repeat int
	speed  float64
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	opts := playOptions{repeat: -1}

	cmd := &cobra.Command{
		Use:   "play [script]",
		Short: "Play a script on the simulated device, printing each phrase as it starts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) > 0 {
				identifier = args[0]
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(store *library.Store) error {
				resolver, err := ctx.resolver(store)
				if err != nil {
					return err
				}
				resolved, err := resolver.Resolve(cmd.Context(), identifier)
				if err != nil {
					return err
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return runLocalPlayback(signalCtx, cmd.OutOrStdout(), cfg, resolved, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.from, "from", 0, "Start at this phrase index")
	cmd.Flags().IntVar(&opts.repeat, "repeat", -1, "Repeat only this phrase index at the reduced rate")
	cmd.Flags().Float64Var(&opts.speed, "speed", 1, "Clock speed multiplier for the simulated device")
	return cmd
}

// lockedWriter serialises writes from the playback loop and the command goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runLocalPlayback(ctx context.Context, w io.Writer, cfg *config.Config, resolved script.Resolved, opts playOptions) error {
	tl := timeline.Build(resolved.Script)
	out := &lockedWriter{w: w}
	colorize := shouldColorize(w)

	if resolved.Fallback {
		fmt.Fprintf(out, "Requested script not found; playing %s\n", resolved.Name)
	}
	if tl.Empty() {
		fmt.Fprintf(out, "Script %s has no phrases\n", resolved.Name)
		return nil
	}
	if opts.from < 0 || opts.from >= tl.Len() {
		return fmt.Errorf("--from %d is outside the timeline (0-%d)", opts.from, tl.Len()-1)
	}
	if opts.repeat >= tl.Len() {
		return fmt.Errorf("--repeat %d is outside the timeline (0-%d)", opts.repeat, tl.Len()-1)
	}
	if opts.speed <= 0 {
		return fmt.Errorf("--speed must be positive")
	}

	device := playback.NewSimulatedDevice(tl.Total)
	coord := playback.New(tl, device, device, playback.Options{
		RepeatRate:  cfg.Playback.RepeatRate,
		RepeatGuard: cfg.RepeatGuard(),
		Logger:      logging.NewNop(),
		OnPhrase: func(p timeline.Phrase) {
			speaker := p.Speaker
			if colorize {
				speaker = ansiBlue + speaker + ansiReset
			}
			fmt.Fprintf(out, "[%s] %s: %s\n", timeline.FormatTime(p.Start), speaker, p.Text)
		},
	})
	defer coord.Close(context.Background())

	runCtx, stopClock := context.WithCancel(ctx)
	defer stopClock()
	interval := cfg.SampleInterval()
	go func() { _ = device.Run(runCtx, interval, opts.speed) }()

	fmt.Fprintf(out, "Playing %s: %d phrases, %s\n", resolved.Name, tl.Len(), timeline.FormatTime(tl.Total))

	done := func(s playback.Snapshot) bool { return s.HasEnded }
	if opts.repeat >= 0 {
		if err := coord.RepeatPhrase(ctx, opts.repeat); err != nil {
			return err
		}
		done = func(s playback.Snapshot) bool { return s.State != playback.StateRepeating }
	} else {
		if opts.from > 0 {
			if err := coord.SeekToPhrase(ctx, opts.from); err != nil {
				return err
			}
		}
		if err := coord.Play(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			snap := coord.Snapshot()
			fmt.Fprintf(out, "Stopped at %s\n", snap.Elapsed)
			return nil
		case <-ticker.C:
			if snap := coord.Snapshot(); done(snap) {
				if opts.repeat >= 0 {
					fmt.Fprintf(out, "Repeat of phrase %d finished\n", opts.repeat)
				} else {
					fmt.Fprintf(out, "Finished at %s\n", snap.Elapsed)
				}
				return nil
			}
		}
	}
}

package playback

import (
	"context"
	"time"

	"phrasesync/internal/logging"
	"phrasesync/internal/timeline"
)

// Play starts playback. It is a no-op while already playing or repeating.
func (c *Coordinator) Play(ctx context.Context) error {
	return c.exec(ctx, c.play)
}

// Pause pauses playback. Pausing a repeat ends repeat mode and restores the
// normal rate.
func (c *Coordinator) Pause(ctx context.Context) error {
	return c.exec(ctx, c.pause)
}

// TogglePlayPause restarts from the beginning after a natural end, otherwise
// flips between playing and paused.
func (c *Coordinator) TogglePlayPause(ctx context.Context) error {
	return c.exec(ctx, func(ctx context.Context) error {
		switch c.state {
		case StateEnded:
			return c.restart(ctx)
		case StatePlaying, StateRepeating:
			return c.pause(ctx)
		default:
			return c.play(ctx)
		}
	})
}

// Restart seeks to zero, restores the normal rate and plays.
func (c *Coordinator) Restart(ctx context.Context) error {
	return c.exec(ctx, c.restart)
}

// Stop pauses, rewinds to zero and clears repeat mode.
func (c *Coordinator) Stop(ctx context.Context) error {
	return c.exec(ctx, c.stop)
}

// SeekToPhrase jumps to the start of phrase index. Indices outside the
// timeline are ignored.
func (c *Coordinator) SeekToPhrase(ctx context.Context, index int) error {
	return c.exec(ctx, func(ctx context.Context) error {
		return c.seekToPhrase(ctx, index)
	})
}

// Next seeks to the phrase after the current one, clamped to the last phrase.
func (c *Coordinator) Next(ctx context.Context) error {
	return c.exec(ctx, func(ctx context.Context) error {
		return c.step(ctx, 1)
	})
}

// Previous seeks to the phrase before the current one, clamped to the first.
func (c *Coordinator) Previous(ctx context.Context) error {
	return c.exec(ctx, func(ctx context.Context) error {
		return c.step(ctx, -1)
	})
}

// RepeatPhrase replays phrase index once at the reduced rate and pauses at
// its spoken end. Indices outside the timeline are ignored.
func (c *Coordinator) RepeatPhrase(ctx context.Context, index int) error {
	return c.exec(ctx, func(ctx context.Context) error {
		return c.repeatPhrase(ctx, index)
	})
}

// RepeatLastPhrase repeats the current phrase. It does nothing when no phrase
// has been resolved yet.
func (c *Coordinator) RepeatLastPhrase(ctx context.Context) error {
	return c.exec(ctx, func(ctx context.Context) error {
		if c.current == NoPhrase {
			return nil
		}
		return c.repeatPhrase(ctx, c.current)
	})
}

func (c *Coordinator) play(ctx context.Context) error {
	if c.isPlaying() {
		return nil
	}
	if err := c.device.Play(ctx); err != nil {
		return deviceError("play", err)
	}
	c.state = StatePlaying
	return nil
}

func (c *Coordinator) pause(ctx context.Context) error {
	if !c.isPlaying() {
		return nil
	}
	if err := c.device.Pause(ctx); err != nil {
		return deviceError("pause", err)
	}
	if c.state == StateRepeating {
		c.endRepeat(ctx)
	}
	c.state = StatePaused
	return nil
}

func (c *Coordinator) restart(ctx context.Context) error {
	if err := c.device.SeekTo(ctx, 0); err != nil {
		return deviceError("restart", err)
	}
	c.endRepeat(ctx)
	c.rewound()
	c.state = StatePaused
	if err := c.device.Play(ctx); err != nil {
		return deviceError("restart", err)
	}
	c.state = StatePlaying
	c.logger.Info("playback restarted", logging.Int("phrases", c.tl.Len()))
	return nil
}

func (c *Coordinator) stop(ctx context.Context) error {
	if err := c.device.Pause(ctx); err != nil {
		return deviceError("stop", err)
	}
	c.endRepeat(ctx)
	if c.state != StateEnded {
		c.state = StatePaused
	}
	if err := c.device.SeekTo(ctx, 0); err != nil {
		return deviceError("stop", err)
	}
	c.rewound()
	c.state = StatePaused
	return nil
}

// rewound resets the session to the timeline origin after a successful seek to zero.
func (c *Coordinator) rewound() {
	c.position = 0
	c.sampler.Reset()
	if c.tl.Empty() {
		c.setCurrent(NoPhrase)
		return
	}
	c.setCurrent(0)
}

func (c *Coordinator) seekToPhrase(ctx context.Context, index int) error {
	phrase, ok := c.tl.Phrase(index)
	if !ok {
		return nil
	}
	if err := c.device.SeekTo(ctx, phrase.Start); err != nil {
		return deviceError("seek", err)
	}
	switch c.state {
	case StateRepeating:
		c.endRepeat(ctx)
		c.state = StatePlaying
	case StateEnded:
		c.state = StatePaused
	}
	c.position = phrase.Start
	c.sampler.Reset()
	c.setCurrent(index)
	return nil
}

func (c *Coordinator) step(ctx context.Context, delta int) error {
	n := c.tl.Len()
	if n == 0 {
		return nil
	}
	base := c.current
	if base == NoPhrase {
		base = 0
	}
	return c.seekToPhrase(ctx, clamp(base+delta, 0, n-1))
}

func (c *Coordinator) repeatPhrase(ctx context.Context, index int) error {
	phrase, ok := c.tl.Phrase(index)
	if !ok {
		return nil
	}
	from := c.position
	if c.isPlaying() {
		if err := c.device.Pause(ctx); err != nil {
			return deviceError("repeat", err)
		}
	}
	c.endRepeat(ctx)
	c.state = StatePaused

	if err := c.device.SeekTo(ctx, phrase.Start); err != nil {
		return deviceError("repeat", err)
	}
	c.position = phrase.Start
	c.setCurrent(index)

	if err := c.applyRate(ctx, c.opts.RepeatRate); err != nil {
		return deviceError("repeat", err)
	}
	if err := c.device.Play(ctx); err != nil {
		c.restoreRate(ctx)
		return deviceError("repeat", err)
	}
	c.state = StateRepeating
	c.repeatTarget = index
	c.repeatArmed = !inRepeatWindow(phrase, from)
	c.logger.Info("repeating phrase",
		logging.PhraseIndex(index),
		logging.Float64("rate", c.opts.RepeatRate),
	)
	return nil
}

// endRepeat clears repeat mode and restores the normal rate. The caller sets
// the resulting state.
func (c *Coordinator) endRepeat(ctx context.Context) {
	c.repeatTarget = NoPhrase
	c.repeatArmed = false
	c.restoreRate(ctx)
}

// inRepeatWindow reports whether position lies between the phrase start and
// the start of the next phrase, the only range a repeat can legitimately report.
func inRepeatWindow(p timeline.Phrase, position time.Duration) bool {
	return position >= p.Start && position <= p.End+p.PauseAfter
}

// repeatThreshold is where a repeat of p stops. A guard that would leave no
// playable span falls back to the spoken end.
func repeatThreshold(p timeline.Phrase, guard time.Duration) time.Duration {
	threshold := p.End - guard
	if threshold <= p.Start {
		return p.End
	}
	return threshold
}

func (c *Coordinator) applySample(s Sample) {
	if c.closed {
		return
	}
	repeating := c.state == StateRepeating
	reached := false
	if repeating {
		target, _ := c.tl.Phrase(c.repeatTarget)
		reached = s.Finished || s.Position >= repeatThreshold(target, c.opts.RepeatGuard)
		if !inRepeatWindow(target, s.Position) || (reached && !c.repeatArmed) {
			// Sampled before the repeat seek landed.
			c.logger.Debug("dropping stale sample during repeat",
				logging.Position(s.Position),
				logging.PhraseIndex(c.repeatTarget),
			)
			return
		}
	}
	c.position = s.Position
	if index, ok := c.tl.PhraseAt(s.Position); ok {
		c.setCurrent(index)
	}

	switch {
	case repeating && reached:
		c.finishRepeat()
	case repeating:
		c.repeatArmed = true
	case !c.tl.Empty() && (s.Finished || s.Position >= c.tl.Total):
		if c.state != StateEnded {
			c.markEnded()
		}
	case c.state == StateEnded:
		// Position moved back inside the timeline, e.g. an external seek.
		if s.Playing {
			c.state = StatePlaying
		} else {
			c.state = StatePaused
		}
	}

	if c.sampler.ShouldLog(timeline.Progress(c.position, c.tl.Total)*100, c.current) {
		c.logger.Debug("playback progress",
			logging.Position(c.position),
			logging.PhraseIndex(c.current),
			logging.String("state", c.state.String()),
		)
	}
}

func (c *Coordinator) finishRepeat() {
	ctx, cancel := context.WithTimeout(c.loopCtx, deviceTimeout)
	defer cancel()
	if err := c.device.Pause(ctx); err != nil {
		c.warn("pause at repeat end failed", "repeat_pause_failed", err)
	}
	target := c.repeatTarget
	c.endRepeat(ctx)
	c.state = StatePaused
	c.logger.Debug("repeat finished", logging.PhraseIndex(target))
}

func (c *Coordinator) markEnded() {
	ctx, cancel := context.WithTimeout(c.loopCtx, deviceTimeout)
	defer cancel()
	if err := c.device.Pause(ctx); err != nil {
		c.warn("pause at end of timeline failed", "end_pause_failed", err)
	}
	c.state = StateEnded
	c.logger.Info("playback ended", logging.Duration("total", c.tl.Total))
}

// deviceTimeout bounds device calls made in response to clock samples, which
// have no caller context.
const deviceTimeout = 5 * time.Second

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimulatedDevice is a software audio device. Its clock only advances through
// Advance or Run, so tests and the CLI control time explicitly.
type SimulatedDevice struct {
	// emitMu orders sample delivery with the state changes that produced
	// them, so a tick computed before a seek is never delivered after it.
	emitMu   sync.Mutex
	mu       sync.Mutex
	length   time.Duration
	position time.Duration
	playing  bool
	rate     float64
	subs     map[int]func(Sample)
	nextID   int
}

// NewSimulatedDevice creates a paused device holding media of the given length.
func NewSimulatedDevice(length time.Duration) *SimulatedDevice {
	if length < 0 {
		length = 0
	}
	return &SimulatedDevice{length: length, rate: NormalRate, subs: make(map[int]func(Sample))}
}

func (d *SimulatedDevice) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.playing = true
	d.mu.Unlock()
	return nil
}

func (d *SimulatedDevice) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.playing = false
	d.mu.Unlock()
	return nil
}

// SeekTo moves the clock, clamped to the media bounds, and publishes the new
// position.
func (d *SimulatedDevice) SeekTo(ctx context.Context, position time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.mu.Lock()
	d.position = min(max(position, 0), d.length)
	sample := Sample{Position: d.position, Playing: d.playing}
	subs := d.subscribersLocked()
	d.mu.Unlock()
	notify(subs, sample)
	return nil
}

func (d *SimulatedDevice) SetPlaybackRate(ctx context.Context, rate float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rate <= 0 {
		return fmt.Errorf("playback rate %v must be positive", rate)
	}
	d.mu.Lock()
	d.rate = rate
	d.mu.Unlock()
	return nil
}

// Rate returns the current playback rate.
func (d *SimulatedDevice) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate
}

// Playing reports whether the device is playing.
func (d *SimulatedDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *SimulatedDevice) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *SimulatedDevice) Subscribe(fn func(Sample)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (d *SimulatedDevice) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Advance moves the clock by elapsed wall time scaled by the playback rate
// while playing, then publishes a sample. Reaching the end of the media
// pauses the device and marks the sample finished.
func (d *SimulatedDevice) Advance(elapsed time.Duration) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.mu.Lock()
	finished := false
	if d.playing && elapsed > 0 {
		d.position += time.Duration(float64(elapsed) * d.rate)
		if d.position >= d.length {
			d.position = d.length
			d.playing = false
			finished = true
		}
	}
	sample := Sample{Position: d.position, Playing: d.playing, Finished: finished}
	subs := d.subscribersLocked()
	d.mu.Unlock()
	notify(subs, sample)
}

// Run advances the clock every interval until ctx is done. speed scales
// elapsed time; values <= 0 mean real time.
func (d *SimulatedDevice) Run(ctx context.Context, interval time.Duration, speed float64) error {
	if interval <= 0 {
		return fmt.Errorf("sample interval %v must be positive", interval)
	}
	if speed <= 0 {
		speed = 1
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Advance(time.Duration(float64(interval) * speed))
		}
	}
}

func (d *SimulatedDevice) subscribersLocked() []func(Sample) {
	subs := make([]func(Sample), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Sample), sample Sample) {
	for _, fn := range subs {
		fn(sample)
	}
}

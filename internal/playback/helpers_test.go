package playback_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"phrasesync/internal/playback"
	"phrasesync/internal/script"
	"phrasesync/internal/timeline"
)

const ms = time.Millisecond

// conversation builds the 4-phrase timeline: starts 0/1250/2600/4050,
// ends 1000/2350/3800/4950, total 5200.
func conversation() timeline.Timeline {
	return timeline.Build(script.Script{
		Pause: 250 * ms,
		Speakers: []script.Speaker{
			{Name: "John", Phrases: []script.Phrase{{Text: "j0", Spoken: 1000 * ms}, {Text: "j1", Spoken: 1200 * ms}}},
			{Name: "Jane", Phrases: []script.Phrase{{Text: "a0", Spoken: 1100 * ms}, {Text: "a1", Spoken: 900 * ms}}},
		},
	})
}

type stubDevice struct {
	mu       sync.Mutex
	calls    []string
	playErr  error
	pauseErr error
	seekErr  error
	rateErr  error
}

func (d *stubDevice) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *stubDevice) Play(context.Context) error {
	d.record("play")
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playErr
}

func (d *stubDevice) Pause(context.Context) error {
	d.record("pause")
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pauseErr
}

func (d *stubDevice) SeekTo(_ context.Context, position time.Duration) error {
	d.record(fmt.Sprintf("seek:%d", position.Milliseconds()))
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seekErr
}

func (d *stubDevice) SetPlaybackRate(_ context.Context, rate float64) error {
	d.record(fmt.Sprintf("rate:%.2f", rate))
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rateErr
}

func (d *stubDevice) setPlayErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playErr = err
}

// take returns and clears the recorded calls.
func (d *stubDevice) take() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	calls := d.calls
	d.calls = nil
	return calls
}

// fixedRateDevice hides SetPlaybackRate.
type fixedRateDevice struct {
	inner *stubDevice
}

func (d fixedRateDevice) Play(ctx context.Context) error  { return d.inner.Play(ctx) }
func (d fixedRateDevice) Pause(ctx context.Context) error { return d.inner.Pause(ctx) }
func (d fixedRateDevice) SeekTo(ctx context.Context, position time.Duration) error {
	return d.inner.SeekTo(ctx, position)
}

type stubClock struct {
	mu           sync.Mutex
	fn           func(playback.Sample)
	position     time.Duration
	unsubscribed bool
}

func (c *stubClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *stubClock) Subscribe(fn func(playback.Sample)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.fn = nil
		c.unsubscribed = true
	}
}

func (c *stubClock) emit(sample playback.Sample) {
	c.mu.Lock()
	fn := c.fn
	c.position = sample.Position
	c.mu.Unlock()
	if fn != nil {
		fn(sample)
	}
}

func (c *stubClock) at(position time.Duration) {
	c.emit(playback.Sample{Position: position, Playing: true})
}

func (c *stubClock) released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribed
}

type phraseRecorder struct {
	mu      sync.Mutex
	indices []int
}

func (r *phraseRecorder) record(p timeline.Phrase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indices = append(r.indices, p.Index)
}

func (r *phraseRecorder) seen() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.indices...)
}

type harness struct {
	coord  *playback.Coordinator
	device *stubDevice
	clock  *stubClock
	phrase *phraseRecorder
}

func newHarness(t *testing.T, tl timeline.Timeline, opts playback.Options) *harness {
	t.Helper()
	h := &harness{device: &stubDevice{}, clock: &stubClock{}, phrase: &phraseRecorder{}}
	opts.OnPhrase = h.phrase.record
	h.coord = playback.New(tl, h.device, h.clock, opts)
	t.Cleanup(func() {
		_ = h.coord.Close(context.Background())
	})
	return h
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func expectCalls(t *testing.T, device *stubDevice, want ...string) {
	t.Helper()
	got := device.take()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("device calls = %v, want %v", got, want)
	}
}

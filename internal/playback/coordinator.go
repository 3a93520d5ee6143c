package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"phrasesync/internal/logging"
	"phrasesync/internal/services"
	"phrasesync/internal/timeline"
)

const (
	// NormalRate is the playback rate outside repeat mode.
	NormalRate = 1.0
	// DefaultRepeatRate is the reduced rate used while repeating a phrase.
	DefaultRepeatRate = 0.75
)

// Options configures a Coordinator.
type Options struct {
	// RepeatRate is the reduced rate used by RepeatPhrase. Zero means DefaultRepeatRate.
	RepeatRate float64
	// RepeatGuard ends a repeat this long before the phrase's spoken end.
	RepeatGuard time.Duration
	Logger      *slog.Logger
	// OnState receives a snapshot after every command and sample. It runs on
	// the event loop and must not call back into the Coordinator.
	OnState func(Snapshot)
	// OnPhrase fires when the current phrase index changes. Same rules as OnState.
	OnPhrase func(timeline.Phrase)
}

// Coordinator holds one timeline and its playback session.
type Coordinator struct {
	tl       timeline.Timeline
	device   Device
	rateCtl  RateController
	clock    Clock
	opts     Options
	logger   *slog.Logger
	sampler  *logging.ProgressSampler
	loopCtx  context.Context
	cancel   context.CancelFunc
	commands chan command
	quit     chan struct{}
	done     chan struct{}

	sampleMu    sync.Mutex
	pending     *Sample
	sampleReady chan struct{}

	snapMu sync.RWMutex
	last   Snapshot

	closeOnce   sync.Once
	unsubscribe func()

	// Owned by the event loop.
	state        State
	position     time.Duration
	current      int
	repeatTarget int
	// repeatArmed is set once a sample inside the repeated phrase shows the
	// device has moved past the seek. Until then samples at the phrase end
	// may predate the seek and cannot finish the repeat.
	repeatArmed  bool
	rate         float64
	closed       bool
}

type command struct {
	ctx   context.Context
	run   func(context.Context) error
	reply chan error
}

// New activates tl against device and clock. The session starts Paused at
// position zero. If device also implements RateController it is used for
// repeat-mode rate changes.
func New(tl timeline.Timeline, device Device, clock Clock, opts Options) *Coordinator {
	if opts.RepeatRate <= 0 {
		opts.RepeatRate = DefaultRepeatRate
	}
	if opts.RepeatGuard < 0 {
		opts.RepeatGuard = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		tl:           tl,
		device:       device,
		clock:        clock,
		opts:         opts,
		logger:       logging.NewComponentLogger(logger, "playback"),
		sampler:      logging.NewProgressSampler(10),
		loopCtx:      loopCtx,
		cancel:       cancel,
		commands:     make(chan command),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		sampleReady:  make(chan struct{}, 1),
		state:        StatePaused,
		current:      NoPhrase,
		repeatTarget: NoPhrase,
		rate:         NormalRate,
	}
	if rc, ok := device.(RateController); ok {
		c.rateCtl = rc
	}
	c.last = c.snapshot()
	if clock != nil {
		c.unsubscribe = clock.Subscribe(c.offer)
	}
	go c.loop()

	c.logger.Debug("timeline activated",
		logging.Int("phrases", tl.Len()),
		logging.Duration("total", tl.Total),
	)
	return c
}

// Timeline returns the immutable timeline this coordinator plays.
func (c *Coordinator) Timeline() timeline.Timeline {
	return c.tl
}

func (c *Coordinator) offer(s Sample) {
	c.sampleMu.Lock()
	c.pending = &s
	c.sampleMu.Unlock()
	select {
	case c.sampleReady <- struct{}{}:
	default:
	}
}

func (c *Coordinator) takePending() (Sample, bool) {
	c.sampleMu.Lock()
	defer c.sampleMu.Unlock()
	if c.pending == nil {
		return Sample{}, false
	}
	s := *c.pending
	c.pending = nil
	return s, true
}

func (c *Coordinator) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return
		case <-c.sampleReady:
			c.drainSample()
		case cmd := <-c.commands:
			c.drainSample()
			if c.closed {
				cmd.reply <- services.Wrap(services.ErrDetached, "playback", "command", "session closed", nil)
				continue
			}
			err := cmd.run(cmd.ctx)
			c.publish()
			cmd.reply <- err
		}
	}
}

func (c *Coordinator) drainSample() {
	if c.closed {
		return
	}
	if s, ok := c.takePending(); ok {
		c.applySample(s)
		c.publish()
	}
}

// exec runs fn on the event loop and waits for it to finish.
func (c *Coordinator) exec(ctx context.Context, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := make(chan error, 1)
	select {
	case c.commands <- command{ctx: ctx, run: fn, reply: reply}:
	case <-c.quit:
		return services.Wrap(services.ErrDetached, "playback", "command", "session closed", nil)
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-reply
}

// Snapshot returns the current derived session state. After Close it returns
// the final state.
func (c *Coordinator) Snapshot() Snapshot {
	var snap Snapshot
	err := c.exec(context.Background(), func(context.Context) error {
		snap = c.snapshot()
		return nil
	})
	if err != nil {
		return c.lastSnapshot()
	}
	return snap
}

func (c *Coordinator) lastSnapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.last
}

// Poll reads the clock position directly and applies it as a sample. It is
// used by callers whose clock does not push updates.
func (c *Coordinator) Poll(ctx context.Context) error {
	if c.clock == nil {
		return nil
	}
	return c.exec(ctx, func(context.Context) error {
		c.applySample(Sample{Position: c.clock.Position(), Playing: c.isPlaying()})
		return nil
	})
}

// Close detaches the session: the clock subscription is released, the device
// is paused and the event loop stops. Later calls return nil; commands issued
// after Close fail with services.ErrDetached.
func (c *Coordinator) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		err = c.exec(context.WithoutCancel(ctx), func(ctx context.Context) error {
			return c.detach(ctx)
		})
		close(c.quit)
		<-c.done
		c.cancel()
	})
	return err
}

func (c *Coordinator) detach(ctx context.Context) error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.sampleMu.Lock()
	c.pending = nil
	c.sampleMu.Unlock()

	err := c.device.Pause(ctx)
	if c.rate != NormalRate {
		if rateErr := c.applyRate(ctx, NormalRate); rateErr != nil {
			c.warn("restore rate on detach failed", "detach_rate_failed", rateErr)
		}
	}
	c.state = StateIdle
	c.repeatTarget = NoPhrase
	c.closed = true
	c.logger.Debug("session detached", logging.Position(c.position))
	if err != nil {
		return deviceError("detach", err)
	}
	return nil
}

func (c *Coordinator) isPlaying() bool {
	return c.state == StatePlaying || c.state == StateRepeating
}

func (c *Coordinator) snapshot() Snapshot {
	snap := Snapshot{
		State:         c.state,
		Position:      c.position,
		Duration:      c.tl.Total,
		CurrentPhrase: c.current,
		PhraseCount:   c.tl.Len(),
		IsPlaying:     c.isPlaying(),
		HasEnded:      c.state == StateEnded,
		Rate:          c.rate,
		Progress:      timeline.Progress(c.position, c.tl.Total),
		Elapsed:       timeline.FormatTime(c.position),
		Total:         timeline.FormatTime(c.tl.Total),
		Repeat:        RepeatMode{Target: NoPhrase},
	}
	if c.state == StateRepeating {
		snap.Repeat = RepeatMode{Active: true, Target: c.repeatTarget}
	}
	return snap
}

func (c *Coordinator) publish() {
	snap := c.snapshot()
	c.snapMu.Lock()
	c.last = snap
	c.snapMu.Unlock()
	if c.opts.OnState != nil {
		c.opts.OnState(snap)
	}
}

func (c *Coordinator) setCurrent(index int) {
	if index == c.current {
		return
	}
	c.current = index
	phrase, ok := c.tl.Phrase(index)
	if !ok {
		return
	}
	c.logger.Debug("phrase changed",
		logging.PhraseIndex(index),
		logging.Speaker(phrase.Speaker),
		logging.Position(c.position),
	)
	if c.opts.OnPhrase != nil {
		c.opts.OnPhrase(phrase)
	}
}

func (c *Coordinator) applyRate(ctx context.Context, rate float64) error {
	if c.rateCtl == nil {
		return nil
	}
	if err := c.rateCtl.SetPlaybackRate(ctx, rate); err != nil {
		return err
	}
	c.rate = rate
	return nil
}

func (c *Coordinator) restoreRate(ctx context.Context) {
	if c.rate == NormalRate {
		return
	}
	if err := c.applyRate(ctx, NormalRate); err != nil {
		c.warn("restore normal rate failed", "rate_restore_failed", err)
	}
}

func (c *Coordinator) warn(msg, eventType string, err error) {
	logging.WarnWithContext(c.logger, msg, eventType,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the audio device"),
	)
}

func deviceError(operation string, err error) error {
	return services.Wrap(services.ErrDevice, "playback", operation, "", err)
}

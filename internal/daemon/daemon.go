package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"phrasesync/internal/config"
	"phrasesync/internal/library"
	"phrasesync/internal/logging"
	"phrasesync/internal/notifications"
	"phrasesync/internal/playback"
	"phrasesync/internal/script"
	"phrasesync/internal/services"
	"phrasesync/internal/timeline"
)

// Daemon hosts playback sessions behind the HTTP API and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *library.Store
	resolver *script.Resolver
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	session *Session
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LibraryPath  string
	LockFilePath string
	ScriptDir    string
	Session      *Session
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and library store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	base := logger
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:    cfg,
		logger: logger,
		store:  store,
		resolver: &script.Resolver{
			Catalog:   store,
			ScriptDir: cfg.Paths.ScriptDir,
			Default:   cfg.Playback.DefaultScript,
			Logger:    logger,
		},
		notifier: notifications.NewService(cfg),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, base)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another phrasesync daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("phrasesync daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.APIAddress()),
	)
	return nil
}

// Stop ends the active session, stops the API server and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if err := d.EndSession(context.Background()); err != nil && !errors.Is(err, services.ErrNotFound) {
		d.logger.Warn("failed to end session", logging.Error(err))
	}
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("phrasesync daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	_ = d.EndSession(context.Background())
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddress returns the address the API server listens on, or "" when the
// API is disabled or not started.
func (d *Daemon) APIAddress() string {
	return d.api.address()
}

// ActivateScript resolves identifier, builds its timeline and replaces the
// active session with a new one, paused at the beginning.
func (d *Daemon) ActivateScript(ctx context.Context, identifier string) (*Session, error) {
	resolved, err := d.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "daemon", "activate", "load script", err)
	}
	tl := timeline.Build(resolved.Script)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		if err := d.session.close(ctx); err != nil {
			d.logger.Warn("previous session did not close cleanly", logging.Error(err))
		}
		d.session = nil
	}

	id := uuid.NewString()
	sessionCtx := services.WithScript(services.WithSessionID(ctx, id), resolved.Name)
	logger := logging.WithContext(sessionCtx, d.logger)

	opts := playback.Options{
		RepeatRate:  d.cfg.Playback.RepeatRate,
		RepeatGuard: d.cfg.RepeatGuard(),
	}
	notify := func(event notifications.Event, payload notifications.Payload) {
		d.notify(logger, event, payload)
	}
	d.session = newSession(id, resolved, tl, opts, d.cfg.SampleInterval(), logger, notify)
	notify(notifications.EventSessionStarted, notifications.Payload{
		"script":  resolved.Name,
		"phrases": tl.Len(),
		"total":   timeline.FormatTime(tl.Total),
	})

	logger.Info("session started",
		logging.String("source", string(resolved.Source)),
		logging.Bool("fallback", resolved.Fallback),
		logging.Int("phrases", tl.Len()),
		logging.Duration("total", tl.Total),
	)
	return d.session, nil
}

// notify publishes in the background; delivery failures are only logged.
func (d *Daemon) notify(logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	timeout := d.cfg.NotifyTimeout()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.notifier.Publish(ctx, event, payload); err != nil {
			logging.WarnWithContext(logger, "notification failed", "notification_failed",
				logging.String("event", string(event)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "notification dropped"),
			)
		}
	}()
}

// CurrentSession returns the active session or ErrNotFound.
func (d *Daemon) CurrentSession() (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil, services.Wrap(services.ErrNotFound, "daemon", "session", "no active session", nil)
	}
	return d.session, nil
}

// EndSession detaches and discards the active session.
func (d *Daemon) EndSession(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return services.Wrap(services.ErrNotFound, "daemon", "session", "no active session", nil)
	}
	err := d.session.close(ctx)
	d.session = nil
	return err
}

// Scripts lists catalogued scripts.
func (d *Daemon) Scripts(ctx context.Context) ([]*library.Entry, error) {
	return d.store.List(ctx)
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LibraryPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		ScriptDir:    d.cfg.Paths.ScriptDir,
		Session:      session,
	}
}

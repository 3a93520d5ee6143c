package daemon

import (
	"context"
	"log/slog"
	"time"

	"phrasesync/internal/logging"
	"phrasesync/internal/notifications"
	"phrasesync/internal/playback"
	"phrasesync/internal/script"
	"phrasesync/internal/timeline"
)

// Session is one activated script playing on the simulated device.
type Session struct {
	ID          string
	Script      script.Resolved
	Timeline    timeline.Timeline
	StartedAt   time.Time
	Coordinator *playback.Coordinator
	Device      *playback.SimulatedDevice

	logger *slog.Logger
	notify notifyFunc
	cancel context.CancelFunc
	done   chan struct{}
}

type notifyFunc func(notifications.Event, notifications.Payload)

func newSession(id string, resolved script.Resolved, tl timeline.Timeline, opts playback.Options, interval time.Duration, logger *slog.Logger, notify notifyFunc) *Session {
	if notify == nil {
		notify = func(notifications.Event, notifications.Payload) {}
	}
	device := playback.NewSimulatedDevice(tl.Total)
	opts.Logger = logger
	opts.OnPhrase = func(p timeline.Phrase) {
		logger.Debug("phrase active",
			logging.PhraseIndex(p.Index),
			logging.Speaker(p.Speaker),
			logging.String("start", timeline.FormatTime(p.Start)),
		)
	}
	// OnState runs on the coordinator loop, so ended needs no locking.
	ended := false
	opts.OnState = func(snap playback.Snapshot) {
		if snap.HasEnded && !ended {
			notify(notifications.EventPlaybackFinished, notifications.Payload{
				"script": resolved.Name,
				"total":  snap.Total,
			})
		}
		ended = snap.HasEnded
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:          id,
		Script:      resolved,
		Timeline:    tl,
		StartedAt:   time.Now().UTC(),
		Coordinator: playback.New(tl, device, device, opts),
		Device:      device,
		logger:      logger,
		notify:      notify,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_ = device.Run(runCtx, interval, 1)
	}()
	return s
}

// close stops the clock and detaches the coordinator from the device.
func (s *Session) close(ctx context.Context) error {
	s.cancel()
	<-s.done
	err := s.Coordinator.Close(ctx)
	position := s.Device.Position()
	s.logger.Info("session ended", logging.Any("playback", s.Coordinator.Snapshot()))
	s.notify(notifications.EventSessionEnded, notifications.Payload{
		"script":   s.Script.Name,
		"position": timeline.FormatTime(position),
	})
	return err
}

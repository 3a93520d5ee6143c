package playback

import (
	"context"
	"time"
)

// Device is the transport surface of an audio player.
type Device interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SeekTo(ctx context.Context, position time.Duration) error
}

// RateController is implemented by devices that support variable playback
// speed. Devices without it are treated as always playing at normal rate.
type RateController interface {
	SetPlaybackRate(ctx context.Context, rate float64) error
}

// Sample is one position update from the audio clock.
type Sample struct {
	Position time.Duration
	Playing  bool
	// Finished is set on the sample where the media ran out.
	Finished bool
}

// Clock publishes the device position.
type Clock interface {
	Position() time.Duration
	// Subscribe registers fn for position updates and returns a function that
	// releases the subscription. fn must not block.
	Subscribe(fn func(Sample)) (unsubscribe func())
}

package services_test

import (
	"errors"
	"strings"
	"testing"

	"phrasesync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDevice, "playback", "seek", "device rejected position", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDevice) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"playback", "seek", "device rejected position"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "script", "parse", "negative pause", nil), "validation"},
		{services.Wrap(services.ErrNotFound, "library", "get", "missing", nil), "not_found"},
		{services.Wrap(services.ErrDevice, "playback", "play", "", errors.New("io")), "device"},
		{services.Wrap(services.ErrDetached, "playback", "toggle", "", nil), "detached"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrDevice) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

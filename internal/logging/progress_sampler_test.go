package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 || s.lastPhrase != -1 {
				t.Errorf("unexpected initial state: %+v", s)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, 1) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSampler_PhraseChange(t *testing.T) {
	s := NewProgressSampler(25)

	if !s.ShouldLog(1, 0) {
		t.Error("first sample should log")
	}
	if s.ShouldLog(2, 0) {
		t.Error("same phrase and bucket should not log again")
	}
	if !s.ShouldLog(3, 1) {
		t.Error("phrase change should log")
	}
	if s.ShouldLog(4, -1) {
		t.Error("sample inside a pause gap should not log")
	}
}

func TestProgressSampler_BucketsAndSeekBackward(t *testing.T) {
	s := NewProgressSampler(25)
	s.ShouldLog(10, 0)
	if !s.ShouldLog(30, 0) {
		t.Error("crossing a bucket should log")
	}
	if !s.ShouldLog(5, 0) {
		t.Error("moving back into an earlier bucket should log")
	}
	if !s.ShouldLog(150, 0) {
		t.Error("overshoot should clamp into the final bucket and log")
	}
	s.Reset()
	if !s.ShouldLog(150, 0) {
		t.Error("reset should allow the same sample to log again")
	}
}

package logging

// ProgressSampler suppresses repetitive playback progress logs while
// preserving signal when the current phrase or the percentage bucket changes.
type ProgressSampler struct {
	bucketSize float64
	lastPhrase int
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the phrase changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastPhrase: -1, lastBucket: -1}
}

// ShouldLog reports whether a progress sample should be logged. Percent can be
// negative to indicate "unknown"; a negative phrase means no phrase is current.
func (s *ProgressSampler) ShouldLog(percent float64, phrase int) bool {
	if s == nil {
		return true
	}
	emit := false
	if phrase >= 0 && phrase != s.lastPhrase {
		s.lastPhrase = phrase
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket != s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state (e.g. after a seek or restart).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastPhrase = -1
	s.lastBucket = -1
}

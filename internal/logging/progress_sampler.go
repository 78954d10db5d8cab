package logging

// ProgressSampler suppresses repetitive progress logs during a play session.
// It emits when the round changes or the percent crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastRound  int
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 25).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress at percent within round should be logged.
func (s *ProgressSampler) ShouldLog(round int, percent float64) bool {
	if s == nil {
		return true
	}
	emit := false
	if round != s.lastRound {
		s.lastRound = round
		s.lastBucket = -1
		emit = true
	}
	bucket := int(min(percent, 100) / s.bucketSize)
	if percent >= 0 && bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastRound = 0
	s.lastBucket = -1
}

package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 25},
		{"default bucket size for negative", -1, 25},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 50) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(25)

	steps := []struct {
		round   int
		percent float64
		want    bool
	}{
		{1, 0, true},
		{1, 10, false},
		{1, 25, true},
		{1, 49, false},
		{1, 100, true},
		{1, 100, false},
		{2, 0, true},
		{2, 12, false},
		{2, 80, true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.round, step.percent); got != step.want {
			t.Fatalf("step %d (round %d, %v%%): got %v want %v", i, step.round, step.percent, got, step.want)
		}
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(25)
	s.ShouldLog(3, 50)
	s.Reset()
	if !s.ShouldLog(3, 50) {
		t.Error("expected log after reset")
	}
}

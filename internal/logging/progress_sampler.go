package logging

import "strings"

// ProgressSampler thins out per-line progress so a conversion that emits
// thousands of tool lines logs a handful of INFO entries. It emits when the
// step changes or the completed fraction crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastStep   string
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether the event for count out of max on step should be
// logged. A non-positive max means the total is unknown and only step changes
// are reported.
func (s *ProgressSampler) ShouldLog(count, max int64, step string) bool {
	if s == nil {
		return true
	}
	step = strings.TrimSpace(step)
	emit := false
	if step != "" && step != s.lastStep {
		s.lastStep = step
		s.lastBucket = -1
		emit = true
	}
	if max <= 0 || count < 0 {
		return emit
	}
	percent := Percent(count, max)
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state before a new run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStep = ""
	s.lastBucket = -1
}

// Percent converts a count against a maximum into a 0-100 value. Counts
// past max clamp to 100.
func Percent(count, max int64) float64 {
	if max <= 0 || count <= 0 {
		return 0
	}
	if count >= max {
		return 100
	}
	return float64(count) * 100 / float64(max)
}

package domain

import (
	"maps"
	"time"
)

// Diagnostic tag names carried on a DurationResult and surfaced as
// response headers.
const (
	TagSource          = "x-src"
	TagCacheHit        = "x-cache-hit"
	TagCacheComputed   = "x-cache-computed"
	TagCacheValue      = "x-cache-value"
	TagCacheComputedAt = "x-cache-computed-at"
	TagBackendError    = "x-backend-error"
)

// Travel duration between two coordinates as reported by a backend.
// Duration is nil when the backend answered without a usable duration.
// Tags accumulate provenance as the value passes through layers.
type DurationResult struct {
	Duration *time.Duration
	Tags     map[string]string
}

func NewDurationResult(d time.Duration, source string) *DurationResult {
	return &DurationResult{
		Duration: &d,
		Tags:     map[string]string{TagSource: source},
	}
}

// WithTags merges tags into the result, overwriting existing keys.
func (r *DurationResult) WithTags(tags map[string]string) *DurationResult {
	if r.Tags == nil {
		r.Tags = make(map[string]string, len(tags))
	}
	maps.Copy(r.Tags, tags)
	return r
}

// DurationOrNil is nil-safe access to Duration.
func (r *DurationResult) DurationOrNil() *time.Duration {
	if r == nil {
		return nil
	}
	return r.Duration
}

// Clone returns a deep copy so callers can add tags without touching
// the receiver.
func (r *DurationResult) Clone() *DurationResult {
	if r == nil {
		return nil
	}
	out := &DurationResult{Tags: maps.Clone(r.Tags)}
	if r.Duration != nil {
		d := *r.Duration
		out.Duration = &d
	}
	return out
}

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"traveltime-tiles/internal/domain"

	"github.com/sosodev/duration"
)

var ErrCorruptEntry = errors.New("corrupt cache entry")

// Entry is the value persisted per duration key. IsPresent=false records
// that the provider found no route and must not be asked again until the
// entry expires.
type Entry struct {
	IsPresent bool
	Value     *domain.DurationResult
}

type wireEntry struct {
	IsPresent *bool      `json:"is_present"`
	Value     *wireValue `json:"value"`
}

type wireValue struct {
	Duration *string           `json:"duration"`
	XHeaders map[string]string `json:"x_headers"`
}

func presentEntry(v *domain.DurationResult) Entry { return Entry{IsPresent: true, Value: v} }

func absentEntry() Entry { return Entry{} }

// EncodeEntry renders e in the shared wire format:
//
//	{"is_present": bool, "value": {"duration": "PT25M" | null, "x_headers": {...}} | null}
func EncodeEntry(e Entry) ([]byte, error) {
	present := e.IsPresent
	w := wireEntry{IsPresent: &present}

	if e.IsPresent {
		if e.Value == nil {
			return nil, errors.New("encode cache entry: present entry without value")
		}

		v := &wireValue{XHeaders: e.Value.Tags}
		if v.XHeaders == nil {
			v.XHeaders = map[string]string{}
		}
		if e.Value.Duration != nil {
			if *e.Value.Duration < 0 {
				return nil, fmt.Errorf("encode cache entry: negative duration %s", *e.Value.Duration)
			}
			s := duration.Format(*e.Value.Duration)
			v.Duration = &s
		}
		w.Value = v
	}

	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return b, nil
}

// DecodeEntry parses a stored entry. Anything that does not describe a
// complete entry is reported as ErrCorruptEntry.
func DecodeEntry(raw []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(raw, &w); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}

	if w.IsPresent == nil {
		return Entry{}, fmt.Errorf("%w: missing is_present", ErrCorruptEntry)
	}
	if !*w.IsPresent {
		return absentEntry(), nil
	}
	if w.Value == nil {
		return Entry{}, fmt.Errorf("%w: is_present without value", ErrCorruptEntry)
	}

	result := &domain.DurationResult{Tags: w.Value.XHeaders}
	if result.Tags == nil {
		result.Tags = map[string]string{}
	}

	if w.Value.Duration != nil {
		parsed, err := duration.Parse(*w.Value.Duration)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: duration %q: %v", ErrCorruptEntry, *w.Value.Duration, err)
		}
		d := parsed.ToTimeDuration()
		if d < 0 {
			return Entry{}, fmt.Errorf("%w: negative duration %q", ErrCorruptEntry, *w.Value.Duration)
		}
		result.Duration = &d
	}

	return presentEntry(result), nil
}

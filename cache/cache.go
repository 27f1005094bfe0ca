// Package cache persists timestamped values so that they survive restarts.
//
// A Store never decides whether a value is fresh: it returns whatever it has with
// the time it was written, and callers use IsFresh with their own TTL. This lets
// them fall back to an expired value when refreshing it fails.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Entry is a stored value and the time it was written.
type Entry struct {
	Timestamp time.Time
	Data      json.RawMessage
}

// jentry is the persisted form of an Entry, the timestamp is in epoch milliseconds.
type jentry struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(jentry{Timestamp: e.Timestamp.UnixMilli(), Data: e.Data})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var j jentry
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	e.Timestamp = time.UnixMilli(j.Timestamp)
	e.Data = j.Data
	return nil
}

// Store is a key value store of timestamped JSON values.
type Store interface {
	// Read returns the entry for key. A missing or unreadable entry is reported as absent.
	Read(key string) (Entry, bool)
	// Write replaces the entry for key, stamped with the current time.
	Write(key string, data []byte) error
	// Clear removes the entry for key, clearing a missing key is not an error.
	Clear(key string) error
}

// IsFresh reports whether e was written less than ttl before now.
func IsFresh(e Entry, ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) < ttl
}

// Put marshals v and writes it under key.
func Put[T any](s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode cache entry %q: %w", key, err)
	}
	return s.Write(key, data)
}

// Get reads key and unmarshals its data into a T.
//
// An entry that cannot be decoded is reported as absent, and logged to log
// (zap.L() if nil).
func Get[T any](s Store, key string, log *zap.Logger) (v T, e Entry, ok bool) {
	e, ok = s.Read(key)
	if !ok {
		return v, e, false
	}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		logger(log).Warn("ignoring undecodable cache entry", zap.String("key", key), zap.Error(err))
		return v, Entry{}, false
	}
	return v, e, true
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.L()
	}
	return l
}

// stamp returns now, or the time if now is nil, truncated to the persisted precision.
func stamp(now func() time.Time) time.Time {
	t := time.Now()
	if now != nil {
		t = now()
	}
	return time.UnixMilli(t.UnixMilli())
}

// Package testlog captures log entries so tests can assert on them.
package testlog

import (
	"sync"

	"courier-dispatch/internal/logx"
)

// Entry is one recorded log call with the fields bound through With first.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Field returns the last value logged under key.
func (e Entry) Field(key string) (any, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

// Recorder is safe for concurrent use; push fan-out logs from many goroutines.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger writing into r.
func (r *Recorder) Logger() logx.Logger { return &scoped{rec: r} }

// Entries returns a snapshot.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the first entry logged with msg.
func (r *Recorder) Find(msg string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Msg == msg {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Recorder) Has(msg string) bool {
	_, ok := r.Find(msg)
	return ok
}

// Count returns the number of entries at level ("debug", "info", "warn", "error").
func (r *Recorder) Count(level string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

type scoped struct {
	rec    *Recorder
	fields []logx.Field
}

func (s *scoped) record(level, msg string, extra []logx.Field) {
	all := make([]logx.Field, 0, len(s.fields)+len(extra))
	all = append(append(all, s.fields...), extra...)

	s.rec.mu.Lock()
	s.rec.entries = append(s.rec.entries, Entry{Level: level, Msg: msg, Fields: all})
	s.rec.mu.Unlock()
}

func (s *scoped) Debug(msg string, f ...logx.Field) { s.record("debug", msg, f) }
func (s *scoped) Info(msg string, f ...logx.Field)  { s.record("info", msg, f) }
func (s *scoped) Warn(msg string, f ...logx.Field)  { s.record("warn", msg, f) }
func (s *scoped) Error(msg string, f ...logx.Field) { s.record("error", msg, f) }

func (s *scoped) With(f ...logx.Field) logx.Logger {
	return &scoped{rec: s.rec, fields: append(append([]logx.Field(nil), s.fields...), f...)}
}

func (s *scoped) Sync() error { return nil }

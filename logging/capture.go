package logging

import (
	"context"
	"maps"
	"sync"
)

// Entry is a single record kept by a CaptureLogger.
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  Fields
}

// CaptureLogger keeps every entry in memory. Loggers derived with WithFields
// share the same entry buffer, so a test can hand one to a component and
// inspect what all of its sub-loggers wrote.
type CaptureLogger struct {
	sink   *captureSink
	fields Fields
	level  Level
}

type captureSink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCaptureLogger returns an empty CaptureLogger at DebugLevel.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{
		sink:   &captureSink{},
		fields: make(Fields),
		level:  DebugLevel,
	}
}

// Entries returns a snapshot of all captured entries.
func (c *CaptureLogger) Entries() []Entry {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]Entry, len(c.sink.entries))
	copy(out, c.sink.entries)
	return out
}

// Count returns how many entries were captured at level.
func (c *CaptureLogger) Count(level Level) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (c *CaptureLogger) record(level Level, err error, msg string, fields ...Fields) {
	if level < c.level {
		return
	}
	all := make(Fields)
	maps.Copy(all, c.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}
	c.sink.mu.Lock()
	c.sink.entries = append(c.sink.entries, Entry{Level: level, Message: msg, Err: err, Fields: all})
	c.sink.mu.Unlock()
}

func (c *CaptureLogger) Debug(msg string, fields ...Fields) { c.record(DebugLevel, nil, msg, fields...) }
func (c *CaptureLogger) Info(msg string, fields ...Fields)  { c.record(InfoLevel, nil, msg, fields...) }
func (c *CaptureLogger) Warn(msg string, fields ...Fields)  { c.record(WarnLevel, nil, msg, fields...) }

func (c *CaptureLogger) Error(err error, msg string, fields ...Fields) {
	c.record(ErrorLevel, err, msg, fields...)
}

// Fatal records at FatalLevel and never exits.
func (c *CaptureLogger) Fatal(err error, msg string, fields ...Fields) {
	c.record(FatalLevel, err, msg, fields...)
}

func (c *CaptureLogger) WithFields(fields Fields) Logger {
	merged := make(Fields)
	maps.Copy(merged, c.fields)
	maps.Copy(merged, fields)
	return &CaptureLogger{sink: c.sink, fields: merged, level: c.level}
}

func (c *CaptureLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return c.WithFields(fields)
	}
	return c
}

func (c *CaptureLogger) SetLevel(level Level) {
	c.level = level
}

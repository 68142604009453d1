// Package logadapter adapts an apex/log entry into dummynet.Logger.
// The core package never imports apex/log directly, only the Logger
// interface shape it already matches structurally; this package exists
// so both cmd/ front ends share one adapter instead of duplicating it.
package logadapter

import "github.com/apex/log"

// Entry wraps an *log.Entry to satisfy dummynet.Logger by name, since
// dummynet must not import apex/log to pick up *log.Entry directly.
type Entry struct {
	entry *log.Entry
}

// New wraps entry.
func New(entry *log.Entry) *Entry {
	return &Entry{entry: entry}
}

func (e *Entry) Debugf(format string, v ...any) { e.entry.Debugf(format, v...) }
func (e *Entry) Infof(format string, v ...any)  { e.entry.Infof(format, v...) }
func (e *Entry) Warnf(format string, v ...any)  { e.entry.Warnf(format, v...) }

// Package notify carries the short-lived messages shown after user actions.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

type Notifier interface {
	Notify(level Level, message string)
}

// Feed buffers the most recent notifications for a front end to drain.
type Feed struct {
	mu      sync.Mutex
	limit   int
	pending []Notification
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 32
	}
	return &Feed{limit: limit}
}

func (f *Feed) Notify(level Level, message string) {
	n := Notification{Level: level, Message: message, At: time.Now()}

	f.mu.Lock()
	f.pending = append(f.pending, n)
	if len(f.pending) > f.limit {
		f.pending = f.pending[len(f.pending)-f.limit:]
	}
	f.mu.Unlock()
}

// Drain returns and forgets everything buffered so far.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier writes notifications to logger, errors at warn level.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return logNotifier{logger: logger}
}

func (l logNotifier) Notify(level Level, message string) {
	fields := []zap.Field{zap.String("level", string(level))}
	if level == LevelError {
		l.logger.Warn(message, fields...)
		return
	}
	l.logger.Info(message, fields...)
}

type multi []Notifier

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(level Level, message string) {
	for _, n := range m {
		n.Notify(level, message)
	}
}

type discard struct{}

func (discard) Notify(Level, string) {}

// Discard drops everything.
var Discard Notifier = discard{}

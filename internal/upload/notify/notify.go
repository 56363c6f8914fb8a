// Package notify is the human-facing feedback channel of the upload pipeline.
// The coordinator emits one Event per notable outcome; what happens to it is
// up to the sink the caller supplies.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one human-readable notification.
type Event struct {
	Severity Severity
	Title    string
	Message  string
}

// Notifier receives events. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, e Event)

func (f Func) Notify(ctx context.Context, e Event) { f(ctx, e) }

// Discard drops every event.
var Discard Notifier = Func(func(context.Context, Event) {})

// LogNotifier forwards events to a structured logger at a matching level.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, e Event) {
	switch e.Severity {
	case SeverityError:
		n.logger.Error(ctx, e.Title, "message", e.Message)
	case SeverityWarning:
		n.logger.Warn(ctx, e.Title, "message", e.Message)
	default:
		n.logger.Info(ctx, e.Title, "message", e.Message)
	}
}

// Writer prints events as single lines, e.g. for a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(ctx context.Context, e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "[%s] %s: %s\n", e.Severity, e.Title, e.Message)
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(ctx context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Multi fans an event out to several sinks in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}

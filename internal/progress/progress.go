// Package progress is the fire-and-forget status channel for pipeline
// stages. Nothing in the pipeline consumes a return value from it.
package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// Update is one status event. Ticker is empty for stage-wide events.
type Update struct {
	Stage   string
	Ticker  string
	Message string
}

// Listener receives every update, e.g. to drive a UI spinner.
type Listener func(Update)

// Reporter fans updates out to the log and any registered listeners.
type Reporter struct {
	mu        sync.Mutex
	log       zerolog.Logger
	listeners []Listener
}

func NewReporter(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

func (r *Reporter) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// UpdateStatus publishes one event. Safe on a nil reporter so callers can
// skip wiring telemetry entirely.
func (r *Reporter) UpdateStatus(stage, ticker, message string) {
	if r == nil {
		return
	}
	ev := r.log.Debug().Str("stage", stage).Str("message", message)
	if ticker != "" {
		ev = ev.Str("ticker", ticker)
	}
	ev.Msg("progress")

	r.mu.Lock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()
	for _, l := range listeners {
		l(Update{Stage: stage, Ticker: ticker, Message: message})
	}
}

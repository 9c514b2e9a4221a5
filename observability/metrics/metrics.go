package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fundforge/core/events"
)

// Recorder is an events.Emitter decorator that counts every emitted event by
// type before forwarding it downstream. Wiring it between the registry and
// the real emitter gives per-operation counters without touching engine code.
type Recorder struct {
	events *prometheus.CounterVec
	next   events.Emitter
}

// NewRecorder registers the event counter with reg and forwards events to
// next. A nil next discards events after counting.
func NewRecorder(reg prometheus.Registerer, next events.Emitter) *Recorder {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundforge",
		Name:      "events_total",
		Help:      "Number of escrow system events emitted, by event type.",
	}, []string{"type"})
	if reg != nil {
		reg.MustRegister(counter)
	}
	return &Recorder{events: counter, next: next}
}

// Emit implements events.Emitter.
func (r *Recorder) Emit(evt events.Event) {
	if r == nil || evt == nil {
		return
	}
	r.events.WithLabelValues(evt.EventType()).Inc()
	if r.next != nil {
		r.next.Emit(evt)
	}
}

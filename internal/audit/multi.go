package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/metrics"
)

// MultiSink fans an event out to every sink. A failing sink does not stop the
// others and is counted under its own name.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, e); err != nil {
			name := sinkName(s)
			metrics.AuditSinkFailures.WithLabelValues(name).Inc()
			errs = append(errs, fmt.Errorf("%s sink: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

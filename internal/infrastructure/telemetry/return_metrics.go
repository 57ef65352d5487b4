package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ReturnMetrics counts merchandise return workflow events.
type ReturnMetrics struct {
	logger *zap.Logger

	submittedTotal        *Counter
	submittedLinesTotal   *Counter
	linesRejectedTotal    *Counter
	confirmedTotal        *Counter
	reverseTransfersTotal *Counter
	cancelledTotal        *Counter
	completedTotal        *Counter
}

// ReturnMetricsConfig holds configuration for return metrics.
type ReturnMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewReturnMetrics creates the return workflow counters on the given meter.
func NewReturnMetrics(cfg ReturnMetricsConfig) (*ReturnMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rm := &ReturnMetrics{logger: logger}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&rm.submittedTotal, "returns_submitted_total", "Total number of return requests accepted as drafts", "{returns}"},
		{&rm.submittedLinesTotal, "returns_lines_submitted_total", "Total number of return lines accepted", "{lines}"},
		{&rm.linesRejectedTotal, "returns_lines_rejected_total", "Total number of requested return lines rejected", "{lines}"},
		{&rm.confirmedTotal, "returns_confirmed_total", "Total number of return orders confirmed", "{returns}"},
		{&rm.reverseTransfersTotal, "returns_reverse_transfers_total", "Total number of reverse transfers created", "{transfers}"},
		{&rm.cancelledTotal, "returns_cancelled_total", "Total number of return orders cancelled", "{returns}"},
		{&rm.completedTotal, "returns_completed_total", "Total number of return orders completed", "{returns}"},
	}

	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	return rm, nil
}

// RecordReturnSubmitted records a draft return order created from a request.
func (rm *ReturnMetrics) RecordReturnSubmitted(ctx context.Context, tenantID uuid.UUID, lines int) {
	attr := AttrTenantID.String(tenantID.String())
	rm.submittedTotal.Inc(ctx, attr)
	rm.submittedLinesTotal.Add(ctx, int64(lines), attr)
}

// RecordLineRejected records a requested line that did not make it into the draft.
func (rm *ReturnMetrics) RecordLineRejected(ctx context.Context, tenantID uuid.UUID, reason string) {
	rm.linesRejectedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrRejectReason.String(reason),
	)
}

// RecordReturnConfirmed records a confirmation and the reverse transfers it produced.
func (rm *ReturnMetrics) RecordReturnConfirmed(ctx context.Context, tenantID uuid.UUID, transfers int) {
	attr := AttrTenantID.String(tenantID.String())
	rm.confirmedTotal.Inc(ctx, attr)
	rm.reverseTransfersTotal.Add(ctx, int64(transfers), attr)
}

// RecordReturnCancelled records a cancelled return order.
func (rm *ReturnMetrics) RecordReturnCancelled(ctx context.Context, tenantID uuid.UUID) {
	rm.cancelledTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordReturnCompleted records a return order reaching done.
func (rm *ReturnMetrics) RecordReturnCompleted(ctx context.Context, tenantID uuid.UUID) {
	rm.completedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewReturnMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

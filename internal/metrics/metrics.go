// Package metrics records display runtime telemetry through the
// OpenTelemetry metric API. Without a configured meter provider every
// instrument is a no-op, so the render loop can record unconditionally.
package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/shunte88/lymons/internal/metrics"

// Display aggregates the instruments for one display's render loop.
type Display struct {
	driverType attribute.KeyValue

	flushDuration metric.Float64Histogram
	frames        metric.Int64Counter
	skipped       metric.Int64Counter
	faults        metric.Int64Counter

	targetFPS atomic.Int64
}

// NewDisplay creates instruments tagged with the driver-type of the
// panel they observe.
func NewDisplay(driverType string) (*Display, error) {
	meter := otel.Meter(meterName)
	d := &Display{driverType: attribute.String("driver_type", driverType)}

	var err error
	d.flushDuration, err = meter.Float64Histogram("lymons.display.flush.duration",
		metric.WithDescription("Measured hardware flush latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	d.frames, err = meter.Int64Counter("lymons.display.frames",
		metric.WithDescription("Frames written to the display"))
	if err != nil {
		return nil, err
	}
	d.skipped, err = meter.Int64Counter("lymons.display.frames.skipped",
		metric.WithDescription("Frames skipped after a driver error"))
	if err != nil {
		return nil, err
	}
	d.faults, err = meter.Int64Counter("lymons.display.plugin.faults",
		metric.WithDescription("Contained plugin faults"))
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge("lymons.display.pacer.target_fps",
		metric.WithDescription("Current adaptive pacer target rate"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(d.targetFPS.Load(), metric.WithAttributes(d.driverType))
			return nil
		}))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// RecordFlush records one successful flush and its latency.
func (d *Display) RecordFlush(ctx context.Context, latency time.Duration) {
	ms := float64(latency.Microseconds()) / 1000.0
	d.flushDuration.Record(ctx, ms, metric.WithAttributes(d.driverType))
	d.frames.Add(ctx, 1, metric.WithAttributes(d.driverType))
}

// RecordSkip records a frame dropped after a driver error.
func (d *Display) RecordSkip(ctx context.Context) {
	d.skipped.Add(ctx, 1, metric.WithAttributes(d.driverType))
}

// RecordFault records a contained plugin fault.
func (d *Display) RecordFault(ctx context.Context) {
	d.faults.Add(ctx, 1, metric.WithAttributes(d.driverType))
}

// SetTargetFPS publishes the pacer's current target rate.
func (d *Display) SetTargetFPS(fps uint32) {
	d.targetFPS.Store(int64(fps))
}

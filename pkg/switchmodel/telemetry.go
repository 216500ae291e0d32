package switchmodel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/newtron-network/vlanadmin/pkg/switchmodel")
var meter = otel.Meter("github.com/newtron-network/vlanadmin/pkg/switchmodel")

// switchNameKey labels every commit record with the configured switch name.
const switchNameKey = "switch"

var (
	// commitDuration measures a successful commit from planning to the
	// last device write. The finish dwell is not included.
	commitDuration metric.Float64Histogram
	// commitFailures counts commits aborted by a device write.
	commitFailures metric.Int64Counter
	// commitWrites counts individual writer calls issued by commits.
	commitWrites metric.Int64Counter
)

func init() {
	var err error
	commitDuration, err = meter.Float64Histogram(
		"commit.duration",
		metric.WithDescription("The duration of a successful commit of pending switch changes."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("switchmodel: failed to init 'commit.duration' instrument")
	}

	commitFailures, err = meter.Int64Counter(
		"commit.failures",
		metric.WithDescription("The number of commits that failed."),
	)
	if err != nil {
		panic("switchmodel: failed to init 'commit.failures' instrument")
	}

	commitWrites, err = meter.Int64Counter(
		"commit.writes",
		metric.WithDescription("The number of device writes issued while committing."),
	)
	if err != nil {
		panic("switchmodel: failed to init 'commit.writes' instrument")
	}
}

// recordCommitDuration records how long a successful commit spent planning
// and writing. Tests replace it to observe the measurement.
var recordCommitDuration = func(ctx context.Context, switchName string, d time.Duration) {
	commitDuration.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String(switchNameKey, switchName)))
}

func countCommitFailure(ctx context.Context, switchName string) {
	commitFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(switchNameKey, switchName)))
}

func countWrite(ctx context.Context, switchName string) {
	commitWrites.Add(ctx, 1, metric.WithAttributes(attribute.String(switchNameKey, switchName)))
}

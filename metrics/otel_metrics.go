// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiosemu/fiosemu/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const logInterval = 5 * time.Minute

var (
	unrecognizedAttr atomic.Value

	latencyBuckets = []float64{50, 100, 200, 400, 800, 1200, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000, 1000000, 2000000, 5000000, 10000000}

	existenceCacheCountCacheHitTrueAttrSet  = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("cache_hit", true)))
	existenceCacheCountCacheHitFalseAttrSet = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("cache_hit", false)))
)

type histogramRecord struct {
	ctx        context.Context
	instrument metric.Int64Histogram
	value      int64
	attributes metric.RecordOption
}

type errorKey struct {
	category ErrorCategory
	op       FiosOp
}

// opCounter pairs a counter with the attribute set it is observed under.
type opCounter struct {
	value atomic.Int64
	attrs metric.MeasurementOption
}

type otelMetrics struct {
	ch chan histogramRecord
	wg *sync.WaitGroup

	// The maps are filled at construction and only read afterwards.
	opsCount        map[FiosOp]*opCounter
	opsErrorCount   map[errorKey]*opCounter
	opsLatencyAttrs map[FiosOp]metric.RecordOption

	existenceCacheCountCacheHitTrueAtomic  *atomic.Int64
	existenceCacheCountCacheHitFalseAtomic *atomic.Int64
	pendingResultsAtomic                   *atomic.Int64
	readBytesCountAtomic                   *atomic.Int64

	opsLatency metric.Int64Histogram
}

func (o *otelMetrics) ExistenceCacheCount(inc int64, cacheHit bool) {
	if inc < 0 {
		logger.Errorf("Counter metric fios/existence_cache_count received a negative increment: %d", inc)
		return
	}
	if cacheHit {
		o.existenceCacheCountCacheHitTrueAtomic.Add(inc)
	} else {
		o.existenceCacheCountCacheHitFalseAtomic.Add(inc)
	}
}

func (o *otelMetrics) OpsCount(inc int64, fiosOp FiosOp) {
	if inc < 0 {
		logger.Errorf("Counter metric fios/ops_count received a negative increment: %d", inc)
		return
	}
	c, ok := o.opsCount[fiosOp]
	if !ok {
		updateUnrecognizedAttribute(string(fiosOp))
		return
	}
	c.value.Add(inc)
}

func (o *otelMetrics) OpsErrorCount(inc int64, errorCategory ErrorCategory, fiosOp FiosOp) {
	if inc < 0 {
		logger.Errorf("Counter metric fios/ops_error_count received a negative increment: %d", inc)
		return
	}
	c, ok := o.opsErrorCount[errorKey{category: errorCategory, op: fiosOp}]
	if !ok {
		updateUnrecognizedAttribute(string(errorCategory) + "/" + string(fiosOp))
		return
	}
	c.value.Add(inc)
}

func (o *otelMetrics) OpsLatency(ctx context.Context, latency time.Duration, fiosOp FiosOp) {
	attrs, ok := o.opsLatencyAttrs[fiosOp]
	if !ok {
		updateUnrecognizedAttribute(string(fiosOp))
		return
	}
	select {
	case o.ch <- histogramRecord{ctx: ctx, instrument: o.opsLatency, value: latency.Microseconds(), attributes: attrs}:
	default: // Unblock writes to channel if it's full.
	}
}

func (o *otelMetrics) PendingResults(inc int64) {
	o.pendingResultsAtomic.Add(inc)
}

func (o *otelMetrics) ReadBytesCount(inc int64) {
	if inc < 0 {
		logger.Errorf("Counter metric fios/read_bytes_count received a negative increment: %d", inc)
		return
	}
	o.readBytesCountAtomic.Add(inc)
}

// NewOTelMetrics registers the request instruments on the global meter
// provider. workers goroutines drain histogram records from a channel of
// bufferSize entries.
func NewOTelMetrics(ctx context.Context, workers int, bufferSize int) (*otelMetrics, error) {
	ch := make(chan histogramRecord, bufferSize)
	var wg sync.WaitGroup
	startSampledLogging(ctx)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range ch {
				if record.attributes != nil {
					record.instrument.Record(record.ctx, record.value, record.attributes)
				} else {
					record.instrument.Record(record.ctx, record.value)
				}
			}
		}()
	}
	meter := otel.Meter("fiosemu")

	opsCount := make(map[FiosOp]*opCounter, len(FiosOps))
	opsErrorCount := make(map[errorKey]*opCounter, len(FiosOps)*len(ErrorCategories))
	opsLatencyAttrs := make(map[FiosOp]metric.RecordOption, len(FiosOps))
	for _, op := range FiosOps {
		set := metric.WithAttributeSet(attribute.NewSet(attribute.String("fios_op", string(op))))
		opsCount[op] = &opCounter{attrs: set}
		opsLatencyAttrs[op] = set
		for _, category := range ErrorCategories {
			opsErrorCount[errorKey{category: category, op: op}] = &opCounter{
				attrs: metric.WithAttributeSet(attribute.NewSet(
					attribute.String("fios_error_category", string(category)),
					attribute.String("fios_op", string(op)))),
			}
		}
	}

	var existenceCacheCountCacheHitTrueAtomic,
		existenceCacheCountCacheHitFalseAtomic atomic.Int64

	var pendingResultsAtomic atomic.Int64

	var readBytesCountAtomic atomic.Int64

	_, err0 := meter.Int64ObservableCounter("fios/existence_cache_count",
		metric.WithDescription("The cumulative number of existence cache lookups along with cache hit - true/false."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &existenceCacheCountCacheHitTrueAtomic, existenceCacheCountCacheHitTrueAttrSet)
			conditionallyObserve(obsrv, &existenceCacheCountCacheHitFalseAtomic, existenceCacheCountCacheHitFalseAttrSet)
			return nil
		}))

	_, err1 := meter.Int64ObservableCounter("fios/ops_count",
		metric.WithDescription("The cumulative number of requests processed by the library."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			for _, c := range opsCount {
				conditionallyObserve(obsrv, &c.value, c.attrs)
			}
			return nil
		}))

	_, err2 := meter.Int64ObservableCounter("fios/ops_error_count",
		metric.WithDescription("The cumulative number of requests that recorded a failure result."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			for _, c := range opsErrorCount {
				conditionallyObserve(obsrv, &c.value, c.attrs)
			}
			return nil
		}))

	opsLatency, err3 := meter.Int64Histogram("fios/ops_latency",
		metric.WithDescription("The cumulative distribution of request latencies."),
		metric.WithUnit("us"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))

	_, err4 := meter.Int64ObservableUpDownCounter("fios/pending_results",
		metric.WithDescription("The number of recorded results not yet waited on or deleted."),
		metric.WithUnit(""),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			observeUpDownCounter(obsrv, &pendingResultsAtomic)
			return nil
		}))

	_, err5 := meter.Int64ObservableCounter("fios/read_bytes_count",
		metric.WithDescription("The cumulative number of bytes transferred by read requests."),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(_ context.Context, obsrv metric.Int64Observer) error {
			conditionallyObserve(obsrv, &readBytesCountAtomic)
			return nil
		}))

	errs := []error{err0, err1, err2, err3, err4, err5}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &otelMetrics{
		ch:                                     ch,
		wg:                                     &wg,
		opsCount:                               opsCount,
		opsErrorCount:                          opsErrorCount,
		opsLatencyAttrs:                        opsLatencyAttrs,
		existenceCacheCountCacheHitTrueAtomic:  &existenceCacheCountCacheHitTrueAtomic,
		existenceCacheCountCacheHitFalseAtomic: &existenceCacheCountCacheHitFalseAtomic,
		pendingResultsAtomic:                   &pendingResultsAtomic,
		readBytesCountAtomic:                   &readBytesCountAtomic,
		opsLatency:                             opsLatency,
	}, nil
}

func (o *otelMetrics) Close() {
	close(o.ch)
	o.wg.Wait()
}

func conditionallyObserve(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	if val := counter.Load(); val > 0 {
		obsrv.Observe(val, obsrvOptions...)
	}
}

func observeUpDownCounter(obsrv metric.Int64Observer, counter *atomic.Int64, obsrvOptions ...metric.ObserveOption) {
	obsrv.Observe(counter.Load(), obsrvOptions...)
}

func updateUnrecognizedAttribute(newValue string) {
	unrecognizedAttr.CompareAndSwap("", newValue)
}

// startSampledLogging starts a goroutine that logs unrecognized attributes periodically.
func startSampledLogging(ctx context.Context) {
	unrecognizedAttr.Store("")

	go func() {
		ticker := time.NewTicker(logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logUnrecognizedAttribute()
			}
		}
	}()
}

// logUnrecognizedAttribute retrieves and logs any unrecognized attributes.
func logUnrecognizedAttribute() {
	if currentAttr := unrecognizedAttr.Swap("").(string); currentAttr != "" {
		logger.Tracef("Attribute %s is not declared", currentAttr)
	}
}

// Copyright 2025 The llm-d Authors.
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
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"k8s.io/klog/v2"
)

var (
	// RPCRequests counts RPCs by method.
	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kvstore", Subsystem: "rpc", Name: "requests_total",
		Help: "Total number of RPCs received",
	}, []string{"method"})
	// RPCFailures counts failed RPCs by method.
	RPCFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kvstore", Subsystem: "rpc", Name: "failures_total",
		Help: "Total number of RPCs that completed with success=false",
	}, []string{"method"})

	// StorageLatency logs wall time spent inside the engine per RPC.
	StorageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kvstore", Subsystem: "rpc", Name: "storage_latency_seconds",
		Help:    "Latency of the storage portion of each RPC in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"method"})
	// TotalLatency logs reactor-entry-to-completion time per RPC.
	TotalLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kvstore", Subsystem: "rpc", Name: "total_latency_seconds",
		Help:    "End-to-end RPC latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"method"})

	// LookupBlocksRequested counts blocks probed by Lookup calls.
	LookupBlocksRequested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kvstore", Subsystem: "engine", Name: "lookup_blocks_requested_total",
		Help: "Number of blocks probed by Lookup",
	})
	// LookupBlocksMatched counts blocks that continued a chain on Lookup.
	LookupBlocksMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kvstore", Subsystem: "engine", Name: "lookup_blocks_matched_total",
		Help: "Number of blocks returned by Lookup",
	})
	// SiblingEvictions counts sibling versions evicted by the FIFO cap.
	SiblingEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kvstore", Subsystem: "engine", Name: "sibling_evictions_total",
		Help: "Number of sibling versions evicted from canonical blobs",
	})
)

// enabled gates RPC sample recording at runtime. Registration is separate:
// collectors exist either way, recording is what gets toggled.
var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled toggles RPC sample recording at runtime.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// ObserveRPC records one completed RPC.
func ObserveRPC(method string, storageLatency, totalLatency time.Duration, success bool) {
	if !enabled.Load() {
		return
	}

	RPCRequests.WithLabelValues(method).Inc()
	if !success {
		RPCFailures.WithLabelValues(method).Inc()
	}
	StorageLatency.WithLabelValues(method).Observe(storageLatency.Seconds())
	TotalLatency.WithLabelValues(method).Observe(totalLatency.Seconds())
}

// Collectors returns a slice of all collectors owned by the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RPCRequests, RPCFailures,
		StorageLatency, TotalLatency,
		LookupBlocksRequested, LookupBlocksMatched, SiblingEvictions,
	}
}

// Registry is the service's metrics registry, exposed over HTTP when the
// metrics endpoint is configured.
var Registry = prometheus.NewRegistry()

var registerMetricsOnce = sync.Once{}

// Register registers all collectors with the package registry.
func Register() {
	registerMetricsOnce.Do(func() {
		Registry.MustRegister(Collectors()...)
	})
}

// StartMetricsLogging spawns a goroutine that logs current metric values
// every interval until the context is cancelled.
func StartMetricsLogging(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logMetrics(ctx)
			}
		}
	}()
}

func logMetrics(ctx context.Context) {
	var m dto.Metric

	err := LookupBlocksRequested.Write(&m)
	if err != nil {
		return
	}
	probed := m.GetCounter().GetValue()

	err = LookupBlocksMatched.Write(&m)
	if err != nil {
		return
	}
	matched := m.GetCounter().GetValue()

	var evictionsMetric dto.Metric
	err = SiblingEvictions.Write(&evictionsMetric)
	if err != nil {
		return
	}
	evictions := evictionsMetric.GetCounter().GetValue()

	hitRate := 0.0
	if probed > 0 {
		hitRate = matched / probed
	}

	klog.FromContext(ctx).WithName("metrics").Info("metrics beat",
		"blocks_probed", probed,
		"blocks_matched", matched,
		"hit_rate", hitRate,
		"sibling_evictions", evictions,
	)
}

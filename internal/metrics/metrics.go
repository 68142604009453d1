// Package metrics exposes a dummynet Scheduler's Stats as Prometheus
// metrics, the ambient observability surface SPEC_FULL.md §9 adds
// around the core (the core itself only exposes counters; rendering,
// human-readable or structured, stays an external collaborator per
// spec.md §1).
//
// Grounded on runZeroInc-sockstats/pkg/exporter/exporter.go's
// Describe/Collect Collector pattern (a lazily-sampled prometheus.Collector
// rather than metrics pushed eagerly on every counter update).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netimpair/dummynet"
)

const namespace = "dummynet"

// statsSource is the subset of *dummynet.Scheduler this package needs;
// defined as an interface so tests can supply a fake.
type statsSource interface {
	Stats() *dummynet.Stats
}

// queueLenSource optionally supplies live queue occupancy; Schedulers
// provide it, but it's kept separate so a bare *dummynet.Stats can
// still be collected from without a queue length.
type queueLenSource interface {
	QueueLen() int
}

// Collector implements prometheus.Collector over a Scheduler's live
// Stats, sampling counters at scrape time rather than pushing on every
// update (spec.md §5's "consistent enough for display" requirement is
// satisfied by Stats' atomic counters; Collect just reads them).
type Collector struct {
	runID  string
	source statsSource

	received   *prometheus.Desc
	sent       *prometheus.Desc
	shaped     *prometheus.Desc
	dropped    *prometheus.Desc
	queueLen   *prometheus.Desc
}

// NewCollector creates a Collector for the given Stats source, tagging
// every metric with the constant run-id label described in
// SPEC_FULL.md §3.
func NewCollector(runID string, source statsSource) *Collector {
	constLabels := prometheus.Labels{"run_id": runID}
	return &Collector{
		runID:  runID,
		source: source,
		received: prometheus.NewDesc(
			namespace+"_received_packets_total", "Packets received from the tunnel device.",
			nil, constLabels),
		sent: prometheus.NewDesc(
			namespace+"_sent_packets_total", "Packets reinjected into the tunnel device.",
			nil, constLabels),
		shaped: prometheus.NewDesc(
			namespace+"_shaped_packets_total", "Packets delayed behind the shaper's virtual transmission clock.",
			nil, constLabels),
		dropped: prometheus.NewDesc(
			namespace+"_dropped_packets_total", "Packets dropped by loss emulation or queue overflow.",
			nil, constLabels),
		queueLen: prometheus.NewDesc(
			namespace+"_queue_length", "Current delay queue occupancy.",
			nil, constLabels),
	}
}

var _ prometheus.Collector = (*Collector)(nil)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.received
	ch <- c.sent
	ch <- c.shaped
	ch <- c.dropped
	ch <- c.queueLen
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.received, prometheus.CounterValue, float64(stats.ReceivedPackets.Load()))
	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, float64(stats.SentPackets.Load()))
	ch <- prometheus.MustNewConstMetric(c.shaped, prometheus.CounterValue, float64(stats.Shaped.Load()))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(stats.Dropped.Load()))

	if qls, ok := c.source.(queueLenSource); ok {
		ch <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue, float64(qls.QueueLen()))
	}
}

// Serve registers collector against a fresh registry and starts an
// HTTP server on addr exposing /metrics. It returns once the listener
// is closed or ListenAndServe fails. Wired from cmd/tunemd's -m flag.
func Serve(addr string, collector *Collector) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}

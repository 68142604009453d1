package metrics

import (
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netimpair/dummynet"
)

// fakeSource implements statsSource and queueLenSource over a bare
// *dummynet.Stats, so Collector can be tested without a live Scheduler.
type fakeSource struct {
	stats    *dummynet.Stats
	queueLen int
}

func (f *fakeSource) Stats() *dummynet.Stats { return f.stats }
func (f *fakeSource) QueueLen() int          { return f.queueLen }

func TestCollectorDescribeEmitsAllDescriptors(t *testing.T) {
	source := &fakeSource{stats: dummynet.NewStats(time.Now())}
	c := NewCollector("run1", source)

	ch := make(chan *prometheus.Desc, 10)
	c.Describe(ch)
	close(ch)

	var count int
	for range ch {
		count++
	}
	if count != 5 {
		t.Fatalf("expected 5 descriptors, got %d", count)
	}
}

func TestCollectorCollectReportsCurrentCounters(t *testing.T) {
	stats := dummynet.NewStats(time.Now())
	stats.SentPackets.Add(7)
	stats.Dropped.Add(2)
	source := &fakeSource{stats: stats, queueLen: 3}

	c := NewCollector("run1", source)
	ch := make(chan prometheus.Metric, 10)
	c.Collect(ch)
	close(ch)

	var metrics []prometheus.Metric
	for m := range ch {
		metrics = append(metrics, m)
	}
	if len(metrics) != 5 {
		t.Fatalf("expected 5 metrics with a queueLenSource present, got %d", len(metrics))
	}

	var sawSent, sawQueue bool
	for _, m := range metrics {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatal(err)
		}
		desc := m.Desc().String()
		switch {
		case strings.Contains(desc, "sent_packets_total"):
			sawSent = true
			if pb.Counter.GetValue() != 7 {
				t.Fatalf("expected sent_packets_total=7, got %v", pb.Counter.GetValue())
			}
		case strings.Contains(desc, "queue_length"):
			sawQueue = true
			if pb.Gauge.GetValue() != 3 {
				t.Fatalf("expected queue_length=3, got %v", pb.Gauge.GetValue())
			}
		}
	}
	if !sawSent || !sawQueue {
		t.Fatalf("expected to observe both sent and queue metrics, sawSent=%v sawQueue=%v", sawSent, sawQueue)
	}
}

func TestCollectorCollectWithoutQueueLenSource(t *testing.T) {
	source := bareStatsSource{stats: dummynet.NewStats(time.Now())}
	c := NewCollector("run1", source)

	ch := make(chan prometheus.Metric, 10)
	c.Collect(ch)
	close(ch)

	var count int
	for range ch {
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 metrics without a queueLenSource, got %d", count)
	}
}

// bareStatsSource implements only statsSource, exercising Collect's
// type-assertion fallback when the source has no queue length to offer.
type bareStatsSource struct {
	stats *dummynet.Stats
}

func (b bareStatsSource) Stats() *dummynet.Stats { return b.stats }

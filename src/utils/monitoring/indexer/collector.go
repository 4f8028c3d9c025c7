package monitor_indexer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	ReplayReadFailures   *prometheus.Desc
	DecoderFailures      *prometheus.Desc
	UnknownChainEvents   *prometheus.Desc
	ApplyFailures        *prometheus.Desc
	ApplyPermanentErrors *prometheus.Desc
	HaltedChains         *prometheus.Desc
	PublishFailures      *prometheus.Desc

	// State
	EventsRead                    *prometheus.Desc
	EventsDecoded                 *prometheus.Desc
	EventsApplied                 *prometheus.Desc
	EventsDuplicated              *prometheus.Desc
	EventsSkipped                 *prometheus.Desc
	LastAppliedBlockHeight        *prometheus.Desc
	AverageEventsAppliedPerMinute *prometheus.Desc
	MessagesPublished             *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		ReplayReadFailures:   prometheus.NewDesc("replay_read_failures", "", nil, nil),
		DecoderFailures:      prometheus.NewDesc("decoder_failures", "", nil, nil),
		UnknownChainEvents:   prometheus.NewDesc("unknown_chain_events", "", nil, nil),
		ApplyFailures:        prometheus.NewDesc("apply_failures", "", nil, nil),
		ApplyPermanentErrors: prometheus.NewDesc("apply_permanent_errors", "", nil, nil),
		HaltedChains:         prometheus.NewDesc("halted_chains", "", nil, nil),
		PublishFailures:      prometheus.NewDesc("redis_publish_failures", "", nil, nil),

		// State
		EventsRead:                    prometheus.NewDesc("events_read", "", nil, nil),
		EventsDecoded:                 prometheus.NewDesc("events_decoded", "", nil, nil),
		EventsApplied:                 prometheus.NewDesc("events_applied", "", nil, nil),
		EventsDuplicated:              prometheus.NewDesc("events_duplicated", "", nil, nil),
		EventsSkipped:                 prometheus.NewDesc("events_skipped", "", nil, nil),
		LastAppliedBlockHeight:        prometheus.NewDesc("last_applied_block_height", "", nil, nil),
		AverageEventsAppliedPerMinute: prometheus.NewDesc("average_events_applied_per_minute", "", nil, nil),
		MessagesPublished:             prometheus.NewDesc("redis_messages_published", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.ReplayReadFailures
	ch <- self.DecoderFailures
	ch <- self.UnknownChainEvents
	ch <- self.ApplyFailures
	ch <- self.ApplyPermanentErrors
	ch <- self.HaltedChains
	ch <- self.PublishFailures

	// State
	ch <- self.EventsRead
	ch <- self.EventsDecoded
	ch <- self.EventsApplied
	ch <- self.EventsDuplicated
	ch <- self.EventsSkipped
	ch <- self.LastAppliedBlockHeight
	ch <- self.AverageEventsAppliedPerMinute
	ch <- self.MessagesPublished
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report

	// Run
	upForSeconds := time.Now().Unix() - r.Run.State.StartTimestamp.Load()
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(upForSeconds))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ReplayReadFailures, prometheus.CounterValue, float64(r.Indexer.Errors.ReplayReadFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DecoderFailures, prometheus.CounterValue, float64(r.Indexer.Errors.DecoderFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.UnknownChainEvents, prometheus.CounterValue, float64(r.Indexer.Errors.UnknownChainEvents.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApplyFailures, prometheus.CounterValue, float64(r.Indexer.Errors.ApplyFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApplyPermanentErrors, prometheus.CounterValue, float64(r.Indexer.Errors.ApplyPermanentErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.HaltedChains, prometheus.GaugeValue, float64(r.Indexer.Errors.HaltedChains.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishFailures, prometheus.CounterValue, float64(r.RedisPublisher.Errors.PersistentFailure.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.EventsRead, prometheus.CounterValue, float64(r.Indexer.State.EventsRead.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsDecoded, prometheus.CounterValue, float64(r.Indexer.State.EventsDecoded.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsApplied, prometheus.CounterValue, float64(r.Indexer.State.EventsApplied.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsDuplicated, prometheus.CounterValue, float64(r.Indexer.State.EventsDuplicated.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsSkipped, prometheus.CounterValue, float64(r.Indexer.State.EventsSkipped.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastAppliedBlockHeight, prometheus.GaugeValue, float64(r.Indexer.State.LastAppliedBlockHeight.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageEventsAppliedPerMinute, prometheus.GaugeValue, r.Indexer.State.AverageEventsAppliedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(r.RedisPublisher.State.MessagesPublished.Load()))
}

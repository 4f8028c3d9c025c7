package monitor_indexer

import (
	"math"
	"net/http"
	"time"

	"github.com/poidh/indexer/src/utils/monitoring/report"
	"github.com/poidh/indexer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int
	collector   *Collector

	// Event processing speed
	EventsApplied *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Indexer:        &report.IndexerReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorEvents)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.EventsApplied = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure event processing speed
func (self *Monitor) monitorEvents() (err error) {
	loaded := self.Report.Indexer.State.EventsApplied.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.EventsApplied.PushBack(loaded)
	if self.EventsApplied.Len() > self.historySize {
		self.EventsApplied.PopFront()
	}
	value := float64(self.EventsApplied.Back()-self.EventsApplied.Front()) / float64(self.EventsApplied.Len())

	self.Report.Indexer.State.AverageEventsAppliedPerMinute.Store(round(value))
	return
}

// Indexer is healthy as long as no chain stopped on an error
func (self *Monitor) IsOK() bool {
	return self.Report.Indexer.Errors.HaltedChains.Load() == 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}

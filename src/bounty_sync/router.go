package bounty_sync

import (
	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/monitoring"
	"github.com/poidh/indexer/src/utils/task"
)

// Router partitions events by chain. Order within a chain is kept.
type Router struct {
	*task.Task

	monitor monitoring.Monitor
	input   chan *Event

	Outputs map[uint64]chan *Event
}

func NewRouter(config *config.Config) (self *Router) {
	self = new(Router)

	self.Outputs = make(map[uint64]chan *Event, len(config.Indexer.Chains))
	for _, chain := range config.Indexer.Chains {
		self.Outputs[chain.Id] = make(chan *Event, config.Indexer.ChainQueueSize)
	}

	self.Task = task.NewTask(config, "router").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			for _, output := range self.Outputs {
				close(output)
			}
		})

	return
}

func (self *Router) WithMonitor(monitor monitoring.Monitor) *Router {
	self.monitor = monitor
	return self
}

func (self *Router) WithInputChannel(v chan *Event) *Router {
	self.input = v
	return self
}

func (self *Router) run() (err error) {
	for event := range self.input {
		output, ok := self.Outputs[event.ChainId]
		if !ok {
			self.Log.WithField("chain_id", event.ChainId).Warn("Event of a chain that isn't indexed, skipping")
			self.monitor.GetReport().Indexer.Errors.UnknownChainEvents.Inc()
			continue
		}

		select {
		case <-self.Ctx.Done():
			return nil
		case output <- event:
		}
	}
	return nil
}

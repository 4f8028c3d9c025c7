package bounty_sync

import (
	"io"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/monitoring"
	"github.com/poidh/indexer/src/utils/price"
	"github.com/poidh/indexer/src/utils/publisher"
	"github.com/poidh/indexer/src/utils/task"

	"gorm.io/gorm"
)

// Pipeline replays the input into the database:
//
//	replay -> router -> chain syncer (one per chain) -> redis publisher (optional)
//
// It finishes on its own once the whole input is applied.
type Pipeline struct {
	*task.Task

	Dispatcher *Dispatcher
	Syncers    map[uint64]*ChainSyncer
}

func NewPipeline(config *config.Config, db *gorm.DB, monitor monitoring.Monitor, input io.Reader) (self *Pipeline, err error) {
	self = new(Pipeline)

	prices := price.NewAccessor(config).
		WithDB(db)

	self.Dispatcher = NewDispatcher(config).
		WithStore(NewDbStore(db)).
		WithPrices(prices)

	err = self.Dispatcher.Validate()
	if err != nil {
		return
	}

	decoder, err := NewDecoder(config)
	if err != nil {
		return
	}

	replay := NewReplay(config).
		WithMonitor(monitor).
		WithDecoder(decoder).
		WithInput(input)

	router := NewRouter(config).
		WithMonitor(monitor).
		WithInputChannel(replay.Output)

	// Activity log entries of all chains
	var activities chan *model.Transaction
	if config.Redis.Enabled {
		activities = make(chan *model.Transaction, config.Indexer.ChainQueueSize)
	}

	chains := task.NewTask(config, "chains").
		WithOnAfterStop(func() {
			if activities != nil {
				close(activities)
			}
		})

	self.Syncers = make(map[uint64]*ChainSyncer, len(config.Indexer.Chains))
	for _, chain := range config.Indexer.Chains {
		syncer := NewChainSyncer(config, chain.Id).
			WithMonitor(monitor).
			WithDispatcher(self.Dispatcher).
			WithInputChannel(router.Outputs[chain.Id]).
			WithOutputChannel(activities)

		self.Syncers[chain.Id] = syncer
		chains.WithSubtask(syncer.Task)
	}

	self.Task = task.NewTask(config, "pipeline").
		WithSubtask(replay.Task).
		WithSubtask(router.Task).
		WithSubtask(chains)

	if config.Redis.Enabled {
		redisPublisher := publisher.NewRedisPublisher[*model.Transaction](config, config.Redis, "activity-publisher").
			WithMonitor(monitor).
			WithInputChannel(activities)

		self.Task = self.Task.WithSubtask(redisPublisher.Task)
	}

	return
}

// Err returns errors of halted chains
func (self *Pipeline) Err() (errs map[uint64]error) {
	errs = make(map[uint64]error)
	for chainId, syncer := range self.Syncers {
		if syncer.Err() != nil {
			errs[chainId] = syncer.Err()
		}
	}
	return
}

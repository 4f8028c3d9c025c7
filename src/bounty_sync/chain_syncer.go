package bounty_sync

import (
	"context"
	"errors"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/monitoring"
	"github.com/poidh/indexer/src/utils/task"

	"github.com/cenkalti/backoff/v4"
)

// ChainSyncer applies events of one chain, strictly one after another.
// After a permanent error the chain is halted: remaining events are drained, never applied.
type ChainSyncer struct {
	*task.Task

	chainId    uint64
	monitor    monitoring.Monitor
	dispatcher *Dispatcher
	input      chan *Event

	// Activity log entries of applied events, optional
	output chan *model.Transaction

	isHalted bool
	haltErr  error
}

func NewChainSyncer(config *config.Config, chainId uint64) (self *ChainSyncer) {
	self = new(ChainSyncer)
	self.chainId = chainId

	self.Task = task.NewTask(config, "chain-syncer").
		WithSubtaskFunc(self.run)

	self.Log = self.Log.WithField("chain_id", chainId)

	return
}

func (self *ChainSyncer) WithMonitor(monitor monitoring.Monitor) *ChainSyncer {
	self.monitor = monitor
	return self
}

func (self *ChainSyncer) WithDispatcher(dispatcher *Dispatcher) *ChainSyncer {
	self.dispatcher = dispatcher
	return self
}

func (self *ChainSyncer) WithInputChannel(v chan *Event) *ChainSyncer {
	self.input = v
	return self
}

func (self *ChainSyncer) WithOutputChannel(v chan *model.Transaction) *ChainSyncer {
	self.output = v
	return self
}

// Err returns the error that halted the chain
func (self *ChainSyncer) Err() error {
	return self.haltErr
}

func (self *ChainSyncer) run() (err error) {
	for event := range self.input {
		if self.isHalted {
			self.monitor.GetReport().Indexer.State.EventsSkipped.Inc()
			continue
		}

		var result Result
		result, err = self.apply(event)
		if err != nil {
			if self.Ctx.Err() != nil {
				return nil
			}

			self.Log.WithError(err).WithField("event", event.String()).Error("Failed to apply event, halting chain")
			self.monitor.GetReport().Indexer.Errors.HaltedChains.Inc()
			self.isHalted = true
			self.haltErr = err
			continue
		}

		if result.Duplicate {
			self.monitor.GetReport().Indexer.State.EventsDuplicated.Inc()
			continue
		}

		self.monitor.GetReport().Indexer.State.EventsApplied.Inc()
		self.monitor.GetReport().Indexer.State.LastAppliedBlockHeight.Store(int64(event.BlockNumber))

		if self.output == nil {
			continue
		}

		select {
		case <-self.Ctx.Done():
			return nil
		case self.output <- result.Transaction:
		}
	}
	return nil
}

func (self *ChainSyncer) apply(event *Event) (result Result, err error) {
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.Config.Indexer.ApplyMaxElapsedTime).
		WithMaxInterval(self.Config.Indexer.ApplyMaxInterval).
		WithAcceptableDuration(self.Config.Indexer.ApplyMaxInterval * 2).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if errors.Is(err, context.Canceled) || self.Ctx.Err() != nil {
				return backoff.Permanent(err)
			}

			if IsPermanent(err) {
				self.monitor.GetReport().Indexer.Errors.ApplyPermanentErrors.Inc()
				return backoff.Permanent(err)
			}

			self.monitor.GetReport().Indexer.Errors.ApplyFailures.Inc()
			if isDurationAcceptable {
				self.Log.WithError(err).WithField("event", event.String()).Info("Could not apply event, retrying...")
			} else {
				self.Log.WithError(err).WithField("event", event.String()).Warn("Could not apply event, retrying...")
			}
			return err
		}).
		Run(func() (err error) {
			result, err = self.dispatcher.Dispatch(self.Ctx, event)
			return
		})
	return
}

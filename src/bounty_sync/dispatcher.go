package bounty_sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/logger"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/namespace"

	"github.com/sirupsen/logrus"
)

type handlerFunc func(c *Context, payload Payload) error

type handlerKey struct {
	generation namespace.Generation
	name       string
}

// Adapts a typed handler to the registry
func handle[T Payload](f func(c *Context, payload T) error) handlerFunc {
	return func(c *Context, payload Payload) error {
		typed, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: unexpected payload %T", ErrUnknownEvent, payload)
		}
		return f(c, typed)
	}
}

// Result of dispatching one event
type Result struct {
	// Event was already applied, nothing changed
	Duplicate bool

	// Activity log entry written for the event, nil for duplicates
	Transaction *model.Transaction
}

// Dispatcher applies events to the aggregates, one transaction per event
type Dispatcher struct {
	log *logrus.Entry

	store      Store
	prices     PriceSource
	resolver   *namespace.Resolver
	strategies map[namespace.Generation]*Strategy
	registry   map[handlerKey]handlerFunc

	chains    map[uint64]*config.Chain
	sentinels map[uint64]map[string]struct{}

	// Position of the last applied event per chain
	mtx         sync.Mutex
	lastApplied map[uint64]OrderingKey
}

func NewDispatcher(cfg *config.Config) (self *Dispatcher) {
	self = new(Dispatcher)
	self.log = logger.NewSublogger("dispatcher")
	self.lastApplied = make(map[uint64]OrderingKey)
	self.chains = make(map[uint64]*config.Chain)
	self.sentinels = make(map[uint64]map[string]struct{})

	for i := range cfg.Indexer.Chains {
		chain := &cfg.Indexer.Chains[i]
		self.chains[chain.Id] = chain

		sentinels := map[string]struct{}{
			eth.AddressKey(eth.ZeroAddress): {},
		}
		for _, address := range cfg.Indexer.IgnoredAddresses {
			sentinels[eth.AddressKey(address)] = struct{}{}
		}
		for _, contracts := range []config.Contracts{chain.Legacy, chain.Current} {
			for _, address := range []string{contracts.Bounty, contracts.Nft} {
				if address != "" {
					sentinels[eth.AddressKey(address)] = struct{}{}
				}
			}
		}
		self.sentinels[chain.Id] = sentinels
	}

	self.WithResolver(namespace.NewResolver(cfg.Indexer.Chains))

	self.registry = make(map[handlerKey]handlerFunc)
	for _, generation := range []namespace.Generation{namespace.Legacy, namespace.Current} {
		self.register(generation, (*BountyCreated)(nil), handle(onBountyCreated))
		self.register(generation, (*BountyCancelled)(nil), handle(onBountyCancelled))
		self.register(generation, (*BountyJoined)(nil), handle(onBountyJoined))
		self.register(generation, (*WithdrawFromOpenBounty)(nil), handle(onWithdrawFromOpenBounty))
		self.register(generation, (*ClaimCreated)(nil), handle(onClaimCreated))
		self.register(generation, (*ClaimAccepted)(nil), handle(onClaimAccepted))
		self.register(generation, (*ClaimSubmittedForVote)(nil), handle(onClaimSubmittedForVote))
		self.register(generation, (*VoteClaim)(nil), handle(onVoteClaim))
		self.register(generation, (*VotingResolved)(nil), handle(onVotingResolved))
		self.register(generation, (*ResetVotingPeriod)(nil), handle(onResetVotingPeriod))
		self.register(generation, (*Transfer)(nil), handle(onTransfer))
	}

	return
}

func (self *Dispatcher) register(generation namespace.Generation, payload Payload, f handlerFunc) {
	self.registry[handlerKey{generation: generation, name: payload.EventName()}] = f
}

func (self *Dispatcher) WithStore(v Store) *Dispatcher {
	self.store = v
	return self
}

func (self *Dispatcher) WithPrices(v PriceSource) *Dispatcher {
	self.prices = v
	return self
}

func (self *Dispatcher) WithResolver(v *namespace.Resolver) *Dispatcher {
	self.resolver = v
	self.strategies = NewStrategies(v)
	return self
}

// Validate checks every configured chain can resolve ids, before any event is handled
func (self *Dispatcher) Validate() error {
	chainIds := make([]uint64, 0, len(self.chains))
	for id := range self.chains {
		chainIds = append(chainIds, id)
	}
	return self.resolver.Validate(chainIds...)
}

// Dispatch applies the event. All writes are committed together or not at all.
func (self *Dispatcher) Dispatch(ctx context.Context, event *Event) (result Result, err error) {
	chain, ok := self.chains[event.ChainId]
	if !ok {
		err = fmt.Errorf("%w: %d", ErrUnknownChain, event.ChainId)
		return
	}

	strategy, ok := self.strategies[event.Generation]
	if !ok {
		err = fmt.Errorf("%w: generation %s", ErrUnknownEvent, event.Generation)
		return
	}

	handler, ok := self.registry[handlerKey{generation: event.Generation, name: event.Payload.EventName()}]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownEvent, event.Payload.EventName())
		return
	}

	log := self.log.WithField("chain_id", event.ChainId).
		WithField("generation", event.Generation.String()).
		WithField("event", event.Payload.EventName()).
		WithField("tx", event.TxHash).
		WithField("log_index", event.LogIndex)

	err = self.store.Transaction(ctx, func(tx Tx) (err error) {
		isDuplicate, err := tx.HasTransaction(event.ChainId, event.TxHash, event.LogIndex)
		if err != nil {
			return
		}
		if isDuplicate {
			return errDuplicate
		}

		last, ok, err := self.getLastApplied(tx, event.ChainId)
		if err != nil {
			return
		}
		if ok && !last.Less(event.Key()) {
			return fmt.Errorf("%w: %s is not after block=%d tx_index=%d log=%d", ErrOutOfOrder, event, last.BlockNumber, last.TxIndex, last.LogIndex)
		}

		c := &Context{
			Ctx:       ctx,
			Tx:        tx,
			Event:     event,
			Chain:     chain,
			Strategy:  strategy,
			Prices:    self.prices,
			Log:       log,
			sentinels: self.sentinels[event.ChainId],
		}

		err = handler(c, event.Payload)
		if err != nil {
			return
		}

		if c.activity == nil {
			return fmt.Errorf("%w: %s", ErrNoActivity, event)
		}

		inserted, err := tx.InsertTransaction(c.activity)
		if err != nil {
			return
		}
		if !inserted {
			// Concurrent delivery of the same event, the other one won
			return errDuplicate
		}

		result.Transaction = c.activity
		return nil
	})
	if errors.Is(err, errDuplicate) {
		log.Info("Event already applied, skipping")
		return Result{Duplicate: true}, nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to apply event")
		return Result{}, err
	}

	self.setLastApplied(event.ChainId, event.Key())
	log.WithField("action", result.Transaction.Action).Trace("Event applied")
	return
}

func (self *Dispatcher) getLastApplied(tx Tx, chainId uint64) (key OrderingKey, ok bool, err error) {
	self.mtx.Lock()
	key, ok = self.lastApplied[chainId]
	self.mtx.Unlock()
	if ok {
		return
	}

	// First event of the chain since start, continue from the log
	last, err := tx.LastTransaction(chainId)
	if errors.Is(err, ErrNotFound) {
		return key, false, nil
	}
	if err != nil {
		return
	}

	key = OrderingKey{
		BlockNumber: last.BlockNumber,
		TxIndex:     last.Index,
		LogIndex:    last.LogIndex,
	}
	return key, true, nil
}

func (self *Dispatcher) setLastApplied(chainId uint64, key OrderingKey) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.lastApplied[chainId] = key
}

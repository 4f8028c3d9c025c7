package price

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/logger"
	"github.com/poidh/indexer/src/utils/model"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrMissingPriceSnapshot = errors.New("missing price snapshot")

const latestKey = "latest"

// Accessor reads the newest snapshot written by the exchange rate ingestion job.
// The snapshot is cached for a short time, so lookups are local most of the time.
type Accessor struct {
	log *logrus.Entry
	db  *gorm.DB

	denominations map[uint64]string
	cache         *cache.Cache
}

func NewAccessor(config *config.Config) (self *Accessor) {
	self = new(Accessor)
	self.log = logger.NewSublogger("price")

	self.denominations = make(map[uint64]string, len(config.Indexer.Chains))
	for _, chain := range config.Indexer.Chains {
		self.denominations[chain.Id] = chain.PriceDenomination
	}

	if config.Indexer.PriceCacheTTL > 0 {
		self.cache = cache.New(config.Indexer.PriceCacheTTL, 2*config.Indexer.PriceCacheTTL)
	}

	return
}

func (self *Accessor) WithDB(db *gorm.DB) *Accessor {
	self.db = db
	return self
}

// LatestPrice returns the USD rate of the chain's native asset
func (self *Accessor) LatestPrice(ctx context.Context, chainId uint64) (price decimal.Decimal, err error) {
	denomination, ok := self.denominations[chainId]
	if !ok {
		err = fmt.Errorf("%w: chain %d has no price denomination", ErrMissingPriceSnapshot, chainId)
		return
	}

	snapshot, err := self.getSnapshot(ctx)
	if err != nil {
		return
	}

	switch denomination {
	case config.PriceDenominationEthUsd:
		price = snapshot.EthUsd
	case config.PriceDenominationDegenUsd:
		price = snapshot.DegenUsd
	default:
		err = fmt.Errorf("%w: unsupported denomination %s", ErrMissingPriceSnapshot, denomination)
		return
	}

	if !price.IsPositive() {
		err = fmt.Errorf("%w: %s rate not set in snapshot %d", ErrMissingPriceSnapshot, denomination, snapshot.Id)
		return
	}

	return
}

// Invalidate drops the cached snapshot
func (self *Accessor) Invalidate() {
	if self.cache != nil {
		self.cache.Delete(latestKey)
	}
}

func (self *Accessor) getSnapshot(ctx context.Context) (snapshot *model.Price, err error) {
	if self.cache != nil {
		if cached, found := self.cache.Get(latestKey); found {
			return cached.(*model.Price), nil
		}
	}

	snapshot = new(model.Price)
	err = self.db.WithContext(ctx).
		Order("id DESC").
		Limit(1).
		Find(snapshot).
		Error
	if err != nil {
		self.log.WithError(err).Error("Failed to get latest price")
		return nil, err
	}

	if snapshot.Id == 0 {
		return nil, fmt.Errorf("%w: price table is empty", ErrMissingPriceSnapshot)
	}

	self.log.WithField("id", snapshot.Id).Trace("Loaded price snapshot")

	if self.cache != nil {
		self.cache.SetDefault(latestKey, snapshot)
	}

	return
}

// UsdValue converts an amount of wei into USD
func UsdValue(wei *big.Int, price decimal.Decimal) decimal.Decimal {
	return eth.WeiToEther(wei).Mul(price)
}

package bounty_sync

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/model/modeltest"
	monitor_indexer "github.com/poidh/indexer/src/utils/monitoring/indexer"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type PipelineTestSuite struct {
	suite.Suite
	db      *gorm.DB
	config  *config.Config
	monitor *monitor_indexer.Monitor

	input    bytes.Buffer
	position uint64
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) SetupTest() {
	s.config = testConfig()
	s.db = modeltest.NewDB(s.T())
	s.monitor = monitor_indexer.NewMonitor()
	s.input.Reset()
	s.position = 0

	setEthPrice(s.T(), s.db, "2000")
}

func (s *PipelineTestSuite) write(chainId uint64, vLog types.Log, extra *Enrichment) {
	s.position++
	vLog.BlockNumber = 100 + s.position
	vLog.TxHash = common.BigToHash(new(big.Int).SetUint64(s.position))
	vLog.BlockHash = common.BigToHash(new(big.Int).SetUint64(100 + s.position))

	line, err := json.Marshal(ReplayRecord{
		ChainId:        chainId,
		BlockTimestamp: 1700000000 + s.position,
		Log:            vLog,
		Extra:          extra,
	})
	require.Nil(s.T(), err)

	s.input.Write(line)
	s.input.WriteByte('\n')
}

func (s *PipelineTestSuite) run() *Pipeline {
	pipeline, err := NewPipeline(s.config, s.db, s.monitor, &s.input)
	require.Nil(s.T(), err)

	require.Nil(s.T(), pipeline.Start())

	select {
	case <-pipeline.CtxRunning.Done():
	case <-time.After(30 * time.Second):
		pipeline.StopWait()
		s.T().Fatal("pipeline didn't finish")
	}
	return pipeline
}

func (s *PipelineTestSuite) bountyCreated(id int64, issuer string, amount *big.Int) types.Log {
	return packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "BountyCreated",
		[]common.Hash{uintTopic(id), addressTopic(issuer)},
		"title", "description", amount, big.NewInt(0),
	)
}

func (s *PipelineTestSuite) TestReplayAppliesInput() {
	multiplayer := true
	s.write(testChainId, s.bountyCreated(1, alice, ether("1")), &Enrichment{IsMultiplayer: &multiplayer})
	s.write(testChainId, packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "BountyJoined",
		[]common.Hash{uintTopic(1), addressTopic(bob)},
		ether("0.5"),
	), nil)

	// Not indexed contract, chain and a broken line are skipped
	s.write(testChainId, packLog(s.T(), eth.AbiNft, common.HexToAddress("0x9999"), "Transfer",
		[]common.Hash{addressTopic(alice), addressTopic(bob), uintTopic(1)},
	), nil)
	s.write(5, s.bountyCreated(2, alice, ether("1")), nil)
	s.input.WriteString("{not json\n")

	s.write(testChainId, packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "ClaimCreated",
		[]common.Hash{uintTopic(1), addressTopic(carol), uintTopic(1)},
		common.HexToAddress(alice), "proof", "photo", big.NewInt(0),
	), nil)
	s.write(testChainId, packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "ClaimAccepted",
		[]common.Hash{uintTopic(1), uintTopic(1), addressTopic(carol)},
		common.HexToAddress(alice), big.NewInt(0),
	), nil)

	pipeline := s.run()
	require.Empty(s.T(), pipeline.Err())

	var bounty model.Bounty
	require.Nil(s.T(), s.db.Where("chain_id = ? AND id = ?", testChainId, 1).First(&bounty).Error)
	require.Equal(s.T(), ether("1.5").String(), bounty.Amount)
	require.True(s.T(), bounty.IsMultiplayer)
	require.False(s.T(), bounty.InProgress)

	var entry model.LeaderboardEntry
	require.Nil(s.T(), s.db.Where("chain_id = ? AND address = ?", testChainId, carol).First(&entry).Error)
	require.InDelta(s.T(), 3000, entry.Earned.InexactFloat64(), 1e-9)

	var count int64
	require.Nil(s.T(), s.db.Model(&model.Transaction{}).Count(&count).Error)
	require.Equal(s.T(), int64(4), count)

	state := &s.monitor.GetReport().Indexer.State
	require.Equal(s.T(), uint64(7), state.EventsRead.Load())
	require.Equal(s.T(), uint64(4), state.EventsDecoded.Load())
	require.Equal(s.T(), uint64(4), state.EventsApplied.Load())
	require.Equal(s.T(), uint64(1), state.EventsSkipped.Load())
	require.Equal(s.T(), int64(106), state.LastAppliedBlockHeight.Load())

	errs := &s.monitor.GetReport().Indexer.Errors
	require.Equal(s.T(), uint64(1), errs.UnknownChainEvents.Load())
	require.Equal(s.T(), uint64(1), errs.ReplayReadFailures.Load())
	require.Zero(s.T(), errs.HaltedChains.Load())
}

func (s *PipelineTestSuite) TestReplayIsIdempotent() {
	s.write(testChainId, s.bountyCreated(1, alice, ether("1")), nil)
	s.write(testChainId, packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "BountyJoined",
		[]common.Hash{uintTopic(1), addressTopic(bob)},
		ether("0.5"),
	), nil)
	replayed := s.input.String()

	s.run()

	s.input.Reset()
	s.input.WriteString(replayed)
	s.run()

	var bounty model.Bounty
	require.Nil(s.T(), s.db.Where("chain_id = ? AND id = ?", testChainId, 1).First(&bounty).Error)
	require.Equal(s.T(), ether("1.5").String(), bounty.Amount)

	require.Equal(s.T(), uint64(2), s.monitor.GetReport().Indexer.State.EventsApplied.Load())
	require.Equal(s.T(), uint64(2), s.monitor.GetReport().Indexer.State.EventsDuplicated.Load())
}

func (s *PipelineTestSuite) TestPermanentErrorHaltsChain() {
	// Vote before any round was started
	s.write(testChainId, packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "VoteClaim",
		[]common.Hash{addressTopic(bob), uintTopic(1), uintTopic(1)},
		true,
	), nil)
	s.write(testChainId, s.bountyCreated(1, alice, ether("1")), nil)

	pipeline := s.run()

	errs := pipeline.Err()
	require.Len(s.T(), errs, 1)
	require.ErrorIs(s.T(), errs[testChainId], ErrMissingVotingRound)

	var count int64
	require.Nil(s.T(), s.db.Model(&model.Bounty{}).Count(&count).Error)
	require.Zero(s.T(), count)

	report := s.monitor.GetReport().Indexer
	require.Equal(s.T(), uint64(1), report.Errors.HaltedChains.Load())
	require.Equal(s.T(), uint64(1), report.Errors.ApplyPermanentErrors.Load())
	require.Equal(s.T(), uint64(1), report.State.EventsSkipped.Load())
	require.Zero(s.T(), report.State.EventsApplied.Load())
}

func (s *PipelineTestSuite) TestMissingOffsetFailsBeforeStart() {
	s.config.Indexer.Chains[0].Offset = nil

	_, err := NewPipeline(s.config, s.db, s.monitor, &s.input)
	require.ErrorIs(s.T(), err, ErrUnknownIdentifierOffset)
}

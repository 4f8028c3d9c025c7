package bounty_sync

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/model/modeltest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	store *DbStore
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = modeltest.NewDB(s.T())
	s.store = NewDbStore(s.db)
}

func (s *StoreTestSuite) tx(fn func(tx Tx) error) {
	require.Nil(s.T(), s.store.Transaction(s.ctx, fn))
}

func (s *StoreTestSuite) TestLookupsReportNotFound() {
	s.tx(func(tx Tx) (err error) {
		_, err = tx.GetBounty(1, 1)
		require.ErrorIs(s.T(), err, ErrNotFound)

		_, err = tx.GetClaim(1, 1)
		require.ErrorIs(s.T(), err, ErrNotFound)

		_, err = tx.LatestVotingRound(1, 1)
		require.ErrorIs(s.T(), err, ErrNotFound)

		_, err = tx.LastTransaction(1)
		require.ErrorIs(s.T(), err, ErrNotFound)
		return nil
	})
}

func (s *StoreTestSuite) TestRollback() {
	failure := errors.New("failure")

	err := s.store.Transaction(s.ctx, func(tx Tx) (err error) {
		err = tx.EnsureUser(alice)
		require.Nil(s.T(), err)
		return failure
	})
	require.ErrorIs(s.T(), err, failure)

	var count int64
	require.Nil(s.T(), s.db.Model(&model.User{}).Count(&count).Error)
	require.Zero(s.T(), count)
}

func (s *StoreTestSuite) TestLeaderboardIncrementsAccumulate() {
	s.tx(func(tx Tx) (err error) {
		require.Nil(s.T(), tx.IncrementLeaderboard(1, alice, decimal.NewFromInt(100), decimal.Zero))
		require.Nil(s.T(), tx.IncrementLeaderboard(1, alice, decimal.NewFromInt(50), decimal.NewFromInt(7)))
		require.Nil(s.T(), tx.IncrementLeaderboard(2, alice, decimal.NewFromInt(1), decimal.Zero))

		// Count overwrite leaves totals intact
		require.Nil(s.T(), tx.SetLeaderboardNfts(1, alice, 3))
		require.Nil(s.T(), tx.SetLeaderboardNfts(1, alice, 2))
		return nil
	})

	var entry model.LeaderboardEntry
	require.Nil(s.T(), s.db.Where("chain_id = ? AND address = ?", 1, alice).First(&entry).Error)
	require.Equal(s.T(), float64(150), entry.Earned.InexactFloat64())
	require.Equal(s.T(), float64(7), entry.Paid.InexactFloat64())
	require.Equal(s.T(), int64(2), entry.Nfts)

	// Fresh struct, its primary key would narrow the query
	var other model.LeaderboardEntry
	require.Nil(s.T(), s.db.Where("chain_id = ? AND address = ?", 2, alice).First(&other).Error)
	require.Equal(s.T(), float64(1), other.Earned.InexactFloat64())
	require.Zero(s.T(), other.Nfts)
}

func (s *StoreTestSuite) TestVotesIncrementOneColumn() {
	s.tx(func(tx Tx) (err error) {
		require.Nil(s.T(), tx.InsertVotingRound(&model.VotingRound{ChainId: 1, BountyId: 1, Round: 1, ClaimId: 4}))
		require.Nil(s.T(), tx.InsertVotingRound(&model.VotingRound{ChainId: 1, BountyId: 1, Round: 2, ClaimId: 5}))

		require.Nil(s.T(), tx.IncrementVote(1, 1, 2, true))
		require.Nil(s.T(), tx.IncrementVote(1, 1, 2, true))
		require.Nil(s.T(), tx.IncrementVote(1, 1, 2, false))

		round, err := tx.LatestVotingRound(1, 1)
		require.Nil(s.T(), err)
		require.Equal(s.T(), uint64(2), round.Round)
		require.Equal(s.T(), uint64(5), round.ClaimId)
		require.Equal(s.T(), uint64(2), round.Yes)
		require.Equal(s.T(), uint64(1), round.No)
		return nil
	})

	var first model.VotingRound
	require.Nil(s.T(), s.db.Where("chain_id = ? AND bounty_id = ? AND round = ?", 1, 1, 1).First(&first).Error)
	require.Zero(s.T(), first.Yes)
	require.Zero(s.T(), first.No)
}

func (s *StoreTestSuite) TestParticipationsAddUp() {
	s.tx(func(tx Tx) (err error) {
		require.Nil(s.T(), tx.AddParticipation(1, 1, bob, big.NewInt(10)))
		require.Nil(s.T(), tx.AddParticipation(1, 1, bob, big.NewInt(5)))
		require.Nil(s.T(), tx.AddParticipation(1, 1, carol, big.NewInt(1)))

		participations, err := tx.GetParticipations(1, 1)
		require.Nil(s.T(), err)
		require.Len(s.T(), participations, 2)
		require.Equal(s.T(), bob, participations[0].UserAddress)
		require.Equal(s.T(), "15", participations[0].Amount)

		require.Nil(s.T(), tx.DeleteParticipation(1, 1, bob))
		participations, err = tx.GetParticipations(1, 1)
		require.Nil(s.T(), err)
		require.Len(s.T(), participations, 1)
		require.Equal(s.T(), carol, participations[0].UserAddress)
		return nil
	})
}

func (s *StoreTestSuite) TestClaimOwnership() {
	s.tx(func(tx Tx) (err error) {
		require.Nil(s.T(), tx.UpsertClaim(&model.Claim{Id: 1, ChainId: 1, Title: "a", Issuer: bob, Owner: alice, BountyId: 3}))
		require.Nil(s.T(), tx.AcceptClaim(1, 1))
		require.Nil(s.T(), tx.TransferClaim(&model.Claim{Id: 1, ChainId: 1, Issuer: carol, Owner: carol}))

		// Neither acceptance nor owner are touched by an upsert
		require.Nil(s.T(), tx.UpsertClaim(&model.Claim{Id: 1, ChainId: 1, Title: "b", Issuer: bob, Owner: alice, BountyId: 3}))

		claim, err := tx.GetClaim(1, 1)
		require.Nil(s.T(), err)
		require.Equal(s.T(), "b", claim.Title)
		require.Equal(s.T(), bob, claim.Issuer)
		require.Equal(s.T(), carol, claim.Owner)
		require.True(s.T(), claim.IsAccepted)

		accepted, err := tx.HasAcceptedClaim(1, 3)
		require.Nil(s.T(), err)
		require.True(s.T(), accepted)

		owned, err := tx.CountClaimsOwned(1, carol)
		require.Nil(s.T(), err)
		require.Equal(s.T(), int64(1), owned)

		owned, err = tx.CountClaimsOwned(1, alice)
		require.Nil(s.T(), err)
		require.Zero(s.T(), owned)
		return nil
	})
}

func (s *StoreTestSuite) TestTransactionLog() {
	s.tx(func(tx Tx) (err error) {
		inserted, err := tx.InsertTransaction(&model.Transaction{ChainId: 1, Tx: "0x01", LogIndex: 3, BlockNumber: 10, Index: 2, Action: "voted"})
		require.Nil(s.T(), err)
		require.True(s.T(), inserted)

		inserted, err = tx.InsertTransaction(&model.Transaction{ChainId: 1, Tx: "0x01", LogIndex: 3, BlockNumber: 10, Index: 2, Action: "voted"})
		require.Nil(s.T(), err)
		require.False(s.T(), inserted)

		// Same hash on another chain is a different event
		inserted, err = tx.InsertTransaction(&model.Transaction{ChainId: 2, Tx: "0x01", LogIndex: 3, BlockNumber: 1, Action: "voted"})
		require.Nil(s.T(), err)
		require.True(s.T(), inserted)

		_, err = tx.InsertTransaction(&model.Transaction{ChainId: 1, Tx: "0x02", LogIndex: 0, BlockNumber: 10, Index: 1, Action: "voted"})
		require.Nil(s.T(), err)

		has, err := tx.HasTransaction(1, "0x01", 3)
		require.Nil(s.T(), err)
		require.True(s.T(), has)

		has, err = tx.HasTransaction(1, "0x01", 4)
		require.Nil(s.T(), err)
		require.False(s.T(), has)

		last, err := tx.LastTransaction(1)
		require.Nil(s.T(), err)
		require.Equal(s.T(), "0x01", last.Tx)
		require.Equal(s.T(), uint(2), last.Index)
		return nil
	})
}

package bounty_sync

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DbStore implements Store on top of a gorm connection
type DbStore struct {
	db *gorm.DB
}

func NewDbStore(db *gorm.DB) *DbStore {
	return &DbStore{db: db}
}

func (self *DbStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return self.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&dbTx{db: db})
	})
}

type dbTx struct {
	db *gorm.DB
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

func (self *dbTx) EnsureUser(address string) error {
	return self.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.User{Address: address}).
		Error
}

func (self *dbTx) InsertBounty(bounty *model.Bounty) error {
	return self.db.Create(bounty).Error
}

func (self *dbTx) GetBounty(chainId, id uint64) (bounty *model.Bounty, err error) {
	bounty = new(model.Bounty)
	err = self.db.Where("chain_id = ? AND id = ?", chainId, id).
		First(bounty).
		Error
	if err != nil {
		return nil, notFound(err, "bounty %d", id)
	}
	return
}

func (self *dbTx) UpdateBounty(chainId, id uint64, fields map[string]interface{}) error {
	return self.db.Model(&model.Bounty{}).
		Where("chain_id = ? AND id = ?", chainId, id).
		Updates(fields).
		Error
}

// Descriptive fields are overwritten on conflict, acceptance and ownership never are
func (self *dbTx) UpsertClaim(claim *model.Claim) error {
	columns := []string{"title", "description", "issuer", "bounty_id", "on_chain_id"}
	if claim.Url != "" {
		columns = append(columns, "url")
	}

	return self.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).
		Create(claim).
		Error
}

func (self *dbTx) GetClaim(chainId, id uint64) (claim *model.Claim, err error) {
	claim = new(model.Claim)
	err = self.db.Where("chain_id = ? AND id = ?", chainId, id).
		First(claim).
		Error
	if err != nil {
		return nil, notFound(err, "claim %d", id)
	}
	return
}

func (self *dbTx) AcceptClaim(chainId, id uint64) error {
	return self.db.Model(&model.Claim{}).
		Where("chain_id = ? AND id = ?", chainId, id).
		Update("is_accepted", true).
		Error
}

// Only the owner is overwritten on conflict
func (self *dbTx) TransferClaim(claim *model.Claim) error {
	return self.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner"}),
	}).
		Create(claim).
		Error
}

func (self *dbTx) CountClaimsOwned(chainId uint64, owner string) (count int64, err error) {
	err = self.db.Model(&model.Claim{}).
		Where("chain_id = ? AND owner = ?", chainId, owner).
		Count(&count).
		Error
	return
}

func (self *dbTx) HasAcceptedClaim(chainId, bountyId uint64) (bool, error) {
	var count int64
	err := self.db.Model(&model.Claim{}).
		Where("chain_id = ? AND bounty_id = ? AND is_accepted = ?", chainId, bountyId, true).
		Count(&count).
		Error
	return count > 0, err
}

func (self *dbTx) InsertParticipation(participation *model.Participation) error {
	return self.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "bounty_id"}, {Name: "user_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).
		Create(participation).
		Error
}

// AddParticipation adds the amount to the existing stake of the address
func (self *dbTx) AddParticipation(chainId, bountyId uint64, address string, amount *big.Int) (err error) {
	var existing model.Participation
	err = self.db.Where("chain_id = ? AND bounty_id = ? AND user_address = ?", chainId, bountyId, address).
		Limit(1).
		Find(&existing).
		Error
	if err != nil {
		return
	}

	stake := new(big.Int).Set(amount)
	if existing.UserAddress != "" {
		previous, ok := eth.ParseWei(existing.Amount)
		if !ok {
			return fmt.Errorf("invalid stake %q of %s in bounty %d", existing.Amount, address, bountyId)
		}
		stake.Add(stake, previous)
	}

	return self.InsertParticipation(&model.Participation{
		ChainId:     chainId,
		BountyId:    bountyId,
		UserAddress: address,
		Amount:      stake.String(),
	})
}

func (self *dbTx) DeleteParticipation(chainId, bountyId uint64, address string) error {
	return self.db.Where("chain_id = ? AND bounty_id = ? AND user_address = ?", chainId, bountyId, address).
		Delete(&model.Participation{}).
		Error
}

func (self *dbTx) GetParticipations(chainId, bountyId uint64) (participations []model.Participation, err error) {
	err = self.db.Where("chain_id = ? AND bounty_id = ?", chainId, bountyId).
		Order("user_address").
		Find(&participations).
		Error
	return
}

func (self *dbTx) InsertVotingRound(round *model.VotingRound) error {
	return self.db.Create(round).Error
}

func (self *dbTx) LatestVotingRound(chainId, bountyId uint64) (round *model.VotingRound, err error) {
	round = new(model.VotingRound)
	err = self.db.Where("chain_id = ? AND bounty_id = ?", chainId, bountyId).
		Order("round DESC").
		First(round).
		Error
	if err != nil {
		return nil, notFound(err, "voting round of bounty %d", bountyId)
	}
	return
}

func (self *dbTx) IncrementVote(chainId, bountyId, round uint64, support bool) error {
	column := "no"
	if support {
		column = "yes"
	}

	return self.db.Model(&model.VotingRound{}).
		Where("chain_id = ? AND bounty_id = ? AND round = ?", chainId, bountyId, round).
		Update(column, gorm.Expr("? + 1", clause.Column{Name: column})).
		Error
}

func (self *dbTx) UpdateVotingRoundDeadline(chainId, bountyId, round, deadline uint64) error {
	return self.db.Model(&model.VotingRound{}).
		Where("chain_id = ? AND bounty_id = ? AND round = ?", chainId, bountyId, round).
		Update("deadline", deadline).
		Error
}

// IncrementLeaderboard inserts the entry or adds to the existing totals in a single statement
func (self *dbTx) IncrementLeaderboard(chainId uint64, address string, earned, paid decimal.Decimal) error {
	increment := func(column string) clause.Expr {
		return gorm.Expr("? + ?",
			clause.Column{Table: model.TableLeaderboard, Name: column},
			clause.Column{Table: "excluded", Name: column},
		)
	}

	return self.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain_id"}, {Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"earned": increment("earned"),
			"paid":   increment("paid"),
		}),
	}).
		Create(&model.LeaderboardEntry{
			ChainId: chainId,
			Address: address,
			Earned:  earned,
			Paid:    paid,
		}).
		Error
}

// SetLeaderboardNfts overwrites the count, financial totals are left intact
func (self *dbTx) SetLeaderboardNfts(chainId uint64, address string, nfts int64) error {
	return self.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"nfts"}),
	}).
		Create(&model.LeaderboardEntry{
			ChainId: chainId,
			Address: address,
			Nfts:    nfts,
		}).
		Error
}

func (self *dbTx) HasTransaction(chainId uint64, txHash string, logIndex uint) (bool, error) {
	var count int64
	err := self.db.Model(&model.Transaction{}).
		Where("chain_id = ? AND tx = ? AND log_index = ?", chainId, txHash, logIndex).
		Count(&count).
		Error
	return count > 0, err
}

func (self *dbTx) LastTransaction(chainId uint64) (transaction *model.Transaction, err error) {
	transaction = new(model.Transaction)
	err = self.db.Where("chain_id = ?", chainId).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "block_number"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "index"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "log_index"}, Desc: true}).
		First(transaction).
		Error
	if err != nil {
		return nil, notFound(err, "transactions of chain %d", chainId)
	}
	return
}

func (self *dbTx) InsertTransaction(transaction *model.Transaction) (inserted bool, err error) {
	result := self.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(transaction)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

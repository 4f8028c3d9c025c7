package bounty_sync

import (
	"math/big"
	"testing"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/namespace"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func uintTopic(v int64) common.Hash {
	return common.BigToHash(big.NewInt(v))
}

func addressTopic(address string) common.Hash {
	return common.BytesToHash(common.HexToAddress(address).Bytes())
}

// packLog builds a log of the named event the way the contract would emit it
func packLog(t testing.TB, abiName string, contract common.Address, eventName string, topics []common.Hash, args ...interface{}) types.Log {
	contractABI, err := eth.GetContractABI(abiName)
	require.Nil(t, err)

	event, ok := contractABI.Events[eventName]
	require.True(t, ok, eventName)

	data, err := event.Inputs.NonIndexed().Pack(args...)
	require.Nil(t, err)

	return types.Log{
		Address: contract,
		Topics:  append([]common.Hash{event.ID}, topics...),
		Data:    data,
	}
}

type DecoderTestSuite struct {
	suite.Suite
	decoder *Decoder
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}

func (s *DecoderTestSuite) SetupTest() {
	var err error
	s.decoder, err = NewDecoder(testConfig())
	require.Nil(s.T(), err)
}

func (s *DecoderTestSuite) TestCurrentBountyCreated() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, currentBountyContract, "BountyCreated",
		[]common.Hash{uintTopic(5), addressTopic(alice)},
		"Find my cat", "Orange", ether("1.5"), big.NewInt(1710000000), true,
	)
	vLog.BlockNumber = 77
	vLog.TxIndex = 3
	vLog.Index = 9
	vLog.TxHash = common.HexToHash("0xabc")

	event, err := s.decoder.Decode(testChainId, 1710000001, &vLog, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), namespace.Current, event.Generation)
	require.Equal(s.T(), ContractBounty, event.Contract)
	require.Equal(s.T(), OrderingKey{BlockNumber: 77, TxIndex: 3, LogIndex: 9}, event.Key())
	require.Equal(s.T(), uint64(1710000001), event.BlockTimestamp)
	require.Equal(s.T(), vLog.TxHash.Hex(), event.TxHash)

	payload, ok := event.Payload.(*BountyCreated)
	require.True(s.T(), ok)
	require.Equal(s.T(), uint64(5), payload.Id)
	require.Equal(s.T(), alice, payload.Issuer)
	require.Equal(s.T(), "Find my cat", payload.Title)
	require.Equal(s.T(), "Orange", payload.Description)
	require.Equal(s.T(), ether("1.5").String(), payload.Amount.String())
	require.Equal(s.T(), uint64(1710000000), payload.CreatedAt)
	require.True(s.T(), payload.IsMultiplayer)
}

func (s *DecoderTestSuite) TestLegacyBountyCreatedUsesEnrichment() {
	vLog := packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "BountyCreated",
		[]common.Hash{uintTopic(2), addressTopic(bob)},
		"Old name", "desc", big.NewInt(1000), big.NewInt(1600000000),
	)

	multiplayer := true
	event, err := s.decoder.Decode(testChainId, 0, &vLog, &Enrichment{IsMultiplayer: &multiplayer})
	require.Nil(s.T(), err)
	require.Equal(s.T(), namespace.Legacy, event.Generation)

	payload := event.Payload.(*BountyCreated)
	require.Equal(s.T(), "Old name", payload.Title)
	require.Equal(s.T(), bob, payload.Issuer)
	require.True(s.T(), payload.IsMultiplayer)
}

func (s *DecoderTestSuite) TestBalances() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, currentBountyContract, "WithdrawFromOpenBounty",
		[]common.Hash{uintTopic(1), addressTopic(carol)},
		big.NewInt(10), big.NewInt(90),
	)
	event, err := s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	payload := event.Payload.(*WithdrawFromOpenBounty)
	require.Equal(s.T(), carol, payload.Participant)
	require.Equal(s.T(), "10", payload.Amount.String())
	require.Equal(s.T(), "90", payload.Balance.String())

	vLog = packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "BountyJoined",
		[]common.Hash{uintTopic(1), addressTopic(carol)},
		big.NewInt(10),
	)
	event, err = s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	joined := event.Payload.(*BountyJoined)
	require.Nil(s.T(), joined.Balance)
	require.Equal(s.T(), "10", joined.Amount.String())
}

func (s *DecoderTestSuite) TestVotingDeadlines() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, currentBountyContract, "VoteClaim",
		[]common.Hash{addressTopic(alice), uintTopic(1), uintTopic(2)},
		true, big.NewInt(500),
	)
	event, err := s.decoder.Decode(testChainId, 0, &vLog, &Enrichment{Deadline: uint64Ptr(1)})
	require.Nil(s.T(), err)
	vote := event.Payload.(*VoteClaim)
	require.Equal(s.T(), alice, vote.Voter)
	require.Equal(s.T(), uint64(1), vote.BountyId)
	require.Equal(s.T(), uint64(2), vote.ClaimId)
	require.True(s.T(), vote.Support)
	require.Equal(s.T(), uint64(500), *vote.Deadline)

	// Legacy contract doesn't emit deadlines
	vLog = packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "ClaimSubmittedForVote",
		[]common.Hash{uintTopic(1), uintTopic(2)},
	)
	event, err = s.decoder.Decode(testChainId, 0, &vLog, &Enrichment{Deadline: uint64Ptr(600)})
	require.Nil(s.T(), err)
	submitted := event.Payload.(*ClaimSubmittedForVote)
	require.Equal(s.T(), uint64(600), *submitted.Deadline)

	event, err = s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	require.Nil(s.T(), event.Payload.(*ClaimSubmittedForVote).Deadline)
}

func (s *DecoderTestSuite) TestClaims() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, currentBountyContract, "ClaimCreated",
		[]common.Hash{uintTopic(3), addressTopic(bob), uintTopic(1)},
		common.HexToAddress(alice), "proof", "photo", big.NewInt(1), "ipfs://proof",
	)
	event, err := s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	claim := event.Payload.(*ClaimCreated)
	require.Equal(s.T(), uint64(3), claim.Id)
	require.Equal(s.T(), uint64(1), claim.BountyId)
	require.Equal(s.T(), bob, claim.Issuer)
	require.Equal(s.T(), "proof", claim.Title)
	require.Equal(s.T(), "ipfs://proof", claim.ImageUri)

	vLog = packLog(s.T(), eth.AbiNft, legacyNftContract, "Transfer",
		[]common.Hash{addressTopic(eth.ZeroAddress), addressTopic(carol), uintTopic(3)},
	)
	event, err = s.decoder.Decode(testChainId, 0, &vLog, &Enrichment{TokenUri: "ipfs://token"})
	require.Nil(s.T(), err)
	require.Equal(s.T(), ContractNft, event.Contract)
	require.Equal(s.T(), namespace.Legacy, event.Generation)
	transfer := event.Payload.(*Transfer)
	require.Equal(s.T(), eth.ZeroAddress, transfer.From)
	require.Equal(s.T(), carol, transfer.To)
	require.Equal(s.T(), uint64(3), transfer.TokenId)
	require.Equal(s.T(), "ipfs://token", transfer.Url)
}

func (s *DecoderTestSuite) TestClaimAccepted() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, currentBountyContract, "ClaimAccepted",
		[]common.Hash{uintTopic(4), uintTopic(9), addressTopic(bob)},
		common.HexToAddress(alice), ether("2"),
	)
	event, err := s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	accepted := event.Payload.(*ClaimAccepted)
	require.Equal(s.T(), uint64(4), accepted.BountyId)
	require.Equal(s.T(), uint64(9), accepted.ClaimId)
	require.Equal(s.T(), bob, accepted.ClaimIssuer)
	require.Equal(s.T(), ether("2").String(), accepted.BountyAmount.String())

	vLog = packLog(s.T(), eth.AbiLegacyBounty, legacyBountyContract, "ClaimAccepted",
		[]common.Hash{uintTopic(4), uintTopic(9), addressTopic(bob)},
		common.HexToAddress(alice), big.NewInt(1600000000),
	)
	event, err = s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.Nil(s.T(), err)
	require.Nil(s.T(), event.Payload.(*ClaimAccepted).BountyAmount)
}

func (s *DecoderTestSuite) TestUnknownLogs() {
	vLog := packLog(s.T(), eth.AbiCurrentBounty, common.HexToAddress("0x9999"), "ResetVotingPeriod",
		[]common.Hash{uintTopic(1)},
		big.NewInt(1),
	)
	_, err := s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.ErrorIs(s.T(), err, ErrUnknownEvent)

	// Event of the other generation's ABI
	vLog = packLog(s.T(), eth.AbiNft, currentBountyContract, "Transfer",
		[]common.Hash{addressTopic(alice), addressTopic(bob), uintTopic(1)},
	)
	_, err = s.decoder.Decode(testChainId, 0, &vLog, nil)
	require.ErrorIs(s.T(), err, ErrUnknownEvent)

	_, err = s.decoder.Decode(99, 0, &vLog, nil)
	require.ErrorIs(s.T(), err, ErrUnknownChain)
}

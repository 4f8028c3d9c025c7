package bounty_sync

import (
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/namespace"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// Enrichment holds values that aren't part of the log and were read from the contract by the ingestion layer
type Enrichment struct {
	IsMultiplayer *bool   `json:"isMultiplayer,omitempty"`
	Deadline      *uint64 `json:"deadline,omitempty"`
	TokenUri      string  `json:"tokenUri,omitempty"`
}

type route struct {
	generation namespace.Generation
	kind       ContractKind
	abi        *abi.ABI
}

// Decoder turns raw logs of known contracts into events
type Decoder struct {
	routes map[uint64]map[string]route
}

func NewDecoder(config *config.Config) (self *Decoder, err error) {
	self = new(Decoder)
	self.routes = make(map[uint64]map[string]route)

	legacyBounty, err := eth.GetContractABI(eth.AbiLegacyBounty)
	if err != nil {
		return
	}
	currentBounty, err := eth.GetContractABI(eth.AbiCurrentBounty)
	if err != nil {
		return
	}
	nft, err := eth.GetContractABI(eth.AbiNft)
	if err != nil {
		return
	}

	for _, chain := range config.Indexer.Chains {
		routes := make(map[string]route)
		add := func(address string, r route) {
			if address != "" {
				routes[eth.AddressKey(address)] = r
			}
		}
		add(chain.Legacy.Bounty, route{generation: namespace.Legacy, kind: ContractBounty, abi: legacyBounty})
		add(chain.Legacy.Nft, route{generation: namespace.Legacy, kind: ContractNft, abi: nft})
		add(chain.Current.Bounty, route{generation: namespace.Current, kind: ContractBounty, abi: currentBounty})
		add(chain.Current.Nft, route{generation: namespace.Current, kind: ContractNft, abi: nft})
		self.routes[chain.Id] = routes
	}

	return
}

func (self *Decoder) Decode(chainId, blockTimestamp uint64, vLog *types.Log, extra *Enrichment) (event *Event, err error) {
	routes, ok := self.routes[chainId]
	if !ok {
		err = fmt.Errorf("%w: %d", ErrUnknownChain, chainId)
		return
	}

	r, ok := routes[eth.AddressKey(vLog.Address.Hex())]
	if !ok {
		err = fmt.Errorf("%w: contract %s on chain %d isn't indexed", ErrUnknownEvent, vLog.Address.Hex(), chainId)
		return
	}

	name, args, err := eth.ParseLog(r.abi, vLog)
	if err != nil {
		return
	}

	if extra == nil {
		extra = new(Enrichment)
	}

	payload, err := buildPayload(name, args, extra)
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		return
	}

	event = &Event{
		ChainId:        chainId,
		Generation:     r.generation,
		Contract:       r.kind,
		BlockNumber:    vLog.BlockNumber,
		BlockTimestamp: blockTimestamp,
		TxHash:         vLog.TxHash.Hex(),
		TxIndex:        vLog.TxIndex,
		LogIndex:       vLog.Index,
		Payload:        payload,
	}
	return
}

func optionalUint64(v *big.Int) *uint64 {
	if v == nil || !v.IsUint64() {
		return nil
	}
	out := v.Uint64()
	return &out
}

// Deadline emitted by the contract, or the one read by the ingestion layer
func deadline(args map[string]interface{}, extra *Enrichment) *uint64 {
	if d := optionalUint64(eth.GetOptionalBigInt(args, "deadline")); d != nil {
		return d
	}
	return extra.Deadline
}

// Both generations name titles differently
func title(args map[string]interface{}) string {
	if v := eth.GetString(args, "title"); v != "" {
		return v
	}
	return eth.GetString(args, "name")
}

func buildPayload(name string, args map[string]interface{}, extra *Enrichment) (payload Payload, err error) {
	switch name {
	case "BountyCreated":
		p := &BountyCreated{
			Title:       title(args),
			Description: eth.GetString(args, "description"),
		}
		if p.Id, err = eth.GetUint64(args, "id"); err != nil {
			return
		}
		if p.Issuer, err = eth.GetAddress(args, "issuer"); err != nil {
			return
		}
		if p.Amount, err = eth.GetBigInt(args, "amount"); err != nil {
			return
		}
		if createdAt := optionalUint64(eth.GetOptionalBigInt(args, "createdAt")); createdAt != nil {
			p.CreatedAt = *createdAt
		}
		if v, ok := eth.GetBool(args, "isMultiplayer"); ok {
			p.IsMultiplayer = v
		} else if extra.IsMultiplayer != nil {
			p.IsMultiplayer = *extra.IsMultiplayer
		}
		payload = p

	case "BountyCancelled":
		p := new(BountyCancelled)
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.Issuer, err = eth.GetAddress(args, "issuer"); err != nil {
			return
		}
		payload = p

	case "BountyJoined":
		p := &BountyJoined{
			Balance:  eth.GetOptionalBigInt(args, "latestBountyBalance"),
			Deadline: extra.Deadline,
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.Participant, err = eth.GetAddress(args, "participant"); err != nil {
			return
		}
		if p.Amount, err = eth.GetBigInt(args, "amount"); err != nil {
			return
		}
		payload = p

	case "WithdrawFromOpenBounty":
		p := &WithdrawFromOpenBounty{
			Balance: eth.GetOptionalBigInt(args, "latestBountyAmount"),
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.Participant, err = eth.GetAddress(args, "participant"); err != nil {
			return
		}
		if p.Amount, err = eth.GetBigInt(args, "amount"); err != nil {
			return
		}
		payload = p

	case "ClaimCreated":
		p := &ClaimCreated{
			Title:       title(args),
			Description: eth.GetString(args, "description"),
			ImageUri:    eth.GetString(args, "imageUri"),
		}
		if p.Id, err = eth.GetUint64(args, "id"); err != nil {
			return
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.Issuer, err = eth.GetAddress(args, "issuer"); err != nil {
			return
		}
		payload = p

	case "ClaimAccepted":
		p := &ClaimAccepted{
			BountyAmount: eth.GetOptionalBigInt(args, "bountyAmount"),
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.ClaimId, err = eth.GetUint64(args, "claimId"); err != nil {
			return
		}
		if p.ClaimIssuer, err = eth.GetAddress(args, "claimIssuer"); err != nil {
			return
		}
		payload = p

	case "ClaimSubmittedForVote":
		p := &ClaimSubmittedForVote{
			Deadline: deadline(args, extra),
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.ClaimId, err = eth.GetUint64(args, "claimId"); err != nil {
			return
		}
		payload = p

	case "VoteClaim":
		p := &VoteClaim{
			Deadline: deadline(args, extra),
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.ClaimId, err = eth.GetUint64(args, "claimId"); err != nil {
			return
		}
		if p.Voter, err = eth.GetAddress(args, "voter"); err != nil {
			return
		}
		p.Support, _ = eth.GetBool(args, "vote")
		payload = p

	case "VotingResolved":
		p := new(VotingResolved)
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		if p.ClaimId, err = eth.GetUint64(args, "claimId"); err != nil {
			return
		}
		p.Passed, _ = eth.GetBool(args, "passed")
		payload = p

	case "ResetVotingPeriod":
		p := &ResetVotingPeriod{
			Deadline: deadline(args, extra),
		}
		if p.BountyId, err = eth.GetUint64(args, "bountyId"); err != nil {
			return
		}
		payload = p

	case "Transfer":
		p := &Transfer{
			Url: extra.TokenUri,
		}
		if p.From, err = eth.GetAddress(args, "from"); err != nil {
			return
		}
		if p.To, err = eth.GetAddress(args, "to"); err != nil {
			return
		}
		if p.TokenId, err = eth.GetUint64(args, "tokenId"); err != nil {
			return
		}
		payload = p

	default:
		err = fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	return
}

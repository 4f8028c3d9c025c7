package eth

import (
	"embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:embed abi/*.json
var abiFiles embed.FS

const (
	AbiLegacyBounty  = "legacy_bounty"
	AbiCurrentBounty = "current_bounty"
	AbiNft           = "nft"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidArg   = errors.New("invalid event argument")

	abiCache   = make(map[string]*abi.ABI)
	abiCacheMu sync.Mutex
)

// GetContractABI returns one of the ABIs shipped with the binary
func GetContractABI(name string) (*abi.ABI, error) {
	abiCacheMu.Lock()
	defer abiCacheMu.Unlock()

	if contractABI, ok := abiCache[name]; ok {
		return contractABI, nil
	}

	data, err := abiFiles.ReadFile(fmt.Sprintf("abi/%s.json", name))
	if err != nil {
		return nil, err
	}

	contractABI, err := abi.JSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}

	abiCache[name] = &contractABI
	return &contractABI, nil
}

// ParseLog decodes indexed and non-indexed arguments of a single log into a map
func ParseLog(contractABI *abi.ABI, vLog *types.Log) (name string, eventMap map[string]interface{}, err error) {
	if len(vLog.Topics) == 0 {
		err = fmt.Errorf("%w: log without topics", ErrUnknownEvent)
		return
	}

	event, err := contractABI.EventByID(vLog.Topics[0])
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrUnknownEvent, vLog.Topics[0].Hex())
		return
	}

	eventMap = make(map[string]interface{})

	indexed := make([]abi.Argument, 0)
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	err = abi.ParseTopicsIntoMap(eventMap, indexed, vLog.Topics[1:])
	if err != nil {
		return
	}

	if len(vLog.Data) > 0 {
		err = contractABI.UnpackIntoMap(eventMap, event.Name, vLog.Data)
		if err != nil {
			return
		}
	}

	name = event.Name
	return
}

// Typed accessors for values produced by ParseLog

func GetBigInt(eventMap map[string]interface{}, key string) (*big.Int, error) {
	v, ok := eventMap[key].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an integer", ErrInvalidArg, key)
	}
	return v, nil
}

// GetOptionalBigInt returns nil if the event doesn't carry the value
func GetOptionalBigInt(eventMap map[string]interface{}, key string) *big.Int {
	v, _ := eventMap[key].(*big.Int)
	return v
}

func GetUint64(eventMap map[string]interface{}, key string) (uint64, error) {
	v, err := GetBigInt(eventMap, key)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows uint64", ErrInvalidArg, key)
	}
	return v.Uint64(), nil
}

func GetAddress(eventMap map[string]interface{}, key string) (string, error) {
	v, ok := eventMap[key].(common.Address)
	if !ok {
		return "", fmt.Errorf("%w: %s is not an address", ErrInvalidArg, key)
	}
	return v.Hex(), nil
}

func GetString(eventMap map[string]interface{}, key string) string {
	v, _ := eventMap[key].(string)
	return v
}

func GetBool(eventMap map[string]interface{}, key string) (value, ok bool) {
	value, ok = eventMap[key].(bool)
	return
}

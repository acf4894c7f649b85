package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// KeyTransfer is one key-issuance Transfer event emitted by a lock.
type KeyTransfer struct {
	From    common.Address
	To      common.Address
	TokenID *big.Int
}

// KeyExtended is one renewal event emitted by a lock.
type KeyExtended struct {
	TokenID      *big.Int
	NewTimestamp *big.Int
}

// ParseKeyExtended decodes lg as a KeyExtended renewal event, returning
// false when the log has a different shape.
func ParseKeyExtended(lg *types.Log) (*KeyExtended, bool) {
	if len(lg.Topics) != 2 || lg.Topics[0] != Lock.Events["KeyExtended"].ID {
		return nil, false
	}

	return &KeyExtended{
		TokenID:      new(big.Int).SetBytes(lg.Topics[1].Bytes()),
		NewTimestamp: new(big.Int).SetBytes(lg.Data),
	}, true
}

// ParseKeyTransfer decodes lg as a key Transfer event.  The second return
// value is false when the log has a different shape; callers must filter
// by emitting address before trusting a decoded event.
func ParseKeyTransfer(lg *types.Log) (*KeyTransfer, bool) {
	if len(lg.Topics) != 4 || lg.Topics[0] != Lock.Events["Transfer"].ID {
		return nil, false
	}

	return &KeyTransfer{
		From:    common.BytesToAddress(lg.Topics[1].Bytes()),
		To:      common.BytesToAddress(lg.Topics[2].Bytes()),
		TokenID: new(big.Int).SetBytes(lg.Topics[3].Bytes()),
	}, true
}

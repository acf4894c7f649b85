package purchase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Plan is a fully built contract call awaiting signature and broadcast.
//
// Fee parameters are either the legacy GasPrice or the GasFeeCap/GasTipCap
// pair, never both.  A zero GasLimit and nil fee fields mean the submitter
// fills them in at broadcast time.
type Plan struct {
	To    common.Address
	Data  []byte
	Value *big.Int

	GasLimit  uint64
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
}

// Outcome is the result of one confirmed purchase attempt.  It carries
// either observed key identifiers or the Unconfirmed marker, never a
// failure (failures are returned as errors).
type Outcome struct {
	// TxHash is the hash of the (last) purchase transaction.
	TxHash common.Hash

	// KeyIDs is aligned with the request's recipients; an entry is nil
	// when no key transfer was observed for that recipient.
	KeyIDs []*big.Int

	// Unconfirmed is set when the receipt succeeded but no key transfer
	// event was emitted by the lock.  The key may still have been
	// issued; callers should treat this as "submitted, unconfirmed"
	// rather than failure.
	Unconfirmed bool
}

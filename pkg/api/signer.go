package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// A Signer is implemented by types that can produce a ECDSA signature
// of the provided digestHash.
type Signer interface {
	Sign(digestHash []byte) ([]byte, error)
}

// A TxSigner is an active signing session: it operates on behalf of one
// Ethereum account and signs transactions before they are broadcast.
//
// A session may decline to sign (a locked keystore, a rejected prompt);
// implementations report that by wrapping purchase.ErrUserRejected.
type TxSigner interface {
	Signer

	// Address returns the account the session signs for.
	Address() common.Address

	// SignTx signs tx for the given chain.
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

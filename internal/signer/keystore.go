package signer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

var _ api.TxSigner = (*KeyStoreSigner)(nil)

// KeyStoreSigner is an api.TxSigner backed by a go-ethereum keystore
// account.  A keystore that declines to sign (wrong passphrase, locked or
// missing account) is reported as purchase.ErrUserRejected.
type KeyStoreSigner struct {
	ks   *keystore.KeyStore
	acct accounts.Account
	pass []byte
}

func NewKeyStoreSigner(ks *keystore.KeyStore, acct accounts.Account, pass []byte) (*KeyStoreSigner, error) {
	if !ks.HasAddress(acct.Address) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, acct.Address.Hex())
	}

	return &KeyStoreSigner{
		ks:   ks,
		acct: acct,
		pass: pass,
	}, nil
}

func (s *KeyStoreSigner) Address() common.Address {
	return s.acct.Address
}

func (s *KeyStoreSigner) Sign(digestHash []byte) ([]byte, error) {
	sig, err := s.ks.SignHashWithPassphrase(s.acct, string(s.pass), digestHash)
	if err != nil {
		return nil, rejection(err)
	}

	return sig, nil
}

func (s *KeyStoreSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := s.ks.SignTxWithPassphrase(s.acct, string(s.pass), tx, chainID)
	if err != nil {
		return nil, rejection(err)
	}

	return signed, nil
}

// rejection maps the keystore's well-known decline errors onto
// purchase.ErrUserRejected; anything else passes through.
func rejection(err error) error {
	if errors.Is(err, keystore.ErrDecrypt) ||
		errors.Is(err, keystore.ErrLocked) ||
		errors.Is(err, keystore.ErrNoMatch) {
		return fmt.Errorf("%w: %w", purchase.ErrUserRejected, err)
	}

	return err
}

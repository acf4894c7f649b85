package keybuyer

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lockery/keybuyer/internal/signer"
	"github.com/lockery/keybuyer/pkg/api"
)

// PurchaserForPrivateKey builds a Purchaser that signs with an in-memory
// private key.
func PurchaserForPrivateKey(backend api.Backend, priv *ecdsa.PrivateKey, opts ...Option) (*Purchaser, error) {
	sgn, err := signer.NewECDSASigner(priv)
	if err != nil {
		return nil, err
	}

	return NewPurchaser(backend, sgn, opts...)
}

// PurchaserForPrivateKeyHex builds a Purchaser from a hex-encoded private
// key.
func PurchaserForPrivateKeyHex(backend api.Backend, privHex string, opts ...Option) (*Purchaser, error) {
	sgn, err := signer.NewECDSASignerFromHex(privHex)
	if err != nil {
		return nil, err
	}

	return NewPurchaser(backend, sgn, opts...)
}

// PurchaserForPrivateKeyHexFromEnv builds a Purchaser from a hex-encoded
// private key held in the named environment variable.
func PurchaserForPrivateKeyHexFromEnv(backend api.Backend, name string, opts ...Option) (*Purchaser, error) {
	sgn, err := signer.NewECDSASignerFromEnv(name)
	if err != nil {
		return nil, err
	}

	return NewPurchaser(backend, sgn, opts...)
}

// PurchaserForKeyStore builds a Purchaser that signs through a go-ethereum
// keystore account.
func PurchaserForKeyStore(backend api.Backend, ks *keystore.KeyStore, acct accounts.Account, pass []byte, opts ...Option) (*Purchaser, error) {
	sgn, err := signer.NewKeyStoreSigner(ks, acct, pass)
	if err != nil {
		return nil, err
	}

	return NewPurchaser(backend, sgn, opts...)
}

// Dial connects to an Ethereum JSON-RPC endpoint and builds a Purchaser
// over it with the given signing session.
func Dial(ctx context.Context, rpcURL string, sgn api.TxSigner, opts ...Option) (*Purchaser, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	return NewPurchaser(client, sgn, opts...)
}

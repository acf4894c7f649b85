package signer_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockery/keybuyer/internal/signer"
)

var testChainID = big.NewInt(8453)

// testSignTx signs a transaction through sgn and verifies the recovered
// sender matches the signer's address.
func testSignTx(t *testing.T, sgn interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}) {
	t.Helper()

	to := common.HexToAddress("0x1000000000000000000000000000000000000001")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   testChainID,
		To:        &to,
		Value:     big.NewInt(1),
		Gas:       21_000,
		GasFeeCap: big.NewInt(2_000_000_000),
		GasTipCap: big.NewInt(1_000_000_000),
	})

	signed, err := sgn.SignTx(tx, testChainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(testChainID), signed)
	require.NoError(t, err)
	assert.Equal(t, sgn.Address(), from)
}

func TestECDSASigner(t *testing.T) {
	t.Parallel()

	t.Run("passes", func(t *testing.T) {
		t.Parallel()

		priv, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
		require.NoError(t, err)

		sgn, err := signer.NewECDSASigner(priv)
		require.NoError(t, err)

		assert.Equal(t, crypto.PubkeyToAddress(priv.PublicKey), sgn.Address())
		testSignTx(t, sgn)
	})

	t.Run("fails - invalid curve", func(t *testing.T) {
		t.Parallel()

		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		_, err = signer.NewECDSASigner(priv)
		require.ErrorIs(t, err, signer.ErrInvalidCurve)
	})

	t.Run("fails - point not on curve", func(t *testing.T) {
		t.Parallel()

		priv, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
		require.NoError(t, err)

		priv.X, priv.Y = big.NewInt(1), big.NewInt(1)

		_, err = signer.NewECDSASigner(priv)
		require.ErrorIs(t, err, signer.ErrInvalidPoint)
	})
}

func TestECDSASignerFromHex(t *testing.T) {
	t.Parallel()

	t.Run("passes - valid secp256k1 private key", func(t *testing.T) {
		t.Parallel()

		sgn, err := signer.NewECDSASignerFromHex("01")
		require.NoError(t, err)

		// The well-known address of private key 1.
		assert.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), sgn.Address())
		testSignTx(t, sgn)
	})

	t.Run("fails - not hex", func(t *testing.T) {
		t.Parallel()

		_, err := signer.NewECDSASignerFromHex("not-hex")
		require.Error(t, err)
	})
}

func TestECDSASignerFromEnv(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		t.Setenv("KEYBUYER_PRIVATE_KEY", "01")

		sgn, err := signer.NewECDSASignerFromEnv("KEYBUYER_PRIVATE_KEY")
		require.NoError(t, err)
		testSignTx(t, sgn)
	})

	t.Run("fails - unset variable", func(t *testing.T) {
		t.Parallel()

		_, err := signer.NewECDSASignerFromEnv("KEYBUYER_MISSING_KEY")
		require.ErrorIs(t, err, signer.ErrEnvVarNotFound)
	})
}

package contracts_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api/apitest"
)

var (
	testLock      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testRecipient = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

func TestParseKeyTransfer(t *testing.T) {
	t.Parallel()

	t.Run("passes", func(t *testing.T) {
		t.Parallel()

		lg := apitest.KeyTransferLog(testLock, common.Address{}, testRecipient, big.NewInt(42))

		transfer, ok := contracts.ParseKeyTransfer(lg)
		require.True(t, ok)

		assert.Equal(t, common.Address{}, transfer.From)
		assert.Equal(t, testRecipient, transfer.To)
		assert.Equal(t, big.NewInt(42), transfer.TokenID)
	})

	t.Run("fails - wrong topic", func(t *testing.T) {
		t.Parallel()

		lg := apitest.KeyTransferLog(testLock, common.Address{}, testRecipient, big.NewInt(42))
		lg.Topics[0] = common.HexToHash("0xdead")

		_, ok := contracts.ParseKeyTransfer(lg)
		assert.False(t, ok)
	})

	t.Run("fails - wrong arity", func(t *testing.T) {
		t.Parallel()

		// An ERC-20 Transfer shares the signature but indexes only two
		// topics; it must not decode as key issuance.
		lg := apitest.KeyTransferLog(testLock, common.Address{}, testRecipient, big.NewInt(42))
		lg.Topics = lg.Topics[:3]

		_, ok := contracts.ParseKeyTransfer(lg)
		assert.False(t, ok)
	})
}

func TestParseKeyExtended(t *testing.T) {
	t.Parallel()

	t.Run("passes", func(t *testing.T) {
		t.Parallel()

		lg := apitest.KeyExtendedLog(testLock, big.NewInt(7), big.NewInt(1_900_000_000))

		renewal, ok := contracts.ParseKeyExtended(lg)
		require.True(t, ok)

		assert.Equal(t, big.NewInt(7), renewal.TokenID)
		assert.Equal(t, big.NewInt(1_900_000_000), renewal.NewTimestamp)
	})

	t.Run("fails - wrong topic", func(t *testing.T) {
		t.Parallel()

		lg := apitest.KeyExtendedLog(testLock, big.NewInt(7), big.NewInt(1))
		lg.Topics[0] = common.HexToHash("0xdead")

		_, ok := contracts.ParseKeyExtended(lg)
		assert.False(t, ok)
	})

	t.Run("fails - wrong arity", func(t *testing.T) {
		t.Parallel()

		lg := &types.Log{
			Address: testLock,
			Topics:  []common.Hash{contracts.Lock.Events["KeyExtended"].ID},
		}

		_, ok := contracts.ParseKeyExtended(lg)
		assert.False(t, ok)
	})
}

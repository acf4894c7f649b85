package purchase_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockery/keybuyer/pkg/purchase"
)

func validRequest() *purchase.Request {
	return &purchase.Request{
		Lock:    common.HexToAddress("0x1000000000000000000000000000000000000001"),
		ChainID: big.NewInt(8453),
		Recipients: []common.Address{
			common.HexToAddress("0x2000000000000000000000000000000000000001"),
			common.HexToAddress("0x2000000000000000000000000000000000000002"),
		},
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	t.Run("passes - minimal request", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, validRequest().Validate())
	})

	t.Run("passes - full per-recipient arrays", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.Prices = []string{"1.5", "2"}
		req.Referrers = make([]common.Address, 2)
		req.KeyManagers = make([]common.Address, 2)
		req.Data = [][]byte{{0x01}, {}}
		req.Recurring = []uint{12, 12}

		require.NoError(t, req.Validate())
	})

	t.Run("fails - no lock", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.Lock = common.Address{}

		require.ErrorIs(t, req.Validate(), purchase.ErrMissingLock)
	})

	t.Run("fails - no chain id", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.ChainID = nil

		require.ErrorIs(t, req.Validate(), purchase.ErrMissingChainID)
	})

	t.Run("fails - no recipients", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.Recipients = nil

		require.ErrorIs(t, req.Validate(), purchase.ErrNoRecipients)
	})

	t.Run("fails - mismatched per-recipient arrays", func(t *testing.T) {
		t.Parallel()

		for _, mutate := range map[string]func(*purchase.Request){
			"prices":       func(r *purchase.Request) { r.Prices = []string{"1"} },
			"referrers":    func(r *purchase.Request) { r.Referrers = make([]common.Address, 3) },
			"key managers": func(r *purchase.Request) { r.KeyManagers = make([]common.Address, 1) },
			"data":         func(r *purchase.Request) { r.Data = [][]byte{{0x01}} },
			"recurring":    func(r *purchase.Request) { r.Recurring = []uint{1, 2, 3} },
		} {
			req := validRequest()
			mutate(req)

			require.ErrorIs(t, req.Validate(), purchase.ErrLengthMismatch)
		}
	})
}

func TestRequestDefaults(t *testing.T) {
	t.Parallel()

	req := validRequest()

	assert.Equal(t, common.Address{}, req.ReferrerAt(0))
	assert.Equal(t, common.Address{}, req.KeyManagerAt(1))
	assert.Equal(t, []byte{}, req.DataAt(0))

	req.Data = [][]byte{nil, {0x2a}}
	assert.Equal(t, []byte{}, req.DataAt(0))
	assert.Equal(t, []byte{0x2a}, req.DataAt(1))
}

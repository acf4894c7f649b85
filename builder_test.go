package keybuyer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/purchase"
)

var (
	buildLock       = common.HexToAddress("0x1000000000000000000000000000000000000001")
	buildToken      = common.HexToAddress("0x3000000000000000000000000000000000000001")
	buildSwapper    = common.HexToAddress("0x4000000000000000000000000000000000000001")
	buildRouter     = common.HexToAddress("0x5000000000000000000000000000000000000001")
	buildRecipients = []common.Address{
		common.HexToAddress("0x2000000000000000000000000000000000000001"),
		common.HexToAddress("0x2000000000000000000000000000000000000002"),
	}
)

func buildRequest() *purchase.Request {
	return &purchase.Request{
		Lock:       buildLock,
		ChainID:    big.NewInt(8453),
		Recipients: buildRecipients,
	}
}

func buildAmounts() []*big.Int {
	return []*big.Int{big.NewInt(100), big.NewInt(200)}
}

func selector(plan *purchase.Plan) [4]byte {
	return [4]byte(plan.Data[:4])
}

func TestBuildPlansBatched(t *testing.T) {
	t.Parallel()

	plans, err := buildPlans(buildRequest(), buildAmounts(), purchase.NativeToken, 13, common.Address{})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, buildLock, plan.To)
	assert.Equal(t, big.NewInt(300), plan.Value)
	assert.Equal(t, [4]byte(contracts.Lock.Methods["purchase"].ID), selector(plan))

	vals, err := contracts.Lock.Methods["purchase"].Inputs.Unpack(plan.Data[4:])
	require.NoError(t, err)

	assert.Equal(t, buildAmounts(), vals[0].([]*big.Int))
	assert.Equal(t, buildRecipients, vals[1].([]common.Address))
	assert.Equal(t, make([]common.Address, 2), vals[2].([]common.Address))
	assert.Equal(t, make([]common.Address, 2), vals[3].([]common.Address))
}

func TestBuildPlansPerRecipient(t *testing.T) {
	t.Parallel()

	// Locks below the batched-arguments version get one call per
	// recipient.
	plans, err := buildPlans(buildRequest(), buildAmounts(), purchase.NativeToken, 9, common.Address{})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	for i, plan := range plans {
		assert.Equal(t, buildLock, plan.To)
		assert.Equal(t, buildAmounts()[i], plan.Value)
		assert.Equal(t, [4]byte(contracts.Lock.Methods["purchaseFor"].ID), selector(plan))
	}
}

func TestBuildPlansERC20CarriesNoValue(t *testing.T) {
	t.Parallel()

	plans, err := buildPlans(buildRequest(), buildAmounts(), buildToken, 13, common.Address{})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	assert.Zero(t, plans[0].Value.Sign())
}

func TestBuildPlansRenewal(t *testing.T) {
	t.Parallel()

	// Renewals are never batched, whatever the lock version.
	req := buildRequest()
	req.Renew = true

	plans, err := buildPlans(req, buildAmounts(), buildToken, 13, common.Address{})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	for i, plan := range plans {
		assert.Equal(t, [4]byte(contracts.Lock.Methods["renewKeyFor"].ID), selector(plan))

		vals, err := contracts.Lock.Methods["renewKeyFor"].Inputs.Unpack(plan.Data[4:])
		require.NoError(t, err)
		assert.Equal(t, buildAmounts()[i], vals[0].(*big.Int))
		assert.Equal(t, buildRecipients[i], vals[1].(common.Address))
	}
}

func TestBuildPlansSwapWrap(t *testing.T) {
	t.Parallel()

	route := &purchase.SwapRoute{
		SrcToken:     buildToken,
		Router:       buildRouter,
		SwapCalldata: []byte{0xca, 0xfe},
		Value:        big.NewInt(0),
		AmountIn:     big.NewInt(1000),
	}

	req := buildRequest()
	req.Route = route

	plans, err := buildPlans(req, buildAmounts(), purchase.NativeToken, 13, buildSwapper)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, buildSwapper, plan.To)
	assert.Equal(t, route.Value, plan.Value)

	vals, err := contracts.SwapPurchaser.Methods["swapAndCall"].Inputs.Unpack(plan.Data[4:])
	require.NoError(t, err)

	assert.Equal(t, buildLock, vals[0].(common.Address))
	assert.Equal(t, buildToken, vals[1].(common.Address))
	assert.Equal(t, big.NewInt(300), vals[2].(*big.Int))
	assert.Equal(t, big.NewInt(1010), vals[3].(*big.Int)) // quote + 1% buffer
	assert.Equal(t, buildRouter, vals[4].(common.Address))
	assert.Equal(t, route.SwapCalldata, vals[5].([]byte))

	// The inner call is the batched purchase, encoded without value.
	inner := vals[6].([]byte)
	assert.Equal(t, []byte(contracts.Lock.Methods["purchase"].ID), inner[:4])
}

func TestBuildPlansSwapRequiresContract(t *testing.T) {
	t.Parallel()

	req := buildRequest()
	req.Route = &purchase.SwapRoute{SrcToken: buildToken, AmountIn: big.NewInt(1)}

	_, err := buildPlans(req, buildAmounts(), purchase.NativeToken, 13, common.Address{})
	require.ErrorIs(t, err, ErrNoSwapPurchaser)
}

func TestBuildPlansSwapNotBatchable(t *testing.T) {
	t.Parallel()

	route := &purchase.SwapRoute{SrcToken: buildToken, AmountIn: big.NewInt(1)}

	t.Run("fails - several calls on an unbatched lock", func(t *testing.T) {
		t.Parallel()

		req := buildRequest()
		req.Route = route

		_, err := buildPlans(req, buildAmounts(), purchase.NativeToken, 9, buildSwapper)
		require.ErrorIs(t, err, ErrSwapNotBatchable)
	})

	t.Run("fails - several renewals", func(t *testing.T) {
		t.Parallel()

		req := buildRequest()
		req.Route = route
		req.Renew = true

		_, err := buildPlans(req, buildAmounts(), purchase.NativeToken, 13, buildSwapper)
		require.ErrorIs(t, err, ErrSwapNotBatchable)
	})

	t.Run("passes - single renewal", func(t *testing.T) {
		t.Parallel()

		req := buildRequest()
		req.Recipients = buildRecipients[:1]
		req.Route = route
		req.Renew = true

		plans, err := buildPlans(req, buildAmounts()[:1], purchase.NativeToken, 13, buildSwapper)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, buildSwapper, plans[0].To)
	})
}

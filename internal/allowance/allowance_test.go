package allowance_test

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockery/keybuyer/internal/allowance"
	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/internal/observability"
	"github.com/lockery/keybuyer/pkg/api/apitest"
	"github.com/lockery/keybuyer/pkg/purchase"
)

var (
	testToken   = common.HexToAddress("0x3000000000000000000000000000000000000001")
	testSpender = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testOwner   = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

var _ allowance.Broadcaster = (*mockBroadcaster)(nil)

type mockBroadcaster struct {
	t       *testing.T
	status  uint64
	waitErr error
	plans   []*purchase.Plan
}

func (m *mockBroadcaster) Broadcast(_ context.Context, plan *purchase.Plan) (common.Hash, error) {
	m.t.Helper()

	m.plans = append(m.plans, plan)

	return common.HexToHash("0xdead"), nil
}

func (m *mockBroadcaster) WaitMined(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.t.Helper()

	if m.waitErr != nil {
		return nil, m.waitErr
	}

	return &types.Receipt{Status: m.status, TxHash: txHash}, nil
}

func newManager(t *testing.T, backend *apitest.Backend, caster *mockBroadcaster) *allowance.Manager {
	t.Helper()

	return allowance.NewManager(backend, caster, testOwner, slog.New(observability.NewNoopHandler()))
}

func stubAllowance(backend *apitest.Backend, current *big.Int) {
	backend.StubCall(contracts.ERC20.Methods["allowance"].ID, apitest.Uint256Out(current))
}

func TestEnsureNativeNoop(t *testing.T) {
	t.Parallel()

	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusSuccessful}
	mgr := newManager(t, apitest.NewBackend(), caster)

	require.NoError(t, mgr.Ensure(t.Context(), purchase.NativeToken, testSpender, big.NewInt(100), nil))
	assert.Empty(t, caster.plans)
}

func TestEnsureSufficientAllowanceNoop(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	stubAllowance(backend, big.NewInt(1000))

	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusSuccessful}
	mgr := newManager(t, backend, caster)

	// Repeated calls stay idempotent while the allowance holds.
	for range 3 {
		require.NoError(t, mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(1000), nil))
	}

	assert.Empty(t, caster.plans)
}

func TestEnsureApproves(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	stubAllowance(backend, big.NewInt(0))

	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusSuccessful}
	mgr := newManager(t, backend, caster)

	require.NoError(t, mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(500), nil))
	require.Len(t, caster.plans, 1)

	plan := caster.plans[0]
	assert.Equal(t, testToken, plan.To)

	vals, err := contracts.ERC20.Methods["approve"].Inputs.Unpack(plan.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, testSpender, vals[0].(common.Address))
	assert.Equal(t, big.NewInt(500), vals[1].(*big.Int))
}

func TestEnsureApprovesCap(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	stubAllowance(backend, big.NewInt(0))

	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusSuccessful}
	mgr := newManager(t, backend, caster)

	require.NoError(t, mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(500), purchase.Unlimited))
	require.Len(t, caster.plans, 1)

	vals, err := contracts.ERC20.Methods["approve"].Inputs.Unpack(caster.plans[0].Data[4:])
	require.NoError(t, err)
	assert.Equal(t, purchase.Unlimited, vals[1].(*big.Int))
}

func TestEnsureRevertedApprovalFatal(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	stubAllowance(backend, big.NewInt(0))

	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusFailed}
	mgr := newManager(t, backend, caster)

	err := mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(500), nil)
	require.ErrorIs(t, err, purchase.ErrApprovalFailed)
}

func TestEnsureUnminedApprovalFatal(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	stubAllowance(backend, big.NewInt(0))

	caster := &mockBroadcaster{t: t, waitErr: errors.New("context deadline exceeded")}
	mgr := newManager(t, backend, caster)

	err := mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(500), nil)
	require.ErrorIs(t, err, purchase.ErrApprovalFailed)
}

func TestEnsurePropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	// No allowance stub: the read failure propagates, unclassified.
	caster := &mockBroadcaster{t: t, status: types.ReceiptStatusSuccessful}
	mgr := newManager(t, apitest.NewBackend(), caster)

	err := mgr.Ensure(t.Context(), testToken, testSpender, big.NewInt(500), nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, purchase.ErrApprovalFailed)
}

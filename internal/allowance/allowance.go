// Package allowance guarantees a spender contract holds a sufficient
// ERC-20 allowance before a spending call executes.
package allowance

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// A Broadcaster signs and broadcasts a built plan and can wait for it to
// be mined.  The root package's submitter satisfies it.
type Broadcaster interface {
	Broadcast(ctx context.Context, plan *purchase.Plan) (common.Hash, error)
	WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Manager ensures spending allowances are in place.  It submits at most
// one approval transaction per Ensure call.
type Manager struct {
	backend api.Backend
	caster  Broadcaster
	owner   common.Address
	log     *slog.Logger
}

func NewManager(backend api.Backend, caster Broadcaster, owner common.Address, log *slog.Logger) *Manager {
	return &Manager{
		backend: backend,
		caster:  caster,
		owner:   owner,
		log:     log,
	}
}

// Ensure makes sure spender may transfer at least required base units of
// token on the owner's behalf.
//
// It is a no-op for the native-currency sentinel and when the current
// allowance already meets the requirement.  Otherwise it submits one
// approval for cap (nil means exactly required; purchase.Unlimited is
// allowed) and waits for it to be mined before returning.  A reverted or
// unmined approval is fatal to the enclosing purchase attempt.
func (m *Manager) Ensure(ctx context.Context, token, spender common.Address, required, cap *big.Int) error {
	if purchase.IsNative(token) {
		return nil
	}

	current, err := m.Allowance(ctx, token, spender)
	if err != nil {
		return err
	}

	if current.Cmp(required) >= 0 {
		m.log.Debug("allowance sufficient",
			slog.String("token", token.Hex()),
			slog.String("spender", spender.Hex()),
			slog.String("allowance", current.String()))

		return nil
	}

	if cap == nil || cap.Cmp(required) < 0 {
		cap = required
	}

	data, err := contracts.PackApprove(spender, cap)
	if err != nil {
		return fmt.Errorf("encode approve: %w", err)
	}

	txHash, err := m.caster.Broadcast(ctx, &purchase.Plan{To: token, Data: data})
	if err != nil {
		return fmt.Errorf("%w: %w", purchase.ErrApprovalFailed, err)
	}

	m.log.Debug("approval submitted",
		slog.String("token", token.Hex()),
		slog.String("spender", spender.Hex()),
		slog.String("amount", cap.String()),
		slog.String("tx", txHash.Hex()))

	receipt, err := m.caster.WaitMined(ctx, txHash)
	if err != nil {
		return fmt.Errorf("%w: %w", purchase.ErrApprovalFailed, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: tx %s reverted", purchase.ErrApprovalFailed, txHash.Hex())
	}

	return nil
}

// Allowance reads the current allowance of spender over the owner's token
// balance.
func (m *Manager) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	data, err := contracts.PackAllowance(m.owner, spender)
	if err != nil {
		return nil, fmt.Errorf("encode allowance: %w", err)
	}

	out, err := m.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("query allowance: %w", err)
	}

	return contracts.UnpackAllowance(out)
}

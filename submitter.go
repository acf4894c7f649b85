package keybuyer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lockery/keybuyer/internal/allowance"
	"github.com/lockery/keybuyer/internal/confirm"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

var _ allowance.Broadcaster = (*submitter)(nil)

// submitter is the wallet layer of one purchase attempt: it fills in
// whatever the plan left unset (nonce, gas limit, fee parameters), signs
// through the active signing session and broadcasts.  It returns as soon
// as the transaction is accepted into the pending pool.
type submitter struct {
	backend   api.Backend
	signer    api.TxSigner
	chainID   *big.Int
	confirmer *confirm.Resolver
	log       *slog.Logger
}

// Broadcast submits plan and returns the pending-transaction hash.
// Exactly one transaction is broadcast per invocation.
func (s *submitter) Broadcast(ctx context.Context, plan *purchase.Plan) (common.Hash, error) {
	from := s.signer.Address()

	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("query nonce: %w", err)
	}

	value := plan.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit := plan.GasLimit
	if gasLimit == 0 {
		gasLimit, err = s.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  from,
			To:    &plan.To,
			Value: value,
			Data:  plan.Data,
		})
		if err != nil {
			return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
		}
	}

	tx, err := s.buildTx(ctx, plan, nonce, gasLimit, value)
	if err != nil {
		return common.Hash{}, err
	}

	signed, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return common.Hash{}, err
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast: %w", err)
	}

	s.log.Debug("transaction broadcast",
		slog.String("to", plan.To.Hex()),
		slog.String("tx", signed.Hash().Hex()),
		slog.Uint64("gas", gasLimit))

	return signed.Hash(), nil
}

// WaitMined blocks until txHash is mined.
func (s *submitter) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return s.confirmer.WaitMined(ctx, txHash)
}

func (s *submitter) buildTx(ctx context.Context, plan *purchase.Plan, nonce, gasLimit uint64, value *big.Int) (*types.Transaction, error) {
	if plan.GasPrice != nil {
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &plan.To,
			Value:    value,
			Gas:      gasLimit,
			GasPrice: plan.GasPrice,
			Data:     plan.Data,
		}), nil
	}

	feeCap, tipCap := plan.GasFeeCap, plan.GasTipCap

	if feeCap == nil {
		tip, tipErr := s.backend.SuggestGasTipCap(ctx)

		gasPrice, err := s.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("query gas price: %w", err)
		}

		if tipErr != nil {
			return types.NewTx(&types.LegacyTx{
				Nonce:    nonce,
				To:       &plan.To,
				Value:    value,
				Gas:      gasLimit,
				GasPrice: gasPrice,
				Data:     plan.Data,
			}), nil
		}

		// The legacy suggestion doubles as a conservative fee cap.
		feeCap, tipCap = gasPrice, tip
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		To:        &plan.To,
		Value:     value,
		Gas:       gasLimit,
		GasFeeCap: feeCap,
		GasTipCap: tipCap,
		Data:      plan.Data,
	}), nil
}

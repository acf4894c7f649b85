// Package confirm waits for a broadcast transaction to be mined and
// interprets its receipt.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// DefaultPollInterval is how often the resolver polls for a receipt.
const DefaultPollInterval = time.Second

// Result is the interpreted receipt of one purchase or renewal
// transaction.  Empty Transfers and Renewals on a successful receipt mean
// the outcome is ambiguous: the key may still have been issued.
type Result struct {
	Transfers []contracts.KeyTransfer
	Renewals  []contracts.KeyExtended
}

// Resolver blocks until a transaction is mined and extracts the resulting
// credential identifiers from its logs.
type Resolver struct {
	backend  api.Backend
	interval time.Duration
	log      *slog.Logger
}

func NewResolver(backend api.Backend, interval time.Duration, log *slog.Logger) *Resolver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Resolver{
		backend:  backend,
		interval: interval,
		log:      log,
	}
}

// WaitMined polls until the transaction is mined, obtaining its receipt.
// A stalled wait is bounded only by ctx.
func (r *Resolver) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		receipt, err := r.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}

		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("query receipt: %w", err)
		}

		r.log.Debug("transaction pending", slog.String("tx", txHash.Hex()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Confirm waits for txHash to be mined and decodes every log the lock
// emitted.  Logs from any other address are ignored even when they decode
// against the same event shape (a payment token's own Transfer log is not
// credential issuance).  A reverted receipt fails with
// purchase.ErrTransactionFailed.
func (r *Resolver) Confirm(ctx context.Context, txHash common.Hash, lock common.Address) (*Result, error) {
	receipt, err := r.WaitMined(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s", purchase.ErrTransactionFailed, txHash.Hex())
	}

	result := &Result{}

	for _, lg := range receipt.Logs {
		if lg.Address != lock {
			continue
		}

		if transfer, ok := contracts.ParseKeyTransfer(lg); ok {
			result.Transfers = append(result.Transfers, *transfer)

			continue
		}

		if renewal, ok := contracts.ParseKeyExtended(lg); ok {
			result.Renewals = append(result.Renewals, *renewal)
		}
	}

	r.log.Debug("transaction confirmed",
		slog.String("tx", txHash.Hex()),
		slog.Int("transfers", len(result.Transfers)),
		slog.Int("renewals", len(result.Renewals)))

	return result, nil
}

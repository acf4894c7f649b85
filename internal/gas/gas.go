// Package gas estimates transaction resource cost with a safe fallback:
// when precise estimation fails the caller broadcasts without overrides
// and lets the wallet layer estimate unaided.
package gas

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// Gas limit safety margin applied to a successful estimate, as a fraction.
// The lock's reward bookkeeping branches on network state at broadcast
// time, so the estimate alone can come up short.
const (
	marginNum = 13
	marginDen = 10
)

// Params are the resolved resource-cost overrides for one plan.  The zero
// value means "no overrides": the submitter fills everything in at
// broadcast time.
type Params struct {
	GasLimit  uint64
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
}

// Estimator resolves gas limits and fee parameters.
type Estimator struct {
	backend api.Backend
	log     *slog.Logger
}

func NewEstimator(backend api.Backend, log *slog.Logger) *Estimator {
	return &Estimator{backend: backend, log: log}
}

// Estimate resolves Params for the would-be call in plan, sent by from.
//
// It fetches current fee data (the EIP-1559 pair when the backend offers
// one, the legacy gas price otherwise) and estimates gas under those
// parameters.  On success only the gas limit is kept, at 130% of the
// estimate; the fee overrides are discarded so the wallet layer chooses
// them at broadcast time.  On any failure it returns the zero Params.
// Estimate never fails.
func (e *Estimator) Estimate(ctx context.Context, from common.Address, plan *purchase.Plan) Params {
	msg := ethereum.CallMsg{
		From:  from,
		To:    &plan.To,
		Value: plan.Value,
		Data:  plan.Data,
	}

	gasPrice, err := e.backend.SuggestGasPrice(ctx)
	if err != nil {
		e.log.Debug("gas estimation degraded", slog.String("stage", "fee data"), slog.Any("error", err))

		return Params{}
	}

	if tipCap, err := e.backend.SuggestGasTipCap(ctx); err == nil {
		msg.GasFeeCap = gasPrice
		msg.GasTipCap = tipCap
	} else {
		msg.GasPrice = gasPrice
	}

	estimate, err := e.backend.EstimateGas(ctx, msg)
	if err != nil {
		e.log.Debug("gas estimation degraded", slog.String("stage", "estimate"), slog.Any("error", err))

		return Params{}
	}

	return Params{GasLimit: estimate * marginNum / marginDen}
}

package keybuyer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// ErrNoSwapPurchaser is returned when a request carries a SwapRoute but no
// swap-purchaser contract was configured via WithSwapPurchaser.
var ErrNoSwapPurchaser = errors.New("no swap-purchaser contract configured")

// ErrSwapNotBatchable is returned when a swap-funded request would need
// more than one lock call (a renewal of several keys, or several
// recipients on a lock without batched purchases).  One swap funds one
// call.
var ErrSwapNotBatchable = errors.New("swap route cannot fund more than one lock call")

// buildPlans constructs the contract calls for req: per-recipient renewal
// calls, one batched purchase when the lock advertises batched arguments,
// a single purchase per recipient otherwise, and optionally a
// swap-and-purchase wrapper around the whole call.  Renewal and swap
// funding are orthogonal.
func buildPlans(req *purchase.Request, amounts []*big.Int, token common.Address, version uint16, swapPurchaser common.Address) ([]*purchase.Plan, error) {
	native := purchase.IsNative(token)
	if req.Route != nil {
		// The swap pays the lock; no value is attached to the inner
		// call and the route decides what the buyer spends.
		native = false
	}

	plans, err := buildDirect(req, amounts, native, version)
	if err != nil {
		return nil, err
	}

	if req.Route == nil {
		return plans, nil
	}

	if swapPurchaser == (common.Address{}) {
		return nil, ErrNoSwapPurchaser
	}

	if len(plans) != 1 {
		return nil, fmt.Errorf("%w: %d calls", ErrSwapNotBatchable, len(plans))
	}

	total := sum(amounts)

	data, err := contracts.PackSwapAndCall(
		req.Lock,
		req.Route.SrcToken,
		total,
		req.Route.MaxAmountIn(),
		req.Route.Router,
		req.Route.SwapCalldata,
		plans[0].Data,
	)
	if err != nil {
		return nil, fmt.Errorf("encode swapAndCall: %w", err)
	}

	// The route's native value overrides anything the inner encoding set.
	return []*purchase.Plan{{
		To:    swapPurchaser,
		Data:  data,
		Value: req.Route.Value,
	}}, nil
}

func buildDirect(req *purchase.Request, amounts []*big.Int, native bool, version uint16) ([]*purchase.Plan, error) {
	n := len(req.Recipients)

	if req.Renew {
		plans := make([]*purchase.Plan, 0, n)

		for i, recipient := range req.Recipients {
			data, err := contracts.PackRenewKeyFor(amounts[i], recipient, req.ReferrerAt(i), req.DataAt(i))
			if err != nil {
				return nil, fmt.Errorf("encode renewKeyFor: %w", err)
			}

			plans = append(plans, &purchase.Plan{
				To:    req.Lock,
				Data:  data,
				Value: valueFor(native, amounts[i]),
			})
		}

		return plans, nil
	}

	if version >= contracts.BatchPurchaseVersion {
		referrers := make([]common.Address, n)
		managers := make([]common.Address, n)
		data := make([][]byte, n)

		for i := range req.Recipients {
			referrers[i] = req.ReferrerAt(i)
			managers[i] = req.KeyManagerAt(i)
			data[i] = req.DataAt(i)
		}

		packed, err := contracts.PackPurchase(amounts, req.Recipients, referrers, managers, data)
		if err != nil {
			return nil, fmt.Errorf("encode purchase: %w", err)
		}

		return []*purchase.Plan{{
			To:    req.Lock,
			Data:  packed,
			Value: valueFor(native, sum(amounts)),
		}}, nil
	}

	plans := make([]*purchase.Plan, 0, n)

	for i, recipient := range req.Recipients {
		data, err := contracts.PackPurchaseFor(amounts[i], recipient, req.ReferrerAt(i), req.KeyManagerAt(i), req.DataAt(i))
		if err != nil {
			return nil, fmt.Errorf("encode purchaseFor: %w", err)
		}

		plans = append(plans, &purchase.Plan{
			To:    req.Lock,
			Data:  data,
			Value: valueFor(native, amounts[i]),
		})
	}

	return plans, nil
}

func valueFor(native bool, amount *big.Int) *big.Int {
	if !native {
		return new(big.Int)
	}

	return new(big.Int).Set(amount)
}

// allowanceTotal is the ERC-20 allowance a request needs: the resolved
// amounts, each multiplied by its recurring-period count so later renewals
// are pre-approved.
func allowanceTotal(req *purchase.Request, amounts []*big.Int) *big.Int {
	total := new(big.Int)

	for i, a := range amounts {
		periods := int64(1)
		if len(req.Recurring) > 0 && req.Recurring[i] > 1 {
			periods = int64(req.Recurring[i])
		}

		total.Add(total, new(big.Int).Mul(a, big.NewInt(periods)))
	}

	return total
}

func sum(amounts []*big.Int) *big.Int {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, a)
	}

	return total
}

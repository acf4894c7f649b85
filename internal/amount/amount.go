// Package amount converts nominal prices into integer base-unit amounts,
// resolving token decimals on-chain when they are not supplied.
package amount

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// ErrInvalidPrice is returned when a nominal price string cannot be parsed
// as a non-negative decimal number.
var ErrInvalidPrice = errors.New("invalid nominal price")

// ErrTooPrecise is returned when a nominal price has more fractional
// digits than the token supports.
var ErrTooPrecise = errors.New("price has more fractional digits than token decimals")

// Resolver turns nominal prices into base-unit amounts.
type Resolver struct {
	backend api.Backend
}

func NewResolver(backend api.Backend) *Resolver {
	return &Resolver{backend: backend}
}

// Resolve returns the base-unit amount for one recipient.
//
// Policy, in order: an empty price queries the lock's current default
// price (already in base units); a price with explicit decimals converts
// directly; otherwise decimals are resolved from the token contract,
// defaulting to 18 for the native-currency sentinel.  Lookup failures
// propagate verbatim.
func (r *Resolver) Resolve(ctx context.Context, lock, token common.Address, price string, decimals *uint8) (*big.Int, error) {
	if price == "" {
		return r.DefaultPrice(ctx, lock)
	}

	if decimals == nil {
		d, err := r.Decimals(ctx, token)
		if err != nil {
			return nil, err
		}

		decimals = &d
	}

	return ParseUnits(price, *decimals)
}

// ResolveAll resolves the base-unit amount for every recipient of req,
// preserving recipient order.
func (r *Resolver) ResolveAll(ctx context.Context, req *purchase.Request, token common.Address) ([]*big.Int, error) {
	amounts := make([]*big.Int, len(req.Recipients))

	for i := range req.Recipients {
		price := ""
		if len(req.Prices) != 0 {
			price = req.Prices[i]
		}

		amt, err := r.Resolve(ctx, req.Lock, token, price, req.Decimals)
		if err != nil {
			return nil, err
		}

		amounts[i] = amt
	}

	return amounts, nil
}

// DefaultPrice queries the lock's current default key price.
func (r *Resolver) DefaultPrice(ctx context.Context, lock common.Address) (*big.Int, error) {
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &lock, Data: contracts.PackKeyPrice()}, nil)
	if err != nil {
		return nil, fmt.Errorf("query default price: %w", err)
	}

	return contracts.UnpackKeyPrice(out)
}

// Decimals resolves a payment token's precision, defaulting to 18 for the
// native-currency sentinel.
func (r *Resolver) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if purchase.IsNative(token) {
		return 18, nil
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: contracts.PackDecimals()}, nil)
	if err != nil {
		return 0, fmt.Errorf("query token decimals: %w", err)
	}

	return contracts.UnpackDecimals(out)
}

// ParseUnits converts a decimal string into base units without passing
// through floating point.
func ParseUnits(price string, decimals uint8) (*big.Int, error) {
	whole, frac, _ := strings.Cut(price, ".")
	if whole == "" {
		whole = "0"
	}

	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q with %d decimals", ErrTooPrecise, price, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))

	units, ok := new(big.Int).SetString(digits, 10)
	if !ok || units.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
	}

	return units, nil
}

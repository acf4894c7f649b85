package api

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/pkg/purchase"
)

// A Quote is the pricing collaborator's cost breakdown for one checkout
// attempt.
type Quote struct {
	// Token is the currency the buyer pays in.  The native sentinel
	// means the chain's native currency.
	Token common.Address

	// Amounts is the per-recipient cost in Token base units.
	Amounts []*big.Int

	// Route is set when payment requires an on-chain swap into the
	// lock's configured token.
	Route *purchase.SwapRoute
}

// Total sums the per-recipient amounts.
func (q *Quote) Total() *big.Int {
	total := new(big.Int)
	for _, a := range q.Amounts {
		total.Add(total, a)
	}

	return total
}

// A Pricing collaborator computes the total cost of a checkout attempt.
// This engine only consumes its output; how prices and swap routes are
// sourced is outside its scope.
type Pricing interface {
	Quote(ctx context.Context, lock common.Address, recipients []common.Address) (*Quote, error)
}

package purchase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Slippage buffer applied to a route's quoted input amount, as a fraction.
const (
	slippageNum = 101
	slippageDen = 100
)

// SwapRoute funds a purchase through a router-mediated token swap executed
// atomically with the purchase call.  It is produced by the pricing
// collaborator and consumed verbatim by the call builder.
type SwapRoute struct {
	// SrcToken is the token the buyer actually spends.
	SrcToken common.Address

	// Router is the decentralized exchange router executing the swap.
	Router common.Address

	// SwapCalldata is the router's opaque swap payload.
	SwapCalldata []byte

	// Value is the native currency to forward with the swap call.
	Value *big.Int

	// AmountIn is the quoted input amount in SrcToken base units.
	AmountIn *big.Int
}

// MaxAmountIn bounds slippage: the quoted input amount inflated by a fixed
// 1% buffer, rounded down.
func (r *SwapRoute) MaxAmountIn() *big.Int {
	max := new(big.Int).Mul(r.AmountIn, big.NewInt(slippageNum))

	return max.Div(max, big.NewInt(slippageDen))
}

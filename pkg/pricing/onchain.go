// Package pricing quotes the cost of a purchase straight from the lock:
// one advertised key price per recipient, paid in the lock's own token.
// Swap-funded quotes come from richer, off-chain collaborators.
package pricing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api"
)

var _ api.Pricing = (*Onchain)(nil)

// Onchain is an api.Pricing that reads the lock's advertised price.
type Onchain struct {
	backend api.Backend
}

func NewOnchain(backend api.Backend) *Onchain {
	return &Onchain{backend: backend}
}

func (o *Onchain) Quote(ctx context.Context, lock common.Address, recipients []common.Address) (*api.Quote, error) {
	out, err := o.backend.CallContract(ctx, ethereum.CallMsg{To: &lock, Data: contracts.PackTokenAddress()}, nil)
	if err != nil {
		return nil, fmt.Errorf("query lock token: %w", err)
	}

	token, err := contracts.UnpackTokenAddress(out)
	if err != nil {
		return nil, err
	}

	out, err = o.backend.CallContract(ctx, ethereum.CallMsg{To: &lock, Data: contracts.PackKeyPrice()}, nil)
	if err != nil {
		return nil, fmt.Errorf("query key price: %w", err)
	}

	price, err := contracts.UnpackKeyPrice(out)
	if err != nil {
		return nil, err
	}

	amounts := make([]*big.Int, len(recipients))
	for i := range amounts {
		amounts[i] = new(big.Int).Set(price)
	}

	return &api.Quote{Token: token, Amounts: amounts}, nil
}

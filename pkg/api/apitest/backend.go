// Package apitest provides a scripted api.Backend and receipt helpers for
// exercising the purchase pipeline without a network.
package apitest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/pkg/api"
)

var _ api.Backend = (*Backend)(nil)

// CallHandler answers one stubbed read-only contract call.
type CallHandler func(msg ethereum.CallMsg) ([]byte, error)

// Backend is a scripted api.Backend.  Read-only calls are answered by
// selector-keyed stubs; broadcast transactions are recorded and receive a
// receipt from ReceiptFor (successful and empty unless overridden).
type Backend struct {
	mu sync.Mutex

	GasPriceSuggestion *big.Int
	GasPriceErr        error
	TipCapSuggestion   *big.Int
	TipCapErr          error
	GasEstimate        uint64
	EstimateErr        error
	SendErr            error

	// ReceiptFor produces the receipt a just-broadcast transaction will
	// eventually be mined with.
	ReceiptFor func(tx *types.Transaction) *types.Receipt

	calls    map[[4]byte]CallHandler
	balances map[common.Address]*big.Int
	receipts map[common.Hash]*types.Receipt
	sent     []*types.Transaction
}

func NewBackend() *Backend {
	return &Backend{
		GasPriceSuggestion: big.NewInt(2_000_000_000),
		TipCapSuggestion:   big.NewInt(1_000_000_000),
		GasEstimate:        100_000,
		ReceiptFor: func(tx *types.Transaction) *types.Receipt {
			return SuccessReceipt(tx.Hash())
		},
		calls:    make(map[[4]byte]CallHandler),
		balances: make(map[common.Address]*big.Int),
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

// StubCall answers every call whose data starts with selector with out.
func (b *Backend) StubCall(selector, out []byte) {
	b.StubCallFunc(selector, func(ethereum.CallMsg) ([]byte, error) {
		return out, nil
	})
}

// StubCallFunc installs a handler for calls starting with selector.
func (b *Backend) StubCallFunc(selector []byte, handler CallHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls[[4]byte(selector[:4])] = handler
}

// SetBalance fixes an account's native balance.  Unknown accounts default
// to 1000 ether.
func (b *Backend) SetBalance(account common.Address, balance *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.balances[account] = balance
}

// Sent returns every broadcast transaction in order.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*types.Transaction, len(b.sent))
	copy(out, b.sent)

	return out
}

// SentTo returns every broadcast transaction addressed to to.
func (b *Backend) SentTo(to common.Address) []*types.Transaction {
	var out []*types.Transaction

	for _, tx := range b.Sent() {
		if tx.To() != nil && *tx.To() == to {
			out = append(out, tx)
		}
	}

	return out
}

func (b *Backend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("call data too short: %d bytes", len(msg.Data))
	}

	b.mu.Lock()
	handler, ok := b.calls[[4]byte(msg.Data[:4])]
	b.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no stub for selector %#x", msg.Data[:4])
	}

	return handler(msg)
}

func (b *Backend) BalanceAt(_ context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if balance, ok := b.balances[account]; ok {
		return new(big.Int).Set(balance), nil
	}

	return new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)), nil
}

func (b *Backend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return uint64(len(b.sent)), nil
}

func (b *Backend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	if b.GasPriceErr != nil {
		return nil, b.GasPriceErr
	}

	return new(big.Int).Set(b.GasPriceSuggestion), nil
}

func (b *Backend) SuggestGasTipCap(_ context.Context) (*big.Int, error) {
	if b.TipCapErr != nil {
		return nil, b.TipCapErr
	}

	return new(big.Int).Set(b.TipCapSuggestion), nil
}

func (b *Backend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}

	return b.GasEstimate, nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if b.SendErr != nil {
		return b.SendErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sent = append(b.sent, tx)
	b.receipts[tx.Hash()] = b.ReceiptFor(tx)

	return nil
}

func (b *Backend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return receipt, nil
}

// SuccessReceipt builds a status-1 receipt carrying the given logs.
func SuccessReceipt(txHash common.Hash, logs ...*types.Log) *types.Receipt {
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: txHash,
		Logs:   logs,
	}
}

// RevertedReceipt builds a status-0 receipt carrying the given logs.
func RevertedReceipt(txHash common.Hash, logs ...*types.Log) *types.Receipt {
	return &types.Receipt{
		Status: types.ReceiptStatusFailed,
		TxHash: txHash,
		Logs:   logs,
	}
}

// KeyTransferLog builds an ERC-721 Transfer log as emitted by the given
// address.
func KeyTransferLog(emitter, from, to common.Address, tokenID *big.Int) *types.Log {
	return &types.Log{
		Address: emitter,
		Topics: []common.Hash{
			contracts.Lock.Events["Transfer"].ID,
			common.BytesToHash(common.LeftPadBytes(from.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(to.Bytes(), 32)),
			common.BigToHash(tokenID),
		},
	}
}

// KeyExtendedLog builds a lock renewal log.
func KeyExtendedLog(emitter common.Address, tokenID, newTimestamp *big.Int) *types.Log {
	return &types.Log{
		Address: emitter,
		Topics: []common.Hash{
			contracts.Lock.Events["KeyExtended"].ID,
			common.BigToHash(tokenID),
		},
		Data: common.LeftPadBytes(newTimestamp.Bytes(), 32),
	}
}

// Uint256Out encodes a single uint256 return value.
func Uint256Out(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

// UintOut encodes a single small unsigned return value (uint8, uint16...).
func UintOut(v uint64) []byte {
	return Uint256Out(new(big.Int).SetUint64(v))
}

// AddressOut encodes a single address return value.
func AddressOut(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

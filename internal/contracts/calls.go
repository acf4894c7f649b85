package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PackKeyPrice encodes a keyPrice() read.
func PackKeyPrice() []byte {
	return Lock.Methods["keyPrice"].ID
}

// UnpackKeyPrice decodes a keyPrice() result.
func UnpackKeyPrice(out []byte) (*big.Int, error) {
	vals, err := Lock.Unpack("keyPrice", out)
	if err != nil {
		return nil, fmt.Errorf("unpack keyPrice: %w", err)
	}

	return vals[0].(*big.Int), nil
}

// PackTokenAddress encodes a tokenAddress() read.
func PackTokenAddress() []byte {
	return Lock.Methods["tokenAddress"].ID
}

// UnpackTokenAddress decodes a tokenAddress() result.
func UnpackTokenAddress(out []byte) (common.Address, error) {
	vals, err := Lock.Unpack("tokenAddress", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack tokenAddress: %w", err)
	}

	return vals[0].(common.Address), nil
}

// PackLockVersion encodes a publicLockVersion() read.
func PackLockVersion() []byte {
	return Lock.Methods["publicLockVersion"].ID
}

// UnpackLockVersion decodes a publicLockVersion() result.
func UnpackLockVersion(out []byte) (uint16, error) {
	vals, err := Lock.Unpack("publicLockVersion", out)
	if err != nil {
		return 0, fmt.Errorf("unpack publicLockVersion: %w", err)
	}

	return vals[0].(uint16), nil
}

// PackPurchase encodes the batched purchase(values, recipients, referrers,
// keyManagers, data) call.
func PackPurchase(values []*big.Int, recipients, referrers, keyManagers []common.Address, data [][]byte) ([]byte, error) {
	return Lock.Pack("purchase", values, recipients, referrers, keyManagers, data)
}

// PackPurchaseFor encodes the single-recipient purchaseFor call used by
// locks that predate batched purchases.
func PackPurchaseFor(value *big.Int, recipient, referrer, keyManager common.Address, data []byte) ([]byte, error) {
	return Lock.Pack("purchaseFor", value, recipient, referrer, keyManager, data)
}

// PackRenewKeyFor encodes the per-recipient renewal call.
func PackRenewKeyFor(value *big.Int, recipient, referrer common.Address, data []byte) ([]byte, error) {
	return Lock.Pack("renewKeyFor", value, recipient, referrer, data)
}

// PackDecimals encodes a decimals() read.
func PackDecimals() []byte {
	return ERC20.Methods["decimals"].ID
}

// UnpackDecimals decodes a decimals() result.
func UnpackDecimals(out []byte) (uint8, error) {
	vals, err := ERC20.Unpack("decimals", out)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}

	return vals[0].(uint8), nil
}

// PackBalanceOf encodes a balanceOf(owner) read.
func PackBalanceOf(owner common.Address) ([]byte, error) {
	return ERC20.Pack("balanceOf", owner)
}

// UnpackBalanceOf decodes a balanceOf(owner) result.
func UnpackBalanceOf(out []byte) (*big.Int, error) {
	vals, err := ERC20.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}

	return vals[0].(*big.Int), nil
}

// PackAllowance encodes an allowance(owner, spender) read.
func PackAllowance(owner, spender common.Address) ([]byte, error) {
	return ERC20.Pack("allowance", owner, spender)
}

// UnpackAllowance decodes an allowance(owner, spender) result.
func UnpackAllowance(out []byte) (*big.Int, error) {
	vals, err := ERC20.Unpack("allowance", out)
	if err != nil {
		return nil, fmt.Errorf("unpack allowance: %w", err)
	}

	return vals[0].(*big.Int), nil
}

// PackApprove encodes an approve(spender, amount) call.
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return ERC20.Pack("approve", spender, amount)
}

// PackSwapAndCall encodes the swap purchaser's swapAndCall wrapper around
// an inner lock call.
func PackSwapAndCall(lock, srcToken common.Address, amount, amountInMax *big.Int, router common.Address, swapCalldata, callData []byte) ([]byte, error) {
	return SwapPurchaser.Pack("swapAndCall", lock, srcToken, amount, amountInMax, router, swapCalldata, callData)
}

package purchase

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeToken is the sentinel address meaning the lock is priced in the
// chain's native currency rather than an ERC-20 token.
var NativeToken = common.Address{}

// Unlimited is the sentinel approval cap meaning "approve the maximum
// representable amount" (2^256 - 1).
var Unlimited = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// IsNative reports whether token is the native-currency sentinel.
func IsNative(token common.Address) bool {
	return token == NativeToken
}

// Request describes one purchase or renewal attempt against a single lock.
//
// Recipients is order-significant; every other per-recipient slice must
// either be nil or have exactly the same length.  A Request is built once
// per checkout attempt and never mutated after submission begins.
type Request struct {
	Lock    common.Address
	ChainID *big.Int

	Recipients []common.Address

	// Prices holds optional nominal per-recipient price overrides as
	// decimal strings (e.g. "5.0").  When nil the lock's default price
	// is used for every recipient.
	Prices []string

	// Decimals, when set, skips the on-chain decimals lookup for the
	// price overrides above.
	Decimals *uint8

	// KeyManagers, Referrers and Data are optional per-recipient
	// arguments.  Referrers default to the zero address and Data to an
	// empty payload.
	KeyManagers []common.Address
	Referrers   []common.Address
	Data        [][]byte

	// Recurring holds optional per-recipient renewal-period counts.  For
	// ERC-20 priced locks the granted allowance covers the listed periods
	// up front so later renewals need no further approval.
	Recurring []uint

	// ApproveCap bounds the ERC-20 allowance granted before spending.
	// Nil means approve exactly the required amount; Unlimited is
	// allowed.
	ApproveCap *big.Int

	// Renew selects renewal semantics instead of a fresh purchase.
	Renew bool

	// Route, when present, funds the purchase through an on-chain swap.
	Route *SwapRoute
}

// Validate checks the Request's shape before any network call is made.
func (r *Request) Validate() error {
	if r.Lock == (common.Address{}) {
		return ErrMissingLock
	}

	if r.ChainID == nil || r.ChainID.Sign() <= 0 {
		return ErrMissingChainID
	}

	n := len(r.Recipients)
	if n == 0 {
		return ErrNoRecipients
	}

	for name, l := range map[string]int{
		"prices":       len(r.Prices),
		"key managers": len(r.KeyManagers),
		"referrers":    len(r.Referrers),
		"data":         len(r.Data),
		"recurring":    len(r.Recurring),
	} {
		if l != 0 && l != n {
			return fmt.Errorf("%w: %d %s for %d recipients", ErrLengthMismatch, l, name, n)
		}
	}

	return nil
}

// ReferrerAt returns the referrer for recipient i, defaulting to the zero
// address.
func (r *Request) ReferrerAt(i int) common.Address {
	if len(r.Referrers) == 0 {
		return common.Address{}
	}

	return r.Referrers[i]
}

// KeyManagerAt returns the key manager for recipient i, defaulting to the
// zero address (the lock assigns its own default manager).
func (r *Request) KeyManagerAt(i int) common.Address {
	if len(r.KeyManagers) == 0 {
		return common.Address{}
	}

	return r.KeyManagers[i]
}

// DataAt returns the arbitrary data payload for recipient i, defaulting to
// an empty payload.
func (r *Request) DataAt(i int) []byte {
	if len(r.Data) == 0 {
		return []byte{}
	}

	if r.Data[i] == nil {
		return []byte{}
	}

	return r.Data[i]
}

// Package keybuyer acquires and renews blockchain membership keys on
// behalf of one or more recipients, paying in the chain's native
// currency, in the lock's configured ERC-20 token, or in another token
// swapped on the fly through an exchange router.
//
// The Purchaser resolves the price to pay, puts spending allowances in
// place, estimates gas with a safe fallback, builds and submits the
// correct on-chain call, and waits for and interprets the transaction
// outcome.  The checkout package drives it through an explicit session
// state machine.
//
// Defaults
//
//   - If the WithLogger option is not specified, a No-Op logger is used.
//   - If the WithPollInterval option is not specified, receipts are
//     polled once per second.
package keybuyer

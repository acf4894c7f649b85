package purchase

import "errors"

// ErrMissingLock is returned when a request has no lock address.
var ErrMissingLock = errors.New("request has no lock address")

// ErrMissingChainID is returned when a request has no positive chain id.
var ErrMissingChainID = errors.New("request has no chain id")

// ErrNoRecipients is returned when a request names no recipients.
var ErrNoRecipients = errors.New("request has no recipients")

// ErrLengthMismatch is returned when a per-recipient array is present but
// its length differs from the number of recipients.
var ErrLengthMismatch = errors.New("per-recipient array length mismatch")

// ErrUserRejected is returned when the signing session declines to sign
// the transaction.
var ErrUserRejected = errors.New("signing session rejected the transaction")

// ErrInsufficientValue is returned when the funds attached to the call are
// below the resolved price.
var ErrInsufficientValue = errors.New("attached funds below resolved price")

// ErrApprovalFailed is returned when the token approval transaction
// reverted or failed to mine.  No spending call is attempted after it.
var ErrApprovalFailed = errors.New("token approval failed")

// ErrTransactionFailed is returned when the purchase transaction's receipt
// indicates reversion.
var ErrTransactionFailed = errors.New("transaction reverted")

// Reason classifies a failed purchase attempt for display by a hosting UI.
type Reason string

const (
	ReasonUserRejected      Reason = "USER_REJECTED"
	ReasonInsufficientValue Reason = "INSUFFICIENT_VALUE"
	ReasonApprovalFailed    Reason = "APPROVAL_FAILED"
	ReasonTransactionFailed Reason = "TRANSACTION_FAILED"
	ReasonInvalidRequest    Reason = "INVALID_REQUEST"
	ReasonUnknown           Reason = "UNKNOWN"
)

// ClassifyError maps an orchestrator failure onto a Reason.
func ClassifyError(err error) Reason {
	switch {
	case errors.Is(err, ErrUserRejected):
		return ReasonUserRejected
	case errors.Is(err, ErrInsufficientValue):
		return ReasonInsufficientValue
	case errors.Is(err, ErrApprovalFailed):
		return ReasonApprovalFailed
	case errors.Is(err, ErrTransactionFailed):
		return ReasonTransactionFailed
	case errors.Is(err, ErrMissingLock),
		errors.Is(err, ErrMissingChainID),
		errors.Is(err, ErrNoRecipients),
		errors.Is(err, ErrLengthMismatch):
		return ReasonInvalidRequest
	default:
		return ReasonUnknown
	}
}

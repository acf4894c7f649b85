package checkout

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/lockery/keybuyer/internal/observability"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// A Purchaser executes one purchase or renewal attempt.  The root
// keybuyer.Purchaser satisfies it.
type Purchaser interface {
	Purchase(ctx context.Context, req *purchase.Request) (*purchase.Outcome, error)
}

// Details is the DATA_COLLECTION payload: the lock, the recipients and
// their optional per-recipient metadata.
type Details struct {
	Lock       common.Address
	ChainID    *big.Int
	Recipients []common.Address

	Referrers   []common.Address
	KeyManagers []common.Address
	Data        [][]byte

	Renew bool
}

// PaymentMethod is the selection payload: pay in the lock's own token, or
// through the quote's swap route.
type PaymentMethod struct {
	UseSwap bool

	// ApproveCap optionally bounds the granted ERC-20 allowance;
	// purchase.Unlimited is allowed.
	ApproveCap *big.Int
}

// Result is the CONFIRMED payload.
type Result struct {
	ChainID     *big.Int
	TxHash      common.Hash
	KeyIDs      []*big.Int
	Unconfirmed bool
}

// Failure is the ERROR payload.
type Failure struct {
	Reason purchase.Reason
	Err    error
}

// Session is one checkout walk.  Its in-flight flag is the sole shared
// mutable resource guarded against concurrent entry; at most one purchase
// attempt runs per session at a time.
type Session struct {
	id        uuid.UUID
	pricing   api.Pricing
	purchaser Purchaser
	log       *slog.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	details  *Details
	quote    *api.Quote
	method   *PaymentMethod
	result   *Result
	failure  *Failure
}

// Option alters the default configuration of a Session.
type Option func(*Session) error

// WithLogger provides an slog.Logger observing the session's transitions.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) error {
		s.log = log

		return nil
	}
}

// NewSession starts a checkout session in DATA_COLLECTION.
func NewSession(pricing api.Pricing, purchaser Purchaser, opts ...Option) (*Session, error) {
	s := &Session{
		id:        uuid.New(),
		pricing:   pricing,
		purchaser: purchaser,
		log:       slog.New(observability.NewNoopHandler()),
		state:     StateDataCollection,
	}

	var errs error

	for _, opt := range opts {
		errs = errors.Join(errs, opt(s))
	}

	if errs != nil {
		return nil, errs
	}

	s.log = s.log.With(slog.String("session", s.id.String()))

	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Quote returns the pricing collaborator's cost breakdown, nil before
// pricing completed.
func (s *Session) Quote() *api.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quote
}

// Result returns the CONFIRMED payload, nil before completion.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Failure returns the ERROR payload, nil unless the session is in ERROR.
func (s *Session) Failure() *Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failure
}

// SubmitDetails moves the session into PRICING and computes the total
// cost.  Pricing errors move the session to ERROR; details can be
// resubmitted from there.
func (s *Session) SubmitDetails(ctx context.Context, details *Details) error {
	s.mu.Lock()

	next, err := s.state.step(EventSubmitDetails)
	if err != nil {
		s.mu.Unlock()

		return err
	}

	if len(details.Recipients) == 0 {
		s.mu.Unlock()

		return purchase.ErrNoRecipients
	}

	s.transition(next)
	s.details = details
	s.quote = nil
	s.failure = nil
	s.mu.Unlock()

	quote, err := s.pricing.Quote(ctx, details.Lock, details.Recipients)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.fail(err)

		return err
	}

	s.quote = quote

	s.log.Debug("quote ready",
		slog.String("token", quote.Token.Hex()),
		slog.String("total", quote.Total().String()),
		slog.Bool("swap", quote.Route != nil))

	return nil
}

// SelectPaymentMethod records how the user pays and moves the session to
// PAYMENT_METHOD_SELECTED.
func (s *Session) SelectPaymentMethod(method *PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quote == nil {
		return ErrNoQuote
	}

	if method.UseSwap && s.quote.Route == nil {
		return ErrNoSwapRoute
	}

	next, err := s.state.step(EventSelectMethod)
	if err != nil {
		return err
	}

	s.transition(next)
	s.method = method

	return nil
}

// Confirm runs the purchase orchestrator exactly once.  A second Confirm
// while one attempt is outstanding is rejected with ErrPurchaseInFlight.
// On failure the session moves to ERROR with a classified reason and
// Confirm may be retried.
func (s *Session) Confirm(ctx context.Context) (*Result, error) {
	s.mu.Lock()

	if s.inFlight {
		s.mu.Unlock()

		return nil, ErrPurchaseInFlight
	}

	next, err := s.state.step(EventConfirm)
	if err != nil {
		s.mu.Unlock()

		return nil, err
	}

	if s.method == nil {
		s.mu.Unlock()

		return nil, ErrNoQuote
	}

	s.transition(next)
	s.inFlight = true
	req := s.buildRequest()
	s.mu.Unlock()

	outcome, purchaseErr := s.purchaser.Purchase(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false

	if purchaseErr != nil {
		s.fail(purchaseErr)

		return nil, purchaseErr
	}

	if next, err = s.state.step(EventMinted); err != nil {
		return nil, err
	}

	s.transition(next)

	s.result = &Result{
		ChainID:     req.ChainID,
		TxHash:      outcome.TxHash,
		KeyIDs:      outcome.KeyIDs,
		Unconfirmed: outcome.Unconfirmed,
	}

	if next, err = s.state.step(EventComplete); err != nil {
		return nil, err
	}

	s.transition(next)
	s.failure = nil

	return s.result, nil
}

// buildRequest assembles the one-shot purchase request from the session's
// collected payloads.  Callers hold s.mu.
func (s *Session) buildRequest() *purchase.Request {
	req := &purchase.Request{
		Lock:        s.details.Lock,
		ChainID:     s.details.ChainID,
		Recipients:  s.details.Recipients,
		Referrers:   s.details.Referrers,
		KeyManagers: s.details.KeyManagers,
		Data:        s.details.Data,
		Renew:       s.details.Renew,
		ApproveCap:  s.method.ApproveCap,
	}

	if s.method.UseSwap {
		req.Route = s.quote.Route
	}

	return req
}

// fail records a classified failure and moves the session to ERROR.
// Callers hold s.mu.
func (s *Session) fail(err error) {
	s.failure = &Failure{
		Reason: purchase.ClassifyError(err),
		Err:    err,
	}

	if next, stepErr := s.state.step(EventFail); stepErr == nil {
		s.transition(next)
	}

	s.log.Debug("checkout failed",
		slog.String("reason", string(s.failure.Reason)),
		slog.Any("error", err))
}

// transition applies a precomputed state change.  Callers hold s.mu.
func (s *Session) transition(next State) {
	s.log.Debug("checkout transition",
		slog.String("from", string(s.state)),
		slog.String("to", string(next)))

	s.state = next
}

package keybuyer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/internal/allowance"
	"github.com/lockery/keybuyer/internal/amount"
	"github.com/lockery/keybuyer/internal/confirm"
	"github.com/lockery/keybuyer/internal/contracts"
	"github.com/lockery/keybuyer/internal/gas"
	"github.com/lockery/keybuyer/pkg/api"
	"github.com/lockery/keybuyer/pkg/purchase"
)

// Purchaser orchestrates purchase and renewal attempts: amount
// resolution, allowance, gas estimation, call building, submission and
// confirmation, in program order.  It is safe for sequential reuse across
// requests; all attempt state is request-scoped.
type Purchaser struct {
	config

	backend   api.Backend
	signer    api.TxSigner
	amounts   *amount.Resolver
	estimator *gas.Estimator
	confirmer *confirm.Resolver
}

// NewPurchaser wires a Purchaser over the given backend and signing
// session.
func NewPurchaser(backend api.Backend, signer api.TxSigner, opts ...Option) (*Purchaser, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Purchaser{
		config:    *cfg,
		backend:   backend,
		signer:    signer,
		amounts:   amount.NewResolver(backend),
		estimator: gas.NewEstimator(backend, cfg.log),
		confirmer: confirm.NewResolver(backend, cfg.pollInterval, cfg.log),
	}, nil
}

// Purchase executes one purchase or renewal attempt.  The request is
// consumed: it must not be reused after submission begins.
//
// Approval is always completed and awaited before the spending call is
// submitted.  The attempt may be abandoned through ctx before broadcast
// with no side effects; once broadcast it is irrevocable and only the
// outcome is reported.
//
// When a later call of a multi-call attempt fails, the error comes back
// with a non-nil Outcome carrying the key identifiers confirmed by the
// earlier calls.
func (p *Purchaser) Purchase(ctx context.Context, req *purchase.Request) (*purchase.Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := p.log.With(
		slog.String("lock", req.Lock.Hex()),
		slog.Uint64("chain", req.ChainID.Uint64()),
	)

	sub := &submitter{
		backend:   p.backend,
		signer:    p.signer,
		chainID:   req.ChainID,
		confirmer: p.confirmer,
		log:       log,
	}
	allowances := allowance.NewManager(p.backend, sub, p.signer.Address(), log)

	token, err := p.lockToken(ctx, req.Lock)
	if err != nil {
		return nil, err
	}

	version, err := p.lockVersion(ctx, req.Lock)
	if err != nil {
		return nil, err
	}

	amounts, err := p.amounts.ResolveAll(ctx, req, token)
	if err != nil {
		return nil, err
	}

	total := sum(amounts)
	log.Debug("amount resolved",
		slog.String("token", token.Hex()),
		slog.String("total", total.String()))

	// Build before approving: a request that can never produce a spending
	// call must not cost the user an on-chain approval.
	plans, err := buildPlans(req, amounts, token, version, p.swapPurchaser)
	if err != nil {
		return nil, err
	}

	// Allowance strictly precedes the spending broadcast.
	if req.Route != nil {
		if err := p.checkTokenBalance(ctx, req.Route.SrcToken, req.Route.MaxAmountIn()); err != nil {
			return nil, err
		}

		err = allowances.Ensure(ctx, req.Route.SrcToken, p.swapPurchaser, req.Route.MaxAmountIn(), req.ApproveCap)
	} else {
		if err := p.checkTokenBalance(ctx, token, total); err != nil {
			return nil, err
		}

		err = allowances.Ensure(ctx, token, req.Lock, allowanceTotal(req, amounts), req.ApproveCap)
	}

	if err != nil {
		return nil, err
	}

	outcome := &purchase.Outcome{KeyIDs: make([]*big.Int, len(req.Recipients))}

	for i, plan := range plans {
		if err := p.checkValue(ctx, plan); err != nil {
			return partial(outcome, i), err
		}

		params := p.estimator.Estimate(ctx, p.signer.Address(), plan)
		plan.GasLimit = params.GasLimit
		plan.GasPrice = params.GasPrice
		plan.GasFeeCap = params.GasFeeCap
		plan.GasTipCap = params.GasTipCap

		txHash, err := sub.Broadcast(ctx, plan)
		if err != nil {
			return partial(outcome, i), err
		}

		outcome.TxHash = txHash

		result, err := p.confirmer.Confirm(ctx, txHash, req.Lock)
		if err != nil {
			return partial(outcome, i), err
		}

		p.record(req, outcome, result, i)
	}

	outcome.Unconfirmed = true

	for _, id := range outcome.KeyIDs {
		if id != nil {
			outcome.Unconfirmed = false

			break
		}
	}

	log.Info("purchase confirmed",
		slog.String("tx", outcome.TxHash.Hex()),
		slog.Bool("renewal", req.Renew),
		slog.Bool("unconfirmed", outcome.Unconfirmed))

	return outcome, nil
}

// partial preserves what an attempt confirmed before a later call failed:
// nil when nothing was, the filled outcome once at least one call
// confirmed.
func partial(outcome *purchase.Outcome, confirmed int) *purchase.Outcome {
	if confirmed == 0 {
		return nil
	}

	return outcome
}

// record maps the confirmed result onto the outcome's per-recipient key
// identifiers.  planIdx is the index of the confirmed plan, which equals
// the recipient index when plans are per-recipient.
func (p *Purchaser) record(req *purchase.Request, outcome *purchase.Outcome, result *confirm.Result, planIdx int) {
	if req.Renew {
		if len(result.Renewals) > 0 && planIdx < len(outcome.KeyIDs) {
			outcome.KeyIDs[planIdx] = result.Renewals[0].TokenID
		}

		return
	}

	for _, transfer := range result.Transfers {
		for i, recipient := range req.Recipients {
			if outcome.KeyIDs[i] == nil && recipient == transfer.To {
				outcome.KeyIDs[i] = transfer.TokenID

				break
			}
		}
	}
}

// checkTokenBalance surfaces a token balance shortfall before any approval
// or spending call goes out.  The native sentinel is checked per plan in
// checkValue instead.
func (p *Purchaser) checkTokenBalance(ctx context.Context, token common.Address, required *big.Int) error {
	if purchase.IsNative(token) {
		return nil
	}

	data, err := contracts.PackBalanceOf(p.signer.Address())
	if err != nil {
		return fmt.Errorf("encode balanceOf: %w", err)
	}

	out, err := p.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("query token balance: %w", err)
	}

	balance, err := contracts.UnpackBalanceOf(out)
	if err != nil {
		return err
	}

	if balance.Cmp(required) < 0 {
		return fmt.Errorf("%w: need %s, have %s of token %s",
			purchase.ErrInsufficientValue, required, balance, token.Hex())
	}

	return nil
}

// checkValue surfaces InsufficientValue before broadcast where it is
// detectable: a native value exceeding the signer's balance.
func (p *Purchaser) checkValue(ctx context.Context, plan *purchase.Plan) error {
	if plan.Value == nil || plan.Value.Sign() <= 0 {
		return nil
	}

	balance, err := p.backend.BalanceAt(ctx, p.signer.Address(), nil)
	if err != nil {
		return fmt.Errorf("query balance: %w", err)
	}

	if balance.Cmp(plan.Value) < 0 {
		return fmt.Errorf("%w: need %s, have %s", purchase.ErrInsufficientValue, plan.Value, balance)
	}

	return nil
}

func (p *Purchaser) lockToken(ctx context.Context, lock common.Address) (common.Address, error) {
	out, err := p.backend.CallContract(ctx, ethereum.CallMsg{To: &lock, Data: contracts.PackTokenAddress()}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("query lock token: %w", err)
	}

	return contracts.UnpackTokenAddress(out)
}

func (p *Purchaser) lockVersion(ctx context.Context, lock common.Address) (uint16, error) {
	out, err := p.backend.CallContract(ctx, ethereum.CallMsg{To: &lock, Data: contracts.PackLockVersion()}, nil)
	if err != nil {
		return 0, fmt.Errorf("query lock version: %w", err)
	}

	return contracts.UnpackLockVersion(out)
}

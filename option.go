package keybuyer

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lockery/keybuyer/internal/confirm"
	"github.com/lockery/keybuyer/internal/observability"
)

type config struct {
	log           *slog.Logger
	pollInterval  time.Duration
	swapPurchaser common.Address
}

// Option represents a means of altering the default configuration of a
// Purchaser.
type Option func(*config) error

func newConfig(opts ...Option) (*config, error) {
	var errs error

	cfg := &config{
		log:          slog.New(observability.NewNoopHandler()),
		pollInterval: confirm.DefaultPollInterval,
	}

	for _, opt := range opts {
		errs = errors.Join(errs, opt(cfg))
	}

	if errs != nil {
		return nil, errs
	}

	return cfg, nil
}

// WithLogger is an Option that allows the user to provide an slog.Logger
// that can be used to observe the purchase pipeline.
//
// If not provided, a No-Op logger is used.  Under normal operation, this
// library writes one line of INFO-level logging per confirmed purchase.
// Debug-level logging provides a log record for each step.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) error {
		c.log = log

		return nil
	}
}

// WithConsoleLogger is an Option wiring a human-readable console logger
// to w, for hosts that don't bring their own slog handler.
func WithConsoleLogger(w io.Writer, level slog.Level) Option {
	return func(c *config) error {
		c.log = observability.NewConsoleLogger(w, level)

		return nil
	}
}

// WithPollInterval is an Option that controls how often the engine polls
// for a transaction receipt while waiting for mining.
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return errors.New("poll interval must be positive")
		}

		c.pollInterval = interval

		return nil
	}
}

// WithSwapPurchaser is an Option that sets the deployed swap-purchaser
// contract used for swap-funded purchases.  Requests carrying a SwapRoute
// fail without it.
func WithSwapPurchaser(addr common.Address) Option {
	return func(c *config) error {
		c.swapPurchaser = addr

		return nil
	}
}

package main

import (
	"context"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/lmittmann/tint"

	keybuyer "github.com/lockery/keybuyer"
	"github.com/lockery/keybuyer/pkg/checkout"
	"github.com/lockery/keybuyer/pkg/pricing"
)

func main() {
	const (
		accountAddressEnvVar  = "KEYBUYER_ACCOUNT_ADDRESS"
		accountPasswordEnvVar = "KEYBUYER_ACCOUNT_PASSWORD" //nolint:gosec
		keystoreDirectory     = "KEYBUYER_KEYSTORE_DIRECTORY"
		lockAddressEnvVar     = "KEYBUYER_LOCK_ADDRESS"
		rpcURLEnvVar          = "KEYBUYER_RPC_URL"
		chainIDEnvVar         = "KEYBUYER_CHAIN_ID"
	)

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelDebug,
	}))

	userDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get user home directory", tint.Err(err))
		os.Exit(1)
	}

	ksPath := filepath.Join(userDir, ".ethereum", "keystore")
	if ks, ok := os.LookupEnv(keystoreDirectory); ok {
		ksPath = ks
	}

	addr, ok := os.LookupEnv(accountAddressEnvVar)
	if !ok {
		log.Error("failed to look up account address environment variable")
		os.Exit(1)
	}

	pass, ok := os.LookupEnv(accountPasswordEnvVar)
	if !ok {
		log.Error("failed to look up account password environment variable")
		os.Exit(1)
	}

	lock, ok := os.LookupEnv(lockAddressEnvVar)
	if !ok {
		log.Error("failed to look up lock address environment variable")
		os.Exit(1)
	}

	rpcURL, ok := os.LookupEnv(rpcURLEnvVar)
	if !ok {
		log.Error("failed to look up RPC URL environment variable")
		os.Exit(1)
	}

	chainID, ok := new(big.Int).SetString(os.Getenv(chainIDEnvVar), 10)
	if !ok {
		log.Error("failed to parse chain id environment variable")
		os.Exit(1)
	}

	ctx := context.Background()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		log.Error("failed to dial RPC endpoint", tint.Err(err))
		os.Exit(1)
	}

	ks := keystore.NewKeyStore(ksPath, keystore.StandardScryptN, keystore.StandardScryptP)
	acct := accounts.Account{Address: common.HexToAddress(addr)}

	purchaser, err := keybuyer.PurchaserForKeyStore(client, ks, acct, []byte(pass), keybuyer.WithLogger(log))
	if err != nil {
		log.Error("failed to create purchaser", tint.Err(err))
		os.Exit(1)
	}

	session, err := checkout.NewSession(pricing.NewOnchain(client), purchaser, checkout.WithLogger(log))
	if err != nil {
		log.Error("failed to create checkout session", tint.Err(err))
		os.Exit(1)
	}

	if err := session.SubmitDetails(ctx, &checkout.Details{
		Lock:       common.HexToAddress(lock),
		ChainID:    chainID,
		Recipients: []common.Address{acct.Address},
	}); err != nil {
		log.Error("failed to price the purchase", tint.Err(err))
		os.Exit(1)
	}

	quote := session.Quote()
	log.Info("quote ready",
		slog.String("token", quote.Token.Hex()),
		slog.String("total", quote.Total().String()))

	if err := session.SelectPaymentMethod(&checkout.PaymentMethod{}); err != nil {
		log.Error("failed to select payment method", tint.Err(err))
		os.Exit(1)
	}

	result, err := session.Confirm(ctx)
	if err != nil {
		if failure := session.Failure(); failure != nil {
			log.Error("purchase failed",
				slog.String("reason", string(failure.Reason)),
				tint.Err(failure.Err))
		} else {
			log.Error("purchase failed", tint.Err(err))
		}

		os.Exit(1)
	}

	log.Info("key purchased",
		slog.String("tx", result.TxHash.Hex()),
		slog.Bool("unconfirmed", result.Unconfirmed))

	for _, id := range result.KeyIDs {
		if id != nil {
			log.Info("key issued", slog.String("id", id.String()))
		}
	}
}

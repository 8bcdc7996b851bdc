package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi/v5"
	goRedis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/veridlabs/id-node/internal/api"
	"github.com/veridlabs/id-node/internal/cache"
	"github.com/veridlabs/id-node/internal/config"
	"github.com/veridlabs/id-node/internal/contentstore"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/core/services"
	"github.com/veridlabs/id-node/internal/db"
	"github.com/veridlabs/id-node/internal/gateways"
	"github.com/veridlabs/id-node/internal/health"
	"github.com/veridlabs/id-node/internal/ledger"
	"github.com/veridlabs/id-node/internal/log"
	"github.com/veridlabs/id-node/internal/redis"
	"github.com/veridlabs/id-node/internal/repositories"
	"github.com/veridlabs/id-node/pkg/blockchain/eth"
	client "github.com/veridlabs/id-node/pkg/http"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}
	if err := cfg.Sanitize(); err != nil {
		log.Error(context.Background(), "invalid configuration", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout))
	defer cancel()

	cachex, events, redisClient, err := buildCache(ctx, cfg)
	if err != nil {
		log.Error(ctx, "cannot connect to redis", "err", err)
		return
	}

	ledgerBackend, storage, err := buildLedger(ctx, cfg)
	if err != nil {
		log.Error(ctx, "cannot initialize ledger backend", "err", err)
		return
	}
	if storage != nil {
		defer func() { _ = storage.Close() }()
	}

	store := buildContentStore(cfg)

	pingers := []health.Ping{health.LedgerPinger{Ledger: ledgerBackend}}
	if storage != nil {
		pingers = append(pingers, storage.Pgx)
	}
	if redisClient != nil {
		pingers = append(pingers, health.RedisPinger{Client: redisClient})
	}

	identityService := services.NewIdentity(ledgerBackend, cachex, events, cfg.Cache.DIDTTL)
	credentialService := services.NewCredential(ledgerBackend, store, events)
	verificationService := services.NewVerification(ledgerBackend, store, cachex, cfg.Cache.QuickTTL)

	server := api.NewServer(cfg, identityService, credentialService, verificationService, ledgerBackend, health.New(pingers...))
	mux := chi.NewRouter()
	server.Routes(ctx, mux)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: mux,
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, fmt.Sprintf("server started on port:%d", cfg.ServerPort), "ledger", cfg.Ledger.Mode)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "starting http server", "err", err)
		}
	}()

	<-quit
	log.Info(ctx, "shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutting down http server", "err", err)
	}
}

func buildCache(ctx context.Context, cfg *config.Configuration) (cache.Cache, pubsub.Client, *goRedis.Client, error) {
	if cfg.Cache.RedisURL == "" {
		log.Info(ctx, "no redis url configured, using in process cache and events")
		return cache.NewMemoryCache(), pubsub.NewMock(), nil, nil
	}

	rdb, err := redis.Open(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return cache.NewRedisCache(rdb), pubsub.NewRedis(rdb), rdb, nil
}

func buildLedger(ctx context.Context, cfg *config.Configuration) (ports.Ledger, *db.Storage, error) {
	if cfg.Ledger.Mode == config.LedgerModeEthereum {
		ethRPC, err := ethclient.Dial(cfg.Ethereum.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("dialing ethereum node: %w", err)
		}

		relayerKey, err := crypto.LoadECDSA(cfg.Ethereum.RelayerKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading relayer key: %w", err)
		}

		ethClient := eth.NewClient(ethRPC, &eth.ClientConfig{
			ReceiptTimeout:       cfg.Ethereum.ReceiptTimeout,
			DefaultGasLimit:      cfg.Ethereum.DefaultGasLimit,
			MinGasPrice:          big.NewInt(int64(cfg.Ethereum.MinGasPrice)),
			MaxGasPrice:          big.NewInt(int64(cfg.Ethereum.MaxGasPrice)),
			RPCResponseTimeout:   cfg.Ethereum.RPCResponseTimeout,
			WaitReceiptCycleTime: cfg.Ethereum.WaitReceiptCycleTime,
		})

		l, err := gateways.NewLedger(ethClient, gateways.Addresses{
			DIDRegistry:        common.HexToAddress(cfg.Ethereum.DIDRegistryAddress),
			CredentialRegistry: common.HexToAddress(cfg.Ethereum.CredentialRegistryAddress),
			CredentialVerifier: common.HexToAddress(cfg.Ethereum.CredentialVerifierAddress),
		}, relayerKey)
		return l, nil, err
	}

	if cfg.Database.URL == "" {
		log.Info(ctx, "no database url configured, embedded ledger state is volatile")
		return ledger.New(ledger.NewMemoryStore()), nil, nil
	}

	storage, err := db.NewStorage(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return ledger.New(repositories.NewLedgerStore(storage.Pgx)), storage, nil
}

func buildContentStore(cfg *config.Configuration) ports.ContentStore {
	if cfg.IPFS.APIAddress != "" {
		return contentstore.NewIPFSStore(cfg.IPFS.APIAddress, cfg.IPFS.ResponseTimeout)
	}
	return contentstore.NewGatewayStore(cfg.IPFS.GatewayURL, client.DefaultHTTPClientWithRetry)
}

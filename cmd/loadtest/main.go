package main

import (
	"context"
	"flag"
	"log"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/ezcrow/ramp/config"
	"github.com/ezcrow/ramp/pkg/backend/memory"
	redisBackend "github.com/ezcrow/ramp/pkg/backend/redis"
	"github.com/ezcrow/ramp/pkg/core"
	"github.com/ezcrow/ramp/pkg/logging"
	"github.com/ezcrow/ramp/pkg/messaging"
	"github.com/ezcrow/ramp/pkg/messaging/kafka"
	"github.com/ezcrow/ramp/pkg/ramp"
)

var (
	numTraders   = flag.Int("traders", 100, "Number of concurrent trader pairs")
	numTrades    = flag.Int("trades", 100, "Number of full trade lifecycles per trader pair")
	maxPerSecond = flag.Int("rate", 1000, "Maximum trade lifecycles started per second")
	useKafka     = flag.Bool("kafka", false, "Publish lifecycle events to Kafka")
	useRedis     = flag.Bool("redis", false, "Keep nonces in Redis instead of memory")
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(logging.Config{Level: cfg.Server.LogLevel, Pretty: cfg.Server.LogFormat == "pretty"})

	ctx := context.Background()

	var events messaging.EventSender
	if *useKafka {
		sender, err := kafka.NewKafkaEventSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("Failed to create Kafka sender: %v", err)
		}
		defer sender.Close()
		events = sender
	} else {
		events = messaging.NewMockEventSender()
	}

	var nonces ramp.NonceStore
	if *useRedis {
		client := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		nonces = redisBackend.NewNonceStore(client, "loadtest")
	} else {
		nonces = ramp.NewMemoryNonceStore()
	}

	owner := cfg.Ramp.Owner
	if owner == "" {
		owner, _ = core.GenerateAddress()
	}
	manager := ramp.NewManager(ramp.Config{
		Owner:         owner,
		MaxQueryItems: cfg.Ramp.MaxQueryItems,
		Events:        events,
		Nonces:        nonces,
	})

	ledger := memory.NewTokenLedger("TT", 18)
	mustSetup(manager.AddToken(ctx, owner, ledger))
	mustSetup(manager.AddCurrencySettings(ctx, owner, "USD", 3))
	mustSetup(manager.ConnectPair(ctx, owner, "TT", "USD", cfg.Ramp.InitialListingID, cfg.Ramp.InitialOrderID))

	limiter := rate.NewLimiter(rate.Limit(*maxPerSecond), *maxPerSecond)

	var (
		mu        sync.Mutex
		histogram = hdrhistogram.New(1, int64(time.Minute), 3)
		failures  int
	)

	price := fiat(1)
	amount := tokens(10)
	total := core.FiatValue(price, amount, 3, 18)

	log.Printf("Starting %d trader pairs, %d trades each...", *numTraders, *numTrades)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *numTraders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			maker, _ := core.GenerateAddress()
			taker, _ := core.GenerateAddress()
			ledger.Mint(maker, tokens(10_000_000))
			ledger.Mint(taker, tokens(10_000_000))

			manager.UpdateUser(maker, "USD", "@maker", nil)
			manager.UpdateUser(taker, "USD", "@taker", nil)
			if err := manager.WhitelistUser(ctx, owner, maker, "USD"); err != nil {
				log.Fatalf("Failed to whitelist maker: %v", err)
			}
			if err := manager.WhitelistUser(ctx, owner, taker, "USD"); err != nil {
				log.Fatalf("Failed to whitelist taker: %v", err)
			}

			var makerNonce, takerNonce uint64

			for j := 0; j < *numTrades; j++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				tradeStart := time.Now()
				err := runTrade(ctx, manager, maker, taker, price, amount, total, &makerNonce, &takerNonce)
				elapsed := time.Since(tradeStart)

				mu.Lock()
				if err != nil {
					failures++
				} else {
					_ = histogram.RecordValue(elapsed.Microseconds())
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	duration := time.Since(start)

	trades := *numTraders * *numTrades
	color.Cyan("Load test completed in %v", duration)
	color.Cyan("Trades: %d (%.0f/s), failures: %d", trades, float64(trades)/duration.Seconds(), failures)
	color.Green("Latency p50: %v", time.Duration(histogram.ValueAtQuantile(50))*time.Microsecond)
	color.Green("Latency p95: %v", time.Duration(histogram.ValueAtQuantile(95))*time.Microsecond)
	color.Yellow("Latency p99: %v", time.Duration(histogram.ValueAtQuantile(99))*time.Microsecond)
	color.Red("Latency max: %v", time.Duration(histogram.Max())*time.Microsecond)
}

// runTrade drives one full buy lifecycle: listing, order, confirm, deposit,
// payment, release
func runTrade(ctx context.Context, manager *ramp.Manager, maker, taker string, price, amount, total decimal.Decimal, makerNonce, takerNonce *uint64) error {
	listingID, err := manager.CreateListing(ctx, "TT", "USD", core.Buy, price, amount, total, total, maker, next(makerNonce))
	if err != nil {
		return err
	}

	orderID, err := manager.CreateOrder(ctx, "TT", "USD", listingID, amount, taker, next(takerNonce))
	if err != nil {
		return err
	}

	if err := manager.AcceptOrder(ctx, "TT", "USD", orderID, maker, next(makerNonce)); err != nil {
		return err
	}
	if err := manager.AcceptOrder(ctx, "TT", "USD", orderID, taker, next(takerNonce)); err != nil {
		return err
	}
	if err := manager.AcceptOrder(ctx, "TT", "USD", orderID, maker, next(makerNonce)); err != nil {
		return err
	}
	if err := manager.AcceptOrder(ctx, "TT", "USD", orderID, taker, next(takerNonce)); err != nil {
		return err
	}

	return manager.DeleteListing(ctx, "TT", "USD", listingID, maker, next(makerNonce))
}

func next(nonce *uint64) uint64 {
	n := *nonce
	*nonce++
	return n
}

func tokens(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(18)
}

func fiat(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(3)
}

func mustSetup(err error) {
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
}

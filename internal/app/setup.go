package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/classifier"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/feed"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/forecast"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/gate"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/gateway"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/indexer"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/lifecycle"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/notify"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/pricing"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/risk"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/sizing"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/storage"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/cache"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/healthprobe"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/httpserver"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// adjustStepUSD is the fixed increment behind the chat +/- buttons.
const adjustStepUSD = 10

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	probe := healthprobe.New()

	forecastCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	riskManager, err := risk.NewManager(ctx, risk.Config{
		MaxOpenPositions:  cfg.MaxOpenPositions,
		MaxTotalExposure:  cfg.MaxTotalExposure,
		MaxBucketExposure: cfg.MaxBucketExposure,
		MaxPositionSize:   cfg.MaxPositionPct * cfg.Bankroll,
		MinTradeSize:      cfg.MinTradeSize,
		DailyLossLimit:    cfg.DailyLossLimit,
		LossCooldown:      cfg.LossCooldown,
		Logger:            logger,
	}, store)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup risk manager: %w", err)
	}

	feedClient := feed.NewClient(cfg.FeedBaseURL, cfg.FeedRatePerSec, logger)
	filter := setupFilter(cfg, logger)

	gatewayClient := gateway.NewClient(&gateway.Config{
		BaseURL:    cfg.GatewayBaseURL,
		APIKey:     cfg.GatewayAPIKey,
		Secret:     cfg.GatewaySecret,
		Passphrase: cfg.GatewayPassphrase,
		Logger:     logger,
	})
	priceStream := gateway.NewPriceStream(cfg.GatewayWSURL, logger)
	indexerClient := indexer.NewClient(cfg.IndexerURL, cfg.IndexerAPIKey, logger)

	forecastClient := forecast.NewClient(&forecast.Config{
		GeocodeURL:  cfg.GeocodeURL,
		ForecastURL: cfg.ForecastURL,
		Cache:       forecastCache,
		Logger:      logger,
	})

	engine := setupPricingEngine(cfg, logger, forecastClient, indexerClient)
	sizer := sizing.New(cfg.Bankroll, cfg.MaxPositionPct)

	queue := gate.NewQueue(cfg.PendingTTL, logger)

	var notifier *notify.Notifier
	var poller *notify.Poller
	trader := NewTrader(gatewayClient, riskManager, cfg.ExitDiscount, logger)

	decisionGate := gate.NewGate(gate.Config{
		AutoEdge:       cfg.AutoEdge,
		AutoConfidence: cfg.AutoConfidence,
		AutoMaxSize:    cfg.AutoMaxSize,
		Logger:         logger,
	}, queue, trader, nil)

	dispatcher := NewDispatcher(queue, trader, riskManager, cfg.Bankroll, logger)

	if cfg.TelegramToken != "" {
		telegram := notify.NewTelegramClient("", cfg.TelegramToken, cfg.TelegramChatID, logger)
		notifier = notify.NewNotifier(telegram)
		poller = notify.NewPoller(telegram, dispatcher, cfg.CommandInterval, logger)

		dispatcher.notifier = notifier
		decisionGate = gate.NewGate(gate.Config{
			AutoEdge:       cfg.AutoEdge,
			AutoConfidence: cfg.AutoConfidence,
			AutoMaxSize:    cfg.AutoMaxSize,
			Logger:         logger,
		}, queue, trader, notifier)
	}

	lifecycleMgr := lifecycle.NewManager(lifecycle.Config{
		StopLossFraction: cfg.StopLossFraction,
		TakeProfitMargin: cfg.TakeProfitMargin,
		ExitDiscount:     cfg.ExitDiscount,
		Logger:           logger,
	}, &streamBackedPrices{stream: priceStream, rest: gatewayClient}, gatewayClient, indexerClient, riskManager, notifierOrNil(notifier))

	httpServer := httpserver.New(&httpserver.Config{
		Port:   cfg.HTTPPort,
		Logger: logger,
		Probe:  probe,
		Ledger: riskManager,
		Queue:  queue,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		probe:         probe,
		httpServer:    httpServer,
		feedClient:    feedClient,
		filter:        filter,
		engine:        engine,
		sizer:         sizer,
		riskManager:   riskManager,
		queue:         queue,
		decisionGate:  decisionGate,
		lifecycleMgr:  lifecycleMgr,
		gatewayClient: gatewayClient,
		priceStream:   priceStream,
		indexerClient: indexerClient,
		forecastCache: forecastCache,
		trader:        trader,
		dispatcher:    dispatcher,
		notifier:      notifier,
		poller:        poller,
		store:         store,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (risk.Store, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStore(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}
	return storage.NewMemoryStore(logger), nil
}

func setupFilter(cfg *config.Config, logger *zap.Logger) *classifier.Filter {
	return classifier.NewFilter(classifier.FilterConfig{
		MinHoursToExpiry: cfg.MinHoursToExpiry,
		MinVolume:        cfg.MinVolume,
		MinLiquidity:     cfg.MinLiquidity,
		NoArbBand:        cfg.NoArbBand,
		MaxOtherPerCycle: cfg.MaxOtherPerCycle,
		Logger:           logger,
	})
}

func setupPricingEngine(cfg *config.Config, logger *zap.Logger, forecasts pricing.ForecastProvider, fills pricing.FillSource) *pricing.Engine {
	return pricing.NewEngine(pricing.Config{
		MinEdge:          cfg.MinEdge,
		MinConfidence:    cfg.MinConfidence,
		NoArbBand:        cfg.NoArbBand,
		TakerFee:         cfg.TakerFee,
		NarrowBandWidth:  cfg.NarrowBandWidth,
		MinSideLiquidity: cfg.MinSideLiquidity,
		WhaleMinFillUSD:  cfg.WhaleMinFillUSD,
		WhaleLookback:    cfg.WhaleLookback,
		CategoryOverrides: map[types.Category]pricing.Thresholds{
			// The fee-adjusted no-arb band already gates admission in
			// the detector; re-applying per-leg thresholds here would
			// strand half the basket as directional exposure.
			types.CategoryCryptoBinary: {
				MinEdge:       0,
				MinConfidence: 0,
			},
		},
		Logger: logger,
	}, forecasts, fills)
}

// streamBackedPrices resolves a live price from the websocket stream
// first and the REST order book second.
type streamBackedPrices struct {
	stream *gateway.PriceStream
	rest   *gateway.Client
}

func (p *streamBackedPrices) LastPrice(tokenID string) (float64, bool) {
	return p.stream.LastPrice(tokenID)
}

func (p *streamBackedPrices) OrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error) {
	return p.rest.OrderBook(ctx, tokenID)
}

func notifierOrNil(n *notify.Notifier) lifecycle.ExitNotifier {
	if n == nil {
		return nil
	}
	return n
}

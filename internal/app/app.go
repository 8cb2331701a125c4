// Package app wires every component together and drives the two
// engine timelines: the periodic market scan and the command poller.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/classifier"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/feed"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/gate"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/gateway"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/indexer"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/lifecycle"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/notify"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/pricing"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/risk"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/sizing"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/cache"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/healthprobe"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	probe      *healthprobe.Probe
	httpServer *httpserver.Server

	feedClient    *feed.Client
	filter        *classifier.Filter
	engine        *pricing.Engine
	sizer         *sizing.Sizer
	riskManager   *risk.Manager
	queue         *gate.Queue
	decisionGate  *gate.Gate
	lifecycleMgr  *lifecycle.Manager
	gatewayClient *gateway.Client
	priceStream   *gateway.PriceStream
	indexerClient *indexer.Client
	forecastCache cache.Cache

	trader     *Trader
	dispatcher *Dispatcher
	notifier   *notify.Notifier
	poller     *notify.Poller

	store risk.Store

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

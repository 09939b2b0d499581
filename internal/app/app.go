package app

import (
	"context"
	"sync"

	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/feed"
	"github.com/quantfeed/blockwatch/internal/notify"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/internal/storage"
	"github.com/quantfeed/blockwatch/pkg/cache"
	"github.com/quantfeed/blockwatch/pkg/config"
	"github.com/quantfeed/blockwatch/pkg/healthprobe"
	"github.com/quantfeed/blockwatch/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	feedManager   *feed.Manager
	parser        *parser.Parser
	engine        *alert.Engine
	rules         alert.RuleSet
	store         storage.Storage
	appCache      cache.Cache
	hints         *HintTracker
	journal       *DecisionJournal
	dispatcher    *notify.Dispatcher
	pipeline      *Pipeline
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

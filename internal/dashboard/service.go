// Package dashboard is the aggregation orchestrator: it owns the dashboard
// state and caches, and builds per-event snapshots over the active set.
package dashboard

import (
	"io"
	"strconv"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/alerts"
	"github.com/Arcano33sa/suitea33-sub002/internal/cash"
	"github.com/Arcano33sa/suitea33-sub002/internal/checklist"
	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	"github.com/Arcano33sa/suitea33-sub002/internal/deliveries"
	"github.com/Arcano33sa/suitea33-sub002/internal/reminders"
	"github.com/Arcano33sa/suitea33-sub002/internal/sales"
	"github.com/Arcano33sa/suitea33-sub002/internal/snapcache"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/singleflight"
)

// Cache names, also used as metric labels.
const (
	CacheSnapshots = "snapshot"
	CacheChecklist = "checklist"
	CacheDynamic   = "dynamic"
	CacheSalesDay  = "sales-day"
	CacheHeadline  = "headline"
)

type Deps struct {
	Accessor *store.Accessor
	Blobs    *store.Blobs
	Config   config.DashboardConfig
	Logger   *logger.Logger
	Metrics  *metrics.DashboardMetrics
	Clock    func() time.Time
	Rules    []alerts.Rule
}

type Service struct {
	acc     *store.Accessor
	blobs   *store.Blobs
	cfg     config.DashboardConfig
	loc     *time.Location
	logg    *logger.Logger
	metrics *metrics.DashboardMetrics
	now     func() time.Time

	sales      *sales.Reader
	cash       *cash.Loader
	deliveries *deliveries.Reader
	reminders  *reminders.Reader
	engine     *alerts.Engine
	events     *dataloader.Loader[int, *models.Event]

	flight     singleflight.Group
	snapshots  *snapcache.Cache[Snapshot]
	checklists *snapcache.Cache[store.Result[checklist.Breakdown]]
	dynamic    *snapcache.Cache[dynamicFields]
	headlines  *snapcache.Cache[headlineFields]
	salesDays  *snapcache.Cache[store.Result[sales.Day]]

	state *State
}

func New(deps Deps) *Service {
	cfg := deps.Config
	if cfg.ScanLimit == 0 {
		cfg = config.Defaults()
	}
	// Configs built outside config.Load skip validation; a zero worker limit
	// would block every fan-out.
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueCap > 0 && cfg.QueueCap < cfg.Workers {
		cfg.QueueCap = cfg.Workers
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "dashboard", Output: io.Discard})
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	blobs := deps.Blobs
	if blobs == nil {
		blobs = store.NewBlobs(nil, logg, deps.Metrics)
	}
	loc := cfg.Location()

	s := &Service{
		acc:     deps.Accessor,
		blobs:   blobs,
		cfg:     cfg,
		loc:     loc,
		logg:    logg,
		metrics: deps.Metrics,
		now:     now,
		state:   newState(),
	}
	s.sales = sales.NewReader(s.acc, cfg.TopProducts, loc)
	s.cash = cash.NewLoader(s.acc, blobs, s.sales, cfg.BaseCurrency, cfg.ForeignCurrency)
	s.deliveries = deliveries.NewReader(s.acc, deliveries.DefaultLookback, loc)
	s.reminders = reminders.NewReader(s.acc)
	if deps.Rules != nil {
		s.engine = alerts.NewEngineWithRules(deps.Rules, deps.Metrics)
	} else {
		s.engine = alerts.NewEngine(deps.Metrics)
	}
	s.events = newEventLoader(s.acc)

	observer := cacheObserver(deps.Metrics)
	s.snapshots = snapcache.New[Snapshot](CacheSnapshots, cfg.SnapshotCacheSize,
		snapcache.WithClock(now), snapcache.WithObserver(observer))
	s.checklists = snapcache.New[store.Result[checklist.Breakdown]](CacheChecklist, cfg.ChecklistCacheSize,
		snapcache.WithClock(now), snapcache.WithObserver(observer))
	s.dynamic = snapcache.New[dynamicFields](CacheDynamic, cfg.DynamicCacheSize,
		snapcache.WithTTL(cfg.DynamicTTL), snapcache.WithClock(now), snapcache.WithObserver(observer))
	s.headlines = snapcache.New[headlineFields](CacheHeadline, cfg.DynamicCacheSize,
		snapcache.WithTTL(cfg.DynamicTTL), snapcache.WithClock(now), snapcache.WithObserver(observer))
	s.salesDays = snapcache.New[store.Result[sales.Day]](CacheSalesDay, 4,
		snapcache.WithTTL(cfg.DynamicTTL), snapcache.WithClock(now), snapcache.WithObserver(observer))
	return s
}

// cacheObserver keeps a nil collector from becoming a typed-nil observer.
func cacheObserver(m *metrics.DashboardMetrics) snapcache.Observer {
	if m == nil {
		return nil
	}
	return m
}

// State exposes the application state for handlers and jobs.
func (s *Service) State() *State {
	return s.state
}

func (s *Service) Config() config.DashboardConfig {
	return s.cfg
}

// Today is the current day key in the dashboard timezone.
func (s *Service) Today() string {
	return daykey.FromTime(s.now(), s.loc)
}

// salt captures the display parameters that change the shape of a result.
func (s *Service) salt() string {
	return "texts=" + strconv.Itoa(s.cfg.PendingTextLimit) +
		";top=" + strconv.Itoa(s.cfg.TopProducts) +
		";recs=" + strconv.Itoa(s.cfg.RecommendLimit)
}

// Package app assembles the service from configuration: stores, machine
// client, event buses, workers and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quentinlb/cocktaild/api"
	"github.com/quentinlb/cocktaild/config"
	"github.com/quentinlb/cocktaild/core/availability"
	"github.com/quentinlb/cocktaild/core/catalog"
	"github.com/quentinlb/cocktaild/core/dispenser"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/files"
	coremetrics "github.com/quentinlb/cocktaild/core/metrics"
	"github.com/quentinlb/cocktaild/core/order"
	"github.com/quentinlb/cocktaild/core/store"
	"github.com/quentinlb/cocktaild/infra/logger"
	"github.com/quentinlb/cocktaild/infra/machine"
	"github.com/quentinlb/cocktaild/infra/memstore"
	"github.com/quentinlb/cocktaild/infra/metrics"
	"github.com/quentinlb/cocktaild/infra/mongo"
	"github.com/quentinlb/cocktaild/internal/eventbus"
)

// Service is the assembled application.
type Service struct {
	Server     *api.Server
	Controller *order.Controller
	Engine     *availability.Engine

	machineClient *machine.PahoClient
	mongoStores   *mongo.Stores

	orderBus  *eventbus.Bus[events.OrderCreated]
	slotBus   *eventbus.Bus[events.SlotChanged]
	recipeBus *eventbus.Bus[events.RecipesChanged]

	apiAddr     string
	promEnabled bool
	promPort    string
	log         logger.Logger
}

type stores struct {
	ingredients store.IngredientStore
	recipes     store.RecipeStore
	slots       store.SlotStore
	settings    store.SettingStore
	orders      store.OrderStore
	files       store.FileStore
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	zerolog.SetGlobalLevel(cfg.Logging.ZerologLevel())
	log := logger.New("service")

	svc := &Service{
		apiAddr:     cfg.API.Addr,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		log:         log,
	}

	var st stores
	if cfg.Mongo.Enabled {
		ms, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		svc.mongoStores = ms
		st = stores{
			ingredients: ms.Ingredients,
			recipes:     ms.Recipes,
			slots:       ms.Slots,
			settings:    ms.Settings,
			orders:      ms.Orders,
			files:       ms.Files,
		}
	} else {
		log.Warnf("mongo disabled, using in-memory stores")
		ms := memstore.New()
		st = stores{
			ingredients: ms.Ingredients,
			recipes:     ms.Recipes,
			slots:       ms.Slots,
			settings:    ms.Settings,
			orders:      ms.Orders,
			files:       ms.Files,
		}
	}

	client, err := machine.NewPahoClient(cfg.Machine)
	if err != nil {
		return nil, fmt.Errorf("machine client: %w", err)
	}
	svc.machineClient = client

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	svc.orderBus = eventbus.New[events.OrderCreated]()
	svc.slotBus = eventbus.New[events.SlotChanged]()
	svc.recipeBus = eventbus.New[events.RecipesChanged]()

	settingSvc := dispenser.NewSettingService(st.settings)
	timeout := time.Duration(cfg.Dispatch.MachineTimeoutSeconds) * time.Second
	controller, err := order.NewController(
		st.orders, st.slots, settingSvc, client, timeout, logger.New("controller"), sink,
	)
	if err != nil {
		return nil, fmt.Errorf("order controller: %w", err)
	}
	svc.Controller = controller
	svc.Engine = availability.NewEngine(st.slots, st.recipes, logger.New("availability"), sink)

	fileSvc, err := files.NewService(st.files, cfg.API.FilesDir, logger.New("files"))
	if err != nil {
		return nil, err
	}

	svc.Server = api.NewServer(
		catalog.NewIngredientService(st.ingredients, st.recipes, st.slots, logger.New("ingredients")),
		catalog.NewRecipeService(st.recipes, st.ingredients, svc.recipeBus, logger.New("recipes")),
		dispenser.NewSlotService(st.slots, st.ingredients, svc.slotBus, logger.New("slots")),
		settingSvc,
		order.NewService(st.orders, st.recipes, st.ingredients, st.slots, svc.orderBus, logger.New("orders")),
		controller,
		fileSvc,
		cfg.API.CORSOrigins,
		logger.New("api"),
	)
	return svc, nil
}

// Run starts the workers and the HTTP listener and blocks until the context
// is canceled or the listener fails.
func (s *Service) Run(ctx context.Context) error {
	go s.Controller.Run(ctx, s.orderBus.Subscribe())
	go s.Engine.Run(ctx, s.slotBus.Subscribe(), s.recipeBus.Subscribe())

	// The dispenser configuration may have changed while the service was
	// down; recompute before serving reads.
	if err := s.Engine.Recompute(ctx); err != nil {
		s.log.Errorf("initial availability recompute: %v", err)
	}

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s.Server.Serve(ctx, s.apiAddr)
}

// Close releases the machine connection and the database client.
func (s *Service) Close() error {
	s.machineClient.Close()
	s.orderBus.Close()
	s.slotBus.Close()
	s.recipeBus.Close()
	if s.mongoStores != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.mongoStores.Close(ctx)
	}
	return nil
}

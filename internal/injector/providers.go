package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/core/events/bus"
	"github.com/zeusync/herd/internal/core/observability/log"
	"github.com/zeusync/herd/internal/core/sim"
	"github.com/zeusync/herd/internal/server"
)

// App is a fully wired simulation with its observer server.
type App struct {
	Config     config.Config
	Logger     *log.Logger
	Bus        bus.EventBus
	Registry   *prometheus.Registry
	Simulation *sim.Simulation
	Server     *server.Server
}

// ProviderSet builds an App from a Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideRegistry,
	ProvideMetrics,
	ProvideSimulation,
	ProvideServer,
	wire.Bind(new(log.Log), new(*log.Logger)),
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	wire.Bind(new(server.Controller), new(*sim.Simulation)),
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the logger described by cfg.Log. The cleanup flushes it.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.New(log.Options{Level: level, Encoding: cfg.Log.Encoding})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideBus returns a bus observed by the simulation metrics.
func ProvideBus(m *sim.Metrics) bus.EventBus {
	b := bus.New()
	b.AddObserver(m)
	return b
}

// ProvideRegistry returns a registry with the Go runtime and process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg prometheus.Registerer) *sim.Metrics {
	return sim.NewMetrics(reg)
}

func ProvideSimulation(cfg config.Config, logger log.Log, b bus.EventBus, m *sim.Metrics) *sim.Simulation {
	return sim.New(cfg, sim.WithLogger(logger), sim.WithBus(b), sim.WithMetrics(m))
}

func ProvideServer(cfg config.Config, ctrl server.Controller, logger log.Log, b bus.EventBus, g prometheus.Gatherer) *server.Server {
	return server.NewServer(cfg.Server, ctrl, server.WithLogger(logger), server.WithBus(b), server.WithGatherer(g))
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/events/bus"
	"github.com/zeusync/herd/internal/core/npc"
	"github.com/zeusync/herd/internal/core/observability/log"
	"github.com/zeusync/herd/internal/core/world"
	"github.com/zeusync/herd/pkg/concurrent"
)

// EventSource is the Source of every event the simulation publishes.
const EventSource = "sim"

// ErrInvalidTickRate is returned by Run for a non-positive tick rate.
var ErrInvalidTickRate = errors.New("tick rate must be positive")

// Simulation owns the world, the herd and the brain they share. All methods are safe for
// concurrent use; Step serializes with the control methods.
type Simulation struct {
	mu     sync.Mutex
	world  *world.World
	agents []*agent
	chunks [][]*agent
	brain  *npc.Brain

	workers int
	tick    uint64
	paused  bool
	// aborted is set when the last step was cancelled part way through. The agents' previous
	// state is then kept so the next step reports what the aborted one changed.
	aborted bool

	logger  log.Log
	bus     bus.EventBus
	metrics *Metrics
}

// agent pairs an entity with what it looked like before the current tick.
type agent struct {
	entity *world.Entity

	prevActivity world.Activity
	prevWaypoint int
	prevHungry   bool
	status       bt.Status
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Log) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithBus sets the bus events are published to. Without one no events are produced.
func WithBus(b bus.EventBus) Option {
	return func(s *Simulation) { s.bus = b }
}

// WithMetrics sets the collectors updated after each step.
func WithMetrics(m *Metrics) Option {
	return func(s *Simulation) { s.metrics = m }
}

// New spawns cfg.Simulation.Agents grazers named "<prefix>-<i>" into a fresh world.
func New(cfg config.Config, opts ...Option) *Simulation {
	w := world.New(cfg.World)
	s := &Simulation{
		world:   w,
		brain:   npc.NewGrazerBrain(),
		workers: cfg.Simulation.Workers,
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.String("component", "sim"))

	spawner := world.NewSpawner(cfg.Simulation.Seed, cfg.World, len(w.Waypoints))
	s.agents = make([]*agent, 0, cfg.Simulation.Agents)
	for i := range cfg.Simulation.Agents {
		e := spawner.Spawn(fmt.Sprintf("%s-%d", cfg.Simulation.NamePrefix, i))
		s.agents = append(s.agents, &agent{entity: e})
	}
	s.chunks = concurrent.Chunks(s.agents, max(s.workers, 1))

	s.logger.Info("simulation created",
		log.Int("agents", len(s.agents)),
		log.Int("workers", s.workers),
		log.Uint64("seed", cfg.Simulation.Seed),
	)
	return s
}

// Step advances the simulation by dt: the world moves, every brain ticks, every entity
// integrates. It is a no-op while paused. Events are published after the step completes.
func (s *Simulation) Step(ctx context.Context, dt time.Duration) error {
	events, err := s.step(ctx, dt)
	if err != nil {
		return err
	}
	s.publish(events)
	return nil
}

func (s *Simulation) step(ctx context.Context, dt time.Duration) ([]bus.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, nil
	}
	start := time.Now()

	if !s.aborted {
		for _, a := range s.agents {
			a.capture()
		}
	}
	s.world.Update(dt)
	w := s.world
	err := concurrent.ForEach(ctx, s.chunks, s.workers, func(ctx context.Context, chunk []*agent) error {
		for _, a := range chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.update(s.brain, w, dt)
		}
		return nil
	})
	if err != nil {
		s.aborted = true
		return nil, fmt.Errorf("step %d: %w", s.tick+1, err)
	}
	s.aborted = false
	s.tick++

	statuses := make(map[bt.Status]int, 3)
	activities := make(map[world.Activity]int, 4)
	var events []bus.Event
	for _, a := range s.agents {
		statuses[a.status]++
		activities[a.entity.Activity]++
		events = a.collect(events, s.tick)
	}
	s.metrics.observeStep(time.Since(start).Seconds(), statuses, activities)
	return events, nil
}

func (a *agent) capture() {
	e := a.entity
	a.prevActivity, a.prevWaypoint, a.prevHungry = e.Activity, e.WaypointIndex, e.Hungry
}

func (a *agent) update(brain *npc.Brain, w *world.World, dt time.Duration) {
	a.status = brain.Tick(&npc.Context{Self: a.entity, World: w}, dt)
	a.entity.Integrate(dt, w.Params)
}

func (a *agent) collect(events []bus.Event, tick uint64) []bus.Event {
	e := a.entity
	if e.Activity != a.prevActivity {
		events = append(events, bus.NewEvent(EventActivityChanged, EventSource, ActivityChanged{
			Agent: e.Name, Tick: tick, From: a.prevActivity, To: e.Activity,
		}))
	}
	if e.WaypointIndex != a.prevWaypoint {
		events = append(events, bus.NewEvent(EventWaypointReached, EventSource, WaypointReached{
			Agent: e.Name, Tick: tick, Waypoint: a.prevWaypoint, Next: e.WaypointIndex,
		}))
	}
	if a.prevHungry && !e.Hungry {
		events = append(events, bus.NewEvent(EventAte, EventSource, Ate{Agent: e.Name, Tick: tick}))
	}
	return events
}

func (s *Simulation) publish(events []bus.Event) {
	for _, ev := range events {
		s.metrics.observeEvent(ev.Type())
		s.logger.Debug("agent event", log.String("type", ev.Type()), log.Any("data", ev.Data()))
	}
	if s.bus == nil || len(events) == 0 {
		return
	}
	if err := s.bus.PublishBatch(events...); err != nil {
		s.logger.Warn("event handlers failed", log.Error(err))
	}
}

// Run steps the simulation tickRate times per second of wall time until ctx is done. Each
// step advances simulation time by exactly 1/tickRate.
func (s *Simulation) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		return ErrInvalidTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("simulation running", log.Int("tick_rate", tickRate))
	defer func() { s.logger.Info("simulation stopped", log.Uint64("tick", s.Tick())) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Step(ctx, interval); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// RunFor performs ticks steps of dt back to back, ignoring wall time.
func (s *Simulation) RunFor(ctx context.Context, ticks int, dt time.Duration) error {
	for range ticks {
		if err := s.Step(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

// Pause stops Step from advancing the simulation.
func (s *Simulation) Pause() { s.setPaused(true) }

// Resume undoes Pause.
func (s *Simulation) Resume() { s.setPaused(false) }

// TogglePause flips the pause state and returns the new one.
func (s *Simulation) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	s.logger.Info("pause toggled", log.Bool("paused", s.paused))
	return s.paused
}

func (s *Simulation) setPaused(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = p
}

// Paused reports whether the simulation is paused.
func (s *Simulation) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// ToggleWolf switches the wolf on or off and returns whether it is now active.
func (s *Simulation) ToggleWolf() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.world.ToggleWolf()
	s.logger.Info("wolf toggled", log.Bool("active", active))
	return active
}

// Tick returns the number of steps taken so far.
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Snapshot copies the current state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.world
	snap := Snapshot{
		Tick:       s.tick,
		Elapsed:    w.Elapsed.Seconds(),
		Paused:     s.paused,
		Stage:      w.Params.Stage(),
		Food:       w.Food,
		Wolf:       w.Wolf,
		WolfActive: w.WolfActive,
		Waypoints:  slices.Clone(w.Waypoints),
		Agents:     make([]AgentView, 0, len(s.agents)),
	}
	for _, a := range s.agents {
		snap.Agents = append(snap.Agents, viewOf(a.entity))
	}
	return snap
}

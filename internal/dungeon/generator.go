package dungeon

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
	"github.com/lawnchairsociety/hexcrawl/internal/weighted"
)

// ErrDuplicateRoom means a ring step tried to spawn a room where one
// already exists. The generator fails when it happens.
var ErrDuplicateRoom = errors.New("dungeon: room already exists")

// Phase is the generator's position in its run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRings
	PhaseDone
	PhaseFailed
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRings:
		return "rings"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of a generator.
type State struct {
	Phase Phase
	// Ring is the last ring generated, -1 before the first step.
	Ring     int
	MaxRings int
	Rooms    int
	Hallways int
	Cells    int
	Err      error
}

// Generator grows a World one ring per Step.
type Generator struct {
	cfg   Config
	world *World
	rng   *rand.Rand
	lobes *weighted.Chooser[int]

	// stepMu serializes Step; mu guards the fields below it.
	stepMu sync.Mutex

	mu        sync.RWMutex
	phase     Phase
	nextRing  int
	err       error
	listeners []subscription
	nextSubID int
}

// NewGenerator validates cfg and returns an idle generator. A nil table is
// built on demand.
func NewGenerator(cfg Config, table *walls.Table) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		var err error
		if table, err = walls.Build(); err != nil {
			return nil, err
		}
	}

	lobes, err := cfg.lobeChooser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	world, err := newWorld(cfg, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Generator{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		lobes: lobes,
		phase: PhaseIdle,
	}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// World returns the index the generator writes to.
func (g *Generator) World() *World {
	return g.world
}

// State returns the current phase and totals.
func (g *Generator) State() State {
	g.mu.RLock()
	phase, next, err := g.phase, g.nextRing, g.err
	g.mu.RUnlock()

	rooms, hallways, cells := g.world.Counts()
	return State{
		Phase:    phase,
		Ring:     next - 1,
		MaxRings: g.cfg.MaxRings,
		Rooms:    rooms,
		Hallways: hallways,
		Cells:    cells,
		Err:      err,
	}
}

// Subscribe registers a listener for spawn events and returns a function
// that removes it.
func (g *Generator) Subscribe(l Listener) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSubID
	g.nextSubID++
	g.listeners = append(g.listeners, subscription{id: id, fn: l})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, s := range g.listeners {
			if s.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

// Step generates the next ring and reports whether generation is complete.
// The whole ring is committed under the world's write lock. Calling Step
// after completion does nothing and returns true.
func (g *Generator) Step() (bool, error) {
	g.stepMu.Lock()
	defer g.stepMu.Unlock()

	g.mu.RLock()
	phase, ring, failure := g.phase, g.nextRing, g.err
	g.mu.RUnlock()

	switch phase {
	case PhaseDone:
		return true, nil
	case PhaseFailed:
		return true, failure
	}

	start := time.Now()
	events, err := g.generateRing(ring)
	if err != nil {
		g.mu.Lock()
		g.phase = PhaseFailed
		g.err = err
		g.mu.Unlock()
		logger.Error("Generation failed", "ring", ring, "error", err)
		return true, err
	}

	done := ring >= g.cfg.MaxRings
	g.mu.Lock()
	g.nextRing = ring + 1
	if done {
		g.phase = PhaseDone
	} else {
		g.phase = PhaseRings
	}
	g.mu.Unlock()

	rooms, hallways := 0, 0
	for _, ev := range events {
		switch ev.Kind {
		case EventRoomSpawned:
			rooms++
		case EventHallwaySpawned:
			hallways++
		}
	}
	duration := time.Since(start)
	events = append(events, Event{
		Kind:     EventStepCompleted,
		Ring:     ring,
		Rooms:    rooms,
		Hallways: hallways,
		Cells:    g.world.CellCount(),
		Duration: duration,
	})
	logger.Info("Ring generated", "ring", ring, "rooms", rooms, "hallways", hallways, "duration", duration)

	g.notify(events)
	return done, nil
}

// Run steps until the last ring, pausing StepDelay between steps. ctx is
// checked between steps only; a step in progress always completes.
func (g *Generator) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if g.cfg.StepDelay > 0 {
		ticker := time.NewTicker(g.cfg.StepDelay)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := g.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
}

// RunToCompletion steps without pausing. It is meant for tools and tests.
func (g *Generator) RunToCompletion() error {
	for {
		done, err := g.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (g *Generator) notify(events []Event) {
	g.mu.RLock()
	listeners := append([]subscription(nil), g.listeners...)
	g.mu.RUnlock()

	for _, ev := range events {
		for _, s := range listeners {
			s.fn(ev)
		}
	}
}

// generateRing spawns and connects the rooms of one ring. Room coordinates
// are checked before anything is written, so a failed step leaves the
// index untouched.
func (g *Generator) generateRing(ring int) ([]Event, error) {
	w := g.world
	w.mu.Lock()
	defer w.mu.Unlock()

	coords := []hex.Coord{hex.Origin}
	if ring > 0 {
		coords = hex.ShuffledRing(hex.Origin, ring, g.rng)
		coords = coords[:(len(coords)+1)/2]
	}
	for _, rc := range coords {
		if _, exists := w.rooms[rc]; exists {
			return nil, fmt.Errorf("%w: %s in ring %d", ErrDuplicateRoom, rc, ring)
		}
	}

	events := make([]Event, 0, len(coords)*2)
	spawned := make([]*Room, 0, len(coords))
	for _, rc := range coords {
		room := g.carveRoom(rc, ring)
		w.addRoom(room)
		spawned = append(spawned, room)
		events = append(events, Event{Kind: EventRoomSpawned, Ring: ring, Room: room})
	}

	if ring > 0 {
		events = append(events, g.connectRing(ring, spawned)...)
	}
	return events, nil
}

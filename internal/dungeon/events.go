package dungeon

import (
	"time"

	"github.com/lawnchairsociety/hexcrawl/internal/hex"
)

// EventKind identifies a spawn notification.
type EventKind int

const (
	EventRoomSpawned EventKind = iota
	EventHallwaySpawned
	EventConnectionSkipped
	EventStepCompleted
)

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventRoomSpawned:
		return "room"
	case EventHallwaySpawned:
		return "hallway"
	case EventConnectionSkipped:
		return "skipped"
	case EventStepCompleted:
		return "step"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners once the step that produced it has
// committed. Which fields are set depends on Kind.
type Event struct {
	Kind EventKind
	Ring int

	Room    *Room    // EventRoomSpawned
	Hallway *Hallway // EventHallwaySpawned

	// EventConnectionSkipped
	From, To hex.Coord
	Err      error

	// EventStepCompleted
	Rooms    int
	Hallways int
	Cells    int
	Duration time.Duration
}

// Listener receives spawn events. Listeners are called from the generating
// goroutine without any world lock held, so they may query the world.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

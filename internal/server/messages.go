package server

import (
	"encoding/json"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
)

// Stream message types beyond the generator's event kinds.
const (
	// typeSynced follows the replay; everything after it is live.
	typeSynced = "synced"
)

// RoomView is the JSON form of a room.
type RoomView struct {
	Coord  hex.Coord      `json:"coord"`
	Ring   int            `json:"ring"`
	Origin hex.Coord      `json:"origin"`
	Disks  []dungeon.Disk `json:"disks"`
	Cells  []hex.Coord    `json:"cells"`
}

// HallwayView is the JSON form of a hallway.
type HallwayView struct {
	From  hex.Coord   `json:"from"`
	To    hex.Coord   `json:"to"`
	Cells []hex.Coord `json:"cells"`
}

// Message is one frame of the spawn stream.
type Message struct {
	Type string `json:"type"`
	Ring int    `json:"ring"`

	Room    *RoomView    `json:"room,omitempty"`
	Hallway *HallwayView `json:"hallway,omitempty"`

	From  *hex.Coord `json:"from,omitempty"`
	To    *hex.Coord `json:"to,omitempty"`
	Error string     `json:"error,omitempty"`

	Rooms      int     `json:"rooms,omitempty"`
	Hallways   int     `json:"hallways,omitempty"`
	Cells      int     `json:"cells,omitempty"`
	DurationMS float64 `json:"duration_ms,omitempty"`
}

func newRoomView(r *dungeon.Room) *RoomView {
	return &RoomView{
		Coord:  r.Coord,
		Ring:   r.Ring,
		Origin: r.Origin,
		Disks:  r.Disks,
		Cells:  r.Coords,
	}
}

func newHallwayView(h *dungeon.Hallway) *HallwayView {
	return &HallwayView{From: h.From.Coord, To: h.To.Coord, Cells: h.Coords}
}

// messageFor converts a generator event to its stream frame.
func messageFor(ev dungeon.Event) Message {
	msg := Message{Type: ev.Kind.String(), Ring: ev.Ring}
	switch ev.Kind {
	case dungeon.EventRoomSpawned:
		msg.Room = newRoomView(ev.Room)
	case dungeon.EventHallwaySpawned:
		msg.Hallway = newHallwayView(ev.Hallway)
	case dungeon.EventConnectionSkipped:
		from, to := ev.From, ev.To
		msg.From, msg.To = &from, &to
		if ev.Err != nil {
			msg.Error = ev.Err.Error()
		}
	case dungeon.EventStepCompleted:
		msg.Rooms, msg.Hallways, msg.Cells = ev.Rooms, ev.Hallways, ev.Cells
		msg.DurationMS = float64(ev.Duration.Microseconds()) / 1000
	}
	return msg
}

func encode(msg Message) []byte {
	// Message holds only plain values; Marshal cannot fail.
	data, _ := json.Marshal(msg)
	return data
}

package dungeon

import (
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
	"github.com/lawnchairsociety/hexcrawl/internal/pathfind"
)

// carveRoom builds a room footprint from a chain of shrinking lobes. Each
// lobe is a filled disk; the next lobe is centered on a random cell of the
// outer ring of the previous one. Cells that already hold a role are left
// to their owner. The caller holds the write lock.
func (g *Generator) carveRoom(rc hex.Coord, ring int) *Room {
	w := g.world
	room := newRoom(rc, ring, g.cfg.RoomSize)

	lobes := g.lobes.Choose(g.rng)
	maxRadius := g.cfg.MaxLobeRadius
	center := room.Origin

	for i := 0; i < lobes; i++ {
		radius := g.cfg.MinLobeRadius + g.rng.Intn(maxRadius-g.cfg.MinLobeRadius+1)
		room.Disks = append(room.Disks, Disk{Center: center, Radius: radius})

		var rim []hex.Coord
		disk := hex.NewSpiral(center, 0, radius)
		for c, ok := disk.Next(); ok; c, ok = disk.Next() {
			if disk.Radius() == radius {
				rim = append(rim, c)
			}
			if _, taken := w.cells[c]; taken {
				continue
			}
			w.claim(c, room)
			room.add(c)
		}

		maxRadius = radius
		center = rim[g.rng.Intn(len(rim))]
	}
	return room
}

type roomPair struct {
	from, to *Room
}

// connectRing joins the previous ring to the rooms just spawned. Pairs are
// tried in spawn order, previous ring outer, and a room takes at most one
// hallway from this pass. With ConnectOrphans, rooms left over are then
// linked to their nearest connected room.
func (g *Generator) connectRing(ring int, spawned []*Room) []Event {
	w := g.world

	seen := make(map[HallwayKey]bool)
	var pairs []roomPair
	for _, a := range w.roomsInRing(ring - 1) {
		for _, b := range spawned {
			key := HallwayKey{From: a.Coord, To: b.Coord}
			if seen[key] || seen[HallwayKey{From: b.Coord, To: a.Coord}] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, roomPair{from: a, to: b})
		}
	}

	var events []Event
	connected := make(map[hex.Coord]bool)
	for _, p := range pairs {
		if connected[p.from.Coord] || connected[p.to.Coord] {
			continue
		}
		ev := g.link(p.from, p.to, ring)
		if ev.Kind == EventHallwaySpawned {
			connected[p.from.Coord] = true
			connected[p.to.Coord] = true
		}
		events = append(events, ev)
	}

	if !g.cfg.ConnectOrphans {
		return events
	}
	for _, orphan := range spawned {
		if connected[orphan.Coord] {
			continue
		}
		target := g.nearestConnected(orphan, ring, connected)
		if target == nil {
			continue
		}
		ev := g.link(target, orphan, ring)
		if ev.Kind == EventHallwaySpawned {
			connected[orphan.Coord] = true
		}
		events = append(events, ev)
	}
	return events
}

// nearestConnected finds the closest room that is already part of the
// network: any room of an earlier ring, or a room of this ring that took a
// hallway. Ties go to the earlier spawned room.
func (g *Generator) nearestConnected(orphan *Room, ring int, connected map[hex.Coord]bool) *Room {
	var best *Room
	bestDist := 0
	for _, r := range g.world.roomList {
		if r == orphan || (r.Ring >= ring && !connected[r.Coord]) {
			continue
		}
		d := r.Origin.Distance(orphan.Origin)
		if best == nil || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}

// link searches a path between two room origins and commits it as a
// hallway. A failed search writes nothing and yields a skip event.
func (g *Generator) link(from, to *Room, ring int) Event {
	w := g.world
	res, err := pathfind.Search(pathfind.Problem[hex.Coord, int]{
		Start: from.Origin,
		Goal:  to.Origin,
		Neighbors: func(c hex.Coord) []hex.Coord {
			n := c.Neighbors()
			return n[:]
		},
		Cost: func(_, next hex.Coord, _ map[hex.Coord]hex.Coord) int {
			if _, ok := w.cells[next]; ok {
				return g.cfg.OccupiedCost
			}
			return g.cfg.EmptyCost
		},
		Heuristic: func(n, goal hex.Coord) int {
			return n.Distance(goal) * g.cfg.stepCost()
		},
		Costs:         pathfind.IntCosts(),
		MaxExpansions: g.cfg.SearchLimit,
	})
	if err != nil {
		expanded := 0
		if res != nil {
			expanded = res.Expanded
		}
		logger.Warning("Skipping unreachable room pair",
			"ring", ring, "from", from.Coord.String(), "to", to.Coord.String(),
			"expanded", expanded, "error", err)
		return Event{Kind: EventConnectionSkipped, Ring: ring, From: from.Coord, To: to.Coord, Err: err}
	}

	h := &Hallway{From: from, To: to}
	for _, c := range res.Path {
		if role, ok := w.cells[c]; ok && role.Kind == RoleRoom {
			continue
		}
		h.Coords = append(h.Coords, c)
	}
	w.addHallway(h)
	return Event{Kind: EventHallwaySpawned, Ring: ring, Hallway: h}
}

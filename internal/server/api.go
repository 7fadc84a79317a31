package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/hex"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
)

type stateResponse struct {
	Seed          int64     `json:"seed"`
	Phase         string    `json:"phase"`
	Ring          int       `json:"ring"`
	MaxRings      int       `json:"max_rings"`
	Rooms         int       `json:"rooms"`
	Hallways      int       `json:"hallways"`
	Cells         int       `json:"cells"`
	Error         string    `json:"error,omitempty"`
	StreamClients int       `json:"stream_clients"`
	Connections   ConnStats `json:"connections"`
}

type hallwayRef struct {
	From hex.Coord `json:"from"`
	To   hex.Coord `json:"to"`
}

type cellResponse struct {
	Coord    hex.Coord     `json:"coord"`
	Role     string        `json:"role"`
	Room     *hex.Coord    `json:"room,omitempty"`
	Hallways []hallwayRef  `json:"hallways,omitempty"`
	Tile     *dungeon.Tile `json:"tile,omitempty"`
}

type nearestResponse struct {
	Room     *RoomView `json:"room"`
	Distance float64   `json:"distance"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.gen.State()
	resp := stateResponse{
		Seed:          s.gen.Config().Seed,
		Phase:         st.Phase.String(),
		Ring:          st.Ring,
		MaxRings:      st.MaxRings,
		Rooms:         st.Rooms,
		Hallways:      st.Hallways,
		Cells:         st.Cells,
		StreamClients: s.hub.count(),
		Connections:   s.connLimiter.Stats(),
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	c, err := coordParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	world := s.gen.World()
	role, ok := world.CellRoleAt(c)
	resp := cellResponse{Coord: c, Role: role.Kind.String()}
	if ok {
		if role.Room != nil {
			rc := role.Room.Coord
			resp.Room = &rc
		}
		for _, h := range role.Hallways {
			resp.Hallways = append(resp.Hallways, hallwayRef{From: h.From.Coord, To: h.To.Coord})
		}
		tile := world.Tiles([]hex.Coord{c})[0]
		resp.Tile = &tile
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	c, err := coordParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, ok := s.gen.World().RoomAt(c)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no room at %s", c))
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(room))
}

func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	c, err := coordParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	world := s.gen.World()
	room, ok := world.RoomAt(c)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no room at %s", c))
		return
	}

	writeJSON(w, http.StatusOK, world.Tiles(room.Coords))
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	x, err := floatParam(query.Get("x"), "x")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	z, err := floatParam(query.Get("z"), "z")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var limit float64
	if v := query.Get("max"); v != "" {
		if limit, err = floatParam(v, "max"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	visited, err := parseVisited(query.Get("visited"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from := hex.Vec3{X: x, Z: z}
	world := s.gen.World()
	room, ok := world.NearestUnvisitedRoom(from, visited, limit)
	if !ok {
		writeError(w, http.StatusNotFound, "no unvisited room in range")
		return
	}
	dist := room.Origin.ToWorld(0, world.TileSize()).PlanarDistance(from)
	writeJSON(w, http.StatusOK, nearestResponse{Room: newRoomView(room), Distance: dist})
}

// coordParam reads the q and r query parameters.
func coordParam(r *http.Request) (hex.Coord, error) {
	query := r.URL.Query()
	q, err := strconv.Atoi(query.Get("q"))
	if err != nil {
		return hex.Coord{}, fmt.Errorf("invalid q %q", query.Get("q"))
	}
	rr, err := strconv.Atoi(query.Get("r"))
	if err != nil {
		return hex.Coord{}, fmt.Errorf("invalid r %q", query.Get("r"))
	}
	return hex.New(q, rr), nil
}

func floatParam(v, name string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return f, nil
}

// parseVisited reads room coordinates ("q,r" or "q:r") separated by
// semicolons or whitespace.
func parseVisited(v string) (map[hex.Coord]bool, error) {
	visited := make(map[hex.Coord]bool)
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
	for _, part := range fields {
		c, err := hex.Parse(part)
		if err != nil {
			return nil, err
		}
		visited[c] = true
	}
	return visited, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Response write failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

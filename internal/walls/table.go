package walls

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/hexcrawl/internal/logger"
)

// ErrIncomplete means the rotation table does not resolve every mask.
var ErrIncomplete = errors.New("walls: rotation table is incomplete")

// EdgeType is the rotation class of a wall mask.
type EdgeType int

const (
	EdgeNone            EdgeType = iota // No open sides - interior floor
	EdgeSingle                          // One wall
	EdgeAdjacentPair                    // Two walls meeting at a corner
	EdgeSplitPair                       // Two walls with one closed side between
	EdgeOppositePair                    // Two parallel walls - corridor
	EdgeTripleRun                       // Three consecutive walls
	EdgeTripleHookLeft                  // Sides 0, 1, 3
	EdgeTripleHookRight                 // Sides 0, 2, 3
	EdgeTripleAlternate                 // Every other side
	EdgeQuadRun                         // Four consecutive walls
	EdgeQuadSplit                       // Four walls, closed sides one apart
	EdgeQuadOpposite                    // Four walls, closed sides opposite
	EdgeQuintuple                       // Five walls - dead end
	EdgeIsolated                        // Six walls
)

// canonical holds each class at rotation 0.
var canonical = [...]Mask{
	EdgeNone:            0b000000,
	EdgeSingle:          0b000001,
	EdgeAdjacentPair:    0b000011,
	EdgeSplitPair:       0b000101,
	EdgeOppositePair:    0b001001,
	EdgeTripleRun:       0b000111,
	EdgeTripleHookLeft:  0b001011,
	EdgeTripleHookRight: 0b001101,
	EdgeTripleAlternate: 0b010101,
	EdgeQuadRun:         0b001111,
	EdgeQuadSplit:       0b010111,
	EdgeQuadOpposite:    0b011011,
	EdgeQuintuple:       0b011111,
	EdgeIsolated:        0b111111,
}

// EdgeTypes returns every edge type in declaration order.
func EdgeTypes() []EdgeType {
	out := make([]EdgeType, len(canonical))
	for i := range canonical {
		out[i] = EdgeType(i)
	}
	return out
}

// String returns the string representation of an EdgeType
func (t EdgeType) String() string {
	switch t {
	case EdgeNone:
		return "none"
	case EdgeSingle:
		return "single"
	case EdgeAdjacentPair:
		return "adjacent_pair"
	case EdgeSplitPair:
		return "split_pair"
	case EdgeOppositePair:
		return "opposite_pair"
	case EdgeTripleRun:
		return "triple_run"
	case EdgeTripleHookLeft:
		return "triple_hook_left"
	case EdgeTripleHookRight:
		return "triple_hook_right"
	case EdgeTripleAlternate:
		return "triple_alternate"
	case EdgeQuadRun:
		return "quad_run"
	case EdgeQuadSplit:
		return "quad_split"
	case EdgeQuadOpposite:
		return "quad_opposite"
	case EdgeQuintuple:
		return "quintuple"
	case EdgeIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name.
func (t EdgeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by String.
func (t *EdgeType) UnmarshalText(text []byte) error {
	for i := range canonical {
		if EdgeType(i).String() == string(text) {
			*t = EdgeType(i)
			return nil
		}
	}
	return fmt.Errorf("walls: unknown edge type %q", text)
}

// Canonical returns the rotation-0 mask of an edge type.
func Canonical(t EdgeType) Mask {
	if t < 0 || int(t) >= len(canonical) {
		return 0
	}
	return canonical[t]
}

// Edge is a wall tile type and the number of steps it is rotated by.
type Edge struct {
	Type     EdgeType `json:"type" yaml:"type"`
	Rotation int      `json:"rotation" yaml:"rotation"`
}

// Table maps every mask to its edge.
type Table struct {
	edges [fullMask + 1]Edge
	set   [fullMask + 1]bool
	count int
}

// Build registers each canonical pattern and its rotations, then checks that
// all 64 masks resolve and that each entry rotates back to its canonical form.
func Build() (*Table, error) {
	return build(canonical[:])
}

// MustBuild is Build for program startup; it panics on an incomplete table.
func MustBuild() *Table {
	t, err := Build()
	if err != nil {
		panic(err)
	}
	return t
}

func build(patterns []Mask) (*Table, error) {
	t := &Table{}
	for i, pattern := range patterns {
		m := pattern & fullMask
		for rot := 0; rot < Sides; rot++ {
			if !t.set[m] {
				t.edges[m] = Edge{Type: EdgeType(i), Rotation: rot}
				t.set[m] = true
				t.count++
			}
			m = m.Rotate(1)
		}
	}

	var missing []Mask
	for m := Mask(0); m <= fullMask; m++ {
		if !t.set[m] {
			missing = append(missing, m)
			continue
		}
		e := t.edges[m]
		if patterns[e.Type].Rotate(e.Rotation) != m {
			return nil, fmt.Errorf("%w: %s registered as %s rotated %d", ErrIncomplete, m, e.Type, e.Rotation)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d of %d masks unresolved (first %s)", ErrIncomplete, len(missing), fullMask+1, missing[0])
	}
	return t, nil
}

// Len returns the number of registered masks.
func (t *Table) Len() int {
	return t.count
}

// Lookup returns the edge registered for a mask.
func (t *Table) Lookup(m Mask) (Edge, bool) {
	if m > fullMask || !t.set[m] {
		return Edge{}, false
	}
	return t.edges[m], true
}

// Resolve is Lookup for render paths: a miss is logged and replaced by the
// no-wall tile.
func (t *Table) Resolve(m Mask) Edge {
	e, ok := t.Lookup(m)
	if !ok {
		logger.Warning("Wall mask missing from rotation table", "mask", m.String())
		return Edge{Type: EdgeNone}
	}
	return e
}

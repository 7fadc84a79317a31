package dungeon

import (
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/hexcrawl/internal/weighted"
)

// ErrInvalidConfig is returned by Validate and NewGenerator for settings
// that cannot produce a layout.
var ErrInvalidConfig = errors.New("dungeon: invalid config")

// Config holds the generator parameters. It is fixed once a generator is
// constructed.
type Config struct {
	Seed int64 `yaml:"seed"`

	// RoomSize is the fine-grid span of one coarse room coordinate.
	RoomSize int `yaml:"room_size"`

	// MaxRings is the last ring generated; ring 0 is the origin room.
	MaxRings int `yaml:"max_rings"`

	// StepDelay is the pause Run inserts between ring steps.
	StepDelay time.Duration `yaml:"step_delay"`

	MinLobes int `yaml:"min_lobes"`
	MaxLobes int `yaml:"max_lobes"`

	// LobeWeights weights each lobe count from MinLobes to MaxLobes. Empty
	// means uniform.
	LobeWeights []float64 `yaml:"lobe_weights"`

	MinLobeRadius int `yaml:"min_lobe_radius"`
	MaxLobeRadius int `yaml:"max_lobe_radius"`

	// TileSize scales the grid to world space.
	TileSize float64 `yaml:"tile_size"`

	// Hallway search costs for entering a claimed or an empty cell.
	OccupiedCost int `yaml:"occupied_cost"`
	EmptyCost    int `yaml:"empty_cost"`

	// SearchLimit bounds node expansions per hallway search. 0 is unlimited.
	SearchLimit int `yaml:"search_limit"`

	// ConnectOrphans links rooms left unconnected by the pairing pass to
	// the nearest connected room. Off by default, which can leave rooms
	// of a ring without a hallway.
	ConnectOrphans bool `yaml:"connect_orphans"`

	// FloorVariantWeights weights the floor tile variants 0..n-1.
	FloorVariantWeights []float64 `yaml:"floor_variant_weights"`
}

// DefaultConfig returns the standard four-step layout.
func DefaultConfig() Config {
	return Config{
		Seed:                1,
		RoomSize:            12,
		MaxRings:            3,
		StepDelay:           250 * time.Millisecond,
		MinLobes:            2,
		MaxLobes:            3,
		MinLobeRadius:       1,
		MaxLobeRadius:       3,
		TileSize:            1.0,
		OccupiedCost:        1,
		EmptyCost:           4,
		SearchLimit:         200000,
		ConnectOrphans:      false,
		FloorVariantWeights: []float64{6, 3, 1},
	}
}

// Validate checks every setting and reports the first one that is out of
// range.
func (c Config) Validate() error {
	switch {
	case c.RoomSize < 1:
		return fmt.Errorf("%w: room_size %d must be at least 1", ErrInvalidConfig, c.RoomSize)
	case c.MaxRings < 0:
		return fmt.Errorf("%w: max_rings %d is negative", ErrInvalidConfig, c.MaxRings)
	case c.StepDelay < 0:
		return fmt.Errorf("%w: step_delay %s is negative", ErrInvalidConfig, c.StepDelay)
	case c.MinLobes < 1 || c.MaxLobes < c.MinLobes:
		return fmt.Errorf("%w: lobe range %d..%d", ErrInvalidConfig, c.MinLobes, c.MaxLobes)
	case c.MinLobeRadius < 0 || c.MaxLobeRadius < c.MinLobeRadius:
		return fmt.Errorf("%w: lobe radius range %d..%d", ErrInvalidConfig, c.MinLobeRadius, c.MaxLobeRadius)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size %g must be positive", ErrInvalidConfig, c.TileSize)
	case c.OccupiedCost < 1 || c.EmptyCost < 1:
		return fmt.Errorf("%w: hallway costs %d/%d must be at least 1", ErrInvalidConfig, c.OccupiedCost, c.EmptyCost)
	case c.SearchLimit < 0:
		return fmt.Errorf("%w: search_limit %d is negative", ErrInvalidConfig, c.SearchLimit)
	}
	if _, err := c.lobeChooser(); err != nil {
		return fmt.Errorf("%w: lobe_weights: %v", ErrInvalidConfig, err)
	}
	if _, err := c.variantChooser(); err != nil {
		return fmt.Errorf("%w: floor_variant_weights: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) lobeChooser() (*weighted.Chooser[int], error) {
	counts := make([]int, 0, c.MaxLobes-c.MinLobes+1)
	for n := c.MinLobes; n <= c.MaxLobes; n++ {
		counts = append(counts, n)
	}
	if len(c.LobeWeights) == 0 {
		return weighted.Uniform(counts)
	}
	return weighted.NewChooser(c.LobeWeights, counts)
}

func (c Config) variantChooser() (*weighted.Chooser[int], error) {
	variants := make([]int, len(c.FloorVariantWeights))
	for i := range variants {
		variants[i] = i
	}
	return weighted.NewChooser(c.FloorVariantWeights, variants)
}

// stepCost is the cheaper of the two hallway costs, used to keep the
// distance heuristic admissible.
func (c Config) stepCost() int {
	return min(c.OccupiedCost, c.EmptyCost)
}

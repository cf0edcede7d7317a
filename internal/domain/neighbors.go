package domain

import (
	"fmt"
)

// Neighbor pairs a compass direction with a resolved grid index.
type Neighbor struct {
	Direction string    `json:"direction"`
	Index     GridIndex `json:"index"`
}

// compassRing lists the eight compass points clockwise from north as
// (north-component, east-component) multipliers. The names form a bijection;
// every caller gets exactly these eight, each exactly once.
var compassRing = [8]struct {
	name  string
	north int
	east  int
}{
	{"N", 1, 0},
	{"NE", 1, 1},
	{"E", 0, 1},
	{"SE", -1, 1},
	{"S", -1, 0},
	{"SW", -1, -1},
	{"W", 0, -1},
	{"NW", 1, -1},
}

// NeighborRing resolves the eight compass neighbors of center at the given
// step, ordered clockwise from north. The orientation maps compass north/east
// onto row/column deltas so callers never assume which way the grid runs.
// Any neighbor falling outside rows×cols is an error wrapping ErrOutOfBounds,
// naming the offending direction; indices are never clamped or wrapped.
func NeighborRing(rows, cols int, center GridIndex, step int, o Orientation) ([]Neighbor, error) {
	if step < 1 {
		return nil, fmt.Errorf("neighbor ring: step must be >= 1, got %d", step)
	}
	if o.NorthRowStep != 1 && o.NorthRowStep != -1 || o.EastColStep != 1 && o.EastColStep != -1 {
		return nil, fmt.Errorf("neighbor ring: invalid orientation %+v", o)
	}
	if center.Row < 0 || center.Row >= rows || center.Col < 0 || center.Col >= cols {
		return nil, fmt.Errorf("neighbor ring: center %+v outside %dx%d grid: %w", center, rows, cols, ErrOutOfBounds)
	}

	ring := make([]Neighbor, 0, len(compassRing))
	for _, d := range compassRing {
		ix := GridIndex{
			Row: center.Row + d.north*o.NorthRowStep*step,
			Col: center.Col + d.east*o.EastColStep*step,
		}
		if ix.Row < 0 || ix.Row >= rows || ix.Col < 0 || ix.Col >= cols {
			return nil, fmt.Errorf("neighbor ring: %s neighbor %+v outside %dx%d grid: %w",
				d.name, ix, rows, cols, ErrOutOfBounds)
		}
		ring = append(ring, Neighbor{Direction: d.name, Index: ix})
	}
	return ring, nil
}

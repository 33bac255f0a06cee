package layout

import (
	"math"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// Mode selects a placement strategy.
type Mode string

const (
	ModeCentralCube Mode = "central-cube"
	ModeSequential  Mode = "sequential"
)

// Direction is the quadrant objects grow into, seen from above.
type Direction string

const (
	DirNorthEast Direction = "ne" // +X, +Y
	DirNorthWest Direction = "nw" // -X, +Y
	DirSouthWest Direction = "sw" // -X, -Y
	DirSouthEast Direction = "se" // +X, -Y
)

// signs returns the X and Y multipliers for d. Unknown values grow north-east.
func (d Direction) signs() (float64, float64) {
	switch d {
	case DirNorthWest:
		return -1, 1
	case DirSouthWest:
		return -1, -1
	case DirSouthEast:
		return 1, -1
	default:
		return 1, 1
	}
}

// Vec3 is a point or extent in region space. Z is vertical.
type Vec3 struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	Z float64 `json:"z" toml:"z"`
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Region bounds a placement area.
type Region struct {
	MaxWidth  float64   `json:"maxWidth" toml:"max_width" validate:"gt=0"`
	MaxHeight float64   `json:"maxHeight" toml:"max_height" validate:"gt=0"`
	MaxDepth  float64   `json:"maxDepth" toml:"max_depth" validate:"gt=0"`
	Direction Direction `json:"direction,omitempty" toml:"direction" validate:"omitempty,oneof=ne nw sw se"`
	Spacing   Vec3      `json:"spacing" toml:"spacing"`
}

// Footprint is the size of one placed object and the offset of its anchor
// point from the cell corner.
type Footprint struct {
	W       float64 `json:"w" toml:"w" validate:"gt=0"`
	H       float64 `json:"h" toml:"h" validate:"gt=0"`
	D       float64 `json:"d" toml:"d" validate:"gt=0"`
	AnchorX float64 `json:"anchorX" toml:"anchor_x" validate:"gte=0"`
	AnchorY float64 `json:"anchorY" toml:"anchor_y" validate:"gte=0"`
}

// grid is the number of cells along each axis.
type grid struct {
	nx, ny, nz int
	cellW      float64
	cellD      float64
	cellH      float64
}

func cells(max, size, spacing float64) int {
	step := size + spacing
	if step <= 0 || max <= 0 {
		return 0
	}
	// Tolerate float noise such as 0.3/0.1.
	return int(math.Floor(max/step + 1e-9))
}

func newGrid(obj Footprint, r Region) grid {
	return grid{
		nx:    cells(r.MaxWidth, obj.W, r.Spacing.X),
		ny:    cells(r.MaxDepth, obj.D, r.Spacing.Y),
		nz:    cells(r.MaxHeight, obj.H, r.Spacing.Z),
		cellW: obj.W + r.Spacing.X,
		cellD: obj.D + r.Spacing.Y,
		cellH: obj.H + r.Spacing.Z,
	}
}

func (g grid) capacity() int { return g.nx * g.ny * g.nz }

// Capacity returns how many objects of size obj fit into r.
func Capacity(obj Footprint, r Region) int {
	return newGrid(obj, r).capacity()
}

// Layout returns count distinct coordinates for objects of size obj inside
// region r, measured from origin. category names the region in errors.
//
// It fails with a *errors.CapacityError when count exceeds [Capacity].
func Layout(category string, count int, obj Footprint, r Region, origin Vec3, mode Mode) ([]Vec3, error) {
	if count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "negative object count %d for region %q", count, category)
	}
	g := newGrid(obj, r)
	if available := g.capacity(); count > available {
		return nil, &errors.CapacityError{Category: category, Required: count, Available: available}
	}
	if count == 0 {
		return []Vec3{}, nil
	}

	var idx []cell
	switch mode {
	case ModeSequential:
		idx = sequential(count, g)
	case ModeCentralCube, "":
		idx = centralCube(count, g)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown layout mode %q", mode)
	}

	sx, sy := r.Direction.signs()
	out := make([]Vec3, count)
	for i, c := range idx {
		out[i] = Vec3{
			X: origin.X + sx*(float64(c.col)*g.cellW+obj.AnchorX),
			Y: origin.Y + sy*(float64(c.row)*g.cellD+obj.AnchorY),
			Z: origin.Z + float64(c.layer)*g.cellH,
		}
	}
	return out, nil
}

// cell is a grid position.
type cell struct {
	col, row, layer int
}

package blueprint

import (
	"math"
	"time"

	"github.com/matzehuels/beltwright/pkg/params"
)

// PayloadVersion is the binary payload format written by [Blueprint.MarshalBinary].
const PayloadVersion = 1

// Defaults used by [New].
const (
	DefaultLayout      = 10
	DefaultGameVersion = "0.10.30.22292"
	defaultSegments    = 200
)

// Header is the plaintext part of a blueprint string.
type Header struct {
	Layout      int
	Icons       [5]int
	Timestamp   time.Time
	GameVersion string
	ShortDesc   string
	Desc        string
}

// Vec3 is a position in area-local coordinates.
type Vec3 struct {
	X, Y, Z float32
}

// Area is a placement region of the external protocol.
type Area struct {
	Index             int8
	ParentIndex       int8
	TropicAnchor      int16
	AreaSegments      int16
	AnchorLocalOffset [2]int16
	Size              [2]int16
}

// Building is one placed object. Index doubles as the cross-reference key of
// OutputObjIdx and InputObjIdx; -1 means unconnected.
type Building struct {
	Index       int32
	AreaIndex   int8
	LocalOffset [2]Vec3
	Yaw         [2]float32
	Tilt        float32

	ItemID     int16
	ModelIndex int16

	OutputObjIdx   int32
	InputObjIdx    int32
	OutputToSlot   int8
	InputFromSlot  int8
	OutputFromSlot int8
	InputToSlot    int8
	OutputOffset   int8
	InputOffset    int8

	RecipeID int16
	FilterID int16

	Params params.Record
}

// Blueprint is a complete blueprint.
type Blueprint struct {
	Header Header

	Version          int32
	CursorOffset     [2]int32
	CursorTargetArea int32
	DragBoxSize      [2]int32
	PrimaryAreaIdx   int32

	Areas     []Area
	Buildings []Building
}

// New wraps buildings in a blueprint with a single root area sized to hold
// them.
func New(buildings []Building, h Header) *Blueprint {
	if h.Layout == 0 {
		h.Layout = DefaultLayout
	}
	if h.GameVersion == "" {
		h.GameVersion = DefaultGameVersion
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}

	var w, d float64
	for _, b := range buildings {
		for _, o := range b.LocalOffset {
			w = max(w, math.Abs(float64(o.X)))
			d = max(d, math.Abs(float64(o.Y)))
		}
	}
	size := [2]int16{clamp16(math.Ceil(w) + 1), clamp16(math.Ceil(d) + 1)}

	return &Blueprint{
		Header:      h,
		Version:     PayloadVersion,
		DragBoxSize: [2]int32{int32(size[0]), int32(size[1])},
		Areas: []Area{{
			Index:        0,
			ParentIndex:  -1,
			AreaSegments: defaultSegments,
			Size:         size,
		}},
		Buildings: buildings,
	}
}

func clamp16(v float64) int16 {
	return int16(min(v, math.MaxInt16))
}

package blueprint

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/params"
)

// Leading sentinels of a building record.
const (
	sentinelTilt   = -101 // record carries a tilt float
	sentinelNoTilt = -100 // older records without tilt
)

type writer struct{ b []byte }

func (w *writer) i8(v int8)     { w.b = append(w.b, byte(v)) }
func (w *writer) i16(v int16)   { w.b = binary.LittleEndian.AppendUint16(w.b, uint16(v)) }
func (w *writer) i32(v int32)   { w.b = binary.LittleEndian.AppendUint32(w.b, uint32(v)) }
func (w *writer) f32(v float32) { w.b = binary.LittleEndian.AppendUint32(w.b, math.Float32bits(v)) }

func (w *writer) vec(v Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

// reader keeps the first error and returns zero values afterwards.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.b) {
		r.err = fmt.Errorf("truncated payload: need %d bytes at offset %d, have %d", n, r.off, len(r.b)-r.off)
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *reader) u8() uint8 {
	if p := r.take(1); p != nil {
		return p[0]
	}
	return 0
}

func (r *reader) i8() int8 { return int8(r.u8()) }

func (r *reader) i16() int16 {
	if p := r.take(2); p != nil {
		return int16(binary.LittleEndian.Uint16(p))
	}
	return 0
}

func (r *reader) i32() int32 {
	if p := r.take(4); p != nil {
		return int32(binary.LittleEndian.Uint32(p))
	}
	return 0
}

func (r *reader) f32() float32 {
	if p := r.take(4); p != nil {
		return math.Float32frombits(binary.LittleEndian.Uint32(p))
	}
	return 0
}

func (r *reader) vec() Vec3 { return Vec3{r.f32(), r.f32(), r.f32()} }

// MarshalBinary encodes the payload: meta fields, areas and buildings. The
// header is not part of the payload.
func (bp *Blueprint) MarshalBinary() ([]byte, error) {
	if len(bp.Areas) > math.MaxUint8 {
		return nil, errors.New(errors.ErrCodeInvalidBlueprint, "%d areas, at most %d allowed", len(bp.Areas), math.MaxUint8)
	}
	w := &writer{}
	w.i32(bp.Version)
	w.i32(bp.CursorOffset[0])
	w.i32(bp.CursorOffset[1])
	w.i32(bp.CursorTargetArea)
	w.i32(bp.DragBoxSize[0])
	w.i32(bp.DragBoxSize[1])
	w.i32(bp.PrimaryAreaIdx)

	w.b = append(w.b, byte(len(bp.Areas)))
	for _, a := range bp.Areas {
		w.i8(a.Index)
		w.i8(a.ParentIndex)
		w.i16(a.TropicAnchor)
		w.i16(a.AreaSegments)
		w.i16(a.AnchorLocalOffset[0])
		w.i16(a.AnchorLocalOffset[1])
		w.i16(a.Size[0])
		w.i16(a.Size[1])
	}

	w.i32(int32(len(bp.Buildings)))
	for i := range bp.Buildings {
		if err := writeBuilding(w, &bp.Buildings[i]); err != nil {
			return nil, err
		}
	}
	return w.b, nil
}

func writeBuilding(w *writer, b *Building) error {
	words, err := params.Encode(int(b.ItemID), int(b.ModelIndex), b.Params)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "building %d parameters", b.Index)
	}
	if len(words) > math.MaxInt16 {
		return errors.New(errors.ErrCodeInvalidBlueprint, "building %d: %d parameter words", b.Index, len(words))
	}
	w.i32(sentinelTilt)
	w.i32(b.Index)
	w.i8(b.AreaIndex)
	w.vec(b.LocalOffset[0])
	w.vec(b.LocalOffset[1])
	w.f32(b.Yaw[0])
	w.f32(b.Yaw[1])
	w.f32(b.Tilt)
	w.i16(b.ItemID)
	w.i16(b.ModelIndex)
	w.i32(b.OutputObjIdx)
	w.i32(b.InputObjIdx)
	w.i8(b.OutputToSlot)
	w.i8(b.InputFromSlot)
	w.i8(b.OutputFromSlot)
	w.i8(b.InputToSlot)
	w.i8(b.OutputOffset)
	w.i8(b.InputOffset)
	w.i16(b.RecipeID)
	w.i16(b.FilterID)
	w.i16(int16(len(words)))
	for _, v := range words {
		w.i32(v)
	}
	return nil
}

// UnmarshalBinary decodes a payload written by MarshalBinary. The header is
// left unchanged.
func (bp *Blueprint) UnmarshalBinary(data []byte) error {
	r := &reader{b: data}
	out := Blueprint{Header: bp.Header}
	out.Version = r.i32()
	out.CursorOffset = [2]int32{r.i32(), r.i32()}
	out.CursorTargetArea = r.i32()
	out.DragBoxSize = [2]int32{r.i32(), r.i32()}
	out.PrimaryAreaIdx = r.i32()

	nAreas := int(r.u8())
	for i := 0; i < nAreas && r.err == nil; i++ {
		out.Areas = append(out.Areas, Area{
			Index:             r.i8(),
			ParentIndex:       r.i8(),
			TropicAnchor:      r.i16(),
			AreaSegments:      r.i16(),
			AnchorLocalOffset: [2]int16{r.i16(), r.i16()},
			Size:              [2]int16{r.i16(), r.i16()},
		})
	}

	n := r.i32()
	if n < 0 {
		return errors.New(errors.ErrCodeInvalidBlueprint, "negative building count %d", n)
	}
	for i := int32(0); i < n && r.err == nil; i++ {
		b, err := readBuilding(r)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "building %d", i)
		}
		out.Buildings = append(out.Buildings, b)
	}
	if r.err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBlueprint, r.err, "decode payload")
	}
	if r.off != len(data) {
		return errors.New(errors.ErrCodeInvalidBlueprint, "%d trailing payload bytes", len(data)-r.off)
	}
	*bp = out
	return nil
}

func readBuilding(r *reader) (Building, error) {
	var b Building
	sentinel := r.i32()
	switch sentinel {
	case sentinelTilt, sentinelNoTilt:
	default:
		if r.err == nil {
			return b, fmt.Errorf("unknown record sentinel %d", sentinel)
		}
	}
	b.Index = r.i32()
	b.AreaIndex = r.i8()
	b.LocalOffset = [2]Vec3{r.vec(), r.vec()}
	b.Yaw = [2]float32{r.f32(), r.f32()}
	if sentinel == sentinelTilt {
		b.Tilt = r.f32()
	}
	b.ItemID = r.i16()
	b.ModelIndex = r.i16()
	b.OutputObjIdx = r.i32()
	b.InputObjIdx = r.i32()
	b.OutputToSlot = r.i8()
	b.InputFromSlot = r.i8()
	b.OutputFromSlot = r.i8()
	b.InputToSlot = r.i8()
	b.OutputOffset = r.i8()
	b.InputOffset = r.i8()
	b.RecipeID = r.i16()
	b.FilterID = r.i16()
	nWords := int(r.i16())
	if nWords < 0 {
		return b, fmt.Errorf("negative parameter count %d", nWords)
	}
	var words []int32
	for i := 0; i < nWords && r.err == nil; i++ {
		words = append(words, r.i32())
	}
	if r.err == nil {
		b.Params = params.Decode(int(b.ItemID), int(b.ModelIndex), words)
	}
	return b, nil
}

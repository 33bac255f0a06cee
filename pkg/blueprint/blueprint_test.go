package blueprint

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/items"
	"github.com/matzehuels/beltwright/pkg/params"
)

func sampleBlueprint() *Blueprint {
	monitor := params.DefaultMonitor()
	monitor.CargoFilter = 1101
	monitor.FilterStack = 4

	buildings := []Building{
		{
			Index:        0,
			LocalOffset:  [2]Vec3{{1.5, -2, 0}, {1.5, -2, 0}},
			ItemID:       items.Splitter,
			ModelIndex:   items.ModelSplitter,
			OutputObjIdx: -1,
			InputObjIdx:  -1,
			Params: params.Splitter{
				Priority: [4]bool{true, false, false, false},
			}.Record(),
		},
		{
			Index:         1,
			LocalOffset:   [2]Vec3{{2, -2, 0}, {2.4, -2, 0.5}},
			Yaw:           [2]float32{90, 90},
			ItemID:        items.BeltMk2,
			ModelIndex:    items.ModelBeltMk2,
			OutputObjIdx:  0,
			InputObjIdx:   -1,
			OutputToSlot:  1,
			InputFromSlot: -1,
		},
		{
			Index:        2,
			LocalOffset:  [2]Vec3{{-8, 3, 1}, {-8, 3, 1}},
			Tilt:         0.25,
			ItemID:       items.TrafficMonitor,
			ModelIndex:   items.ModelTrafficMonitor,
			OutputObjIdx: -1,
			InputObjIdx:  1,
			Params:       monitor.Record(),
		},
		{
			Index:        3,
			ItemID:       items.SorterMk3,
			ModelIndex:   items.ModelSorterMk3,
			OutputObjIdx: 2,
			InputObjIdx:  1,
			RecipeID:     7,
			FilterID:     1101,
			Params:       params.SorterLength(1),
		},
		{
			Index:        4,
			ItemID:       3999,
			ModelIndex:   5,
			OutputObjIdx: -1,
			InputObjIdx:  -1,
			Params:       params.Passthrough([]int32{1, 2, -3}),
		},
	}
	return New(buildings, Header{
		Icons:     [5]int{2003, 0, 0, 0, 0},
		Timestamp: time.Date(2024, 5, 17, 12, 30, 45, 123456700, time.UTC),
		ShortDesc: "splitter, \"priority\" test",
		Desc:      "Zeile 1\nÜberlauf 100%",
	})
}

func TestTextRoundTrip(t *testing.T) {
	bp := sampleBlueprint()
	text, err := ToText(bp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "BLUEPRINT:0,10,2003,0,0,0,0,0,") {
		t.Errorf("unexpected header: %.60s", text)
	}
	if strings.Count(text, "\"") != 2 {
		t.Errorf("text must contain exactly two quotes: %s", text)
	}

	got, err := FromText(text)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bp, got); diff != "" {
		t.Errorf("FromText(ToText(bp)) mismatch (-want +got):\n%s", diff)
	}

	again, err := ToText(got)
	if err != nil {
		t.Fatal(err)
	}
	if again != text {
		t.Error("re-encoding a decoded blueprint changed the text")
	}
}

func TestFlippedPayloadCharIsChecksumError(t *testing.T) {
	text, err := ToText(sampleBlueprint())
	if err != nil {
		t.Fatal(err)
	}
	open := strings.IndexByte(text, '"')
	i := open + 10
	flipped := byte('A')
	if text[i] == 'A' {
		flipped = 'B'
	}
	corrupt := text[:i] + string(flipped) + text[i+1:]

	_, err = FromText(corrupt)
	if !errors.IsChecksum(err) {
		t.Fatalf("FromText(corrupt) error = %v, want CHECKSUM_MISMATCH", err)
	}
}

func TestFromTextAcceptsLowerCaseDigest(t *testing.T) {
	text, err := ToText(sampleBlueprint())
	if err != nil {
		t.Fatal(err)
	}
	q := strings.LastIndexByte(text, '"')
	lower := text[:q+1] + strings.ToLower(text[q+1:]) + "\n"
	if _, err := FromText(lower); err != nil {
		t.Errorf("FromText(lower-case digest) = %v", err)
	}
}

func TestFromTextErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"no prefix", "HELLO", errors.ErrCodeInvalidBlueprint},
		{"no digest", "BLUEPRINT:0,10\"abc\"", errors.ErrCodeInvalidBlueprint},
		{"wrong digest", "BLUEPRINT:0\"abc\"" + strings.Repeat("0", 32), errors.ErrCodeChecksumMismatch},
		{"short header", withDigest("BLUEPRINT:0,10,0\"H4sI"), errors.ErrCodeInvalidBlueprint},
		{"bad base64", withDigest("BLUEPRINT:0,10,0,0,0,0,0,0,638500000000000000,0.10,a,b\"!!!"), errors.ErrCodeInvalidBlueprint},
		{"not gzip", withDigest("BLUEPRINT:0,10,0,0,0,0,0,0,638500000000000000,0.10,a,b\"aGVsbG8="), errors.ErrCodeInvalidBlueprint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromText(tt.in)
			if !errors.Is(err, tt.code) {
				t.Errorf("FromText() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func withDigest(body string) string { return body + "\"" + digest(body) }

func TestToTextRejectsSeparatorInVersion(t *testing.T) {
	bp := sampleBlueprint()
	bp.Header.GameVersion = "1,2"
	if _, err := ToText(bp); !errors.Is(err, errors.ErrCodeInvalidBlueprint) {
		t.Errorf("ToText() error = %v, want INVALID_BLUEPRINT", err)
	}
}

func TestDescriptionIsNFCNormalized(t *testing.T) {
	bp := sampleBlueprint()
	bp.Header.ShortDesc = "Über" // decomposed Ü
	text, err := ToText(bp)
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromText(text)
	if err != nil {
		t.Fatal(err)
	}
	if got.Header.ShortDesc != "Über" {
		t.Errorf("ShortDesc = %q, want composed form", got.Header.ShortDesc)
	}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		time  time.Time
		ticks int64
	}{
		{time.Unix(0, 0).UTC(), epochTicks},
		{time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Unix(1, 500).UTC(), epochTicks + 10_000_005},
	}
	for _, tt := range tests {
		if got := toTicks(tt.time); got != tt.ticks {
			t.Errorf("toTicks(%v) = %d, want %d", tt.time, got, tt.ticks)
		}
		if got := fromTicks(tt.ticks); !got.Equal(tt.time) {
			t.Errorf("fromTicks(%d) = %v, want %v", tt.ticks, got, tt.time)
		}
	}
}

func TestUnmarshalLegacySentinel(t *testing.T) {
	w := &writer{}
	for range 7 {
		w.i32(0)
	}
	w.b = append(w.b, 0) // no areas
	w.i32(1)
	w.i32(sentinelNoTilt)
	w.i32(0) // index
	w.i8(0)  // area
	for range 8 {
		w.f32(1) // offsets and yaw, no tilt
	}
	w.i16(items.BeltMk1)
	w.i16(items.ModelBeltMk1)
	w.i32(-1)
	w.i32(-1)
	for range 6 {
		w.i8(0)
	}
	w.i16(0)
	w.i16(0)
	w.i16(0)

	var bp Blueprint
	if err := bp.UnmarshalBinary(w.b); err != nil {
		t.Fatal(err)
	}
	if len(bp.Buildings) != 1 {
		t.Fatalf("buildings = %d, want 1", len(bp.Buildings))
	}
	b := bp.Buildings[0]
	if b.Tilt != 0 || b.Yaw[1] != 1 || b.ItemID != items.BeltMk1 || b.OutputObjIdx != -1 {
		t.Errorf("building = %+v", b)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	good, err := sampleBlueprint().MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	badSentinel := append([]byte(nil), good...)
	// First building record starts after 7 meta ints, area count, one area and the building count.
	off := 7*4 + 1 + 14 + 4
	badSentinel[off] = 0x07

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", good[:len(good)-3]},
		{"trailing", append(append([]byte(nil), good...), 0)},
		{"bad sentinel", badSentinel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bp Blueprint
			if err := bp.UnmarshalBinary(tt.data); !errors.Is(err, errors.ErrCodeInvalidBlueprint) {
				t.Errorf("UnmarshalBinary() error = %v, want INVALID_BLUEPRINT", err)
			}
		})
	}
}

func TestNewSizesArea(t *testing.T) {
	bp := New([]Building{
		{LocalOffset: [2]Vec3{{-10.5, 3, 0}, {-10.5, 3, 0}}},
		{LocalOffset: [2]Vec3{{4, 7.2, 0}, {4, 7.2, 0}}},
	}, Header{})
	if len(bp.Areas) != 1 {
		t.Fatalf("areas = %d, want 1", len(bp.Areas))
	}
	if got := bp.Areas[0].Size; got != [2]int16{12, 9} {
		t.Errorf("area size = %v, want [12 9]", got)
	}
	if bp.Header.Layout != DefaultLayout || bp.Header.GameVersion != DefaultGameVersion || bp.Header.Timestamp.IsZero() {
		t.Errorf("header defaults not applied: %+v", bp.Header)
	}
}

// legacyFixture was written by an encoder independent of this package: zlib
// gzip framing, a record with the older no-tilt sentinel and a trailing
// empty description.
const legacyFixture = `BLUEPRINT:0,10,2001,0,0,0,0,0,638400000000000000,0.10.30.23350,fixture%20belt,` +
	`"H4sIAAAAAAAC/2NkQAWMUAxh/2dgOAFmMjEwg4Xn/P//Hyp7wB5IOGCytziB8EV2ZYb/UAA0CWYkAwAOnvafcAAAAA==` +
	`"809B6D886325C03485D1C37C1B8B2F03`

func TestFromTextLegacyFixture(t *testing.T) {
	bp, err := FromText(legacyFixture)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}

	want := &Blueprint{
		Header: Header{
			Layout:      10,
			Icons:       [5]int{2001},
			Timestamp:   time.Unix(1704403200, 0).UTC(),
			GameVersion: "0.10.30.23350",
			ShortDesc:   "fixture belt",
		},
		Version:     1,
		DragBoxSize: [2]int32{1, 1},
		Areas: []Area{{
			ParentIndex:  -1,
			AreaSegments: 200,
			Size:         [2]int16{2, 3},
		}},
		Buildings: []Building{{
			LocalOffset:    [2]Vec3{{1.5, 2, 0}, {1.5, 2, 0}},
			Yaw:            [2]float32{90, 90},
			ItemID:         2001,
			ModelIndex:     35,
			OutputObjIdx:   -1,
			InputObjIdx:    -1,
			OutputFromSlot: 1,
			InputToSlot:    1,
		}},
	}
	if diff := cmp.Diff(want, bp); diff != "" {
		t.Errorf("FromText() mismatch (-want +got):\n%s", diff)
	}

	tampered := strings.Replace(legacyFixture, "fixture%20belt", "fixture%20belts", 1)
	if _, err := FromText(tampered); errors.GetCode(err) != errors.ErrCodeChecksumMismatch {
		t.Errorf("tampered fixture error = %v, want checksum mismatch", err)
	}
}

package params

// Record is a decoded parameter block. Leaves are int32, bool, string (enum
// labels), float64 (converted units) or []int32 (passthrough); groups are
// nested Records.
type Record map[string]any

// RawKey is the only key of a passthrough record.
const RawKey = "raw"

// Passthrough wraps opaque words in a record.
func Passthrough(words []int32) Record {
	return Record{RawKey: append([]int32(nil), words...)}
}

// Raw returns the opaque words of a passthrough record.
func (r Record) Raw() ([]int32, bool) {
	if len(r) != 1 {
		return nil, false
	}
	w, ok := r[RawKey].([]int32)
	return w, ok
}

// Group returns the nested record stored under name.
func (r Record) Group(name string) (Record, bool) {
	g, ok := r[name].(Record)
	return g, ok
}

// Int returns the int32 leaf at name, or 0.
func (r Record) Int(name string) int32 {
	v, _ := r[name].(int32)
	return v
}

// Bool returns the bool leaf at name, or false.
func (r Record) Bool(name string) bool {
	v, _ := r[name].(bool)
	return v
}

// String returns the enum label at name, or "".
func (r Record) String(name string) string {
	v, _ := r[name].(string)
	return v
}

// path resolves a dotted field path inside r.
func (r Record) path(names []string) (any, bool) {
	var cur any = r
	for _, n := range names {
		rec, ok := cur.(Record)
		if !ok {
			return nil, false
		}
		if cur, ok = rec[n]; !ok {
			return nil, false
		}
	}
	return cur, true
}

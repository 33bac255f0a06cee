package params

import (
	"fmt"
	"slices"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// Offset computes a field's word offset. It receives the record being encoded,
// or during decoding the partial record holding every field decoded so far.
type Offset func(root Record) int

// At is a fixed offset.
func At(i int) Offset { return func(Record) int { return i } }

// ShiftIf moves a field by delta words when the leaf at path is set to a
// non-zero int32 or true.
func ShiftIf(base, delta int, path ...string) Offset {
	return func(root Record) int {
		if isSet(root, path) {
			return base + delta
		}
		return base
	}
}

// Present reports whether an optional field is part of the layout.
type Present func(root Record) bool

// When makes a field present only while the leaf at path is set.
func When(path ...string) Present {
	return func(root Record) bool { return isSet(root, path) }
}

func isSet(root Record, path []string) bool {
	v, ok := root.path(path)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case int32:
		return x != 0
	case bool:
		return x
	}
	return false
}

// Node is an element of a schema tree.
type Node interface {
	encode(root, cur Record, words []int32) error
	decode(root, cur Record, words []int32) error
}

// Field is a schema leaf.
type Field struct {
	Name    string
	At      Offset
	Adapter Adapter
	When    Present // nil means always present
}

func (f Field) encode(root, cur Record, words []int32) error {
	if f.When != nil && !f.When(root) {
		if _, ok := cur[f.Name]; ok {
			return fmt.Errorf("field %s: set but not part of this layout", f.Name)
		}
		return nil
	}
	v, ok := cur[f.Name]
	if !ok {
		return fmt.Errorf("field %s: missing", f.Name)
	}
	off := f.At(root)
	if off < 0 || off >= len(words) {
		return fmt.Errorf("field %s: offset %d outside %d words", f.Name, off, len(words))
	}
	w, err := f.Adapter.Encode(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	words[off] = w
	return nil
}

func (f Field) decode(root, cur Record, words []int32) error {
	if f.When != nil && !f.When(root) {
		return nil
	}
	off := f.At(root)
	if off < 0 || off >= len(words) {
		return fmt.Errorf("field %s: offset %d outside %d words", f.Name, off, len(words))
	}
	v, err := f.Adapter.Decode(words[off])
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	cur[f.Name] = v
	return nil
}

// Group nests fields under a name.
type Group struct {
	Name     string
	Children []Node
}

func (g Group) encode(root, cur Record, words []int32) error {
	sub, ok := cur[g.Name].(Record)
	if !ok {
		return fmt.Errorf("group %s: missing", g.Name)
	}
	for _, c := range g.Children {
		if err := c.encode(root, sub, words); err != nil {
			return fmt.Errorf("%s.%w", g.Name, err)
		}
	}
	return nil
}

func (g Group) decode(root, cur Record, words []int32) error {
	sub := Record{}
	cur[g.Name] = sub
	for _, c := range g.Children {
		if err := c.decode(root, sub, words); err != nil {
			return fmt.Errorf("%s.%w", g.Name, err)
		}
	}
	return nil
}

// Schema describes the parameter layout of one object type.
type Schema struct {
	Name   string
	Size   int // words in the encoded block
	Fields []Node
}

// Encode packs r into Size words. Words not covered by a field are zero.
func (s *Schema) Encode(r Record) ([]int32, error) {
	words := make([]int32, s.Size)
	for _, n := range s.Fields {
		if err := n.encode(r, r, words); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "encode %s", s.Name)
		}
	}
	return words, nil
}

// Decode unpacks words laid out by this schema.
func (s *Schema) Decode(words []int32) (Record, error) {
	if len(words) != s.Size {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "decode %s: %d words, want %d", s.Name, len(words), s.Size)
	}
	r := Record{}
	for _, n := range s.Fields {
		if err := n.decode(r, r, words); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode %s", s.Name)
		}
	}
	// Words outside every field must be zero, otherwise re-encoding loses them.
	enc, err := s.Encode(r)
	if err != nil || !slices.Equal(enc, words) {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "decode %s: block does not re-encode identically", s.Name)
	}
	return r, nil
}

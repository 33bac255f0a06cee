package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/beltwright/pkg/errors"
)

// =============================================================================
// Persisted Form
// =============================================================================

// Document is the persisted JSON envelope of a graph.
type Document struct {
	Header          Header       `json:"header"`
	Data            Data         `json:"data"`
	Packages        []PackageDoc `json:"packages,omitempty"`
	PackageHashList []string     `json:"packageHashList,omitempty"`
}

// Data holds the persisted nodes and edges. Null elements are kept so that
// parsing can report them.
type Data struct {
	Nodes []*NodeDoc `json:"nodes"`
	Lines []*LineDoc `json:"lines"`
}

// NodeDoc is a persisted node.
type NodeDoc struct {
	ID     *int      `json:"id"`
	Type   Kind      `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	W      float64   `json:"w,omitempty"`
	H      float64   `json:"h,omitempty"`
	Text   string    `json:"text,omitempty"`
	ItemID int       `json:"itemId,omitempty"`
	Count  int       `json:"count,omitempty"`
	Flow   int       `json:"flow,omitempty"`
	Slots  []SlotDoc `json:"slots,omitempty"`

	// Package is the referenced hash; PackageIndex replaces it in simplified
	// documents.
	Package      string `json:"package,omitempty"`
	PackageIndex *int   `json:"packageIndex,omitempty"`
}

// SlotDoc is a persisted slot. Edges are stored on the line list only.
type SlotDoc struct {
	Dir      Direction `json:"dir"`
	X        float64   `json:"x,omitempty"`
	Y        float64   `json:"y,omitempty"`
	Fixed    bool      `json:"fixed,omitempty"`
	Priority bool      `json:"priority,omitempty"`
	Filter   int       `json:"filter,omitempty"`
	Tier     int       `json:"tier,omitempty"`
	Port     int       `json:"port,omitempty"`
}

// LineDoc is a persisted edge.
type LineDoc struct {
	From     *int `json:"from"`
	FromSlot int  `json:"fromSlot"`
	To       *int `json:"to"`
	ToSlot   int  `json:"toSlot"`
}

// PackageDoc is a persisted package definition. Nested packages are listed
// flat in the enclosing document, never inside Graph.
type PackageDoc struct {
	Hash         string   `json:"hash"`
	Name         string   `json:"name"`
	ChildHashes  []string `json:"childHashes,omitempty"`
	ChildIndexes []int    `json:"childIndexes,omitempty"`
	Graph        Data     `json:"graph"`
}

// =============================================================================
// Reading and Writing
// =============================================================================

// Decode reads a document. A malformed envelope, such as a non-object data
// field or a non-array node list, is an INVALID_GRAPH error.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode envelope")
	}
	return &doc, nil
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes doc to path with 0644 permissions.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

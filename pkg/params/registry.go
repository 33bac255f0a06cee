package params

import (
	"fmt"

	"github.com/matzehuels/beltwright/pkg/items"
)

// anyModel matches every model variant of a type.
const anyModel = -1

type schemaKey struct {
	item  int
	model int
}

// Passthrough schema name reported by [Describe] for unknown types.
const passthroughName = "passthrough"

// Monitor enums.
var (
	passOperators = map[string]int32{"ge": 0, "le": 1, "gt": 2, "lt": 3, "eq": 4, "ne": 5}
	monitorModes  = map[string]int32{"flow": 0, "cargo": 1}
	spawnModes    = map[string]int32{"none": 0, "generate": 1, "consume": 2}
	displayModes  = map[string]int32{"off": 0, "item": 1, "flow": 2}
)

// Ticks per second of the external simulation clock.
const ticksPerSecond = 60

func beltSchema() *Schema {
	return &Schema{
		Name: "belt",
		Size: 2,
		Fields: []Node{
			Group{Name: "label", Children: []Node{
				Field{Name: "icon", At: At(0), Adapter: Raw()},
				Field{Name: "count", At: At(1), Adapter: Raw()},
			}},
		},
	}
}

func sorterSchema() *Schema {
	return &Schema{
		Name:   "sorter",
		Size:   1,
		Fields: []Node{Field{Name: "length", At: At(0), Adapter: Raw()}},
	}
}

func splitterPorts() Node {
	ports := make([]Node, 4)
	for i := range ports {
		ports[i] = Group{Name: fmt.Sprintf("p%d", i), Children: []Node{
			Field{Name: "priority", At: At(2 * i), Adapter: Bool(1, 0)},
			Field{Name: "filter", At: At(2*i + 1), Adapter: Raw()},
		}}
	}
	return Group{Name: "ports", Children: ports}
}

func splitterSchema() *Schema {
	return &Schema{Name: "splitter", Size: 8, Fields: []Node{splitterPorts()}}
}

func splitterDisplaySchema() *Schema {
	return &Schema{
		Name: "splitter-display",
		Size: 10,
		Fields: []Node{
			splitterPorts(),
			Group{Name: "display", Children: []Node{
				Field{Name: "icon", At: At(8), Adapter: Raw()},
				Field{Name: "mode", At: At(9), Adapter: Enum(displayModes)},
			}},
		},
	}
}

// monitorSchema lays out a traffic monitor. When a cargo filter is set, word 9
// holds the filter's stack size and the tone block moves up by one word.
func monitorSchema() *Schema {
	return &Schema{
		Name: "traffic-monitor",
		Size: 12,
		Fields: []Node{
			Field{Name: "targetFlow", At: At(0), Adapter: Raw()},
			Field{Name: "period", At: At(1), Adapter: SecondsAsTicks(ticksPerSecond)},
			Field{Name: "passColor", At: At(2), Adapter: Raw()},
			Field{Name: "failColor", At: At(3), Adapter: Raw()},
			Field{Name: "passOperator", At: At(4), Adapter: Enum(passOperators)},
			Field{Name: "mode", At: At(5), Adapter: Enum(monitorModes)},
			Field{Name: "alarm", At: At(6), Adapter: Bool(1, 0)},
			Field{Name: "spawn", At: At(7), Adapter: Enum(spawnModes)},
			Field{Name: "cargoFilter", At: At(8), Adapter: Raw()},
			Field{Name: "filterStack", At: At(9), Adapter: Raw(), When: When("cargoFilter")},
			Group{Name: "tone", Children: []Node{
				Field{Name: "pitch", At: ShiftIf(9, 1, "cargoFilter"), Adapter: Raw()},
				Field{Name: "volume", At: ShiftIf(10, 1, "cargoFilter"), Adapter: PercentOfTurn()},
			}},
		},
	}
}

// registry is the static dispatch table. Splitters are the one type whose
// layout depends on the model variant.
var registry = map[schemaKey]*Schema{
	{items.BeltMk1, anyModel}:                    beltSchema(),
	{items.BeltMk2, anyModel}:                    beltSchema(),
	{items.BeltMk3, anyModel}:                    beltSchema(),
	{items.SorterMk1, anyModel}:                  sorterSchema(),
	{items.SorterMk2, anyModel}:                  sorterSchema(),
	{items.SorterMk3, anyModel}:                  sorterSchema(),
	{items.Splitter, items.ModelSplitter}:        splitterSchema(),
	{items.Splitter, items.ModelSplitterDisplay}: splitterDisplaySchema(),
	{items.TrafficMonitor, anyModel}:             monitorSchema(),
}

// Lookup returns the schema for an object type and model variant.
func Lookup(itemID, model int) (*Schema, bool) {
	if s, ok := registry[schemaKey{itemID, model}]; ok {
		return s, true
	}
	s, ok := registry[schemaKey{itemID, anyModel}]
	return s, ok
}

// Describe names the schema used for an object type.
func Describe(itemID, model int) string {
	if s, ok := Lookup(itemID, model); ok {
		return s.Name
	}
	return passthroughName
}

// Encode packs r for the given object type. A nil record encodes to no words;
// a passthrough record encodes to its raw words whatever the type.
func Encode(itemID, model int, r Record) ([]int32, error) {
	if r == nil {
		return nil, nil
	}
	if raw, ok := r.Raw(); ok {
		return append([]int32(nil), raw...), nil
	}
	s, ok := Lookup(itemID, model)
	if !ok {
		return nil, fmt.Errorf("no schema for type %d model %d and record is not passthrough", itemID, model)
	}
	return s.Encode(r)
}

// Decode unpacks words for the given object type. An empty block decodes to
// nil. Unknown types, and blocks that do not fit their schema, decode to a
// passthrough record.
func Decode(itemID, model int, words []int32) Record {
	if len(words) == 0 {
		return nil
	}
	s, ok := Lookup(itemID, model)
	if !ok {
		return Passthrough(words)
	}
	r, err := s.Decode(words)
	if err != nil {
		return Passthrough(words)
	}
	return r
}

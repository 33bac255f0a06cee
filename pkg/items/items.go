// Package items catalogs the object type ids and model variants emitted by
// the assembler and understood by the parameter codec.
//
// Ids follow the external blueprint protocol: a type id selects the object
// prototype, a model index selects its visual/functional variant.
package items

// Object type ids.
const (
	BeltMk1 = 2001
	BeltMk2 = 2002
	BeltMk3 = 2003

	SorterMk1 = 2011
	SorterMk2 = 2012
	SorterMk3 = 2013

	Splitter       = 2020
	TrafficMonitor = 2030
)

// Model variants.
const (
	ModelBeltMk1 = 35
	ModelBeltMk2 = 36
	ModelBeltMk3 = 37

	ModelSorterMk1 = 41
	ModelSorterMk2 = 42
	ModelSorterMk3 = 43

	ModelSplitter        = 38 // plain four-way splitter
	ModelSplitterDisplay = 39 // splitter with a display cap

	ModelTrafficMonitor = 208
)

// Belt speed tiers. Higher is faster.
const (
	TierMk1 = 1
	TierMk2 = 2
	TierMk3 = 3

	FastestTier = TierMk3
)

// Belt returns the type id and model index of a belt of the given tier.
// Out-of-range tiers clamp to the nearest valid tier.
func Belt(tier int) (itemID, model int) {
	switch {
	case tier <= TierMk1:
		return BeltMk1, ModelBeltMk1
	case tier == TierMk2:
		return BeltMk2, ModelBeltMk2
	default:
		return BeltMk3, ModelBeltMk3
	}
}

// BeltTier returns the tier of a belt type id, or 0 if itemID is not a belt.
func BeltTier(itemID int) int {
	switch itemID {
	case BeltMk1:
		return TierMk1
	case BeltMk2:
		return TierMk2
	case BeltMk3:
		return TierMk3
	}
	return 0
}

// IsBelt reports whether itemID is a conveyor belt.
func IsBelt(itemID int) bool { return BeltTier(itemID) != 0 }

// Sorter returns the type id and model index of a sorter of the given tier.
func Sorter(tier int) (itemID, model int) {
	switch {
	case tier <= TierMk1:
		return SorterMk1, ModelSorterMk1
	case tier == TierMk2:
		return SorterMk2, ModelSorterMk2
	default:
		return SorterMk3, ModelSorterMk3
	}
}

// IsSorter reports whether itemID is a sorter.
func IsSorter(itemID int) bool {
	return itemID >= SorterMk1 && itemID <= SorterMk3
}

// Name returns a short human-readable name for itemID.
func Name(itemID int) string {
	switch itemID {
	case BeltMk1:
		return "belt-mk1"
	case BeltMk2:
		return "belt-mk2"
	case BeltMk3:
		return "belt-mk3"
	case SorterMk1:
		return "sorter-mk1"
	case SorterMk2:
		return "sorter-mk2"
	case SorterMk3:
		return "sorter-mk3"
	case Splitter:
		return "splitter"
	case TrafficMonitor:
		return "traffic-monitor"
	}
	return "unknown"
}

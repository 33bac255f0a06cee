package assembler

import (
	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/items"
)

// reindex drops deleted objects, orders the survivors and numbers them
// densely from zero, rewriting every cross-reference. With SignalsFirst the
// objects of sources and sinks come first.
func (b *build) reindex() []blueprint.Building {
	order := make([]int, 0, len(b.objs))
	if b.cfg.SignalsFirst {
		for id, o := range b.objs {
			if o.signal && !o.deleted {
				order = append(order, id)
			}
		}
	}
	for id, o := range b.objs {
		if !o.deleted && !(b.cfg.SignalsFirst && o.signal) {
			order = append(order, id)
		}
	}

	index := make(map[int]int32, len(order))
	for i, id := range order {
		index[id] = int32(i)
	}
	remap := func(ref int32) int32 {
		if ref == noRef {
			return noRef
		}
		if i, ok := index[int(ref)]; ok {
			return i
		}
		return noRef
	}

	out := make([]blueprint.Building, len(order))
	for i, id := range order {
		o := b.objs[id]
		bd := o.b
		bd.Index = int32(i)
		bd.OutputObjIdx = remap(bd.OutputObjIdx)
		bd.InputObjIdx = remap(bd.InputObjIdx)
		if o.belt {
			itemID, model := items.Belt(o.tier)
			bd.ItemID, bd.ModelIndex = int16(itemID), int16(model)
		}
		out[i] = bd
	}
	return out
}

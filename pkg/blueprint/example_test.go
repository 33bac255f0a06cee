package blueprint_test

import (
	"fmt"

	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/items"
)

func Example() {
	belt, model := items.Belt(items.TierMk1)
	buildings := []blueprint.Building{
		{Index: 0, ItemID: int16(belt), ModelIndex: int16(model), OutputObjIdx: 1, InputObjIdx: -1},
		{Index: 1, ItemID: int16(belt), ModelIndex: int16(model), OutputObjIdx: -1, InputObjIdx: -1},
	}

	text, err := blueprint.ToText(blueprint.New(buildings, blueprint.Header{ShortDesc: "demo"}))
	if err != nil {
		panic(err)
	}

	bp, err := blueprint.FromText(text)
	if err != nil {
		panic(err)
	}
	fmt.Println(bp.Header.ShortDesc, len(bp.Buildings), bp.Buildings[0].OutputObjIdx)
	// Output: demo 2 1
}

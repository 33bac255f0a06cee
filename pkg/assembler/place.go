package assembler

import (
	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/layout"
)

// place lays out every unit group in its preset region.
func (b *build) place() error {
	groups := []struct {
		preset string
		units  []*unit
	}{
		{config.PresetRouter, b.routers},
		{config.PresetMonitor, b.monitors},
		{config.PresetSource, b.sources},
		{config.PresetSink, b.sinks},
	}
	for _, grp := range groups {
		pos, err := b.layout(grp.preset, len(grp.units))
		if err != nil {
			return err
		}
		for i, u := range grp.units {
			b.setPos(u.main, pos[i])
			for j, belt := range u.belts {
				b.setPos(belt, pos[i].Add(u.offsets[j]))
			}
		}
	}
	return nil
}

// placeSorters lays out the sorters created by routing.
func (b *build) placeSorters() error {
	pos, err := b.layout(config.PresetSorter, len(b.sorters))
	if err != nil {
		return err
	}
	for i, id := range b.sorters {
		b.setPos(id, pos[i])
	}
	return nil
}

func (b *build) layout(preset string, count int) ([]layout.Vec3, error) {
	p, err := b.cfg.Preset(preset)
	if err != nil {
		return nil, err
	}
	return layout.Layout(preset, count, p.Object, p.Region, p.Origin, b.cfg.LayoutMode)
}

func (b *build) setPos(id int, p layout.Vec3) {
	v := blueprint.Vec3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
	b.objs[id].b.LocalOffset = [2]blueprint.Vec3{v, v}
}

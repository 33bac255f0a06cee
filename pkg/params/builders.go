package params

import "fmt"

// Splitter is the typed form of a splitter parameter block.
type Splitter struct {
	Priority [4]bool
	Filter   [4]int32
	// Display adds the display cap block; only valid for the display model.
	Display *SplitterDisplay
}

// SplitterDisplay configures the display cap of a splitter.
type SplitterDisplay struct {
	Icon int32
	Mode string // off, item, flow
}

// Record converts s to its schema record.
func (s Splitter) Record() Record {
	ports := Record{}
	for i := range s.Priority {
		ports[fmt.Sprintf("p%d", i)] = Record{
			"priority": s.Priority[i],
			"filter":   s.Filter[i],
		}
	}
	r := Record{"ports": ports}
	if s.Display != nil {
		r["display"] = Record{"icon": s.Display.Icon, "mode": s.Display.Mode}
	}
	return r
}

// Monitor is the typed form of a traffic monitor parameter block.
type Monitor struct {
	TargetFlow    int32 // cargo per minute
	PeriodSeconds int32
	PassColor     int32
	FailColor     int32
	PassOperator  string // ge, le, gt, lt, eq, ne
	Mode          string // flow, cargo
	Alarm         bool
	Spawn         string // none, generate, consume
	CargoFilter   int32  // item id, 0 for none
	FilterStack   int32  // only stored when CargoFilter is set
	TonePitch     int32
	ToneVolume    float64 // percent of a full dial turn
}

// DefaultMonitor returns a passive monitor that only observes its belt.
func DefaultMonitor() Monitor {
	return Monitor{
		PeriodSeconds: 1,
		PassOperator:  "ge",
		Mode:          "flow",
		Spawn:         "none",
		TonePitch:     35,
		ToneVolume:    50,
	}
}

// Record converts m to its schema record.
func (m Monitor) Record() Record {
	r := Record{
		"targetFlow":   m.TargetFlow,
		"period":       m.PeriodSeconds,
		"passColor":    m.PassColor,
		"failColor":    m.FailColor,
		"passOperator": m.PassOperator,
		"mode":         m.Mode,
		"alarm":        m.Alarm,
		"spawn":        m.Spawn,
		"cargoFilter":  m.CargoFilter,
		"tone":         Record{"pitch": m.TonePitch, "volume": m.ToneVolume},
	}
	if m.CargoFilter != 0 {
		r["filterStack"] = m.FilterStack
	}
	return r
}

// BeltLabel builds a belt label record.
func BeltLabel(icon, count int32) Record {
	return Record{"label": Record{"icon": icon, "count": count}}
}

// SorterLength builds a sorter record spanning n grid cells.
func SorterLength(n int32) Record {
	return Record{"length": n}
}

package params

import (
	"fmt"
	"math"
)

// Adapter converts between a record leaf and one stored word.
type Adapter interface {
	Encode(v any) (int32, error)
	Decode(w int32) (any, error)
}

type rawAdapter struct{}

// Raw passes int32 values through unchanged.
func Raw() Adapter { return rawAdapter{} }

func (rawAdapter) Encode(v any) (int32, error) {
	i, ok := v.(int32)
	if !ok {
		return 0, fmt.Errorf("want int32, got %T", v)
	}
	return i, nil
}

func (rawAdapter) Decode(w int32) (any, error) { return w, nil }

type boolAdapter struct{ t, f int32 }

// Bool stores true and false as the given sentinel words. Any other stored
// word fails to decode.
func Bool(t, f int32) Adapter { return boolAdapter{t: t, f: f} }

func (a boolAdapter) Encode(v any) (int32, error) {
	b, ok := v.(bool)
	if !ok {
		return 0, fmt.Errorf("want bool, got %T", v)
	}
	if b {
		return a.t, nil
	}
	return a.f, nil
}

func (a boolAdapter) Decode(w int32) (any, error) {
	switch w {
	case a.t:
		return true, nil
	case a.f:
		return false, nil
	}
	return nil, fmt.Errorf("word %d is neither %d nor %d", w, a.t, a.f)
}

type enumAdapter struct {
	values map[string]int32
	labels map[int32]string
}

// Enum maps labels to stored values. The mapping must be one-to-one.
func Enum(values map[string]int32) Adapter {
	labels := make(map[int32]string, len(values))
	for k, v := range values {
		if prev, dup := labels[v]; dup {
			panic(fmt.Sprintf("params: enum labels %q and %q share value %d", prev, k, v))
		}
		labels[v] = k
	}
	return enumAdapter{values: values, labels: labels}
}

func (a enumAdapter) Encode(v any) (int32, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("want string, got %T", v)
	}
	w, ok := a.values[s]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", s)
	}
	return w, nil
}

func (a enumAdapter) Decode(w int32) (any, error) {
	s, ok := a.labels[w]
	if !ok {
		return nil, fmt.Errorf("no label for value %d", w)
	}
	return s, nil
}

type funcAdapter struct {
	enc func(any) (int32, error)
	dec func(int32) (any, error)
}

// Func builds an adapter from an arbitrary conversion pair.
func Func(enc func(any) (int32, error), dec func(int32) (any, error)) Adapter {
	return funcAdapter{enc: enc, dec: dec}
}

func (a funcAdapter) Encode(v any) (int32, error) { return a.enc(v) }
func (a funcAdapter) Decode(w int32) (any, error) { return a.dec(w) }

// PercentOfTurn stores a dial position as whole degrees and exposes it as a
// percentage of a full turn.
func PercentOfTurn() Adapter {
	return Func(
		func(v any) (int32, error) {
			p, ok := v.(float64)
			if !ok {
				return 0, fmt.Errorf("want float64, got %T", v)
			}
			if p < 0 || p > 100 {
				return 0, fmt.Errorf("percentage %v out of range", p)
			}
			return int32(math.Round(p * 360 / 100)), nil
		},
		func(w int32) (any, error) {
			if w < 0 || w > 360 {
				return nil, fmt.Errorf("angle %d out of range", w)
			}
			return float64(w) * 100 / 360, nil
		},
	)
}

// SecondsAsTicks stores a duration in whole seconds as game ticks.
func SecondsAsTicks(ticksPerSecond int32) Adapter {
	return Func(
		func(v any) (int32, error) {
			s, ok := v.(int32)
			if !ok {
				return 0, fmt.Errorf("want int32, got %T", v)
			}
			return s * ticksPerSecond, nil
		},
		func(w int32) (any, error) {
			if w%ticksPerSecond != 0 {
				return nil, fmt.Errorf("%d ticks is not a whole second", w)
			}
			return w / ticksPerSecond, nil
		},
	)
}

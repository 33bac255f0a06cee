// Package layout places N identically sized objects into a bounded 3-D
// region.
//
// A [Region] describes the available volume (width along X, depth along Y,
// height along Z), the quadrant the objects grow into and the spacing kept
// between neighbours. A [Footprint] describes one object. [Capacity] reports
// how many objects fit, and [Layout] returns one distinct coordinate per
// object or a capacity error naming the region.
//
// Two strategies share the same inputs:
//
//   - [ModeCentralCube] fills every layer of a column first, then grows the
//     horizontal footprint one column or row at a time, always extending the
//     shorter side so the footprint stays close to square.
//   - [ModeSequential] fills layers, then rows, then columns in strict
//     row-major order, which keeps a predictable reading order.
//
// All functions are pure; the same inputs always produce the same output.
package layout

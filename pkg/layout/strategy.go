package layout

// sequential fills layers, then rows, then columns.
func sequential(count int, g grid) []cell {
	out := make([]cell, count)
	for i := range out {
		j := i / g.nz
		out[i] = cell{col: j / g.ny, row: j % g.ny, layer: i % g.nz}
	}
	return out
}

// centralCube fills each column's layers, then grows the horizontal
// footprint outward from the origin corner. Each growth step adds a whole
// column or a whole row, picking the physically shorter side.
func centralCube(count int, g grid) []cell {
	need := (count + g.nz - 1) / g.nz
	plan := make([][2]int, 0, need)
	plan = append(plan, [2]int{0, 0})

	cols, rows := 1, 1
	for len(plan) < need {
		canCol, canRow := cols < g.nx, rows < g.ny
		growCol := canCol && (!canRow || float64(cols)*g.cellW <= float64(rows)*g.cellD)
		if growCol {
			for y := 0; y < rows; y++ {
				plan = append(plan, [2]int{cols, y})
			}
			cols++
		} else {
			for x := 0; x < cols; x++ {
				plan = append(plan, [2]int{x, rows})
			}
			rows++
		}
	}

	out := make([]cell, count)
	for i := range out {
		p := plan[i/g.nz]
		out[i] = cell{col: p[0], row: p[1], layer: i % g.nz}
	}
	return out
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"math"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

type GridData struct {
	Spacing float32 `json:"spacing"`
	// Rows and Cols fix the dimensions; 0 derives them from the child count.
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Dimensions returns the grid shape for n children. Without fixed
// dimensions the grid is ceil(sqrt(n)) square. A fixed shape too small for
// n grows by rows.
func Dimensions(n, rows, cols int) (r, c int) {
	if n <= 0 {
		return max(rows, 0), max(cols, 0)
	}
	ceilDiv := func(a, b int) int { return (a + b - 1) / b }
	switch {
	case rows <= 0 && cols <= 0:
		k := int(math.Ceil(math.Sqrt(float64(n))))
		return k, k
	case rows > 0 && cols > 0:
		if rows*cols < n {
			rows = ceilDiv(n, cols)
		}
		return rows, cols
	case cols > 0:
		return ceilDiv(n, cols), cols
	default:
		return rows, ceilDiv(n, rows)
	}
}

// gridState keeps row heights and column widths as fractions of the grid
// zone, each vector summing to 1.
type gridState struct {
	rows, cols, n int
	rowW, colW    []float32
}

func (st *gridState) reset(r, c, n int) {
	st.rows, st.cols, st.n = r, c, n
	st.rowW = uniform(r)
	st.colW = uniform(c)
}

func uniform(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = 1 / float32(n)
	}
	return w
}

// Grid places children row by row. After every frame a cell that drew
// wider than its slot gives height back to its row, a cell that drew
// narrower gives width back to its column; rows and columns then average
// their cells and renormalise.
type Grid struct{}

func (Grid) Name() string                  { return "Grid" }
func (Grid) MaxChildren() int              { return component.Unbounded }
func (Grid) DefaultData() (GridData, bool) { return GridData{Spacing: DefaultSpacing}, true }

func (Grid) Init(_ *component.Context, d *GridData, children []component.ControlGeometry) gridState {
	st := gridState{}
	r, c := Dimensions(len(children), d.Rows, d.Cols)
	st.reset(r, c, len(children))
	return st
}

func (Grid) Draw(ctx *component.Context, zone vector.Zone, children []component.ChildDrawer, st *gridState, d *GridData) {
	n := len(children)
	r, c := Dimensions(n, d.Rows, d.Cols)
	if r != st.rows || c != st.cols || n != st.n {
		st.reset(r, c, n)
	}
	if r == 0 || c == 0 || n == 0 {
		return
	}

	nextRow := make([]float32, r)
	nextCol := make([]float32, c)
	rowCells := make([]int, r)
	colCells := make([]int, c)

	top := zone.Top()
	for y := 0; y < r; y++ {
		h := st.rowW[y] * zone.Size.Y
		left := zone.Left()
		for x := 0; x < c; x++ {
			i := y*c + x
			if i >= n {
				break
			}
			w := st.colW[x] * zone.Size.X
			cell := vector.FromRect(vector.V(left, top), vector.V(left+w, top+h))
			drawn := drawSpaced(ctx, children[i], cell, d.Spacing)

			ca, ra := cell.Aspect(), drawn.Aspect()
			switch {
			case drawn.IsEmpty() || ca <= 0 || ra <= 0:
				nextRow[y] += st.rowW[y]
				nextCol[x] += st.colW[x]
			case ra > ca:
				// width bound, the row has spare height
				nextRow[y] += st.rowW[y] * ca / ra
				nextCol[x] += st.colW[x]
			default:
				// height bound, the column has spare width
				nextRow[y] += st.rowW[y]
				nextCol[x] += st.colW[x] * ra / ca
			}
			rowCells[y]++
			colCells[x]++
			left += w
		}
		top += h
	}

	for y := range nextRow {
		if rowCells[y] > 0 {
			nextRow[y] /= float32(rowCells[y])
		}
	}
	for x := range nextCol {
		if colCells[x] > 0 {
			nextCol[x] /= float32(colCells[x])
		}
	}
	normalize(nextRow, 0.1)
	normalize(nextCol, 0.1)
	if sum(nextRow) > 0 {
		st.rowW = nextRow
	}
	if sum(nextCol) > 0 {
		st.colW = nextCol
	}
}

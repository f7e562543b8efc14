/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package regrid

import (
	"fmt"
	"sort"

	"github.com/ctessum/sparse"
)

// buildWeightMatrix converts engine weight triples into a canonical
// zero-based sparse matrix of shape (tgt.Size(), src.Size()). Triple
// identifiers are in the geometries' own bases and are rebased by
// subtracting each side's IndexOffset. Duplicate entries accumulate.
func buildWeightMatrix(triples []WeightTriple, src, tgt Geometry) (*sparse.SparseArray, error) {
	rows, cols := tgt.Size(), src.Size()
	rowOffset, colOffset := tgt.IndexOffset(), src.IndexOffset()
	m := sparse.ZerosSparse(rows, cols)
	for _, t := range triples {
		r, c := t.Row-rowOffset, t.Col-colOffset
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return nil, fmt.Errorf("regrid: weight entry (%d, %d) is outside the %d×%d weight matrix after removing index offsets (%d, %d)",
				t.Row, t.Col, rows, cols, rowOffset, colOffset)
		}
		m.AddVal(t.W, r, c)
	}
	return m, nil
}

// validateWeightMatrix checks that precomputed weights form a genuine 2-d
// sparse matrix of shape (tgt.Size(), src.Size()).
func validateWeightMatrix(w *sparse.SparseArray, src, tgt Geometry) error {
	if w == nil || len(w.Shape) != 2 {
		return fmt.Errorf("regrid: precomputed weights must be given as a 2-d sparse matrix")
	}
	if w.Shape[0] != tgt.Size() || w.Shape[1] != src.Size() {
		return fmt.Errorf("regrid: expected precomputed weights to have shape (%d, %d), got shape (%d, %d) instead",
			tgt.Size(), src.Size(), w.Shape[0], w.Shape[1])
	}
	return nil
}

// sortedIndices returns the flat indices of w's nonzero entries in
// increasing order. Ranging over the Elements map directly visits
// entries in a different order on every call, which lets accumulated
// sums wander in the last bit between otherwise identical runs.
func sortedIndices(w *sparse.SparseArray) []int {
	ix := make([]int, 0, len(w.Elements))
	for i := range w.Elements {
		ix = append(ix, i)
	}
	sort.Ints(ix)
	return ix
}

// rowSums returns the sum of each row of the 2-d sparse matrix w. For a
// target-area-normalized weight matrix, row t holds the fraction of
// target element t's area that is covered by the source geometry.
func rowSums(w *sparse.SparseArray) []float64 {
	sums := make([]float64, w.Shape[0])
	cols := w.Shape[1]
	for _, i := range sortedIndices(w) {
		sums[i/cols] += w.Elements[i]
	}
	return sums
}

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
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// minMDTol is the floor applied to the missing-data tolerance, guarding
// against floating-point rounding falsely rejecting fully covered
// elements at a nominal tolerance of zero.
const minMDTol = 1e-8

// Regridder regrids data from a source discretization to a target
// discretization through a sparse weight matrix of shape
// (target.Size(), source.Size()). It is immutable once constructed:
// build one Regridder per geometry pair and call Regrid on it as many
// times as needed.
type Regridder struct {
	src, tgt Geometry
	weights  *sparse.SparseArray

	// weightOrder fixes the accumulation order of the nonzero entries so
	// repeated Regrid calls are bit-identical; weightSums caches the
	// covered-area fraction of each target element.
	weightOrder []int
	weightSums  []float64
}

// NewRegridder creates a regridder from src to tgt, with the regridding
// weights computed by engine. If engine is nil, the built-in
// AreaWeightEngine is used. An engine failure is returned verbatim.
func NewRegridder(src, tgt Geometry, engine WeightEngine) (*Regridder, error) {
	if engine == nil {
		engine = AreaWeightEngine{}
	}
	srcGeom, err := src.EngineGeometry()
	if err != nil {
		return nil, err
	}
	tgtGeom, err := tgt.EngineGeometry()
	if err != nil {
		return nil, err
	}
	triples, err := engine.Weights(srcGeom, tgtGeom)
	if err != nil {
		return nil, err
	}
	weights, err := buildWeightMatrix(triples, src, tgt)
	if err != nil {
		return nil, err
	}
	return newRegridder(src, tgt, weights), nil
}

// NewRegridderFromWeights creates a regridder from src to tgt using a
// precomputed weight matrix instead of invoking a weight engine. weights
// must be a 2-d sparse matrix of shape (tgt.Size(), src.Size()), zero
// based, normalized by target-element area.
func NewRegridderFromWeights(weights *sparse.SparseArray, src, tgt Geometry) (*Regridder, error) {
	if err := validateWeightMatrix(weights, src, tgt); err != nil {
		return nil, err
	}
	return newRegridder(src, tgt, weights.Copy()), nil
}

func newRegridder(src, tgt Geometry, weights *sparse.SparseArray) *Regridder {
	return &Regridder{
		src:         src,
		tgt:         tgt,
		weights:     weights,
		weightOrder: sortedIndices(weights),
		weightSums:  rowSums(weights),
	}
}

// Weights returns a copy of the regridder's weight matrix.
func (r *Regridder) Weights() *sparse.SparseArray { return r.weights.Copy() }

// Regrid regrids data, which must be in the source geometry's natural
// shape, onto the target geometry.
//
// mdtol is the missing-data tolerance, a number in [0, 1]: the maximum
// fraction of a target element's area that may be uncovered by the source
// geometry before that element is masked in the output. An mdtol of 1
// masks only elements with no coverage at all, an mdtol of 0 masks any
// element short of full coverage, and an mdtol of 0.5 masks elements
// whose area is more than half uncovered.
//
// Values regridded onto a partially covered element are renormalized into
// an average over the covered portion only. Masking accounts only for
// geometric under-coverage of the target; missing values already present
// within the source data are not accounted for.
func (r *Regridder) Regrid(data *sparse.DenseArray, mdtol float64) (*MaskedArray, error) {
	flat, err := r.src.Flatten(data)
	if err != nil {
		return nil, err
	}
	mdtol = math.Max(mdtol, minMDTol)

	// Weighted sums over the source in a fixed entry order, then
	// renormalization by the covered fraction of each target element.
	out := make([]float64, r.tgt.Size())
	cols := r.weights.Shape[1]
	for _, i := range r.weightOrder {
		out[i/cols] += r.weights.Elements[i] * flat[i%cols]
	}
	norm := make([]float64, len(out))
	mask := make([]bool, len(out))
	for t, sum := range r.weightSums {
		if sum >= 1-mdtol && sum > 0 {
			norm[t] = 1 / sum
		} else {
			mask[t] = true
		}
	}
	floats.Mul(out, norm)

	return &MaskedArray{Data: r.tgt.Unflatten(out), Mask: mask}, nil
}

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

// WeightTriple is a single nonzero entry of a regridding weight matrix.
// Row and Col are element identifiers in the target and source geometries'
// own identifier bases (see Geometry.IndexOffset).
type WeightTriple struct {
	Row, Col int
	W        float64
}

// WeightEngine computes conservative area-weighted regridding weights
// between two geometries. Implementations must:
//
//   - normalize by target-element area, so that the weights for a fixed
//     target element sum to the fraction of that element's area covered
//     by the source domain;
//   - skip degenerate (zero-area) elements;
//   - silently omit target elements that overlap no source element;
//   - emit Row and Col in the geometries' own identifier bases;
//   - release any resources they allocate before returning, on every
//     path, after results have been copied out.
//
// An engine failure is returned verbatim; it is never substituted with
// zero or default weights.
type WeightEngine interface {
	Weights(src, tgt *EngineGeometry) ([]WeightTriple, error)
}

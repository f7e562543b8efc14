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

// Package regrid performs conservative, area-weighted remapping of scalar
// fields between spatial discretizations: structured latitude-longitude
// grids and unstructured meshes.
//
// A discretization is described by a GridInfo or MeshInfo. A Regridder
// holds a sparse weight matrix relating a source and a target
// discretization; the matrix is either computed by a WeightEngine
// (AreaWeightEngine by default) or supplied precomputed. Weights are
// normalized by target-element area, so the sum of the weights for a
// target element equals the fraction of that element's area covered by
// the source domain. Regrid applies the matrix to data repeatedly,
// masking target elements whose covered-area fraction falls below the
// caller's missing-data tolerance.
package regrid

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
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Geometry describes a source or target discretization in a form a weight
// engine can consume. It is implemented by GridInfo and MeshInfo.
type Geometry interface {
	// Size returns the number of elements (grid cells or mesh faces).
	Size() int

	// IndexOffset returns the base used for element identifiers in
	// weights computed for this geometry. Grids use 1-based identifiers;
	// meshes use their configured element start index.
	IndexOffset() int

	// Flatten converts data laid out in this geometry's natural shape
	// into a flat vector of length Size(), in element-identifier order.
	Flatten(data *sparse.DenseArray) ([]float64, error)

	// Unflatten converts a flat vector of length Size() back into the
	// geometry's natural shape. It is the exact inverse of Flatten.
	Unflatten(data []float64) *sparse.DenseArray

	// EngineGeometry returns the geometry's elements as polygons in
	// geodetic degrees, for consumption by a WeightEngine.
	EngineGeometry() (*EngineGeometry, error)
}

// EngineGeometry is the representation of a Geometry consumed by a
// WeightEngine: one polygon per element, in geodetic degrees, in
// element-identifier order.
type EngineGeometry struct {
	// Cells holds one entry per element, in Flatten order.
	Cells []EngineCell

	// Offset is the element-identifier base: element i carries the
	// identifier Offset + i in engine output.
	Offset int

	// Periodic reports whether the geometry wraps in longitude, in which
	// case overlaps must also be sought at ±360° offsets.
	Periodic bool
}

// EngineCell is a single element of an EngineGeometry.
type EngineCell struct {
	// Polygon is the element outline in geodetic degrees
	// (X = longitude, Y = latitude).
	Polygon geom.Polygon

	// Area is the caller-supplied element area, or zero if the engine
	// should compute its own.
	Area float64
}

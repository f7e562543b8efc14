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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// MeshInfo describes an unstructured mesh of faces built on a shared set
// of nodes, in the manner of the UGRID conventions. Its natural data shape
// is a flat vector with one value per face.
type MeshInfo struct {
	nodes []geom.Point // geodetic degrees; X longitude, Y latitude.

	// elemTypes[i] is the number of valid nodes in face i, and conn holds
	// the valid node indices of all faces in face order, renumbered to be
	// 0-based.
	elemTypes []int
	conn      []int

	nodeStartIndex int
	elemStartIndex int
	areas          []float64
}

// NewMeshInfo creates a mesh descriptor. nodes holds the node locations in
// geodetic degrees (X longitude, Y latitude). faceNodes holds, for each
// face, the nodes that make up its outline, in winding order; faces with
// fewer nodes than the longest face are padded, and any entry less than
// nodeStartIndex is taken to be padding. nodeStartIndex is the base the
// connectivity entries count node identifiers from (the UGRID conventions
// allow 0 or 1). elemStartIndex is the base for face identifiers in engine
// weight output; it is independent of nodeStartIndex and is normally 0.
// areas optionally gives the area of each face; if nil the weight engine
// computes its own areas.
func NewMeshInfo(nodes []geom.Point, faceNodes [][]int, nodeStartIndex, elemStartIndex int, areas []float64) (*MeshInfo, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("regrid: mesh has no nodes")
	}
	if len(faceNodes) == 0 {
		return nil, fmt.Errorf("regrid: mesh has no faces")
	}
	if areas != nil && len(areas) != len(faceNodes) {
		return nil, fmt.Errorf("regrid: mesh has %d faces but %d face areas", len(faceNodes), len(areas))
	}
	m := &MeshInfo{
		nodes:          nodes,
		elemTypes:      make([]int, len(faceNodes)),
		nodeStartIndex: nodeStartIndex,
		elemStartIndex: elemStartIndex,
		areas:          areas,
	}
	for i, face := range faceNodes {
		for _, n := range face {
			if n < nodeStartIndex {
				continue // padding
			}
			n -= nodeStartIndex
			if n >= len(nodes) {
				return nil, fmt.Errorf("regrid: mesh face %d references node %d; valid nodes are [%d, %d)",
					i, n+nodeStartIndex, nodeStartIndex, nodeStartIndex+len(nodes))
			}
			m.elemTypes[i]++
			m.conn = append(m.conn, n)
		}
	}
	return m, nil
}

// Size returns the number of mesh faces.
func (m *MeshInfo) Size() int { return len(m.elemTypes) }

// IndexOffset returns the element-identifier base for this mesh, which is
// its configured element start index.
func (m *MeshInfo) IndexOffset() int { return m.elemStartIndex }

// Flatten checks that data is a flat vector with one value per face and
// returns a copy of it. Mesh data carries no additional structure.
func (m *MeshInfo) Flatten(data *sparse.DenseArray) ([]float64, error) {
	if data == nil {
		return nil, fmt.Errorf("regrid: nil data array; want shape [%d]", m.Size())
	}
	if len(data.Shape) != 1 || data.Shape[0] != m.Size() {
		return nil, fmt.Errorf("regrid: data array has shape %v; want [%d]", data.Shape, m.Size())
	}
	out := make([]float64, len(data.Elements))
	copy(out, data.Elements)
	return out, nil
}

// Unflatten converts a flat vector with one value per face into a 1-d
// array. It panics if data has the wrong length.
func (m *MeshInfo) Unflatten(data []float64) *sparse.DenseArray {
	if len(data) != m.Size() {
		panic(fmt.Errorf("regrid: unflattening %d values onto a mesh of %d faces", len(data), m.Size()))
	}
	out := sparse.ZerosDense(m.Size())
	copy(out.Elements, data)
	return out
}

// EngineGeometry returns the mesh faces as polygons in geodetic degrees,
// in face order.
func (m *MeshInfo) EngineGeometry() (*EngineGeometry, error) {
	cells := make([]EngineCell, m.Size())
	start := 0
	for i, n := range m.elemTypes {
		ring := make([]geom.Point, 0, n+1)
		for _, node := range m.conn[start : start+n] {
			ring = append(ring, m.nodes[node])
		}
		if n > 0 {
			ring = append(ring, ring[0])
		}
		start += n
		cells[i] = EngineCell{Polygon: geom.Polygon{ring}}
		if m.areas != nil {
			cells[i].Area = m.areas[i]
		}
	}
	return &EngineGeometry{Cells: cells, Offset: m.IndexOffset()}, nil
}

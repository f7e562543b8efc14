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

// Package ugrid reads unstructured mesh topology from NetCDF files
// following the UGRID conventions, producing mesh descriptors for
// regridding.
package ugrid

import (
	"fmt"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"

	"github.com/spatialmodel/regrid"
)

// FindMeshNames returns the names of the mesh topology variables in f,
// which are the variables carrying the attribute cf_role="mesh_topology".
func FindMeshNames(f *cdf.File) []string {
	var names []string
	for _, v := range f.Header.Variables() {
		if role, ok := attrString(f, v, "cf_role"); ok && role == "mesh_topology" {
			names = append(names, v)
		}
	}
	return names
}

// ReadMesh reads the UGRID mesh described by the mesh topology variable
// meshName from f and returns it as a mesh descriptor. The mesh variable
// must carry node_coordinates and face_node_connectivity attributes
// naming the variables that hold the node locations (in degrees) and the
// per-face node lists. The start_index and _FillValue attributes of the
// connectivity variable are honored; start_index defaults to 0.
func ReadMesh(f *cdf.File, meshName string) (*regrid.MeshInfo, error) {
	coordAttr, ok := attrString(f, meshName, "node_coordinates")
	if !ok {
		return nil, fmt.Errorf("ugrid: mesh %s is missing the node_coordinates attribute", meshName)
	}
	coordVars := strings.Fields(coordAttr)
	if len(coordVars) != 2 {
		return nil, fmt.Errorf("ugrid: mesh %s node_coordinates %q must name two variables", meshName, coordAttr)
	}
	connVar, ok := attrString(f, meshName, "face_node_connectivity")
	if !ok {
		return nil, fmt.Errorf("ugrid: mesh %s is missing the face_node_connectivity attribute", meshName)
	}

	lon, lat, err := readNodeCoords(f, coordVars)
	if err != nil {
		return nil, fmt.Errorf("ugrid: mesh %s: %v", meshName, err)
	}
	if len(lon) != len(lat) {
		return nil, fmt.Errorf("ugrid: mesh %s has %d node longitudes but %d node latitudes", meshName, len(lon), len(lat))
	}
	nodes := make([]geom.Point, len(lon))
	for i := range lon {
		nodes[i] = geom.Point{X: lon[i], Y: lat[i]}
	}

	dims := f.Header.Lengths(connVar)
	if len(dims) != 2 {
		return nil, fmt.Errorf("ugrid: connectivity variable %s has %d dimensions; want 2", connVar, len(dims))
	}
	conn, err := readInts(f, connVar)
	if err != nil {
		return nil, fmt.Errorf("ugrid: reading connectivity variable %s: %v", connVar, err)
	}
	startIndex := 0
	if si, ok := attrInt(f, connVar, "start_index"); ok {
		startIndex = si
	}
	fill, hasFill := attrInt(f, connVar, "_FillValue")

	nFaces, perFace := dims[0], dims[1]
	faceNodes := make([][]int, nFaces)
	for i := 0; i < nFaces; i++ {
		face := make([]int, perFace)
		for j := 0; j < perFace; j++ {
			n := conn[i*perFace+j]
			if hasFill && n == fill {
				n = startIndex - 1 // padding
			}
			face[j] = n
		}
		faceNodes[i] = face
	}
	return regrid.NewMeshInfo(nodes, faceNodes, startIndex, 0, nil)
}

// readNodeCoords reads the two node coordinate variables, returning
// longitudes and latitudes in that order. The variables are told apart by
// their standard_name or units attributes; if neither is conclusive, they
// are taken to be in (longitude, latitude) order.
func readNodeCoords(f *cdf.File, coordVars []string) (lon, lat []float64, err error) {
	a, err := readFloats(f, coordVars[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reading node coordinate variable %s: %v", coordVars[0], err)
	}
	b, err := readFloats(f, coordVars[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reading node coordinate variable %s: %v", coordVars[1], err)
	}
	if isLatitude(f, coordVars[0]) || isLongitude(f, coordVars[1]) {
		return b, a, nil
	}
	return a, b, nil
}

func isLatitude(f *cdf.File, v string) bool {
	if s, ok := attrString(f, v, "standard_name"); ok && s == "latitude" {
		return true
	}
	s, ok := attrString(f, v, "units")
	return ok && s == "degrees_north"
}

func isLongitude(f *cdf.File, v string) bool {
	if s, ok := attrString(f, v, "standard_name"); ok && s == "longitude" {
		return true
	}
	s, ok := attrString(f, v, "units")
	return ok && s == "degrees_east"
}

// readFloats reads the whole of variable v as float64 values.
func readFloats(f *cdf.File, v string) ([]float64, error) {
	if len(f.Header.Lengths(v)) == 0 {
		return nil, fmt.Errorf("variable %s is not in the file", v)
	}
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, val := range b {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("variable %s has non-floating-point type %T", v, buf)
	}
}

// readInts reads the whole of variable v as int values.
func readInts(f *cdf.File, v string) ([]int, error) {
	if len(f.Header.Lengths(v)) == 0 {
		return nil, fmt.Errorf("variable %s is not in the file", v)
	}
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	switch b := buf.(type) {
	case []int32:
		out := make([]int, len(b))
		for i, val := range b {
			out[i] = int(val)
		}
		return out, nil
	case []int16:
		out := make([]int, len(b))
		for i, val := range b {
			out[i] = int(val)
		}
		return out, nil
	case []int8:
		out := make([]int, len(b))
		for i, val := range b {
			out[i] = int(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("variable %s has non-integer type %T", v, buf)
	}
}

func attrString(f *cdf.File, v, attr string) (string, bool) {
	val := f.Header.GetAttribute(v, attr)
	if val == nil {
		return "", false
	}
	switch s := val.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func attrInt(f *cdf.File, v, attr string) (int, bool) {
	val := f.Header.GetAttribute(v, attr)
	if val == nil {
		return 0, false
	}
	switch a := val.(type) {
	case []int32:
		if len(a) > 0 {
			return int(a[0]), true
		}
	case []int16:
		if len(a) > 0 {
			return int(a[0]), true
		}
	case []int8:
		if len(a) > 0 {
			return int(a[0]), true
		}
	case []float64:
		if len(a) > 0 {
			return int(a[0]), true
		}
	case string:
		var i int
		if _, err := fmt.Sscanf(a, "%d", &i); err == nil {
			return i, true
		}
	}
	return 0, false
}

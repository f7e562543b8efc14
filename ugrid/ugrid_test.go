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

package ugrid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/kr/pretty"

	"github.com/spatialmodel/regrid"
)

// writeTestMesh writes a UGRID NetCDF file holding a five-node mesh with
// two faces: a triangle (padded with the fill value) and a quadrilateral.
// The connectivity is 1-based to exercise start_index handling.
func writeTestMesh(t *testing.T, path string) {
	t.Helper()
	h := cdf.NewHeader(
		[]string{"nMesh2_node", "nMesh2_face", "nMaxMesh2_face_nodes", "One"},
		[]int{5, 2, 4, 1},
	)
	h.AddVariable("Mesh2", []string{"One"}, []int32{0})
	h.AddAttribute("Mesh2", "cf_role", "mesh_topology")
	h.AddAttribute("Mesh2", "topology_dimension", []int32{2})
	h.AddAttribute("Mesh2", "node_coordinates", "Mesh2_node_x Mesh2_node_y")
	h.AddAttribute("Mesh2", "face_node_connectivity", "Mesh2_face_nodes")

	h.AddVariable("Mesh2_node_x", []string{"nMesh2_node"}, []float64{0})
	h.AddAttribute("Mesh2_node_x", "standard_name", "longitude")
	h.AddAttribute("Mesh2_node_x", "units", "degrees_east")
	h.AddVariable("Mesh2_node_y", []string{"nMesh2_node"}, []float64{0})
	h.AddAttribute("Mesh2_node_y", "standard_name", "latitude")
	h.AddAttribute("Mesh2_node_y", "units", "degrees_north")

	h.AddVariable("Mesh2_face_nodes", []string{"nMesh2_face", "nMaxMesh2_face_nodes"}, []int32{0})
	h.AddAttribute("Mesh2_face_nodes", "cf_role", "face_node_connectivity")
	h.AddAttribute("Mesh2_face_nodes", "start_index", []int32{1})
	h.AddAttribute("Mesh2_face_nodes", "_FillValue", []int32{-99})

	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}

	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}

	write := func(v string, begin, end []int, data interface{}) {
		t.Helper()
		w := f.Writer(v, begin, end)
		if _, err := w.Write(data); err != nil {
			t.Fatalf("writing %s: %v", v, err)
		}
	}
	write("Mesh2", []int{0}, []int{1}, []int32{0})
	write("Mesh2_node_x", []int{0}, []int{5}, []float64{0, 0, 1, 1, 1})
	write("Mesh2_node_y", []int{0}, []int{5}, []float64{0, 1, 0, 1, 2})
	write("Mesh2_face_nodes", []int{0, 0}, []int{2, 4}, []int32{
		1, 3, 4, -99,
		4, 1, 2, 5,
	})
}

func openTestMesh(t *testing.T) *cdf.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.nc")
	writeTestMesh(t, path)
	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ff.Close() })
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFindMeshNames(t *testing.T) {
	f := openTestMesh(t)
	names := FindMeshNames(f)
	if diff := pretty.Diff(names, []string{"Mesh2"}); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestReadMesh(t *testing.T) {
	f := openTestMesh(t)
	mesh, err := ReadMesh(f, "Mesh2")
	if err != nil {
		t.Fatal(err)
	}

	nodes := []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}}
	want, err := regrid.NewMeshInfo(nodes, [][]int{{0, 2, 3, -1}, {3, 0, 1, 4}}, 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	gotGeom, err := mesh.EngineGeometry()
	if err != nil {
		t.Fatal(err)
	}
	wantGeom, err := want.EngineGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(gotGeom, wantGeom); len(diff) != 0 {
		t.Error(diff)
	}
	if mesh.Size() != 2 {
		t.Errorf("size = %d, want 2", mesh.Size())
	}
}

func TestReadMeshMissingAttributes(t *testing.T) {
	f := openTestMesh(t)
	if _, err := ReadMesh(f, "Mesh2_node_x"); err == nil {
		t.Error("non-mesh variable: no error")
	}
	if _, err := ReadMesh(f, "nonexistent"); err == nil {
		t.Error("missing variable: no error")
	}
}

func TestReadMeshRegrid(t *testing.T) {
	// A mesh loaded from a file is a working regridding source.
	f := openTestMesh(t)
	mesh, err := ReadMesh(f, "Mesh2")
	if err != nil {
		t.Fatal(err)
	}
	grid, err := regrid.NewGridInfo(
		[]float64{1. / 6, 1. / 2},
		[]float64{1. / 4, 3. / 4, 5. / 4},
		[]float64{0, 1. / 3, 2. / 3},
		[]float64{0, 1. / 2, 1, 3. / 2},
		nil, false, nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	rg, err := regrid.NewRegridder(mesh, grid, nil)
	if err != nil {
		t.Fatal(err)
	}
	data := sparseData(3, 2)
	result, err := rg.Regrid(data, 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.AnyMasked() {
		t.Error("unexpected masked elements")
	}
	// Renormalization can land a rounding error outside the data range,
	// so the bounds get a small tolerance.
	const tol = 1e-9
	for i, v := range result.Data.Elements {
		if v < 2-tol || v > 3+tol {
			t.Errorf("element %d = %g, outside the source data range [2, 3]", i, v)
		}
	}
}

func sparseData(vals ...float64) *sparse.DenseArray {
	d := sparse.ZerosDense(len(vals))
	copy(d.Elements, vals)
	return d
}

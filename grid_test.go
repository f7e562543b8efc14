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
	"strings"
	"testing"

	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
	"github.com/kr/pretty"
)

// smallGrid returns a 3-row, 2-column grid covering
// longitude [0, 2/3] and latitude [0, 3/2].
func smallGrid(t *testing.T) *GridInfo {
	t.Helper()
	g, err := NewGridInfo(
		[]float64{1. / 6, 1. / 2},
		[]float64{1. / 4, 3. / 4, 5. / 4},
		[]float64{0, 1. / 3, 2. / 3},
		[]float64{0, 1. / 2, 1, 3. / 2},
		nil, false, nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGridValidation(t *testing.T) {
	lons := []float64{0.5, 1.5}
	lats := []float64{0.5}
	tests := []struct {
		name                 string
		lonBounds, latBounds []float64
		circular             bool
	}{
		{"short lon bounds", []float64{0, 1}, []float64{0, 1}, false},
		{"short lat bounds", []float64{0, 1, 2}, []float64{0}, false},
		{"circular lon bounds too short", []float64{0}, []float64{0, 1}, true},
	}
	for _, test := range tests {
		if _, err := NewGridInfo(lons, lats, test.lonBounds, test.latBounds, nil, test.circular, nil); err == nil {
			t.Errorf("%s: no error", test.name)
		}
	}

	// Circular grids accept either NX or NX+1 longitude bounds.
	for _, lonBounds := range [][]float64{{0, 180}, {0, 180, 360}} {
		if _, err := NewGridInfo(lons, lats, lonBounds, []float64{0, 1}, nil, true, nil); err != nil {
			t.Errorf("circular grid with %d longitude bounds: %v", len(lonBounds), err)
		}
	}

	badAreas := sparse.ZerosDense(2, 1)
	if _, err := NewGridInfo(lons, lats, []float64{0, 1, 2}, []float64{0, 1}, nil, false, badAreas); err == nil {
		t.Error("mis-shaped areas: no error")
	}
}

func TestGridFlattenRoundTrip(t *testing.T) {
	g := smallGrid(t)
	data := sparse.ZerosDense(3, 2)
	for i := range data.Elements {
		data.Elements[i] = float64(i)*1.5 - 2
	}
	flat, err := g.Flatten(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != g.Size() {
		t.Fatalf("flattened length = %d, want %d", len(flat), g.Size())
	}
	back := g.Unflatten(flat)
	if diff := pretty.Diff(data, back); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestGridFlattenShapeError(t *testing.T) {
	g := smallGrid(t)
	if _, err := g.Flatten(sparse.ZerosDense(2, 3)); err == nil {
		t.Error("transposed data: no error")
	}
	if _, err := g.Flatten(sparse.ZerosDense(6)); err == nil {
		t.Error("1-d data: no error")
	}
	if _, err := g.Flatten(nil); err == nil {
		t.Error("nil data: no error")
	}
}

func TestGridEngineGeometry(t *testing.T) {
	g := smallGrid(t)
	eg, err := g.EngineGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if len(eg.Cells) != 6 {
		t.Fatalf("got %d cells, want 6", len(eg.Cells))
	}
	if eg.Offset != 1 {
		t.Errorf("offset = %d, want 1", eg.Offset)
	}
	// Cell 3 is row 1, column 1: longitude [1/3, 2/3], latitude [1/2, 1].
	p := eg.Cells[3].Polygon
	b := p.Bounds()
	if b.Min.X != 1./3 || b.Max.X != 2./3 || b.Min.Y != 1./2 || b.Max.Y != 1 {
		t.Errorf("cell 3 bounds = %+v", b)
	}
}

func TestGridEngineGeometryLongLat(t *testing.T) {
	// A grid whose coordinate reference is explicitly geodetic degrees
	// has the same engine representation as one with no transform at all.
	sr, err := proj.Parse("+proj=longlat +units=degrees")
	if err != nil {
		t.Fatal(err)
	}
	lons, lats := []float64{0.5, 1.5}, []float64{0.5}
	lonB, latB := []float64{0, 1, 2}, []float64{0, 1}
	g1, err := NewGridInfo(lons, lats, lonB, latB, sr, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := NewGridInfo(lons, lats, lonB, latB, nil, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	eg1, err := g1.EngineGeometry()
	if err != nil {
		t.Fatal(err)
	}
	eg2, err := g2.EngineGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(eg1, eg2); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestGridEngineGeometryCircular(t *testing.T) {
	for _, lonBounds := range [][]float64{
		{-180, -90, 0, 90},
		{-180, -90, 0, 90, 180}, // duplicate trailing bound dropped
	} {
		g, err := NewGridInfo(
			[]float64{-135, -45, 45, 135}, []float64{0},
			lonBounds, []float64{-10, 10},
			nil, true, nil,
		)
		if err != nil {
			t.Fatal(err)
		}
		eg, err := g.EngineGeometry()
		if err != nil {
			t.Fatal(err)
		}
		if !eg.Periodic {
			t.Error("engine geometry is not periodic")
		}
		// The final cell's eastern edge is the first bound shifted one
		// period east.
		last := eg.Cells[3].Polygon.Bounds()
		if last.Min.X != 90 || last.Max.X != 180 {
			t.Errorf("%d bounds: final cell spans [%g, %g], want [90, 180]",
				len(lonBounds), last.Min.X, last.Max.X)
		}
	}
}

func TestGridUnflattenPanics(t *testing.T) {
	g := smallGrid(t)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("no panic")
		}
		if !strings.Contains(r.(error).Error(), "unflattening") {
			t.Errorf("unexpected panic: %v", r)
		}
	}()
	g.Unflatten(make([]float64, 5))
}

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
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// geodeticSR is the coordinate reference that weight engines consume.
var geodeticSR *proj.SR

func init() {
	var err error
	geodeticSR, err = proj.Parse("+proj=longlat +units=degrees")
	if err != nil {
		panic(err)
	}
}

// GridInfo describes a structured latitude-longitude grid with NY rows and
// NX columns. Its natural data shape is (NY, NX), flattened row-major.
type GridInfo struct {
	lons, lats           []float64
	lonBounds, latBounds []float64
	sr                   *proj.SR
	circular             bool
	areas                *sparse.DenseArray
}

// NewGridInfo creates a grid descriptor from cell-center coordinates lons
// (length NX) and lats (length NY) and cell-edge coordinates lonBounds
// (length NX+1, or NX if circular) and latBounds (length NY+1). sr is the
// coordinate reference the coordinates are given in; if nil they are taken
// to already be geodetic degrees. If circular is true, the grid is periodic
// in longitude and the final longitude bound is identified with the first.
// areas optionally gives the area of each cell, shape (NY, NX); if nil the
// weight engine computes its own areas.
func NewGridInfo(lons, lats, lonBounds, latBounds []float64, sr *proj.SR, circular bool, areas *sparse.DenseArray) (*GridInfo, error) {
	nx, ny := len(lons), len(lats)
	if nx == 0 || ny == 0 {
		return nil, fmt.Errorf("regrid: grid has no cells (%d longitudes, %d latitudes)", nx, ny)
	}
	if len(latBounds) != ny+1 {
		return nil, fmt.Errorf("regrid: grid has %d latitudes but %d latitude bounds; want %d", ny, len(latBounds), ny+1)
	}
	wantLonBounds := nx + 1
	if !(len(lonBounds) == nx+1 || (circular && len(lonBounds) == nx)) {
		if circular {
			return nil, fmt.Errorf("regrid: circular grid has %d longitudes but %d longitude bounds; want %d or %d", nx, len(lonBounds), nx, wantLonBounds)
		}
		return nil, fmt.Errorf("regrid: grid has %d longitudes but %d longitude bounds; want %d", nx, len(lonBounds), wantLonBounds)
	}
	if areas != nil && (len(areas.Shape) != 2 || areas.Shape[0] != ny || areas.Shape[1] != nx) {
		return nil, fmt.Errorf("regrid: grid cell areas have shape %v; want [%d %d]", areas.Shape, ny, nx)
	}
	return &GridInfo{
		lons:      lons,
		lats:      lats,
		lonBounds: lonBounds,
		latBounds: latBounds,
		sr:        sr,
		circular:  circular,
		areas:     areas,
	}, nil
}

// NX returns the number of grid columns.
func (g *GridInfo) NX() int { return len(g.lons) }

// NY returns the number of grid rows.
func (g *GridInfo) NY() int { return len(g.lats) }

// Size returns the number of grid cells.
func (g *GridInfo) Size() int { return len(g.lons) * len(g.lats) }

// IndexOffset returns the element-identifier base for grids, which is 1.
func (g *GridInfo) IndexOffset() int { return 1 }

// Flatten converts data of shape (NY, NX) to a flat row-major vector.
func (g *GridInfo) Flatten(data *sparse.DenseArray) ([]float64, error) {
	if data == nil {
		return nil, fmt.Errorf("regrid: nil data array; want shape [%d %d]", g.NY(), g.NX())
	}
	if len(data.Shape) != 2 || data.Shape[0] != g.NY() || data.Shape[1] != g.NX() {
		return nil, fmt.Errorf("regrid: data array has shape %v; want [%d %d]", data.Shape, g.NY(), g.NX())
	}
	out := make([]float64, len(data.Elements))
	copy(out, data.Elements)
	return out, nil
}

// Unflatten converts a flat row-major vector of length NY*NX back to
// shape (NY, NX). It panics if data has the wrong length.
func (g *GridInfo) Unflatten(data []float64) *sparse.DenseArray {
	if len(data) != g.Size() {
		panic(fmt.Errorf("regrid: unflattening %d values onto a grid of %d cells", len(data), g.Size()))
	}
	out := sparse.ZerosDense(g.NY(), g.NX())
	copy(out.Elements, data)
	return out
}

// EngineGeometry returns the grid cells as polygons in geodetic degrees,
// in row-major order.
func (g *GridInfo) EngineGeometry() (*EngineGeometry, error) {
	ct, err := g.transformer()
	if err != nil {
		return nil, err
	}
	nx, ny := g.NX(), g.NY()

	// Corner coordinates in geodetic degrees. For a circular grid the
	// duplicate trailing longitude bound is dropped and the eastern edge
	// of the final column is the first bound shifted one period east.
	wrapped := func(i int) (float64, bool) {
		if g.circular && i == nx {
			return g.lonBounds[0], true
		}
		return g.lonBounds[i], false
	}
	cornerLon := make([][]float64, nx+1)
	cornerLat := make([][]float64, nx+1)
	for i := 0; i <= nx; i++ {
		cornerLon[i] = make([]float64, ny+1)
		cornerLat[i] = make([]float64, ny+1)
		lb, wrap := wrapped(i)
		for j := 0; j <= ny; j++ {
			x, y, err := ct(lb, g.latBounds[j])
			if err != nil {
				return nil, fmt.Errorf("regrid: transforming grid corner (%g, %g): %v", lb, g.latBounds[j], err)
			}
			if wrap {
				x += 360
			}
			cornerLon[i][j], cornerLat[i][j] = x, y
		}
	}

	cells := make([]EngineCell, 0, nx*ny)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			p := geom.Polygon{{
				{X: cornerLon[ix][iy], Y: cornerLat[ix][iy]},
				{X: cornerLon[ix+1][iy], Y: cornerLat[ix+1][iy]},
				{X: cornerLon[ix+1][iy+1], Y: cornerLat[ix+1][iy+1]},
				{X: cornerLon[ix][iy+1], Y: cornerLat[ix][iy+1]},
				{X: cornerLon[ix][iy], Y: cornerLat[ix][iy]},
			}}
			var a float64
			if g.areas != nil {
				a = g.areas.Get(iy, ix)
			}
			cells = append(cells, EngineCell{Polygon: p, Area: a})
		}
	}
	return &EngineGeometry{Cells: cells, Offset: g.IndexOffset(), Periodic: g.circular}, nil
}

func (g *GridInfo) transformer() (proj.Transformer, error) {
	if g.sr == nil {
		return func(x, y float64) (float64, float64, error) { return x, y, nil }, nil
	}
	ct, err := g.sr.NewTransform(geodeticSR)
	if err != nil {
		return nil, fmt.Errorf("regrid: creating grid coordinate transform: %v", err)
	}
	if ct == nil {
		// NewTransform reports matching coordinate references with a
		// nil Transformer.
		return func(x, y float64) (float64, float64, error) { return x, y, nil }, nil
	}
	return ct, nil
}

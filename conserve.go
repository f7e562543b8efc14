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
	"log"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// AreaWeightEngine is a WeightEngine that computes conservative
// area-weighted overlap between element polygons. Overlap outlines are
// found by planar clipping in longitude-latitude coordinates and their
// areas are evaluated on the sphere, so cells that straddle a pole or the
// antimeridian are not supported. Weights are normalized by target-element
// area: the weights for a target element sum to the fraction of its area
// covered by the source geometry.
type AreaWeightEngine struct{}

// srcCell is a source element polygon in the spatial index. A periodic
// source is inserted at each of its longitude aliases, all sharing the
// same element index.
type srcCell struct {
	geom.Polygon
	index int
}

// Weights computes target-area-normalized conservative weights for
// regridding from src to tgt.
func (e AreaWeightEngine) Weights(src, tgt *EngineGeometry) ([]WeightTriple, error) {
	log.Printf("regrid: computing conservative weights for %d source and %d target elements",
		len(src.Cells), len(tgt.Cells))

	shifts := []float64{0}
	if src.Periodic {
		shifts = []float64{0, -360, 360}
	}
	index := rtree.NewTree(25, 50)
	for i, c := range src.Cells {
		srcArea := c.Area
		if srcArea == 0 {
			srcArea = sphericalArea(c.Polygon)
		}
		if srcArea <= 0 {
			continue // degenerate
		}
		for _, shift := range shifts {
			index.Insert(&srcCell{Polygon: shiftLon(c.Polygon, shift), index: i})
		}
	}

	var triples []WeightTriple
	for t, c := range tgt.Cells {
		tgtArea := c.Area
		if tgtArea == 0 {
			tgtArea = sphericalArea(c.Polygon)
		}
		if tgtArea <= 0 {
			continue // degenerate
		}
		overlaps := make(map[int]float64)
		for _, sI := range index.SearchIntersect(c.Polygon.Bounds()) {
			s := sI.(*srcCell)
			a := sphericalArea(c.Polygon.Intersection(s.Polygon))
			if a > 0 {
				overlaps[s.index] += a
			}
		}
		cols := make([]int, 0, len(overlaps))
		for s := range overlaps {
			cols = append(cols, s)
		}
		sort.Ints(cols)
		for _, s := range cols {
			triples = append(triples, WeightTriple{
				Row: tgt.Offset + t,
				Col: src.Offset + s,
				W:   overlaps[s] / tgtArea,
			})
		}
	}
	return triples, nil
}

// shiftLon returns p moved east by shift degrees of longitude.
func shiftLon(p geom.Polygon, shift float64) geom.Polygon {
	if shift == 0 {
		return p
	}
	o := make(geom.Polygon, len(p))
	for i, ring := range p {
		o[i] = make([]geom.Point, len(ring))
		for j, pt := range ring {
			o[i][j] = geom.Point{X: pt.X + shift, Y: pt.Y}
		}
	}
	return o
}

// sphericalArea returns the area of p on the unit sphere, where p is in
// geodetic degrees. Edges are integrated with the trapezoid rule in
// sin(latitude), which is exact for constant-latitude and
// constant-longitude edges. Rings wound opposite to their enclosing ring
// subtract, matching the clipper's output convention.
func sphericalArea(p geom.Polygonal) float64 {
	if p == nil {
		return 0
	}
	total := 0.
	for _, poly := range p.Polygons() {
		a := 0.
		for _, ring := range poly {
			a += sphericalRingArea(ring)
		}
		total += math.Abs(a)
	}
	return total
}

func sphericalRingArea(ring []geom.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	const d2r = math.Pi / 180
	a := 0.
	for i, p1 := range ring {
		p2 := ring[(i+1)%len(ring)]
		a += (p2.X - p1.X) * d2r * (math.Sin(p1.Y*d2r) + math.Sin(p2.Y*d2r)) / 2
	}
	return a
}

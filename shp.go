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
	"os"
	"path/filepath"

	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// WriteToShp writes the grid cell outlines, in geodetic degrees, to a
// shapefile named name in directory outdir, with row and column
// attributes, for visual inspection.
func (g *GridInfo) WriteToShp(outdir, name string) error {
	eg, err := g.EngineGeometry()
	if err != nil {
		return err
	}
	fields := []goshp.Field{
		goshp.NumberField("row", 10),
		goshp.NumberField("col", 10),
	}
	shpf, err := newShpEncoder(outdir, name, fields)
	if err != nil {
		return err
	}
	nx := g.NX()
	for i, cell := range eg.Cells {
		if err := shpf.EncodeFields(cell.Polygon, i/nx, i%nx); err != nil {
			return err
		}
	}
	shpf.Close()
	return nil
}

// WriteToShp writes the mesh face outlines, in geodetic degrees, to a
// shapefile named name in directory outdir, with a face-index attribute,
// for visual inspection.
func (m *MeshInfo) WriteToShp(outdir, name string) error {
	eg, err := m.EngineGeometry()
	if err != nil {
		return err
	}
	fields := []goshp.Field{goshp.NumberField("face", 10)}
	shpf, err := newShpEncoder(outdir, name, fields)
	if err != nil {
		return err
	}
	for i, cell := range eg.Cells {
		if err := shpf.EncodeFields(cell.Polygon, i); err != nil {
			return err
		}
	}
	shpf.Close()
	return nil
}

func newShpEncoder(outdir, name string, fields []goshp.Field) (*shp.Encoder, error) {
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(filepath.Join(outdir, name+ext))
	}
	return shp.NewEncoderFromFields(filepath.Join(outdir, name+".shp"), goshp.POLYGON, fields...)
}

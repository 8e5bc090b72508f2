/*
Copyright © 2026 the MycoRange authors.
This file is part of MycoRange.

MycoRange is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MycoRange is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MycoRange.  If not, see <http://www.gnu.org/licenses/>.
*/

package mycorange

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// earthRadius is the authalic radius of the Earth [m].
const earthRadius = 6371007.181

// GridDef describes the regular longitude-latitude grid that all presence
// layers in a RasterStore share. X0, Y0 is the southwest corner of the
// grid and Dx, Dy are the cell edge lengths, all in degrees. Rows are
// numbered south to north and columns west to east.
type GridDef struct {
	Nx, Ny int
	Dx, Dy float64
	X0, Y0 float64

	// Proj4 is the spatial reference of the grid in PROJ.4 format.
	Proj4 string
}

// NewGridDef creates a grid definition, checking that the dimensions are
// usable and that the spatial reference can be parsed.
func NewGridDef(nx, ny int, dx, dy, x0, y0 float64, proj4 string) (*GridDef, error) {
	if nx <= 0 || ny <= 0 || dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("mycorange: invalid grid dimensions nx=%d, ny=%d, dx=%g, dy=%g",
			nx, ny, dx, dy)
	}
	if _, err := proj.Parse(proj4); err != nil {
		return nil, fmt.Errorf("mycorange: problem parsing grid projection: %v", err)
	}
	return &GridDef{Nx: nx, Ny: ny, Dx: dx, Dy: dy, X0: x0, Y0: y0, Proj4: proj4}, nil
}

// SR returns the parsed spatial reference of the grid.
func (g *GridDef) SR() (*proj.SR, error) {
	return proj.Parse(g.Proj4)
}

// Lon returns the longitude of the center of the cells in column col.
func (g *GridDef) Lon(col int) float64 {
	return g.X0 + (float64(col)+0.5)*g.Dx
}

// Lat returns the latitude of the center of the cells in row row.
func (g *GridDef) Lat(row int) float64 {
	return g.Y0 + (float64(row)+0.5)*g.Dy
}

// CellPolygon returns the outline of the cell at (row, col).
func (g *GridDef) CellPolygon(row, col int) geom.Polygon {
	x := g.X0 + float64(col)*g.Dx
	y := g.Y0 + float64(row)*g.Dy
	return geom.Polygon{{
		{X: x, Y: y}, {X: x + g.Dx, Y: y},
		{X: x + g.Dx, Y: y + g.Dy}, {X: x, Y: y + g.Dy}, {X: x, Y: y},
	}}
}

// CellAreas returns the true ground area of each grid cell [m²].
// On a graticule, the area of a cell spanning latitudes φ1–φ2 and Δλ
// radians of longitude is R²·Δλ·(sin φ2 − sin φ1), so cell area shrinks
// toward the poles; it is not a constant over the grid and must not be
// treated as one when summing areas.
func (g *GridDef) CellAreas() *sparse.DenseArray {
	areas := sparse.ZerosDense(g.Ny, g.Nx)
	dλ := g.Dx * math.Pi / 180
	for j := 0; j < g.Ny; j++ {
		φ1 := (g.Y0 + float64(j)*g.Dy) * math.Pi / 180
		φ2 := (g.Y0 + float64(j+1)*g.Dy) * math.Pi / 180
		a := earthRadius * earthRadius * dλ * (math.Sin(φ2) - math.Sin(φ1))
		for i := 0; i < g.Nx; i++ {
			areas.Set(a, j, i)
		}
	}
	return areas
}

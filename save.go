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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/sparse"
	goshp "github.com/jonas-p/go-shp"
)

// WriteDiversityShapefile writes one or more diversity grids as a
// polygon shapefile with one attribute column per grid, plus a .prj
// file holding the grid projection.
func WriteDiversityShapefile(fileName string, grid *GridDef, layers map[string]*sparse.DenseArray) error {
	// Make sure the projection is writable before creating any files.
	if _, err := grid.SR(); err != nil {
		return fmt.Errorf("mycorange: problem parsing grid projection: %v", err)
	}
	names := make([]string, 0, len(layers))
	for name, layer := range layers {
		if err := checkGridShape(grid, layer, SpeciesID(name)); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]goshp.Field, len(names))
	for i, name := range names {
		fields[i] = goshp.FloatField(name, 14, 8)
	}
	fileBase := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	shape, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("mycorange: error creating output shapefile: %v", err)
	}
	for j := 0; j < grid.Ny; j++ {
		for i := 0; i < grid.Nx; i++ {
			vals := make([]interface{}, len(names))
			for k, name := range names {
				vals[k] = layers[name].Get(j, i)
			}
			if err := shape.EncodeFields(grid.CellPolygon(j, i), vals...); err != nil {
				return fmt.Errorf("mycorange: error writing output shapefile: %v", err)
			}
		}
	}
	shape.Close()

	// Create .prj file
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("mycorange: error creating output prj file: %v", err)
	}
	fmt.Fprint(f, grid.Proj4)
	return f.Close()
}

// formatValue renders v for CSV output. NaN (no data) becomes an empty
// cell so that missing values can never be confused with a computed
// zero.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteOverlapCSV writes the overlap-area table to w in CSV format.
func WriteOverlapCSV(w io.Writer, records []OverlapRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tree", "fungus", "scenario", "area_m2"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{string(r.Tree), string(r.Fungus), string(r.Scenario), formatValue(r.AreaM2)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBandShiftCSV writes per-band boundary latitudes to w in CSV
// format. Bands with no presence under a scenario have empty cells for
// that scenario's boundaries.
func WriteBandShiftCSV(w io.Writer, records []BandShiftRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"fungus", "band_lower", "band_upper",
		"current_south", "current_north", "future_south", "future_north"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			string(r.Species),
			formatValue(r.Band.Lower),
			formatValue(r.Band.Upper),
			formatValue(r.CurrentSouth),
			formatValue(r.CurrentNorth),
			formatValue(r.FutureSouth),
			formatValue(r.FutureNorth),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShiftSummaryCSV writes the per-species shift summaries and their
// quadrant classifications to w in CSV format. Species whose summary is
// undefined are written with empty deltas and no quadrant, so readers
// can tell "never observed" apart from "no net shift".
func WriteShiftSummaryCSV(w io.Writer, a *ShiftAnalysis) error {
	cw := csv.NewWriter(w)
	header := []string{"fungus", "southern_delta", "northern_delta", "bands", "quadrant"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range a.Summaries {
		row := []string{
			string(s.Species),
			formatValue(s.SouthernDelta),
			formatValue(s.NorthernDelta),
			strconv.Itoa(s.Bands),
			a.Quadrants[s.Species].String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, species := range a.Undefined {
		if err := cw.Write([]string{string(species), "", "", "0", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteQuadrantCSV writes the quadrant counts and the χ² comparison
// against the uniform null to w in CSV format.
func WriteQuadrantCSV(w io.Writer, counts map[ShiftQuadrant]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"quadrant", "count"}); err != nil {
		return err
	}
	for _, q := range ShiftQuadrants {
		if err := cw.Write([]string{q.String(), strconv.Itoa(counts[q])}); err != nil {
			return err
		}
	}
	chi2, p := GoodnessOfFit(counts)
	if err := cw.Write([]string{"chi_squared", formatValue(chi2)}); err != nil {
		return err
	}
	if err := cw.Write([]string{"p_value", formatValue(p)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

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
	"math"
	"sort"

	"github.com/ctessum/sparse"
)

// A LongitudeBand is an interval of longitude [degrees]. Bands are
// left-open and right-closed: a point whose longitude equals Upper
// belongs to this band, and a point whose longitude equals Lower
// belongs to the band below. The first band of a partition additionally
// contains its own lower bound, so a partition covers the closed study
// extent. The same convention is applied to both scenarios, so boundary
// points can never introduce a cross-scenario bias.
type LongitudeBand struct {
	Lower, Upper float64
}

// Mid returns the midpoint longitude of the band.
func (b LongitudeBand) Mid() float64 {
	return (b.Lower + b.Upper) / 2
}

// Bands partitions the longitude extent [lo, hi] into bands of the
// given width [degrees]. The last band is truncated at hi when the
// width does not divide the extent evenly.
func Bands(lo, hi, width float64) []LongitudeBand {
	n := int(math.Ceil((hi - lo) / width))
	bands := make([]LongitudeBand, 0, n)
	for i := 0; i < n; i++ {
		upper := lo + float64(i+1)*width
		if upper > hi {
			upper = hi
		}
		bands = append(bands, LongitudeBand{Lower: lo + float64(i)*width, Upper: upper})
	}
	return bands
}

// DefaultBands returns the study default: 3°-wide longitude bands
// spanning the extent from 170°W to 55°W.
func DefaultBands() []LongitudeBand {
	return Bands(-170, -55, 3)
}

// bandIndex returns the index of the band containing lon, or -1 if lon
// is outside the partition.
func bandIndex(bands []LongitudeBand, lon float64) int {
	if len(bands) > 0 && lon == bands[0].Lower {
		return 0
	}
	for i, b := range bands {
		if lon > b.Lower && lon <= b.Upper {
			return i
		}
	}
	return -1
}

// BandShiftRecord holds, for one fungal species and one longitude band,
// the southern (2.5th percentile) and northern (97.5th percentile)
// boundary latitudes of the cells predicted present within the band
// under each scenario. A boundary is NaN when the band contains no
// present cells under that scenario; NaN means "no data" and must never
// be read as latitude zero.
type BandShiftRecord struct {
	Species SpeciesID
	Band    LongitudeBand

	CurrentSouth, CurrentNorth float64
	FutureSouth, FutureNorth   float64
}

// AnalyzeSpecies slices the study extent into the given longitude bands
// and computes, for one fungal species, the southern and northern
// boundary latitudes of the occupied cells in each band under both
// scenarios. The analysis covers the species' full modeled range; it is
// independent of any tree's range. The returned records are in band
// order.
func (s *RasterStore) AnalyzeSpecies(fungus SpeciesID, bands []LongitudeBand) ([]BandShiftRecord, error) {
	cur, err := s.Presence(fungus, Current)
	if err != nil {
		return nil, err
	}
	fut, err := s.Presence(fungus, Future)
	if err != nil {
		return nil, err
	}
	curLats := bandLatitudes(s.grid, cur, bands)
	futLats := bandLatitudes(s.grid, fut, bands)
	records := make([]BandShiftRecord, len(bands))
	for i, b := range bands {
		records[i] = BandShiftRecord{
			Species:      fungus,
			Band:         b,
			CurrentSouth: quantile(0.025, curLats[i]),
			CurrentNorth: quantile(0.975, curLats[i]),
			FutureSouth:  quantile(0.025, futLats[i]),
			FutureNorth:  quantile(0.975, futLats[i]),
		}
	}
	return records, nil
}

// bandLatitudes collects the center latitudes of the present cells in
// each band.
func bandLatitudes(g *GridDef, presence *sparse.DenseArray, bands []LongitudeBand) [][]float64 {
	lats := make([][]float64, len(bands))
	for i := 0; i < g.Nx; i++ {
		k := bandIndex(bands, g.Lon(i))
		if k < 0 {
			continue
		}
		for j := 0; j < g.Ny; j++ {
			if presence.Get(j, i) > 0 {
				lats[k] = append(lats[k], g.Lat(j))
			}
		}
	}
	return lats
}

// quantile returns the pth quantile of x using linear interpolation
// between order statistics (Hyndman & Fan type 7, the convention used
// by the occurrence-modeling pipeline that produces our inputs): with x
// sorted and h = (len(x)−1)·p, the result interpolates between x[⌊h⌋]
// and x[⌊h⌋+1]. The result for empty input is NaN.
func quantile(p float64, x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	x = append([]float64(nil), x...)
	sort.Float64s(x)
	h := float64(len(x)-1) * p
	i := int(math.Floor(h))
	if i >= len(x)-1 {
		return x[len(x)-1]
	}
	return x[i] + (h-float64(i))*(x[i+1]-x[i])
}

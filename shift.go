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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SpeciesShiftSummary averages the per-band boundary shifts for one
// fungal species. SouthernDelta is the mean of (future − current)
// southern-boundary latitude over the bands where both scenarios are
// defined, and NorthernDelta the same for the northern boundary
// [degrees]. Positive values mean the boundary moved north: a positive
// SouthernDelta is a contraction of the southern edge, and a positive
// NorthernDelta is an expansion of the northern edge.
type SpeciesShiftSummary struct {
	Species       SpeciesID
	SouthernDelta float64
	NorthernDelta float64

	// Bands is the number of longitude bands contributing to the means.
	Bands int
}

// AggregationUndefinedError reports a species whose shift summary is
// undefined because no longitude band has presence under both
// scenarios. Such species are excluded from classification; defaulting
// them to a zero shift would bias the quadrant counts.
type AggregationUndefinedError struct {
	Species SpeciesID
}

func (e AggregationUndefinedError) Error() string {
	return fmt.Sprintf("mycorange: species %s has no band occupied under both scenarios; shift summary is undefined",
		e.Species)
}

// Summarize aggregates the band records for one species into a shift
// summary. Bands where either scenario has no presence are ignored; if
// that leaves no bands at all, an AggregationUndefinedError is
// returned.
func Summarize(records []BandShiftRecord) (SpeciesShiftSummary, error) {
	var species SpeciesID
	var south, north []float64
	for _, r := range records {
		species = r.Species
		ds := r.FutureSouth - r.CurrentSouth
		dn := r.FutureNorth - r.CurrentNorth
		if math.IsNaN(ds) || math.IsNaN(dn) {
			continue
		}
		south = append(south, ds)
		north = append(north, dn)
	}
	if len(south) == 0 {
		return SpeciesShiftSummary{}, AggregationUndefinedError{Species: species}
	}
	return SpeciesShiftSummary{
		Species:       species,
		SouthernDelta: floats.Sum(south) / float64(len(south)),
		NorthernDelta: floats.Sum(north) / float64(len(north)),
		Bands:         len(south),
	}, nil
}

// ShiftQuadrant is a qualitative classification of the direction of a
// species' range-boundary movement.
type ShiftQuadrant int

// The four shift regimes.
const (
	LatitudinalExpansion ShiftQuadrant = iota
	NorthwardShift
	LatitudinalContraction
	SouthwardShift
)

func (q ShiftQuadrant) String() string {
	switch q {
	case LatitudinalExpansion:
		return "latitudinal expansion"
	case NorthwardShift:
		return "northward shift"
	case LatitudinalContraction:
		return "latitudinal contraction"
	case SouthwardShift:
		return "southward shift"
	}
	return fmt.Sprintf("ShiftQuadrant(%d)", int(q))
}

// ShiftQuadrants lists the quadrants in reporting order.
var ShiftQuadrants = []ShiftQuadrant{
	LatitudinalExpansion, NorthwardShift, LatitudinalContraction, SouthwardShift,
}

// Classify assigns a shift summary to a quadrant from the signs of its
// boundary deltas:
//
//	southern > 0, northern > 0: northward shift
//	southern ≤ 0, northern > 0: latitudinal expansion
//	southern > 0, northern ≤ 0: southward shift
//	southern ≤ 0, northern ≤ 0: latitudinal contraction
//
// A delta of exactly zero takes the ≤ branch on both axes, so a species
// with no boundary movement at all classifies as latitudinal
// contraction.
func Classify(s SpeciesShiftSummary) ShiftQuadrant {
	switch {
	case s.SouthernDelta > 0 && s.NorthernDelta > 0:
		return NorthwardShift
	case s.SouthernDelta <= 0 && s.NorthernDelta > 0:
		return LatitudinalExpansion
	case s.SouthernDelta > 0:
		return SouthwardShift
	default:
		return LatitudinalContraction
	}
}

// QuadrantCounts tallies the classified species per quadrant.
func QuadrantCounts(summaries []SpeciesShiftSummary) map[ShiftQuadrant]int {
	counts := make(map[ShiftQuadrant]int)
	for _, s := range summaries {
		counts[Classify(s)]++
	}
	return counts
}

// GoodnessOfFit compares observed quadrant counts against a uniform
// 25%-per-quadrant null using Pearson's χ² test with 3 degrees of
// freedom, returning the test statistic and p-value. With no classified
// species both results are NaN.
func GoodnessOfFit(counts map[ShiftQuadrant]int) (chi2, p float64) {
	var n int
	for _, q := range ShiftQuadrants {
		n += counts[q]
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	expected := float64(n) / 4
	for _, q := range ShiftQuadrants {
		d := float64(counts[q]) - expected
		chi2 += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(len(ShiftQuadrants) - 1)}
	return chi2, dist.Survival(chi2)
}

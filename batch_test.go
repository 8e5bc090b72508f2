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
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestAnalyzeShifts(t *testing.T) {
	store := testStore(t)
	bands := Bands(-100, -96, 2)
	analysis := AnalyzeShifts(NewPool(2), store, store.Fungi(), bands)

	if want := []SpeciesID{"russula"}; !reflect.DeepEqual(want, analysis.Undefined) {
		t.Errorf("undefined: want %v but have %v", want, analysis.Undefined)
	}
	if len(analysis.Failed) != 1 || analysis.Failed[0].Fungus != "morchella" {
		t.Errorf("failed: want morchella but have %+v", analysis.Failed)
	}
	if len(analysis.Summaries) != 2 {
		t.Fatalf("want 2 summaries but have %d", len(analysis.Summaries))
	}
	amanita := analysis.Summaries[0]
	if amanita.Species != "amanita" || amanita.SouthernDelta != 1 ||
		amanita.NorthernDelta != 1 || amanita.Bands != 2 {
		t.Errorf("amanita summary: have %+v", amanita)
	}
	boletus := analysis.Summaries[1]
	if boletus.Species != "boletus" || boletus.SouthernDelta != 0 ||
		boletus.NorthernDelta != 0 || boletus.Bands != 1 {
		t.Errorf("boletus summary: have %+v", boletus)
	}
	wantQuadrants := map[SpeciesID]ShiftQuadrant{
		"amanita": NorthwardShift,
		"boletus": LatitudinalContraction,
	}
	if !reflect.DeepEqual(wantQuadrants, analysis.Quadrants) {
		t.Errorf("quadrants: want %v but have %v", wantQuadrants, analysis.Quadrants)
	}
	// Russula is excluded from the counts, not classified as a quadrant.
	counts := analysis.Counts()
	var n int
	for _, c := range counts {
		n += c
	}
	if n != 2 {
		t.Errorf("classified count: want 2 but have %d (%v)", n, counts)
	}
}

// TestAnalyzeShiftsDeterministic checks that parallel and sequential
// runs over the same catalog produce identical results. Band records
// are compared with bandRecordsEqual because empty bands hold NaN
// boundaries, which compare unequal to themselves.
func TestAnalyzeShiftsDeterministic(t *testing.T) {
	store := testStore(t)
	bands := Bands(-100, -96, 1)
	sequential := AnalyzeShifts(NewPool(1), store, store.Fungi(), bands)
	parallel := AnalyzeShifts(NewPool(8), store, store.Fungi(), bands)
	if !reflect.DeepEqual(sequential.Summaries, parallel.Summaries) {
		t.Errorf("summaries differ: %+v != %+v", sequential.Summaries, parallel.Summaries)
	}
	if !reflect.DeepEqual(sequential.Quadrants, parallel.Quadrants) {
		t.Errorf("quadrants differ: %v != %v", sequential.Quadrants, parallel.Quadrants)
	}
	if !reflect.DeepEqual(sequential.Undefined, parallel.Undefined) {
		t.Errorf("undefined species differ: %v != %v", sequential.Undefined, parallel.Undefined)
	}
	if len(sequential.Failed) != len(parallel.Failed) {
		t.Fatalf("failure counts differ: %d != %d", len(sequential.Failed), len(parallel.Failed))
	}
	for i := range sequential.Failed {
		if sequential.Failed[i].Fungus != parallel.Failed[i].Fungus {
			t.Errorf("failed species %d differs: %s != %s",
				i, sequential.Failed[i].Fungus, parallel.Failed[i].Fungus)
		}
	}
	if len(sequential.Records) != len(parallel.Records) {
		t.Fatalf("record counts differ: %d != %d", len(sequential.Records), len(parallel.Records))
	}
	for species, recs := range sequential.Records {
		if !bandRecordsEqual(recs, parallel.Records[species]) {
			t.Errorf("band records for %s differ: %+v != %+v",
				species, recs, parallel.Records[species])
		}
	}
}

// bandRecordsEqual reports whether two band record slices hold the same
// values, treating a pair of NaN boundaries as equal: NaN marks a band
// with no presence, and two runs agreeing that a band is empty agree.
func bandRecordsEqual(a, b []BandShiftRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Species != b[i].Species || a[i].Band != b[i].Band {
			return false
		}
		pairs := [4][2]float64{
			{a[i].CurrentSouth, b[i].CurrentSouth},
			{a[i].CurrentNorth, b[i].CurrentNorth},
			{a[i].FutureSouth, b[i].FutureSouth},
			{a[i].FutureNorth, b[i].FutureNorth},
		}
		for _, p := range pairs {
			if p[0] != p[1] && !(math.IsNaN(p[0]) && math.IsNaN(p[1])) {
				return false
			}
		}
	}
	return true
}

// TestPoolIsolation checks that a panic in one work item is reported as
// that item's error while the remaining items still run.
func TestPoolIsolation(t *testing.T) {
	p := NewPool(3)
	done := make([]bool, 10)
	errs := p.each(10, func(i int) error {
		if i == 4 {
			panic("bad grid")
		}
		if i == 7 {
			return errors.New("no such species")
		}
		done[i] = true
		return nil
	})
	for i, err := range errs {
		switch i {
		case 4:
			if err == nil {
				t.Error("item 4: want panic error but have none")
			}
		case 7:
			if err == nil || err.Error() != "no such species" {
				t.Errorf("item 7: want error but have %v", err)
			}
		default:
			if err != nil {
				t.Errorf("item %d: unexpected error %v", i, err)
			}
			if !done[i] {
				t.Errorf("item %d did not run", i)
			}
		}
	}
}

func TestNewPoolDefault(t *testing.T) {
	if NewPool(0).Workers() < 1 {
		t.Error("default pool should have at least one worker")
	}
	if NewPool(5).Workers() != 5 {
		t.Error("pool size should be as requested")
	}
}

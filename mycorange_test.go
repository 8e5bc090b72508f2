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
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

const testProj = "+proj=longlat +datum=WGS84 +no_defs"

// testGrid is a 4×4 grid of 1° cells with its southwest corner at
// 100°W, 40°N, so cell centers are at longitudes −99.5…−96.5 and
// latitudes 40.5…43.5.
func testGrid(t *testing.T) *GridDef {
	g, err := NewGridDef(4, 4, 1, 1, -100, 40, testProj)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// testAreas gives every cell in row j an area of j+1 m² so that
// area-weighted results are easy to enumerate by hand.
func testAreas() *sparse.DenseArray {
	a := sparse.ZerosDense(4, 4)
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			a.Set(float64(j+1), j, i)
		}
	}
	return a
}

// presenceLayer builds a presence layer from rows listed north to
// south, the way a map is read. '1' is present, '0' absent, and 'n'
// NoData.
func presenceLayer(rows ...string) *sparse.DenseArray {
	ny := len(rows)
	nx := len(rows[0])
	p := sparse.ZerosDense(ny, nx)
	for k, row := range rows {
		j := ny - 1 - k
		for i, c := range row {
			switch c {
			case '1':
				p.Set(1, j, i)
			case 'n':
				p.Set(math.NaN(), j, i)
			}
		}
	}
	return p
}

// testStore builds the synthetic 2-tree, 4-fungus catalog used
// throughout the tests. The fungus "morchella" deliberately lacks a
// future layer so batch runs have a failing species.
func testStore(t *testing.T) *RasterStore {
	s, err := NewRasterStore(testGrid(t), testAreas())
	if err != nil {
		t.Fatal(err)
	}
	add := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	add(s.AddTree("oak", Current, presenceLayer(
		"0000",
		"0000",
		"1111",
		"1111")))
	add(s.AddTree("oak", Future, presenceLayer(
		"0000",
		"1111",
		"1111",
		"0000")))
	add(s.AddTree("pine", Current, presenceLayer(
		"1100",
		"1100",
		"1100",
		"1100")))
	add(s.AddTree("pine", Future, presenceLayer(
		"1100",
		"1100",
		"1100",
		"1100")))
	add(s.AddFungus("amanita", Current, presenceLayer(
		"0000",
		"0000",
		"0000",
		"1111")))
	add(s.AddFungus("amanita", Future, presenceLayer(
		"0000",
		"0000",
		"1111",
		"0000")))
	add(s.AddFungus("boletus", Current, presenceLayer(
		"0011",
		"0011",
		"0011",
		"0011")))
	add(s.AddFungus("boletus", Future, presenceLayer(
		"0011",
		"0011",
		"0011",
		"0011")))
	add(s.AddFungus("russula", Current, presenceLayer(
		"0000",
		"0000",
		"0000",
		"0000")))
	add(s.AddFungus("russula", Future, presenceLayer(
		"0000",
		"0000",
		"0000",
		"0000")))
	add(s.AddFungus("morchella", Current, presenceLayer(
		"0000",
		"0000",
		"0000",
		"1111")))
	add(s.SetCoOccurrence("oak", []SpeciesID{"amanita", "boletus", "russula"}))
	add(s.SetCoOccurrence("pine", []SpeciesID{"amanita", "morchella"}))
	return s
}

func TestOverlapTable(t *testing.T) {
	store := testStore(t)
	o := NewOverlapper(store, 2, 50, "")
	pool := NewPool(2)
	table, failures := OverlapTable(context.Background(), pool, o, []SpeciesID{"oak", "pine"})

	want := []OverlapRecord{
		{Tree: "oak", Fungus: "amanita", Scenario: Current, AreaM2: 4},
		{Tree: "oak", Fungus: "amanita", Scenario: Future, AreaM2: 8},
		{Tree: "oak", Fungus: "boletus", Scenario: Current, AreaM2: 6},
		{Tree: "oak", Fungus: "boletus", Scenario: Future, AreaM2: 10},
		{Tree: "oak", Fungus: "russula", Scenario: Current, AreaM2: 0},
		{Tree: "oak", Fungus: "russula", Scenario: Future, AreaM2: 0},
		{Tree: "pine", Fungus: "amanita", Scenario: Current, AreaM2: 2},
		{Tree: "pine", Fungus: "amanita", Scenario: Future, AreaM2: 4},
	}
	if !reflect.DeepEqual(want, table) {
		t.Errorf("overlap table: want %+v but have %+v", want, table)
	}
	if len(failures) != 1 {
		t.Fatalf("want 1 failure but have %d: %+v", len(failures), failures)
	}
	f := failures[0]
	if f.Tree != "pine" || f.Fungus != "morchella" {
		t.Errorf("failure: want pine/morchella but have %s/%s", f.Tree, f.Fungus)
	}
	if _, ok := f.Err.(NotFoundError); !ok {
		t.Errorf("failure error: want NotFoundError but have %#v", f.Err)
	}
}

func TestDiversity(t *testing.T) {
	store := testStore(t)
	o := NewOverlapper(store, 1, 50, "")
	d, err := o.Diversity(context.Background(), "oak", Current,
		[]SpeciesID{"amanita", "boletus", "russula"})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{ // south to north
		{1, 1, 2, 2},
		{0, 0, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			if d.Get(j, i) != want[j][i] {
				t.Errorf("diversity cell (%d,%d): want %g but have %g",
					j, i, want[j][i], d.Get(j, i))
			}
		}
	}
}

func TestLeftBehind(t *testing.T) {
	store := testStore(t)
	o := NewOverlapper(store, 1, 50, "")
	ctx := context.Background()

	d, err := o.LeftBehind(ctx, "oak", []SpeciesID{"amanita", "boletus", "russula"})
	if err != nil {
		t.Fatal(err)
	}
	// Oak vacates its southernmost row; of the fungi, only boletus
	// persists there under the future scenario.
	want := [][]float64{
		{0, 0, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			if d.Get(j, i) != want[j][i] {
				t.Errorf("left-behind cell (%d,%d): want %g but have %g",
					j, i, want[j][i], d.Get(j, i))
			}
		}
	}

	// Pine's future range equals its current range, so nothing is
	// left behind anywhere.
	d, err = o.LeftBehind(ctx, "pine", []SpeciesID{"amanita"})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.Sum(); s != 0 {
		t.Errorf("pine left-behind: want all-zero grid but have sum %g", s)
	}
}

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
	"encoding/gob"
	"fmt"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

func init() {
	// These are the types that will be stored in the cache.
	gob.Register(sparse.DenseArray{})
	gob.Register(OverlapResult{})
}

// Overlap returns a grid that is 1 where both a and b are present and 0
// elsewhere. NoData (NaN) cells count as absent. If either input has no
// present cells the result is simply all zero; that is not an error.
func Overlap(a, b *sparse.DenseArray) (*sparse.DenseArray, error) {
	if err := checkSameShape(a, b); err != nil {
		return nil, err
	}
	o := sparse.ZerosDense(a.Shape...)
	for i, v := range a.Elements {
		if v > 0 && b.Elements[i] > 0 {
			o.Elements[i] = 1
		}
	}
	return o, nil
}

// OverlapArea sums the true ground area of the cells marked in mask,
// weighting each cell by its entry in cellAreas [m²].
func OverlapArea(mask, cellAreas *sparse.DenseArray) (*unit.Unit, error) {
	if err := checkSameShape(mask, cellAreas); err != nil {
		return nil, err
	}
	var a float64
	for i, v := range mask.Elements {
		if v > 0 {
			a += cellAreas.Elements[i]
		}
	}
	return unit.New(a, unit.Meter2), nil
}

func checkSameShape(a, b *sparse.DenseArray) error {
	if len(a.Shape) != len(b.Shape) {
		return InconsistentGridError{Reason: fmt.Sprintf("shapes %v and %v", a.Shape, b.Shape)}
	}
	for i, d := range a.Shape {
		if b.Shape[i] != d {
			return InconsistentGridError{Reason: fmt.Sprintf("shapes %v and %v", a.Shape, b.Shape)}
		}
	}
	return nil
}

// OverlapResult holds the range-overlap grid for one tree-fungus-scenario
// combination and its physical area.
type OverlapResult struct {
	Grid   *sparse.DenseArray
	AreaM2 float64
}

// Area returns the physical overlap area as a dimensioned quantity.
func (r *OverlapResult) Area() *unit.Unit {
	return unit.New(r.AreaM2, unit.Meter2)
}

type overlapRequest struct {
	Tree, Fungus SpeciesID
	Scenario     Scenario
}

// Overlapper computes pairwise range-overlap grids, caching results so
// that the diversity aggregation can reuse the grids computed for the
// overlap-area table.
type Overlapper struct {
	store *RasterStore
	cache *requestcache.Cache
}

// NewOverlapper creates an Overlapper reading from store. workers sets
// the number of overlap computations that may run concurrently,
// memCacheSize the number of overlap grids held in memory, and
// cacheLoc, if non-empty, a directory for caching results on disk
// between runs.
func NewOverlapper(store *RasterStore, workers, memCacheSize int, cacheLoc string) *Overlapper {
	o := &Overlapper{store: store}
	process := func(ctx context.Context, request interface{}) (interface{}, error) {
		return o.compute(request.(overlapRequest))
	}
	if cacheLoc == "" {
		o.cache = requestcache.NewCache(process, workers, requestcache.Deduplicate(),
			requestcache.Memory(memCacheSize))
	} else {
		o.cache = requestcache.NewCache(process, workers, requestcache.Deduplicate(),
			requestcache.Memory(memCacheSize),
			requestcache.Disk(cacheLoc, requestcache.MarshalGob, requestcache.UnmarshalGob))
	}
	return o
}

// Store returns the raster store this Overlapper reads from.
func (o *Overlapper) Store() *RasterStore { return o.store }

// Overlap returns the overlap grid and area for one tree-fungus pair
// under one scenario. Each scenario is computed from its own pair of
// presence layers; the current-scenario overlap is never reused for the
// future scenario.
func (o *Overlapper) Overlap(ctx context.Context, tree, fungus SpeciesID, scenario Scenario) (*OverlapResult, error) {
	key := fmt.Sprintf("overlap_%s_%s_%s", tree, fungus, scenario)
	req := o.cache.NewRequest(ctx, overlapRequest{Tree: tree, Fungus: fungus, Scenario: scenario}, key)
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	switch result.(type) {
	case *OverlapResult:
		return result.(*OverlapResult), nil
	case OverlapResult:
		r := result.(OverlapResult)
		return &r, nil
	default:
		panic(fmt.Errorf("result is invalid type: %#v", result))
	}
}

func (o *Overlapper) compute(req overlapRequest) (*OverlapResult, error) {
	tp, err := o.store.Presence(req.Tree, req.Scenario)
	if err != nil {
		return nil, err
	}
	fp, err := o.store.Presence(req.Fungus, req.Scenario)
	if err != nil {
		return nil, err
	}
	g, err := Overlap(tp, fp)
	if err != nil {
		return nil, err
	}
	a, err := OverlapArea(g, o.store.cellAreas)
	if err != nil {
		return nil, err
	}
	return &OverlapResult{Grid: g, AreaM2: a.Value()}, nil
}

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

	"github.com/ctessum/sparse"
)

// Diversity returns a grid where each cell counts the fungal species in
// fungi whose range overlaps the given tree's range at that cell, under
// one scenario. Cells with no overlap across the whole catalog hold an
// explicit 0; whether to display such cells is a concern for reporting
// collaborators, not for this function, so zero-count cells are never
// dropped from the grid.
func (o *Overlapper) Diversity(ctx context.Context, tree SpeciesID, scenario Scenario, fungi []SpeciesID) (*sparse.DenseArray, error) {
	out := sparse.ZerosDense(o.store.grid.Ny, o.store.grid.Nx)
	for _, f := range fungi {
		r, err := o.Overlap(ctx, tree, f, scenario)
		if err != nil {
			return nil, err
		}
		out.AddDense(r.Grid)
	}
	return out, nil
}

// RangeShiftMask returns a grid marking the cells where presence is
// predicted under the current scenario but not under the future one,
// i.e. the habitat the species is predicted to vacate. NoData (NaN)
// cells count as absent under both scenarios.
func RangeShiftMask(current, future *sparse.DenseArray) (*sparse.DenseArray, error) {
	if err := checkSameShape(current, future); err != nil {
		return nil, err
	}
	o := sparse.ZerosDense(current.Shape...)
	for i, v := range current.Elements {
		if v > 0 && !(future.Elements[i] > 0) {
			o.Elements[i] = 1
		}
	}
	return o, nil
}

// LeftBehind returns a grid counting the fungal species in fungi that
// remain present under the future scenario in cells the given tree is
// predicted to abandon. If the tree's future range still covers its
// whole current range, the result is all zero.
func (o *Overlapper) LeftBehind(ctx context.Context, tree SpeciesID, fungi []SpeciesID) (*sparse.DenseArray, error) {
	cur, err := o.store.Presence(tree, Current)
	if err != nil {
		return nil, err
	}
	fut, err := o.store.Presence(tree, Future)
	if err != nil {
		return nil, err
	}
	mask, err := RangeShiftMask(cur, fut)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(o.store.grid.Ny, o.store.grid.Nx)
	for _, f := range fungi {
		fp, err := o.store.Presence(f, Future)
		if err != nil {
			return nil, err
		}
		g, err := Overlap(mask, fp)
		if err != nil {
			return nil, err
		}
		out.AddDense(g)
	}
	return out, nil
}

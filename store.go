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
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/ctessum/sparse"
)

// NotFoundError reports a species or species/scenario combination that
// is absent from a RasterStore. It is fatal for the request that caused
// it but not for a batch containing that request.
type NotFoundError struct {
	Species  SpeciesID
	Scenario Scenario
}

func (e NotFoundError) Error() string {
	if e.Scenario == "" {
		return fmt.Sprintf("mycorange: species %s is not in the store", e.Species)
	}
	return fmt.Sprintf("mycorange: no %s presence layer for species %s", e.Scenario, e.Species)
}

// InconsistentGridError reports an attempt to combine two grids that do
// not share the same extent and resolution. Operating on misaligned
// grids would silently produce nonsense, so this error is raised at
// store construction wherever possible and is fatal.
type InconsistentGridError struct {
	Species SpeciesID
	Reason  string
}

func (e InconsistentGridError) Error() string {
	if e.Species == "" {
		return fmt.Sprintf("mycorange: inconsistent grids: %s", e.Reason)
	}
	return fmt.Sprintf("mycorange: grid for species %s does not match the store grid: %s",
		e.Species, e.Reason)
}

type layerKey struct {
	Species  SpeciesID
	Scenario Scenario
}

// RasterStore provides read-only access to the presence/absence layer
// for each species under each climate scenario, the per-cell ground
// area layer, and the co-occurrence table restricting which fungus-tree
// pairs are evaluated. All layers share a single grid definition;
// layers that do not match it are rejected when they are added, so
// mismatched extents can never surface later as silent misalignment.
//
// Presence layers hold 1 where the species is predicted present, 0
// where absent, and NaN for NoData. A store is immutable once populated.
type RasterStore struct {
	grid      *GridDef
	cellAreas *sparse.DenseArray
	layers    map[layerKey]*sparse.DenseArray
	trees     map[SpeciesID]struct{}
	fungi     map[SpeciesID]struct{}
	cooccur   map[SpeciesID][]SpeciesID
}

// NewRasterStore creates a store for presence layers on the given grid.
// cellAreas is the per-cell ground area layer [m²]; if it is nil, areas
// are computed from the grid geometry, which assumes the grid is an
// unprojected longitude-latitude graticule.
func NewRasterStore(grid *GridDef, cellAreas *sparse.DenseArray) (*RasterStore, error) {
	if cellAreas == nil {
		cellAreas = grid.CellAreas()
	} else if err := checkGridShape(grid, cellAreas, ""); err != nil {
		return nil, err
	}
	return &RasterStore{
		grid:      grid,
		cellAreas: cellAreas,
		layers:    make(map[layerKey]*sparse.DenseArray),
		trees:     make(map[SpeciesID]struct{}),
		fungi:     make(map[SpeciesID]struct{}),
		cooccur:   make(map[SpeciesID][]SpeciesID),
	}, nil
}

// checkGridShape verifies that layer has the [Ny, Nx] shape of grid.
func checkGridShape(grid *GridDef, layer *sparse.DenseArray, species SpeciesID) error {
	if len(layer.Shape) != 2 || layer.Shape[0] != grid.Ny || layer.Shape[1] != grid.Nx {
		return InconsistentGridError{
			Species: species,
			Reason: fmt.Sprintf("layer shape %v, store shape [%d %d]",
				layer.Shape, grid.Ny, grid.Nx),
		}
	}
	return nil
}

// AddTree adds the presence layer for a tree species under a scenario.
// The store takes ownership of the layer; it must not be modified
// afterward.
func (s *RasterStore) AddTree(id SpeciesID, scenario Scenario, presence *sparse.DenseArray) error {
	if err := s.addLayer(id, scenario, presence); err != nil {
		return err
	}
	s.trees[id] = struct{}{}
	return nil
}

// AddFungus adds the presence layer for a fungal species under a
// scenario. The store takes ownership of the layer.
func (s *RasterStore) AddFungus(id SpeciesID, scenario Scenario, presence *sparse.DenseArray) error {
	if err := s.addLayer(id, scenario, presence); err != nil {
		return err
	}
	s.fungi[id] = struct{}{}
	return nil
}

func (s *RasterStore) addLayer(id SpeciesID, scenario Scenario, presence *sparse.DenseArray) error {
	if err := checkGridShape(s.grid, presence, id); err != nil {
		return err
	}
	s.layers[layerKey{Species: id, Scenario: scenario}] = presence
	return nil
}

// SetCoOccurrence records the fungal species empirically observed
// co-occurring with the given tree. Only these pairs are evaluated by
// the overlap analysis; pairs outside the table are never computed and
// never reported as "no overlap". All species must already be in the
// store.
func (s *RasterStore) SetCoOccurrence(tree SpeciesID, fungi []SpeciesID) error {
	if _, ok := s.trees[tree]; !ok {
		return NotFoundError{Species: tree}
	}
	for _, f := range fungi {
		if _, ok := s.fungi[f]; !ok {
			return NotFoundError{Species: f}
		}
	}
	o := append([]SpeciesID(nil), fungi...)
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	s.cooccur[tree] = o
	return nil
}

// Grid returns the grid definition shared by all layers in the store.
func (s *RasterStore) Grid() *GridDef { return s.grid }

// CellAreas returns the per-cell ground area layer [m²].
func (s *RasterStore) CellAreas() *sparse.DenseArray { return s.cellAreas }

// Presence returns the presence layer for a species under a scenario.
func (s *RasterStore) Presence(id SpeciesID, scenario Scenario) (*sparse.DenseArray, error) {
	p, ok := s.layers[layerKey{Species: id, Scenario: scenario}]
	if !ok {
		return nil, NotFoundError{Species: id, Scenario: scenario}
	}
	return p, nil
}

// CoOccurringFungi returns the fungal species observed co-occurring
// with the given tree, in sorted order.
func (s *RasterStore) CoOccurringFungi(tree SpeciesID) ([]SpeciesID, error) {
	f, ok := s.cooccur[tree]
	if !ok {
		return nil, NotFoundError{Species: tree}
	}
	return append([]SpeciesID(nil), f...), nil
}

// Trees returns the tree species catalog in sorted order.
func (s *RasterStore) Trees() []SpeciesID { return sortedIDs(s.trees) }

// Fungi returns the fungal species catalog in sorted order.
func (s *RasterStore) Fungi() []SpeciesID { return sortedIDs(s.fungi) }

func sortedIDs(m map[SpeciesID]struct{}) []SpeciesID {
	o := make([]SpeciesID, 0, len(m))
	for id := range m {
		o = append(o, id)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// storeData is the serialized form of a RasterStore.
type storeData struct {
	Grid      *GridDef
	CellAreas *sparse.DenseArray
	Layers    map[layerKey]*sparse.DenseArray
	Trees     []SpeciesID
	Fungi     []SpeciesID
	CoOccur   map[SpeciesID][]SpeciesID
}

// Save writes the store to w in gob format.
func (s *RasterStore) Save(w io.Writer) error {
	d := storeData{
		Grid:      s.grid,
		CellAreas: s.cellAreas,
		Layers:    s.layers,
		Trees:     s.Trees(),
		Fungi:     s.Fungi(),
		CoOccur:   s.cooccur,
	}
	if err := gob.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("mycorange: problem saving raster store: %v", err)
	}
	return nil
}

// LoadRasterStore reads a store saved by Save, re-validating the grid
// consistency of every layer so that a corrupt file fails fast here
// rather than during analysis.
func LoadRasterStore(r io.Reader) (*RasterStore, error) {
	var d storeData
	if err := gob.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("mycorange: problem loading raster store: %v", err)
	}
	s, err := NewRasterStore(d.Grid, d.CellAreas)
	if err != nil {
		return nil, err
	}
	for k, layer := range d.Layers {
		if err := checkGridShape(s.grid, layer, k.Species); err != nil {
			return nil, err
		}
		s.layers[k] = layer
	}
	for _, id := range d.Trees {
		s.trees[id] = struct{}{}
	}
	for _, id := range d.Fungi {
		s.fungi[id] = struct{}{}
	}
	for tree, fungi := range d.CoOccur {
		if err := s.SetCoOccurrence(tree, fungi); err != nil {
			return nil, err
		}
	}
	return s, nil
}

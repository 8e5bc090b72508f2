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
	"fmt"
	"runtime"
	"sync"
)

// Pool is an explicit, bounded worker pool for the per-species batch
// computations. It holds no state other than its size, so one Pool can
// be shared by any number of batches; it requires no setup or teardown.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers. If workers
// is less than 1, the number of available processors is used.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// each runs f for every index in [0, n), distributing the work across
// the pool. Each unit of work reads only shared immutable state and
// writes only its own error slot, so no locking is needed and the
// results do not depend on the number of workers. A panic in one item
// is captured as that item's error; the remaining items still run.
func (p *Pool) each(n int, f func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += p.workers {
				errs[i] = runIsolated(i, f)
			}
		}(w)
	}
	wg.Wait()
	return errs
}

func runIsolated(i int, f func(i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mycorange: panic processing item %d: %v", i, r)
		}
	}()
	return f(i)
}

// Failure records an item that could not be processed in a batch.
// Failures are reported alongside the successful results so that one
// malformed species does not abort the rest of the run.
type Failure struct {
	Tree, Fungus SpeciesID
	Err          error
}

// OverlapRecord is one row of the overlap-area table.
type OverlapRecord struct {
	Tree, Fungus SpeciesID
	Scenario     Scenario
	AreaM2       float64
}

// OverlapTable computes the area of range overlap for every (tree,
// co-occurring fungus, scenario) combination, running the pairs across
// the pool. Pairs outside the co-occurrence table are never evaluated.
// Records are ordered by tree, then fungus, then scenario. Failed pairs
// are reported in the second return value and leave no rows in the
// table; an area of zero always means a computed zero overlap.
func OverlapTable(ctx context.Context, pool *Pool, o *Overlapper, trees []SpeciesID) ([]OverlapRecord, []Failure) {
	type pair struct {
		tree, fungus SpeciesID
	}
	var pairs []pair
	var failures []Failure
	for _, t := range trees {
		fungi, err := o.store.CoOccurringFungi(t)
		if err != nil {
			failures = append(failures, Failure{Tree: t, Err: err})
			continue
		}
		for _, f := range fungi {
			pairs = append(pairs, pair{tree: t, fungus: f})
		}
	}
	results := make([][]OverlapRecord, len(pairs))
	errs := pool.each(len(pairs), func(i int) error {
		recs := make([]OverlapRecord, 0, len(Scenarios))
		for _, scenario := range Scenarios {
			r, err := o.Overlap(ctx, pairs[i].tree, pairs[i].fungus, scenario)
			if err != nil {
				return err
			}
			recs = append(recs, OverlapRecord{
				Tree:     pairs[i].tree,
				Fungus:   pairs[i].fungus,
				Scenario: scenario,
				AreaM2:   r.AreaM2,
			})
		}
		results[i] = recs
		return nil
	})
	var table []OverlapRecord
	for i, err := range errs {
		if err != nil {
			failures = append(failures, Failure{Tree: pairs[i].tree, Fungus: pairs[i].fungus, Err: err})
			continue
		}
		table = append(table, results[i]...)
	}
	return table, failures
}

// ShiftAnalysis holds the results of the longitudinal band analysis
// over a fungal catalog.
type ShiftAnalysis struct {
	// Records holds the per-band boundary latitudes for each species
	// that was analyzed successfully, in band order.
	Records map[SpeciesID][]BandShiftRecord

	// Summaries holds the species whose shift summary is defined, in
	// the order the species were supplied.
	Summaries []SpeciesShiftSummary

	// Quadrants assigns each summarized species to a shift regime.
	Quadrants map[SpeciesID]ShiftQuadrant

	// Undefined lists the species occupying no band under either
	// scenario; they are excluded from classification rather than
	// counted as any quadrant.
	Undefined []SpeciesID

	// Failed lists the species that could not be analyzed.
	Failed []Failure
}

// AnalyzeShifts runs the longitudinal band analysis for every species
// in fungi across the pool and classifies the summarized species into
// shift quadrants. Each species reads only the shared store and writes
// only its own output, so the results are identical however many
// workers the pool has.
func AnalyzeShifts(pool *Pool, store *RasterStore, fungi []SpeciesID, bands []LongitudeBand) *ShiftAnalysis {
	records := make([][]BandShiftRecord, len(fungi))
	errs := pool.each(len(fungi), func(i int) error {
		r, err := store.AnalyzeSpecies(fungi[i], bands)
		if err != nil {
			return err
		}
		records[i] = r
		return nil
	})
	out := &ShiftAnalysis{
		Records:   make(map[SpeciesID][]BandShiftRecord),
		Quadrants: make(map[SpeciesID]ShiftQuadrant),
	}
	for i, species := range fungi {
		if errs[i] != nil {
			out.Failed = append(out.Failed, Failure{Fungus: species, Err: errs[i]})
			continue
		}
		out.Records[species] = records[i]
		summary, err := Summarize(records[i])
		if err != nil {
			out.Undefined = append(out.Undefined, species)
			continue
		}
		out.Summaries = append(out.Summaries, summary)
		out.Quadrants[species] = Classify(summary)
	}
	return out
}

// Counts returns the number of classified species in each quadrant.
func (a *ShiftAnalysis) Counts() map[ShiftQuadrant]int {
	return QuadrantCounts(a.Summaries)
}

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

package mycorangeutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/mycorange"
)

// RunOverlap computes the overlap-area table for every configured tree
// and writes it, together with per-tree diversity and left-behind
// diversity rasters, to the configured output directory.
func RunOverlap(cfg *viper.Viper) error {
	log.Println("Reading input data...")
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}
	outputDir, err := checkOutputDir(cfg.GetString("OutputDir"))
	if err != nil {
		return err
	}
	pool := mycorange.NewPool(cfg.GetInt("Workers"))
	o := mycorange.NewOverlapper(store, pool.Workers(), cfg.GetInt("MemCacheSize"),
		os.ExpandEnv(cfg.GetString("CacheLoc")))
	trees := speciesList("Trees", cfg, store.Trees())
	ctx := context.Background()

	log.Printf("Computing range overlaps for %d trees...", len(trees))
	table, failures := mycorange.OverlapTable(ctx, pool, o, trees)
	if err := writeOverlapTable(filepath.Join(outputDir, "overlap_areas.csv"), table); err != nil {
		return err
	}
	for _, tree := range trees {
		fungi, err := o.Store().CoOccurringFungi(tree)
		if err != nil {
			failures = append(failures, mycorange.Failure{Tree: tree, Err: err})
			continue
		}
		current, err := o.Diversity(ctx, tree, mycorange.Current, fungi)
		if err != nil {
			failures = append(failures, mycorange.Failure{Tree: tree, Err: err})
			continue
		}
		future, err := o.Diversity(ctx, tree, mycorange.Future, fungi)
		if err != nil {
			failures = append(failures, mycorange.Failure{Tree: tree, Err: err})
			continue
		}
		leftBehind, err := o.LeftBehind(ctx, tree, fungi)
		if err != nil {
			failures = append(failures, mycorange.Failure{Tree: tree, Err: err})
			continue
		}
		fname := filepath.Join(outputDir, fmt.Sprintf("diversity_%s.shp", tree))
		err = mycorange.WriteDiversityShapefile(fname, o.Store().Grid(), map[string]*sparse.DenseArray{
			"current":    current,
			"future":     future,
			"leftbehind": leftBehind,
		})
		if err != nil {
			return err
		}
	}
	for _, f := range failures {
		log.Printf("mycorange: failed tree=%s fungus=%s: %v", f.Tree, f.Fungus, f.Err)
	}
	log.Printf("Finished overlap analysis: %d table rows, %d failures.", len(table), len(failures))
	return nil
}

// RunShift runs the longitudinal band shift analysis over the
// configured fungal catalog and writes the band, summary, and quadrant
// tables to the configured output directory.
func RunShift(cfg *viper.Viper) error {
	log.Println("Reading input data...")
	store, err := loadStore(cfg)
	if err != nil {
		return err
	}
	outputDir, err := checkOutputDir(cfg.GetString("OutputDir"))
	if err != nil {
		return err
	}
	pool := mycorange.NewPool(cfg.GetInt("Workers"))
	bands := mycorange.Bands(cfg.GetFloat64("Bands.Lower"), cfg.GetFloat64("Bands.Upper"),
		cfg.GetFloat64("Bands.Width"))
	fungi := speciesList("Fungi", cfg, store.Fungi())

	log.Printf("Analyzing range shifts for %d fungal species in %d bands...",
		len(fungi), len(bands))
	analysis := mycorange.AnalyzeShifts(pool, store, fungi, bands)

	var records []mycorange.BandShiftRecord
	for _, f := range fungi {
		records = append(records, analysis.Records[f]...)
	}
	if err := writeCSV(filepath.Join(outputDir, "band_shifts.csv"), func(f *os.File) error {
		return mycorange.WriteBandShiftCSV(f, records)
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outputDir, "shift_summaries.csv"), func(f *os.File) error {
		return mycorange.WriteShiftSummaryCSV(f, analysis)
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outputDir, "quadrant_counts.csv"), func(f *os.File) error {
		return mycorange.WriteQuadrantCSV(f, analysis.Counts())
	}); err != nil {
		return err
	}
	for _, f := range analysis.Failed {
		log.Printf("mycorange: failed species %s: %v", f.Fungus, f.Err)
	}
	log.Printf("Finished shift analysis: %d species classified, %d undefined, %d failed.",
		len(analysis.Summaries), len(analysis.Undefined), len(analysis.Failed))
	return nil
}

func writeOverlapTable(fname string, table []mycorange.OverlapRecord) error {
	return writeCSV(fname, func(f *os.File) error {
		return mycorange.WriteOverlapCSV(f, table)
	})
}

func writeCSV(fname string, write func(*os.File) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("mycorange: problem creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

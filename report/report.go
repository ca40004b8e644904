//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rsviz/rsviz/misc"
	"github.com/rsviz/rsviz/ridge"
	"github.com/rsviz/rsviz/stats"
)

// How to separate fields and records in output (text) data files.
// Part of the contract with the plotting tool, do not change.
const (
	outputFieldSeparator  = " "
	outputRecordSeparator = "\n"
)

// Transform is one of the fixed value transformations a histogram can
// be built over. The set is closed, new variants mean new code, so a
// switch dispatch beats a table of function values.
type Transform int

const (
	TransformRaw     Transform = iota // the field value as is
	TransformPerUnit                  // value per work unit processed
	TransformPerWall                  // value per wall-time second
)

func (t Transform) String() string {
	switch t {
	case TransformPerUnit:
		return "perunit"
	case TransformPerWall:
		return "perwall"
	}
	return "raw"
}

// Apply transforms a field value in the context of its record. The
// second return is false when the record cannot support the transform
// (no work units, no wall time); such values are simply not binned.
func (t Transform) Apply(r *Record, value float64) (float64, bool) {
	switch t {
	case TransformRaw:
		return value, true
	case TransformPerUnit:
		if r.UnitsProcessed <= 0 {
			return 0, false
		}
		return value / float64(r.UnitsProcessed), true
	case TransformPerWall:
		wall, _, ok := r.NumericField(fieldWallTime)
		if !ok || wall == 0 {
			return 0, false
		}
		return value / wall, true
	}
	return 0, false
}

// WorkUnitsLookup resolves a task id to its total and processed work
// unit counts. A missing task resolves to (0, 0) with no error.
type WorkUnitsLookup interface {
	LookupWorkUnits(taskID string) (total, processed int64, err error)
}

// Generator runs one report generation pass. Each Generator owns its
// own units table and console state, so nothing leaks between runs.
type Generator struct {
	cfg   *Config
	units *UnitsTable
	db    WorkUnitsLookup // nil when work-unit lookups are disabled
	con   *console
}

func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		cfg:   cfg,
		units: NewUnitsTable(),
		con:   &console{verbose: cfg.Verbose},
	}
}

// SetWorkUnitsLookup attaches the optional work-units database.
func (g *Generator) SetWorkUnitsLookup(db WorkUnitsLookup) {
	g.db = db
}

// Run executes the whole pipeline: ingest, group by category, group
// each category by the split field, filter, render. Only I/O failure
// on the output side is fatal; bad input is skipped and counted.
func (g *Generator) Run() error {
	rd := newReader(g.cfg.CacheSize)

	var (
		records []*Record
		err     error
	)
	switch g.cfg.InputType {
	case InputList:
		records, err = rd.readListFile(g.cfg.InputFile)
	default:
		records, err = rd.readNDJSON(g.cfg.InputFile)
	}
	if err != nil {
		return err
	}
	if rd.skipped > 0 {
		log.Printf("Warning: skipped %d inputs due to errors.", rd.skipped)
	}

	if g.db != nil {
		g.attachWorkUnits(records)
	}

	byCategory, _ := GroupByField(records, fieldCategory)
	for _, category := range sortedGroupKeys(byCategory) {
		log.Printf("Subdividing category %q...", category)
		split, _ := GroupByField(byCategory[category], g.cfg.SplitField)
		FilterByThreshold(split, g.cfg.Threshold)
		if err := g.renderCategory(category, split); err != nil {
			return err
		}
	}

	g.con.render(os.Stdout)
	logRunStats()
	return nil
}

// attachWorkUnits fills in each record's work unit counts from the
// lookup database. Lookup errors and records without a task id leave
// the counts at zero.
func (g *Generator) attachWorkUnits(records []*Record) {
	missing, failed := 0, 0
	for _, r := range records {
		id, ok := r.TaskID()
		if !ok {
			missing++
			continue
		}
		total, processed, err := g.db.LookupWorkUnits(id)
		if err != nil {
			failed++
			continue
		}
		r.UnitsTotal, r.UnitsProcessed = total, processed
	}
	if missing > 0 || failed > 0 {
		log.Printf("Work-unit lookup: %d records without %s, %d lookups failed.", missing, fieldTaskID, failed)
	}
}

// transformsFor returns the transforms rendered for a field. Per-unit
// needs the work-units database, and wall time per wall time is
// always 1.
func (g *Generator) transformsFor(field string) []Transform {
	ts := []Transform{TransformRaw}
	if g.db != nil {
		ts = append(ts, TransformPerUnit)
	}
	if field != fieldWallTime {
		ts = append(ts, TransformPerWall)
	}
	return ts
}

// openCategoryFile creates (if needed) the category's output
// directory and opens the named file in it for writing. Failure here
// is fatal for the run: the output location is a precondition the
// caller controls.
func (g *Generator) openCategoryFile(category, filename string) (*os.File, error) {
	outdir := filepath.Join(g.cfg.OutputDir, misc.SanitizeName(category))
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output directory %q: %v", outdir, err)
	}
	pathname := filepath.Join(outdir, filename)
	f, err := os.Create(pathname)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %q for writing: %v", pathname, err)
	}
	return f, nil
}

// Per-field working state within one category. keyStat is reset and
// reused for every split key; pooled spans the whole category and
// fixes the histogram bucket width.
type fieldState struct {
	name    string
	pooled  *stats.Stats
	keyStat *stats.Stats
	pair    *stats.Stats2 // (units_processed, value)
	plots   map[Transform]*ridge.Plot
	summary *os.File
	pairsF  *os.File // lazily created scatter data
}

// renderCategory writes every artifact for one category: per-key raw
// value files, per-field aggregate summaries, histogram tables,
// boxplot and ridge gnuplot scripts, and regression fits. An empty
// category or category name renders nothing and is not an error,
// other categories must still be processed.
func (g *Generator) renderCategory(category string, grouping map[string][]*Record) error {
	if category == "" {
		log.Printf("No category given or empty string.")
		return nil
	}
	if len(grouping) == 0 {
		log.Printf("Category has no groups above threshold, nothing to render.")
		return nil
	}

	fields := make([]*fieldState, 0, len(g.cfg.OutputFields))
	closeAll := func() {
		for _, fs := range fields {
			if fs.summary != nil {
				fs.summary.Close()
			}
			if fs.pairsF != nil {
				fs.pairsF.Close()
			}
		}
	}
	defer closeAll()

	for _, name := range g.cfg.OutputFields {
		fs := &fieldState{
			name:    name,
			pooled:  stats.NewStats(),
			keyStat: stats.NewStats(),
			pair:    stats.NewStats2(),
			plots:   make(map[Transform]*ridge.Plot),
		}
		for _, tr := range g.transformsFor(name) {
			p := ridge.NewPlot(fmt.Sprintf("%s: %s (%s)", category, name, tr))
			p.Style = g.cfg.RidgeStyle.Style
			p.Order = g.cfg.SortOrder.Order
			p.Spacing = g.cfg.RidgeSpacing
			fs.plots[tr] = p
		}
		f, err := g.openCategoryFile(category, misc.SanitizeName(name)+".dat")
		if err != nil {
			return err
		}
		fs.summary = f
		fmt.Fprintf(f, "# key count mean stddev whisker_low q1 median q3 whisker_high%s", outputRecordSeparator)
		fields = append(fields, fs)
	}

	for _, key := range sortedGroupKeys(grouping) {
		members := grouping[key]

		rawF, err := g.openCategoryFile(category, misc.SanitizeName(key)+".dat")
		if err != nil {
			return err
		}
		fmt.Fprintf(rawF, "#")
		for _, fs := range fields {
			fmt.Fprintf(rawF, "%s%s", outputFieldSeparator, fs.name)
		}
		fmt.Fprint(rawF, outputRecordSeparator)

		for _, r := range members {
			for _, fs := range fields {
				value, unit, ok := r.NumericField(fs.name)
				if !ok {
					continue
				}
				g.units.Observe(fs.name, unit)
				fmt.Fprintf(rawF, "%s%g", outputFieldSeparator, value)

				fs.keyStat.Insert(value)
				fs.pooled.Insert(value)
				for tr, plot := range fs.plots {
					if tv, usable := tr.Apply(r, value); usable {
						plot.Insert(key, tv)
					}
				}
				if r.UnitsProcessed > 0 {
					fs.pair.Insert(float64(r.UnitsProcessed), value)
					if err := g.writePairRow(category, fs, r.UnitsProcessed, value); err != nil {
						rawF.Close()
						return err
					}
				}
			}
			fmt.Fprint(rawF, outputRecordSeparator)
		}
		rawF.Close()

		// One aggregate row per split key, in sorted key order, then
		// the accumulator is reset for the next key.
		for _, fs := range fields {
			st := fs.keyStat
			fmt.Fprintf(fs.summary, "%s", key)
			fmt.Fprintf(fs.summary, "%s%d", outputFieldSeparator, len(members))
			for _, v := range []float64{
				st.Mean(), st.Stddev(),
				st.WhiskerLow(), st.Q1(), st.Median(), st.Q3(), st.WhiskerHigh(),
			} {
				fmt.Fprintf(fs.summary, "%s%g", outputFieldSeparator, v)
			}
			fmt.Fprint(fs.summary, outputRecordSeparator)
			st.Reset()
		}
	}

	for _, fs := range fields {
		if err := g.renderField(category, fs); err != nil {
			return err
		}
	}
	return nil
}

// writePairRow appends one (units_processed, value) point to the
// field's scatter data file, creating it on first use.
func (g *Generator) writePairRow(category string, fs *fieldState, units int64, value float64) error {
	if fs.pairsF == nil {
		f, err := g.openCategoryFile(category, misc.SanitizeName(fs.name)+"_units.dat")
		if err != nil {
			return err
		}
		fs.pairsF = f
		fmt.Fprintf(f, "# units_processed %s%s", fs.name, outputRecordSeparator)
	}
	fmt.Fprintf(fs.pairsF, "%d%s%g%s", units, outputFieldSeparator, value, outputRecordSeparator)
	return nil
}

// renderField writes the per-field artifacts of a finished category:
// the pooled histogram table, the boxplot script, one ridge data +
// script pair per transform, and the work-units regression fit.
func (g *Generator) renderField(category string, fs *fieldState) error {
	sanitized := misc.SanitizeName(fs.name)

	if hist := fs.pooled.BuildHistogram(fs.pooled.IdealBucketSize(), g.cfg.OutlierPolicy.OutlierPolicy); hist != nil {
		hf, err := g.openCategoryFile(category, sanitized+".hist")
		if err != nil {
			return err
		}
		fmt.Fprintf(hf, "# bucket_start count%s", outputRecordSeparator)
		for _, start := range hist.Buckets() {
			fmt.Fprintf(hf, "%g%s%d%s", start, outputFieldSeparator, hist.Count(start), outputRecordSeparator)
		}
		hf.Close()
		g.con.addPreview(fmt.Sprintf("%s: %s", category, fs.name), hist)
	}

	bf, err := g.openCategoryFile(category, sanitized+"_box.gp")
	if err != nil {
		return err
	}
	g.writeBoxplotScript(bf, category, fs.name, sanitized+".dat")
	bf.Close()

	for tr, plot := range fs.plots {
		if plot.Len() == 0 {
			continue
		}
		dataName := fmt.Sprintf("%s_%s.dat", sanitized, tr)
		df, err := g.openCategoryFile(category, dataName)
		if err != nil {
			return err
		}
		if err := plot.WriteDataFile(df); err != nil {
			df.Close()
			return err
		}
		df.Close()

		sf, err := g.openCategoryFile(category, fmt.Sprintf("%s_%s.gp", sanitized, tr))
		if err != nil {
			return err
		}
		if err := plot.WriteGnuplot(sf, dataName); err != nil {
			sf.Close()
			return err
		}
		sf.Close()
	}

	if fs.pair.Count() > 0 {
		ff, err := g.openCategoryFile(category, sanitized+"_fit.gp")
		if err != nil {
			return err
		}
		g.writeFitScript(ff, category, fs, sanitized+"_units.dat")
		ff.Close()
	}

	g.con.addRow(category, fs.name, fs.pooled.Count(), fs.pooled.Mean(), fs.pooled.Stddev())
	return nil
}

func (g *Generator) ylabel(field string) string {
	if unit := g.units.Unit(field); unit != "" {
		return fmt.Sprintf("%s (%s)", field, unit)
	}
	return field
}

// writeBoxplotScript emits a gnuplot boxplot over the field's
// aggregate summary file. Column layout there: 1 key, 2 count,
// 3 mean, 4 stddev, 5 whisker_low, 6 q1, 7 median, 8 q3,
// 9 whisker_high. Degenerate groups carry NaN, which the script
// treats as missing.
func (g *Generator) writeBoxplotScript(f *os.File, category, field, datName string) {
	fmt.Fprintf(f, "set terminal pngcairo enhanced size 1200,800\n")
	fmt.Fprintf(f, "set datafile missing \"NaN\"\n")
	fmt.Fprintf(f, "set title %q\n", category+": "+field)
	fmt.Fprintf(f, "set ylabel %q\n", g.ylabel(field))
	fmt.Fprintf(f, "set boxwidth 0.5\n")
	fmt.Fprintf(f, "set style fill empty\n")
	fmt.Fprintf(f, "set xtics rotate by -45\n")
	fmt.Fprintf(f, "set key off\n")
	fmt.Fprintf(f, "plot %q using 0:6:5:9:8:xticlabels(1) with candlesticks whiskerbars, \\\n", datName)
	fmt.Fprintf(f, "     '' using 0:7:7:7:7 with candlesticks lt -1\n")
}

// writeFitScript emits a scatter plot of value against work units
// processed with the fitted regression line, or a horizontal mean
// line when the fit degenerated.
func (g *Generator) writeFitScript(f *os.File, category string, fs *fieldState, unitsDat string) {
	fmt.Fprintf(f, "set terminal pngcairo enhanced size 1200,800\n")
	fmt.Fprintf(f, "set title %q\n", fmt.Sprintf("%s: %s vs work units", category, fs.name))
	fmt.Fprintf(f, "set xlabel \"work units processed\"\n")
	fmt.Fprintf(f, "set ylabel %q\n", g.ylabel(fs.name))
	if slope, intercept, ok := fs.pair.LinearRegression(); ok {
		fmt.Fprintf(f, "f(x) = %g*x + %g\n", slope, intercept)
		fmt.Fprintf(f, "# correlation %g\n", fs.pair.Correlation())
	} else {
		// No usable fit, fall back to the mean alone.
		fmt.Fprintf(f, "f(x) = %g\n", fs.pair.MeanY())
	}
	fmt.Fprintf(f, "plot %q using 1:2 with points, f(x) with lines\n", unitsDat)
}

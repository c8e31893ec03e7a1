package group

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/table"
)

// resolvedAgg pins down one aggregation's output name and type
// against the source schema.
type resolvedAgg struct {
	agg     tabular.Aggregation
	as      string
	outType tabular.ColumnType
}

func (gi *groupIndex) resolveAggs(aggs []tabular.Aggregation) ([]resolvedAgg, error) {
	sch := gi.source.Schema()
	keySet := make(map[string]bool, len(gi.keyCols))
	for _, name := range gi.keyCols {
		keySet[name] = true
	}
	seen := make(map[string]bool)
	out := make([]resolvedAgg, 0, len(aggs))
	for _, agg := range aggs {
		col, err := sch.GetColumn(agg.Column)
		if err != nil {
			return nil, err
		}
		as := agg.As
		if as == "" {
			as = agg.Column
		}
		if keySet[as] || seen[as] {
			return nil, errors.DuplicateNameError{Name: as}
		}
		seen[as] = true
		outType, err := agg.Reduce.OutputType(col.Type())
		if err != nil {
			return nil, fmt.Errorf("aggregating column %s: %w", agg.Column, err)
		}
		out = append(out, resolvedAgg{agg: agg, as: as, outType: outType})
	}
	return out, nil
}

// gatherColumn collects one column's values for one group, missing
// entries surfacing as nil
func (gi *groupIndex) gatherColumn(colName string, rows []int) ([]interface{}, error) {
	out := make([]interface{}, len(rows))
	for i, row := range rows {
		v, err := gi.source.Get(row, colName)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// reduceAll computes every aggregation for every group, optionally
// in parallel. results[a][g] holds aggregation a's value for group g.
func (gi *groupIndex) reduceAll(resolved []resolvedAgg) ([][]interface{}, error) {
	results := make([][]interface{}, len(resolved))
	for i := range results {
		results[i] = make([]interface{}, len(gi.groups))
	}
	reduceRange := func(lo, hi int) error {
		for g := lo; g < hi; g++ {
			for a, ra := range resolved {
				values, err := gi.gatherColumn(ra.agg.Column, gi.groups[g].rows)
				if err != nil {
					return err
				}
				v, err := ra.agg.Reduce.Reduce(values)
				if err != nil {
					return fmt.Errorf("aggregating column %s in group %s: %w", ra.agg.Column, gi.keyName(g), err)
				}
				results[a][g] = v
			}
		}
		return nil
	}
	workers := gi.opts.Parallelism
	if workers <= 1 || len(gi.groups) < 2 {
		if err := reduceRange(0, len(gi.groups)); err != nil {
			return nil, err
		}
		return results, nil
	}
	if workers > len(gi.groups) {
		workers = len(gi.groups)
	}
	var eg errgroup.Group
	chunk := (len(gi.groups) + workers - 1) / workers
	for lo := 0; lo < len(gi.groups); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(gi.groups) {
			hi = len(gi.groups)
		}
		eg.Go(func() error {
			return reduceRange(lo, hi)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// keySpecs builds the key columns of a combined result. lengths[g]
// gives the number of output rows group g contributes.
func (gi *groupIndex) keySpecs(lengths []int) ([]table.ColumnSpec, error) {
	sch := gi.source.Schema()
	specs := make([]table.ColumnSpec, len(gi.keyCols))
	total := 0
	for _, n := range lengths {
		total += n
	}
	for i, name := range gi.keyCols {
		col, err := sch.GetColumn(name)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, 0, total)
		nullable := col.Nullable()
		for g, entry := range gi.groups {
			for n := 0; n < lengths[g]; n++ {
				values = append(values, entry.key[i])
				if entry.key[i] == nil {
					nullable = true
				}
			}
		}
		specs[i] = table.ColumnSpec{Name: name, Type: col.Type(), Nullable: nullable, Values: values}
	}
	return specs, nil
}

// Combine emits exactly one row per group, in group order: the key
// columns followed by each aggregation's reduced value.
func (gi *groupIndex) Combine(aggs ...tabular.Aggregation) (tabular.Table, error) {
	if err := gi.checkFresh(); err != nil {
		return nil, err
	}
	resolved, err := gi.resolveAggs(aggs)
	if err != nil {
		return nil, err
	}
	results, err := gi.reduceAll(resolved)
	if err != nil {
		return nil, err
	}
	lengths := make([]int, len(gi.groups))
	for g := range lengths {
		lengths[g] = 1
	}
	specs, err := gi.keySpecs(lengths)
	if err != nil {
		return nil, err
	}
	for a, ra := range resolved {
		nullable := false
		for _, v := range results[a] {
			if v == nil {
				nullable = true
			}
		}
		specs = append(specs, table.ColumnSpec{Name: ra.as, Type: ra.outType, Nullable: nullable, Values: results[a]})
	}
	return table.FromSpecs(specs)
}

// Transform emits exactly one output row per input row, in the
// source's original order: all source columns, with each
// aggregation's reduced value broadcast within its group. An
// aggregation whose output name matches a source column replaces
// that column's values.
func (gi *groupIndex) Transform(aggs ...tabular.Aggregation) (tabular.Table, error) {
	if err := gi.checkFresh(); err != nil {
		return nil, err
	}
	resolved, err := gi.resolveAggs(aggs)
	if err != nil {
		return nil, err
	}
	results, err := gi.reduceAll(resolved)
	if err != nil {
		return nil, err
	}
	numRows := gi.source.NumRows()
	broadcast := make([][]interface{}, len(resolved))
	for a := range resolved {
		broadcast[a] = make([]interface{}, numRows)
		for g, entry := range gi.groups {
			for _, row := range entry.rows {
				broadcast[a][row] = results[a][g]
			}
		}
	}
	return gi.assembleTransformed(resolved, broadcast)
}

// assembleTransformed builds a transform result: source columns
// first, replaced or extended by the broadcast aggregation columns.
// Rows the grouping skipped (missing keys under SkipMissing) carry
// missing aggregation values.
func (gi *groupIndex) assembleTransformed(resolved []resolvedAgg, broadcast [][]interface{}) (tabular.Table, error) {
	sch := gi.source.Schema()
	numRows := gi.source.NumRows()
	replaced := make(map[string]int, len(resolved))
	for a, ra := range resolved {
		replaced[ra.as] = a
	}
	var specs []table.ColumnSpec
	err := sch.ForEachColumn(func(name string, col tabular.Column) error {
		if a, ok := replaced[name]; ok {
			specs = append(specs, gi.broadcastSpec(resolved[a], broadcast[a], numRows))
			return nil
		}
		values := make([]interface{}, numRows)
		for row := 0; row < numRows; row++ {
			v, err := gi.source.Get(row, name)
			if err != nil {
				return err
			}
			values[row] = v
		}
		specs = append(specs, table.ColumnSpec{Name: name, Type: col.Type(), Nullable: col.Nullable(), Values: values})
		return nil
	})
	if err != nil {
		return nil, err
	}
	for a, ra := range resolved {
		if sch.HasColumn(ra.as) {
			continue
		}
		specs = append(specs, gi.broadcastSpec(ra, broadcast[a], numRows))
	}
	return table.FromSpecs(specs)
}

func (gi *groupIndex) broadcastSpec(ra resolvedAgg, values []interface{}, numRows int) table.ColumnSpec {
	nullable := false
	for _, v := range values {
		if v == nil {
			nullable = true
		}
	}
	return table.ColumnSpec{Name: ra.as, Type: ra.outType, Nullable: nullable, Values: values}
}

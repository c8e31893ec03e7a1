package group

import (
	"fmt"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/table"
)

// applyResult accumulates the columns produced by a GroupOperation
// across groups. Names are fixed by the first non-empty result and
// types are promoted as further groups contribute values.
type applyResult struct {
	names    []string
	types    []tabular.ColumnType
	nullable []bool
	values   [][]interface{}
}

func (gi *groupIndex) newApplyResult(res tabular.Table) (*applyResult, error) {
	keySet := make(map[string]bool, len(gi.keyCols))
	for _, name := range gi.keyCols {
		keySet[name] = true
	}
	sch := res.Schema()
	ar := &applyResult{
		names:    sch.ColumnNames(),
		types:    make([]tabular.ColumnType, sch.NumColumns()),
		nullable: make([]bool, sch.NumColumns()),
		values:   make([][]interface{}, sch.NumColumns()),
	}
	for i, name := range ar.names {
		if keySet[name] {
			return nil, errors.DuplicateNameError{Name: name}
		}
		col, err := sch.GetColumn(name)
		if err != nil {
			return nil, err
		}
		ar.types[i] = col.Type()
		ar.nullable[i] = col.Nullable()
	}
	return ar, nil
}

// gather appends one group's result rows, checking that the result
// shape matches the first group's and promoting column types.
func (ar *applyResult) gather(res tabular.Table, group string) error {
	sch := res.Schema()
	names := sch.ColumnNames()
	if len(names) != len(ar.names) {
		return errors.ValidationError{Subject: "group result " + group,
			Reason: fmt.Sprintf("produced %d columns, expected %d", len(names), len(ar.names))}
	}
	for i, name := range names {
		if name != ar.names[i] {
			return errors.ValidationError{Subject: "group result " + group,
				Reason: fmt.Sprintf("produced column %s, expected %s", name, ar.names[i])}
		}
		col, err := sch.GetColumn(name)
		if err != nil {
			return err
		}
		ar.types[i] = tabular.Promote(ar.types[i], col.Type())
		if col.Nullable() {
			ar.nullable[i] = true
		}
		for row := 0; row < res.NumRows(); row++ {
			v, err := res.Get(row, name)
			if err != nil {
				return err
			}
			if v == nil {
				ar.nullable[i] = true
			}
			ar.values[i] = append(ar.values[i], v)
		}
	}
	return nil
}

func (ar *applyResult) specs() []table.ColumnSpec {
	specs := make([]table.ColumnSpec, len(ar.names))
	for i, name := range ar.names {
		specs[i] = table.ColumnSpec{Name: name, Type: ar.types[i], Nullable: ar.nullable[i], Values: ar.values[i]}
	}
	return specs
}

// subtable materializes one group's rows as an independent Table
func (gi *groupIndex) subtable(group int) (tabular.Table, error) {
	return gi.source.SelectRows(gi.groups[group].rows, tabular.Copy)
}

// CombineWith runs fn once per group over an independent copy of
// that group's rows and concatenates the results in group order,
// broadcasting the key columns across each group's output rows. A
// nil or zero-row result drops the group; when every group drops,
// the result is a zero-row table of the key columns. Every non-empty
// result must produce the same column names as the first; column
// types are promoted across groups.
func (gi *groupIndex) CombineWith(fn tabular.GroupOperation) (tabular.Table, error) {
	if err := gi.checkFresh(); err != nil {
		return nil, err
	}
	var ar *applyResult
	lengths := make([]int, len(gi.groups))
	for g := range gi.groups {
		sub, err := gi.subtable(g)
		if err != nil {
			return nil, err
		}
		res, err := fn(sub)
		if err != nil {
			return nil, fmt.Errorf("applying to group %s: %w", gi.keyName(g), err)
		}
		if res == nil || res.NumRows() == 0 {
			continue
		}
		if ar == nil {
			if ar, err = gi.newApplyResult(res); err != nil {
				return nil, err
			}
		}
		if err := ar.gather(res, gi.keyName(g)); err != nil {
			return nil, err
		}
		lengths[g] = res.NumRows()
	}
	specs, err := gi.keySpecs(lengths)
	if err != nil {
		return nil, err
	}
	if ar == nil {
		// every group dropped; the result is the empty table of keys
		return table.FromSpecs(specs)
	}
	return table.FromSpecs(append(specs, ar.specs()...))
}

// TransformWith runs fn once per group over an independent copy of
// that group's rows and maps the results back onto the source rows,
// emitting one output row per source row in the source's original
// order. A single-row result broadcasts across the group; a result
// with exactly one row per group member maps positionally. Result
// columns replace same-named source columns and are appended
// otherwise.
func (gi *groupIndex) TransformWith(fn tabular.GroupOperation) (tabular.Table, error) {
	if err := gi.checkFresh(); err != nil {
		return nil, err
	}
	numRows := gi.source.NumRows()
	var names []string
	var types []tabular.ColumnType
	var nullable []bool
	var broadcast [][]interface{}
	for g, entry := range gi.groups {
		sub, err := gi.subtable(g)
		if err != nil {
			return nil, err
		}
		res, err := fn(sub)
		if err != nil {
			return nil, fmt.Errorf("applying to group %s: %w", gi.keyName(g), err)
		}
		if res == nil || res.NumRows() == 0 {
			return nil, errors.EmptyGroupResultError{Group: gi.keyName(g)}
		}
		if res.NumRows() != 1 && res.NumRows() != len(entry.rows) {
			return nil, errors.LengthMismatchError{Name: "group " + gi.keyName(g),
				Expected: len(entry.rows), Actual: res.NumRows()}
		}
		if names == nil {
			first, err := gi.newApplyResult(res)
			if err != nil {
				return nil, err
			}
			names, types, nullable = first.names, first.types, first.nullable
			broadcast = make([][]interface{}, len(names))
			for i := range broadcast {
				broadcast[i] = make([]interface{}, numRows)
			}
		}
		sch := res.Schema()
		resNames := sch.ColumnNames()
		if len(resNames) != len(names) {
			return nil, errors.ValidationError{Subject: "group result " + gi.keyName(g),
				Reason: fmt.Sprintf("produced %d columns, expected %d", len(resNames), len(names))}
		}
		for i, name := range resNames {
			if name != names[i] {
				return nil, errors.ValidationError{Subject: "group result " + gi.keyName(g),
					Reason: fmt.Sprintf("produced column %s, expected %s", name, names[i])}
			}
			col, err := sch.GetColumn(name)
			if err != nil {
				return nil, err
			}
			types[i] = tabular.Promote(types[i], col.Type())
			if col.Nullable() {
				nullable[i] = true
			}
			for pos, row := range entry.rows {
				resRow := 0
				if res.NumRows() > 1 {
					resRow = pos
				}
				v, err := res.Get(resRow, name)
				if err != nil {
					return nil, err
				}
				if v == nil {
					nullable[i] = true
				}
				broadcast[i][row] = v
			}
		}
	}
	if names == nil {
		return nil, errors.EmptyGroupResultError{Group: "all"}
	}
	covered := 0
	for _, entry := range gi.groups {
		covered += len(entry.rows)
	}
	if covered < numRows {
		// rows skipped during grouping carry missing result values
		for i := range nullable {
			nullable[i] = true
		}
	}
	return gi.assembleApplied(names, types, nullable, broadcast)
}

// assembleApplied builds a transform result from raw broadcast
// columns: source columns first, replaced or extended by the result
// columns. Rows the grouping skipped carry missing result values.
func (gi *groupIndex) assembleApplied(names []string, types []tabular.ColumnType, nullable []bool, broadcast [][]interface{}) (tabular.Table, error) {
	sch := gi.source.Schema()
	numRows := gi.source.NumRows()
	replaced := make(map[string]int, len(names))
	for i, name := range names {
		replaced[name] = i
	}
	var specs []table.ColumnSpec
	err := sch.ForEachColumn(func(name string, col tabular.Column) error {
		if i, ok := replaced[name]; ok {
			specs = append(specs, table.ColumnSpec{Name: name, Type: types[i], Nullable: nullable[i], Values: broadcast[i]})
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
	for i, name := range names {
		if sch.HasColumn(name) {
			continue
		}
		specs = append(specs, table.ColumnSpec{Name: name, Type: types[i], Nullable: nullable[i], Values: broadcast[i]})
	}
	return table.FromSpecs(specs)
}

package table

import (
	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// resolveSelection validates row indices and column names, mapping
// names to column indices. nil rows means all rows; nil colNames
// means all columns.
func (t *tableImpl) resolveSelection(rows []int, colNames []string) ([]int, []int, error) {
	if rows == nil {
		rows = make([]int, t.numRows)
		for i := range rows {
			rows[i] = i
		}
	} else {
		for _, row := range rows {
			if row < 0 || row >= t.numRows {
				return nil, nil, errors.IndexOutOfRangeError{What: "Row", Index: row, Length: t.numRows}
			}
		}
	}
	if colNames == nil {
		colNames = t.schema.ColumnNames()
	}
	colIdx := make([]int, len(colNames))
	for i, name := range colNames {
		col, err := t.schema.GetColumn(name)
		if err != nil {
			return nil, nil, err
		}
		colIdx[i] = col.Index()
	}
	return rows, colIdx, nil
}

// projectSchema builds the schema of a selection, reindexing the
// chosen columns in selection order.
func (t *tableImpl) projectSchema(colIdx []int) (tabular.Schema, error) {
	names := t.schema.ColumnNames()
	out := t.schema.Clone()
	keep := make(map[int]bool, len(colIdx))
	for _, idx := range colIdx {
		keep[idx] = true
	}
	for i, name := range names {
		if !keep[i] {
			out.RemoveColumn(name)
		}
	}
	order := make([]string, len(colIdx))
	for i, idx := range colIdx {
		order[i] = names[idx]
	}
	if err := out.ReorderColumns(order); err != nil {
		return nil, err
	}
	return out, nil
}

// Select projects rows and columns with independent ownership
// modes. Share×Share yields a View over this Table's storage.
// A Copy row mode always yields an owning Table, regardless of the
// column mode, since materializing a row subset requires fresh
// storage. Copy×Share copies the selected columns in full, then
// views the row subset over the copy: independent of this Table,
// but windowed onto shared storage of its own.
func (t *tableImpl) Select(rows []int, colNames []string, rowMode tabular.SelectionMode, colMode tabular.SelectionMode) (tabular.Table, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkValid(); err != nil {
		return nil, err
	}
	rowIdx, colIdx, err := t.resolveSelection(rows, colNames)
	if err != nil {
		return nil, err
	}
	sch, err := t.projectSchema(colIdx)
	if err != nil {
		return nil, err
	}
	if colMode == tabular.Share && rowMode == tabular.Share {
		return createViewImpl(t, sch, rowIdx, colIdx), nil
	}
	if rowMode == tabular.Copy {
		cols := make([]*columnData, len(colIdx))
		for i, idx := range colIdx {
			cols[i] = t.cols[idx].project(rowIdx)
		}
		return createTableImpl(sch, cols, len(rowIdx)), nil
	}
	// colMode == Copy, rowMode == Share: copy columns in full, then
	// view the row subset over the copy
	cols := make([]*columnData, len(colIdx))
	for i, idx := range colIdx {
		cols[i] = t.cols[idx].clone()
	}
	owned := createTableImpl(sch, cols, t.numRows)
	identity := make([]int, len(cols))
	for i := range identity {
		identity[i] = i
	}
	return createViewImpl(owned, sch.Clone(), rowIdx, identity), nil
}

// SelectColumns projects a subset of columns over all rows. In
// Share mode the result aliases this Table's backing storage, so
// mutating through either is visible through the other.
func (t *tableImpl) SelectColumns(colNames []string, mode tabular.SelectionMode) (tabular.Table, error) {
	return t.Select(nil, colNames, mode, mode)
}

// SelectRows projects a subset of rows over all columns. Copy mode
// is the default contract for row slicing; Share mode yields a View.
func (t *tableImpl) SelectRows(rows []int, mode tabular.SelectionMode) (tabular.Table, error) {
	return t.Select(rows, nil, mode, mode)
}

// FilterRows retains the rows for which fn returns true. The
// predicate receives read-only row handles. Share mode yields a
// View of the retained rows; Copy mode materializes them.
func (t *tableImpl) FilterRows(fn tabular.FilterOperation, mode tabular.SelectionMode) (tabular.Table, error) {
	if err := t.CheckValid(); err != nil {
		return nil, err
	}
	numRows := t.NumRows()
	keep := make([]int, 0, numRows)
	for i := 0; i < numRows; i++ {
		ok, err := fn(&rowImpl{t: t, row: i, readOnly: true})
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return t.SelectRows(keep, mode)
}

package table

import (
	"fmt"
	"strings"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// viewImpl is a non-owning projection of a parent Table: explicit
// row and column index lists plus the parent generation captured at
// creation. Every access revalidates the generation, so structural
// changes to the parent surface as StaleViewError rather than
// silently corrupt reads.
type viewImpl struct {
	id         string
	parent     *tableImpl
	schema     tabular.Schema // projected schema, reindexed in view order
	rowIdx     []int
	colIdx     []int
	generation uint64
}

func createViewImpl(parent *tableImpl, schema tabular.Schema, rowIdx []int, colIdx []int) *viewImpl {
	return &viewImpl{
		id:         newTableID(),
		parent:     parent,
		schema:     schema,
		rowIdx:     rowIdx,
		colIdx:     colIdx,
		generation: parent.generation,
	}
}

// checkFresh fails if the parent changed structurally since this
// view was created. Callers must hold the parent's lock.
func (v *viewImpl) checkFresh() error {
	if v.parent.generation != v.generation {
		return errors.StaleViewError{TableID: v.parent.id, Expected: v.generation, Actual: v.parent.generation}
	}
	return nil
}

// ID retrieves the unique ID of this View
func (v *viewImpl) ID() string {
	return v.id
}

// Schema returns a read-only copy of the projected schema
func (v *viewImpl) Schema() tabular.Schema {
	return v.schema.Clone()
}

// NumRows retrieves the number of rows in this View
func (v *viewImpl) NumRows() int {
	return len(v.rowIdx)
}

// NumColumns retrieves the number of columns in this View
func (v *viewImpl) NumColumns() int {
	return len(v.colIdx)
}

// Generation retrieves the generation this View captured at creation
func (v *viewImpl) Generation() uint64 {
	return v.generation
}

// IsView returns true
func (v *viewImpl) IsView() bool {
	return true
}

// Parent returns the Table this View projects
func (v *viewImpl) Parent() tabular.Table {
	return v.parent
}

// RowIndexes returns the parent row index for each view row
func (v *viewImpl) RowIndexes() []int {
	out := make([]int, len(v.rowIdx))
	copy(out, v.rowIdx)
	return out
}

// ColumnIndexes returns the parent column index for each view column
func (v *viewImpl) ColumnIndexes() []int {
	out := make([]int, len(v.colIdx))
	copy(out, v.colIdx)
	return out
}

// CheckValid revalidates freshness and the parent's structure
func (v *viewImpl) CheckValid() error {
	v.parent.lock.RLock()
	defer v.parent.lock.RUnlock()
	if err := v.checkFresh(); err != nil {
		return err
	}
	return v.parent.checkValid()
}

// mapCell translates a view (row, colName) onto parent coordinates.
// Callers must hold the parent's lock.
func (v *viewImpl) mapCell(row int, colName string) (int, int, error) {
	if err := v.checkFresh(); err != nil {
		return 0, 0, err
	}
	col, err := v.schema.GetColumn(colName)
	if err != nil {
		return 0, 0, err
	}
	if row < 0 || row >= len(v.rowIdx) {
		return 0, 0, errors.IndexOutOfRangeError{What: "Row", Index: row, Length: len(v.rowIdx)}
	}
	return v.rowIdx[row], v.colIdx[col.Index()], nil
}

// Get returns a cell value by view row and column name, forwarded
// to the parent's backing storage
func (v *viewImpl) Get(row int, colName string) (interface{}, error) {
	v.parent.lock.RLock()
	defer v.parent.lock.RUnlock()
	prow, pcol, err := v.mapCell(row, colName)
	if err != nil {
		return nil, err
	}
	data := v.parent.cols[pcol]
	if prow >= len(data.values) {
		return nil, errors.CorruptedTableError{Name: colName, Expected: v.parent.numRows, Actual: len(data.values)}
	}
	if data.nulls.Contains(prow) {
		return nil, nil
	}
	return data.values[prow], nil
}

// GetAt returns a cell value by view row and column index
func (v *viewImpl) GetAt(row int, col int) (interface{}, error) {
	colName, _, err := v.schema.GetColumnAt(col)
	if err != nil {
		return nil, err
	}
	return v.Get(row, colName)
}

// Set modifies a cell value through this View, visible in the parent
func (v *viewImpl) Set(row int, colName string, value interface{}) error {
	v.parent.lock.Lock()
	defer v.parent.lock.Unlock()
	prow, pcol, err := v.mapCell(row, colName)
	if err != nil {
		return err
	}
	col, err := v.schema.GetColumn(colName)
	if err != nil {
		return err
	}
	data := v.parent.cols[pcol]
	if prow >= len(data.values) {
		return errors.CorruptedTableError{Name: colName, Expected: v.parent.numRows, Actual: len(data.values)}
	}
	if value == nil {
		if !col.Nullable() {
			return errors.TypeMismatchError{Name: colName, Expected: tabular.TypeToString(col.Type()), Actual: "missing"}
		}
		data.values[prow] = nil
		data.nulls.Add(prow)
		return nil
	}
	coerced, err := coerceValue(colName, col.Type(), value)
	if err != nil {
		return err
	}
	data.values[prow] = coerced
	data.nulls.Del(prow)
	return nil
}

// SetAt modifies a cell value by view row and column index
func (v *viewImpl) SetAt(row int, col int, value interface{}) error {
	colName, _, err := v.schema.GetColumnAt(col)
	if err != nil {
		return err
	}
	return v.Set(row, colName, value)
}

// IsNil returns true iff the given cell is missing
func (v *viewImpl) IsNil(row int, colName string) (bool, error) {
	v.parent.lock.RLock()
	defer v.parent.lock.RUnlock()
	prow, pcol, err := v.mapCell(row, colName)
	if err != nil {
		return false, err
	}
	return v.parent.cols[pcol].nulls.Contains(prow), nil
}

// SetNil marks the given cell missing
func (v *viewImpl) SetNil(row int, colName string) error {
	return v.Set(row, colName, nil)
}

// GetRow retrieves a writable handle onto a specific view row
func (v *viewImpl) GetRow(rowNum int) tabular.Row {
	return &rowImpl{t: v, row: rowNum}
}

// ForEachRow iterates over read-only handles of every view row
func (v *viewImpl) ForEachRow(fn tabular.MapOperation) error {
	if err := v.CheckValid(); err != nil {
		return err
	}
	for i := range v.rowIdx {
		if err := fn(&rowImpl{t: v, row: i, readOnly: true}); err != nil {
			return err
		}
	}
	return nil
}

// Select projects rows and columns of this View. Share×Share
// composes index lists into a new View over the same parent; any
// Copy materializes from the parent's storage.
func (v *viewImpl) Select(rows []int, colNames []string, rowMode tabular.SelectionMode, colMode tabular.SelectionMode) (tabular.Table, error) {
	v.parent.lock.RLock()
	defer v.parent.lock.RUnlock()
	if err := v.checkFresh(); err != nil {
		return nil, err
	}
	if err := v.parent.checkValid(); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]int, len(v.rowIdx))
		for i := range rows {
			rows[i] = i
		}
	}
	if colNames == nil {
		colNames = v.schema.ColumnNames()
	}
	// compose view indices into parent indices
	prows := make([]int, len(rows))
	for i, row := range rows {
		if row < 0 || row >= len(v.rowIdx) {
			return nil, errors.IndexOutOfRangeError{What: "Row", Index: row, Length: len(v.rowIdx)}
		}
		prows[i] = v.rowIdx[row]
	}
	pcols := make([]int, len(colNames))
	sch := v.schema.Clone()
	keep := make(map[string]bool, len(colNames))
	for i, name := range colNames {
		col, err := v.schema.GetColumn(name)
		if err != nil {
			return nil, err
		}
		pcols[i] = v.colIdx[col.Index()]
		keep[name] = true
	}
	for _, name := range v.schema.ColumnNames() {
		if !keep[name] {
			sch.RemoveColumn(name)
		}
	}
	if err := sch.ReorderColumns(colNames); err != nil {
		return nil, err
	}
	if colMode == tabular.Share && rowMode == tabular.Share {
		return createViewImpl(v.parent, sch, prows, pcols), nil
	}
	cols := make([]*columnData, len(pcols))
	for i, idx := range pcols {
		cols[i] = v.parent.cols[idx].project(prows)
	}
	return createTableImpl(sch, cols, len(prows)), nil
}

// SelectColumns projects a subset of columns over all view rows
func (v *viewImpl) SelectColumns(colNames []string, mode tabular.SelectionMode) (tabular.Table, error) {
	return v.Select(nil, colNames, mode, mode)
}

// SelectRows projects a subset of view rows over all columns
func (v *viewImpl) SelectRows(rows []int, mode tabular.SelectionMode) (tabular.Table, error) {
	return v.Select(rows, nil, mode, mode)
}

// FilterRows retains the view rows for which fn returns true
func (v *viewImpl) FilterRows(fn tabular.FilterOperation, mode tabular.SelectionMode) (tabular.Table, error) {
	if err := v.CheckValid(); err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(v.rowIdx))
	for i := range v.rowIdx {
		ok, err := fn(&rowImpl{t: v, row: i, readOnly: true})
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return v.SelectRows(keep, mode)
}

// Copy materializes this View into an independently-owned Table
func (v *viewImpl) Copy() tabular.Table {
	copied, err := v.Select(nil, nil, tabular.Copy, tabular.Copy)
	if err != nil {
		// a stale or corrupted view cannot be materialized
		return CreateTable(v.schema)
	}
	return copied
}

// Rename is not supported on Views
func (v *viewImpl) Rename(mapping map[string]string, makeUnique bool) error {
	return errors.UnsupportedOptionError{Option: "Rename", Reason: "views cannot be structurally modified"}
}

// ReorderColumns is not supported on Views
func (v *viewImpl) ReorderColumns(newOrder []string) error {
	return errors.UnsupportedOptionError{Option: "ReorderColumns", Reason: "views cannot be structurally modified"}
}

// InsertColumn is not supported on Views
func (v *viewImpl) InsertColumn(pos int, colName string, columnType tabular.ColumnType, nullable bool, values interface{}) error {
	return errors.UnsupportedOptionError{Option: "InsertColumn", Reason: "views cannot be structurally modified"}
}

// DropColumn is not supported on Views
func (v *viewImpl) DropColumn(colName string) error {
	return errors.UnsupportedOptionError{Option: "DropColumn", Reason: "views cannot be structurally modified"}
}

// AppendRow is not supported on Views
func (v *viewImpl) AppendRow(values map[string]interface{}, policy tabular.AppendPolicy) error {
	return errors.UnsupportedOptionError{Option: "AppendRow", Reason: "views cannot be structurally modified"}
}

// DeleteRows is not supported on Views
func (v *viewImpl) DeleteRows(rows []int) error {
	return errors.UnsupportedOptionError{Option: "DeleteRows", Reason: "views cannot be structurally modified"}
}

// ToString returns a string representation of this View
func (v *viewImpl) ToString() string {
	if err := v.CheckValid(); err != nil {
		return fmt.Sprintf("View[%s](invalid: %v)", v.id, err)
	}
	var res strings.Builder
	names := v.schema.ColumnNames()
	types := v.schema.ColumnTypes()
	fmt.Fprintf(&res, "View[%dx%d]{%s}\n", len(v.rowIdx), len(names), strings.Join(names, ", "))
	for row := range v.rowIdx {
		fmt.Fprint(&res, "{")
		for i, name := range names {
			val, _ := v.Get(row, name)
			if val == nil {
				fmt.Fprintf(&res, "\"%s\": nil,", name)
			} else {
				fmt.Fprintf(&res, "\"%s\": %s,", name, types[i].ToString(val))
			}
		}
		fmt.Fprint(&res, "}\n")
	}
	return res.String()
}

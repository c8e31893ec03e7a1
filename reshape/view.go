package reshape

import (
	"fmt"
	"strings"

	uuid "github.com/gofrs/uuid"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/logging"
	"github.com/go-tabular/tabular/table"
)

// stackView is a lazy long-layout view over a wide source Table.
// Output row k maps onto source row k%N and value column k/N, so no
// storage is allocated. Cell writes pass through to the source;
// structural changes to the source invalidate the view.
type stackView struct {
	id         string
	plan       *stackPlan
	generation uint64
	numSrcRows int
}

func createStackView(plan *stackPlan) *stackView {
	id, err := uuid.NewV4()
	if err != nil {
		logging.Fatal(fmt.Sprintf("failed to generate UUID for stacked view: %v", err))
	}
	return &stackView{
		id:         id.String(),
		plan:       plan,
		generation: plan.source.Generation(),
		numSrcRows: plan.source.NumRows(),
	}
}

// checkFresh fails if the source changed structurally since this
// view was created
func (sv *stackView) checkFresh() error {
	if sv.plan.source.Generation() != sv.generation {
		return errors.StaleViewError{TableID: sv.plan.source.ID(), Expected: sv.generation, Actual: sv.plan.source.Generation()}
	}
	return nil
}

// ID returns the identifier of this view
func (sv *stackView) ID() string {
	return sv.id
}

// Schema returns the long-layout schema of this view
func (sv *stackView) Schema() tabular.Schema {
	return sv.plan.schema.Clone()
}

// NumRows returns the number of stacked rows
func (sv *stackView) NumRows() int {
	return sv.numSrcRows * len(sv.plan.valueCols)
}

// NumColumns returns the number of columns
func (sv *stackView) NumColumns() int {
	return sv.plan.schema.NumColumns()
}

// Generation returns the source generation this view was built against
func (sv *stackView) Generation() uint64 {
	return sv.generation
}

// IsView returns true
func (sv *stackView) IsView() bool {
	return true
}

// CheckValid verifies this view still maps onto its source
func (sv *stackView) CheckValid() error {
	if err := sv.checkFresh(); err != nil {
		return err
	}
	return sv.plan.source.CheckValid()
}

// mapCell translates a stacked (row, colName) onto a source cell.
// The variable column maps onto no source cell and yields an empty
// column name.
func (sv *stackView) mapCell(row int, colName string) (int, string, error) {
	if err := sv.checkFresh(); err != nil {
		return 0, "", err
	}
	if _, err := sv.plan.schema.GetColumn(colName); err != nil {
		return 0, "", err
	}
	if row < 0 || row >= sv.NumRows() {
		return 0, "", errors.IndexOutOfRangeError{What: "Row", Index: row, Length: sv.NumRows()}
	}
	srcRow := row % sv.numSrcRows
	switch colName {
	case sv.plan.varName:
		return srcRow, "", nil
	case sv.plan.valName:
		return srcRow, sv.plan.valueCols[row/sv.numSrcRows], nil
	default:
		return srcRow, colName, nil
	}
}

// Get returns a cell value by stacked row and column name
func (sv *stackView) Get(row int, colName string) (interface{}, error) {
	srcRow, srcCol, err := sv.mapCell(row, colName)
	if err != nil {
		return nil, err
	}
	if srcCol == "" {
		return sv.plan.valueCols[row/sv.numSrcRows], nil
	}
	return sv.plan.source.Get(srcRow, srcCol)
}

// GetAt returns a cell value by stacked row and column index
func (sv *stackView) GetAt(row int, col int) (interface{}, error) {
	names := sv.plan.schema.ColumnNames()
	if col < 0 || col >= len(names) {
		return nil, errors.IndexOutOfRangeError{What: "Column", Index: col, Length: len(names)}
	}
	return sv.Get(row, names[col])
}

// Set modifies a cell, passing the write through to the source. The
// variable column cannot be modified.
func (sv *stackView) Set(row int, colName string, value interface{}) error {
	srcRow, srcCol, err := sv.mapCell(row, colName)
	if err != nil {
		return err
	}
	if srcCol == "" {
		return errors.UnsupportedOptionError{Option: "Set", Reason: "the variable column of a stacked view is derived"}
	}
	return sv.plan.source.Set(srcRow, srcCol, value)
}

// SetAt modifies a cell by stacked row and column index
func (sv *stackView) SetAt(row int, col int, value interface{}) error {
	names := sv.plan.schema.ColumnNames()
	if col < 0 || col >= len(names) {
		return errors.IndexOutOfRangeError{What: "Column", Index: col, Length: len(names)}
	}
	return sv.Set(row, names[col], value)
}

// IsNil returns true iff the given cell is missing
func (sv *stackView) IsNil(row int, colName string) (bool, error) {
	v, err := sv.Get(row, colName)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// SetNil sets the given cell to missing, passing the write through
// to the source
func (sv *stackView) SetNil(row int, colName string) error {
	srcRow, srcCol, err := sv.mapCell(row, colName)
	if err != nil {
		return err
	}
	if srcCol == "" {
		return errors.UnsupportedOptionError{Option: "SetNil", Reason: "the variable column of a stacked view is derived"}
	}
	return sv.plan.source.SetNil(srcRow, srcCol)
}

// GetRow returns a handle onto a single stacked row
func (sv *stackView) GetRow(rowNum int) tabular.Row {
	return table.CreateRow(sv, rowNum, false)
}

// ForEachRow runs fn on each stacked row in order
func (sv *stackView) ForEachRow(fn tabular.MapOperation) error {
	if err := sv.CheckValid(); err != nil {
		return err
	}
	numRows := sv.NumRows()
	for row := 0; row < numRows; row++ {
		if err := fn(table.CreateRow(sv, row, true)); err != nil {
			return err
		}
	}
	return nil
}

// Select materializes a subset of this view. Stacked views cannot
// be shared further.
func (sv *stackView) Select(rows []int, colNames []string, rowMode tabular.SelectionMode, colMode tabular.SelectionMode) (tabular.Table, error) {
	if rowMode == tabular.Share || colMode == tabular.Share {
		return nil, errors.UnsupportedOptionError{Option: "Share", Reason: "stacked views cannot be shared further"}
	}
	if err := sv.CheckValid(); err != nil {
		return nil, err
	}
	materialized, err := materializeStack(sv.plan)
	if err != nil {
		return nil, err
	}
	return materialized.Select(rows, colNames, rowMode, colMode)
}

// SelectColumns materializes a subset of columns over all rows
func (sv *stackView) SelectColumns(colNames []string, mode tabular.SelectionMode) (tabular.Table, error) {
	return sv.Select(nil, colNames, mode, mode)
}

// SelectRows materializes a subset of rows over all columns
func (sv *stackView) SelectRows(rows []int, mode tabular.SelectionMode) (tabular.Table, error) {
	return sv.Select(rows, nil, mode, mode)
}

// FilterRows retains the stacked rows for which fn returns true
func (sv *stackView) FilterRows(fn tabular.FilterOperation, mode tabular.SelectionMode) (tabular.Table, error) {
	if err := sv.CheckValid(); err != nil {
		return nil, err
	}
	numRows := sv.NumRows()
	keep := make([]int, 0, numRows)
	for row := 0; row < numRows; row++ {
		ok, err := fn(table.CreateRow(sv, row, true))
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, row)
		}
	}
	return sv.Select(keep, nil, mode, mode)
}

// Copy materializes this view into an independently-owned Table
func (sv *stackView) Copy() tabular.Table {
	if err := sv.CheckValid(); err != nil {
		return table.CreateTable(sv.plan.schema.Clone())
	}
	copied, err := materializeStack(sv.plan)
	if err != nil {
		return table.CreateTable(sv.plan.schema.Clone())
	}
	return copied
}

// Rename is not supported on stacked views
func (sv *stackView) Rename(mapping map[string]string, makeUnique bool) error {
	return errors.UnsupportedOptionError{Option: "Rename", Reason: "stacked views cannot be structurally modified"}
}

// ReorderColumns is not supported on stacked views
func (sv *stackView) ReorderColumns(newOrder []string) error {
	return errors.UnsupportedOptionError{Option: "ReorderColumns", Reason: "stacked views cannot be structurally modified"}
}

// InsertColumn is not supported on stacked views
func (sv *stackView) InsertColumn(pos int, colName string, columnType tabular.ColumnType, nullable bool, values interface{}) error {
	return errors.UnsupportedOptionError{Option: "InsertColumn", Reason: "stacked views cannot be structurally modified"}
}

// DropColumn is not supported on stacked views
func (sv *stackView) DropColumn(colName string) error {
	return errors.UnsupportedOptionError{Option: "DropColumn", Reason: "stacked views cannot be structurally modified"}
}

// AppendRow is not supported on stacked views
func (sv *stackView) AppendRow(values map[string]interface{}, policy tabular.AppendPolicy) error {
	return errors.UnsupportedOptionError{Option: "AppendRow", Reason: "stacked views cannot be structurally modified"}
}

// DeleteRows is not supported on stacked views
func (sv *stackView) DeleteRows(rows []int) error {
	return errors.UnsupportedOptionError{Option: "DeleteRows", Reason: "stacked views cannot be structurally modified"}
}

// ToString returns a string representation of this view
func (sv *stackView) ToString() string {
	if err := sv.CheckValid(); err != nil {
		return fmt.Sprintf("Stack[%s](invalid: %v)", sv.id, err)
	}
	var res strings.Builder
	names := sv.plan.schema.ColumnNames()
	types := sv.plan.schema.ColumnTypes()
	numRows := sv.NumRows()
	fmt.Fprintf(&res, "Stack[%dx%d]{%s}\n", numRows, len(names), strings.Join(names, ", "))
	for row := 0; row < numRows; row++ {
		fmt.Fprint(&res, "{")
		for i, name := range names {
			v, _ := sv.Get(row, name)
			if v == nil {
				fmt.Fprintf(&res, "\"%s\": nil,", name)
			} else {
				fmt.Fprintf(&res, "\"%s\": %s,", name, types[i].ToString(v))
			}
		}
		fmt.Fprint(&res, "}\n")
	}
	return res.String()
}

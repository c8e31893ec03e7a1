// Package table implements tabular.Table: typed, nullable,
// resizable columnar storage with explicit copy-versus-share
// ownership semantics, plus views over it.
package table

import (
	"fmt"
	"strings"
	"sync"

	uuid "github.com/gofrs/uuid"
	multierror "github.com/hashicorp/go-multierror"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/internal/nulls"
	"github.com/go-tabular/tabular/logging"
)

// columnData is the backing storage of a single column: a slice of
// normalized scalar values plus a bitmap of missing rows. Multiple
// Tables may reference the same columnData (aliasing).
type columnData struct {
	values []interface{}
	nulls  *nulls.Nulls
}

func newColumnData(capacity int) *columnData {
	return &columnData{
		values: make([]interface{}, 0, capacity),
		nulls:  nulls.New(),
	}
}

// clone returns an independently-owned copy of this columnData
func (c *columnData) clone() *columnData {
	values := make([]interface{}, len(c.values))
	copy(values, c.values)
	return &columnData{values: values, nulls: c.nulls.Clone()}
}

// project returns an independently-owned copy restricted to rows
func (c *columnData) project(rows []int) *columnData {
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		values[i] = c.values[row]
	}
	return &columnData{values: values, nulls: c.nulls.Project(rows)}
}

// tableImpl is Tabular's owning implementation of Table
type tableImpl struct {
	id         string
	lock       sync.RWMutex
	schema     tabular.Schema
	cols       []*columnData // aligned with schema column indices
	numRows    int
	generation uint64
}

func newTableID() string {
	id, err := uuid.NewV4()
	if err != nil {
		logging.Fatal(fmt.Sprintf("failed to generate UUID for Table: %v", err))
	}
	return id.String()
}

func createTableImpl(schema tabular.Schema, cols []*columnData, numRows int) *tableImpl {
	return &tableImpl{
		id:      newTableID(),
		schema:  schema,
		cols:    cols,
		numRows: numRows,
	}
}

// CreateTable creates an empty Table with the given Schema
func CreateTable(schema tabular.Schema) tabular.Table {
	cols := make([]*columnData, schema.NumColumns())
	for i := range cols {
		cols[i] = newColumnData(0)
	}
	return createTableImpl(schema.Clone(), cols, 0)
}

// ID retrieves the unique ID of this Table
func (t *tableImpl) ID() string {
	return t.id
}

// Schema returns a read-only copy of the schema of this Table
func (t *tableImpl) Schema() tabular.Schema {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.schema.Clone()
}

// NumRows retrieves the number of rows in this Table
func (t *tableImpl) NumRows() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.numRows
}

// NumColumns retrieves the number of columns in this Table
func (t *tableImpl) NumColumns() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.schema.NumColumns()
}

// Generation retrieves the structural generation of the backing storage
func (t *tableImpl) Generation() uint64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.generation
}

// IsView returns false: this Table owns (or directly aliases) its storage
func (t *tableImpl) IsView() bool {
	return false
}

// bumpGeneration marks a structural change, invalidating dependent
// Views and GroupIndexes. Callers must hold the write lock.
func (t *tableImpl) bumpGeneration() {
	t.generation++
}

// checkValid verifies column lengths without locking
func (t *tableImpl) checkValid() error {
	var multierr *multierror.Error
	t.schema.ForEachColumn(func(name string, col tabular.Column) error {
		data := t.cols[col.Index()]
		if len(data.values) != t.numRows {
			multierr = multierror.Append(multierr, errors.CorruptedTableError{
				Name:     name,
				Expected: t.numRows,
				Actual:   len(data.values),
			})
		}
		return nil
	})
	return multierr.ErrorOrNil()
}

// CheckValid verifies that all columns still share the Table's row
// count, naming every offending column. Aliased columns resized
// through another Table are detected here rather than silently
// corrupting reads.
func (t *tableImpl) CheckValid() error {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.checkValid()
}

// getCell reads a cell without locking
func (t *tableImpl) getCell(row int, colName string) (interface{}, error) {
	col, err := t.schema.GetColumn(colName)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= t.numRows {
		return nil, errors.IndexOutOfRangeError{What: "Row", Index: row, Length: t.numRows}
	}
	data := t.cols[col.Index()]
	if len(data.values) != t.numRows {
		return nil, errors.CorruptedTableError{Name: colName, Expected: t.numRows, Actual: len(data.values)}
	}
	if data.nulls.Contains(row) {
		return nil, nil
	}
	return data.values[row], nil
}

// Get returns a cell value by row and column name, or nil if missing
func (t *tableImpl) Get(row int, colName string) (interface{}, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.getCell(row, colName)
}

// GetAt returns a cell value by row and column index, or nil if missing
func (t *tableImpl) GetAt(row int, col int) (interface{}, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	colName, _, err := t.schema.GetColumnAt(col)
	if err != nil {
		return nil, err
	}
	return t.getCell(row, colName)
}

// setCell writes a cell without locking
func (t *tableImpl) setCell(row int, colName string, value interface{}) error {
	col, err := t.schema.GetColumn(colName)
	if err != nil {
		return err
	}
	if row < 0 || row >= t.numRows {
		return errors.IndexOutOfRangeError{What: "Row", Index: row, Length: t.numRows}
	}
	data := t.cols[col.Index()]
	if len(data.values) != t.numRows {
		return errors.CorruptedTableError{Name: colName, Expected: t.numRows, Actual: len(data.values)}
	}
	if value == nil {
		if !col.Nullable() {
			return errors.TypeMismatchError{Name: colName, Expected: tabular.TypeToString(col.Type()), Actual: "missing"}
		}
		data.values[row] = nil
		data.nulls.Add(row)
		return nil
	}
	coerced, err := coerceValue(colName, col.Type(), value)
	if err != nil {
		return err
	}
	data.values[row] = coerced
	data.nulls.Del(row)
	return nil
}

// Set modifies a cell value by row and column name
func (t *tableImpl) Set(row int, colName string, value interface{}) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.setCell(row, colName, value)
}

// SetAt modifies a cell value by row and column index
func (t *tableImpl) SetAt(row int, col int, value interface{}) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	colName, _, err := t.schema.GetColumnAt(col)
	if err != nil {
		return err
	}
	return t.setCell(row, colName, value)
}

// IsNil returns true iff the given cell is missing
func (t *tableImpl) IsNil(row int, colName string) (bool, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	col, err := t.schema.GetColumn(colName)
	if err != nil {
		return false, err
	}
	if row < 0 || row >= t.numRows {
		return false, errors.IndexOutOfRangeError{What: "Row", Index: row, Length: t.numRows}
	}
	data := t.cols[col.Index()]
	if len(data.values) != t.numRows {
		return false, errors.CorruptedTableError{Name: colName, Expected: t.numRows, Actual: len(data.values)}
	}
	return data.nulls.Contains(row), nil
}

// SetNil marks the given cell missing
func (t *tableImpl) SetNil(row int, colName string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.setCell(row, colName, nil)
}

// GetRow retrieves a writable handle onto a specific row
func (t *tableImpl) GetRow(rowNum int) tabular.Row {
	return &rowImpl{t: t, row: rowNum}
}

// ForEachRow iterates over read-only handles of every row in order
func (t *tableImpl) ForEachRow(fn tabular.MapOperation) error {
	if err := t.CheckValid(); err != nil {
		return err
	}
	numRows := t.NumRows()
	for i := 0; i < numRows; i++ {
		if err := fn(&rowImpl{t: t, row: i, readOnly: true}); err != nil {
			return err
		}
	}
	return nil
}

// Copy produces a Table equal in content to this one with no shared
// backing storage
func (t *tableImpl) Copy() tabular.Table {
	t.lock.RLock()
	defer t.lock.RUnlock()
	cols := make([]*columnData, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.clone()
	}
	return createTableImpl(t.schema.Clone(), cols, t.numRows)
}

// ToString returns a string representation of this Table
func (t *tableImpl) ToString() string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkValid(); err != nil {
		return fmt.Sprintf("Table[%s](invalid: %v)", t.id, err)
	}
	var res strings.Builder
	names := t.schema.ColumnNames()
	types := t.schema.ColumnTypes()
	fmt.Fprintf(&res, "Table[%dx%d]{%s}\n", t.numRows, len(names), strings.Join(names, ", "))
	for row := 0; row < t.numRows; row++ {
		fmt.Fprint(&res, "{")
		for i, name := range names {
			v, _ := t.getCell(row, name)
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

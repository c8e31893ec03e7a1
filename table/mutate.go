package table

import (
	"sort"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// Rename renames columns according to mapping. Without makeUnique,
// any resulting collision fails with no change applied; with it,
// colliding names receive deterministic numeric suffixes.
func (t *tableImpl) Rename(mapping map[string]string, makeUnique bool) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.schema.RenameColumns(mapping, makeUnique); err != nil {
		return err
	}
	t.bumpGeneration()
	return nil
}

// ReorderColumns rearranges column order. newOrder must name every
// column exactly once.
func (t *tableImpl) ReorderColumns(newOrder []string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	// capture old indices before the schema reassigns them
	oldIndex := make([]int, len(newOrder))
	for i, name := range newOrder {
		col, err := t.schema.GetColumn(name)
		if err != nil {
			return err
		}
		oldIndex[i] = col.Index()
	}
	if err := t.schema.ReorderColumns(newOrder); err != nil {
		return err
	}
	newCols := make([]*columnData, len(t.cols))
	for i := range newOrder {
		newCols[i] = t.cols[oldIndex[i]]
	}
	t.cols = newCols
	t.bumpGeneration()
	return nil
}

// InsertColumn adds a column at a position. values may be a slice
// of length equal to the row count, a length-1 slice or scalar
// (broadcast to every row), or nil (a fully-missing column, which
// requires nullable). Any other length fails with no change applied.
func (t *tableImpl) InsertColumn(pos int, colName string, columnType tabular.ColumnType, nullable bool, values interface{}) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if pos < 0 || pos > t.schema.NumColumns() {
		return errors.IndexOutOfRangeError{What: "Column", Index: pos, Length: t.schema.NumColumns() + 1}
	}
	if t.schema.HasColumn(colName) {
		return errors.DuplicateNameError{Name: colName}
	}
	vs := toValueSlice(values)
	if len(vs) == 1 && t.numRows != 1 {
		// broadcast a scalar or length-1 sequence to the full row count
		broadcast := make([]interface{}, t.numRows)
		for i := range broadcast {
			broadcast[i] = vs[0]
		}
		vs = broadcast
	}
	if len(vs) != t.numRows {
		return errors.LengthMismatchError{Name: colName, Expected: t.numRows, Actual: len(vs)}
	}
	data := newColumnData(t.numRows)
	for i, v := range vs {
		if v == nil {
			if !nullable {
				return errors.TypeMismatchError{Name: colName, Expected: tabular.TypeToString(columnType), Actual: "missing"}
			}
			data.values = append(data.values, nil)
			data.nulls.Add(i)
			continue
		}
		cv, err := coerceValue(colName, columnType, v)
		if err != nil {
			return err
		}
		data.values = append(data.values, cv)
	}
	if err := t.schema.CreateColumn(colName, columnType, nullable); err != nil {
		return err
	}
	t.cols = append(t.cols, data)
	if pos != t.schema.NumColumns()-1 {
		names := t.schema.ColumnNames()
		// the new column sits last; rotate it into place
		order := make([]string, 0, len(names))
		order = append(order, names[:pos]...)
		order = append(order, colName)
		order = append(order, names[pos:len(names)-1]...)
		oldIndex := make([]int, len(order))
		for i, name := range order {
			col, _ := t.schema.GetColumn(name)
			oldIndex[i] = col.Index()
		}
		if err := t.schema.ReorderColumns(order); err != nil {
			return err
		}
		newCols := make([]*columnData, len(t.cols))
		for i := range order {
			newCols[i] = t.cols[oldIndex[i]]
		}
		t.cols = newCols
	}
	t.bumpGeneration()
	return nil
}

// DropColumn removes a column and its backing storage
func (t *tableImpl) DropColumn(colName string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	col, err := t.schema.GetColumn(colName)
	if err != nil {
		return err
	}
	idx := col.Index()
	t.schema.RemoveColumn(colName)
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	t.bumpGeneration()
	return nil
}

// pendingAppend captures the fully-validated effects of an
// AppendRow before any of them are applied, keeping the append
// atomic.
type pendingAppend struct {
	cellValues map[string]interface{} // coerced value per existing column, nil entries missing
	widen      map[string]tabular.ColumnType
	nullable   map[string]bool
	newCols    []ColumnSpec // Values holds the single appended value
}

// AppendRow grows every column by one. Strict appends fail on
// absent or unknown keys; Fill treats absent keys as missing
// values; Union additionally adds unknown keys as new nullable
// columns (backfilling prior rows with missing values) and widens
// existing column types via the promotion lattice when incoming
// values require it.
func (t *tableImpl) AppendRow(values map[string]interface{}, policy tabular.AppendPolicy) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.checkValid(); err != nil {
		return err
	}
	pending := pendingAppend{
		cellValues: make(map[string]interface{}),
		widen:      make(map[string]tabular.ColumnType),
		nullable:   make(map[string]bool),
	}
	// validate existing columns
	err := t.schema.ForEachColumn(func(name string, col tabular.Column) error {
		v, present := values[name]
		if !present || v == nil {
			if policy == tabular.Strict && !present {
				return errors.MissingColumnError{Name: name}
			}
			if !col.Nullable() {
				if policy == tabular.Union {
					pending.nullable[name] = true
				} else {
					return errors.TypeMismatchError{Name: name, Expected: tabular.TypeToString(col.Type()), Actual: "missing"}
				}
			}
			pending.cellValues[name] = nil
			return nil
		}
		cv, err := coerceValue(name, col.Type(), v)
		if err != nil {
			if policy != tabular.Union {
				return err
			}
			vt, ok := tabular.TypeOfValue(v)
			if !ok {
				return err
			}
			promoted := tabular.Promote(col.Type(), vt)
			cv, err = coerceValue(name, promoted, v)
			if err != nil {
				return err
			}
			pending.widen[name] = vt
		}
		pending.cellValues[name] = cv
		return nil
	})
	if err != nil {
		return err
	}
	// validate unknown keys
	unknown := make([]string, 0)
	for name := range values {
		if !t.schema.HasColumn(name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		if policy != tabular.Union {
			return errors.MissingColumnError{Name: name}
		}
		v := values[name]
		spec := ColumnSpec{Name: name, Nullable: true, Values: []interface{}{nil}}
		if v == nil {
			spec.Type = &tabular.StringColumnType{}
		} else {
			vt, ok := tabular.TypeOfValue(v)
			if !ok {
				return errors.TypeMismatchError{Name: name, Expected: "scalar", Actual: "unsupported"}
			}
			spec.Type = vt
			cv, err := coerceValue(name, vt, v)
			if err != nil {
				return err
			}
			spec.Values[0] = cv
		}
		pending.newCols = append(pending.newCols, spec)
	}
	// commit: widen, add columns, then append one row everywhere
	for name, to := range pending.widen {
		if err := t.schema.WidenColumn(name, to); err != nil {
			return err
		}
		// re-coerce previously stored values to the widened type
		col, err := t.schema.GetColumn(name)
		if err != nil {
			return err
		}
		data := t.cols[col.Index()]
		for i, v := range data.values {
			if v == nil {
				continue
			}
			cv, err := coerceValue(name, col.Type(), v)
			if err != nil {
				return err
			}
			data.values[i] = cv
		}
	}
	for name := range pending.nullable {
		if err := t.schema.MakeNullable(name); err != nil {
			return err
		}
	}
	for _, spec := range pending.newCols {
		if err := t.schema.CreateColumn(spec.Name, spec.Type, spec.Nullable); err != nil {
			return err
		}
		data := newColumnData(t.numRows + 1)
		for i := 0; i < t.numRows; i++ {
			data.values = append(data.values, nil)
			data.nulls.Add(i)
		}
		t.cols = append(t.cols, data)
		pending.cellValues[spec.Name] = spec.Values[0]
	}
	t.schema.ForEachColumn(func(name string, col tabular.Column) error {
		data := t.cols[col.Index()]
		v := pending.cellValues[name]
		data.values = append(data.values, v)
		if v == nil {
			data.nulls.Add(t.numRows)
		}
		return nil
	})
	t.numRows++
	t.bumpGeneration()
	return nil
}

// DeleteRows removes the given rows from every column
func (t *tableImpl) DeleteRows(rows []int) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.checkValid(); err != nil {
		return err
	}
	drop := make(map[int]bool, len(rows))
	for _, row := range rows {
		if row < 0 || row >= t.numRows {
			return errors.IndexOutOfRangeError{What: "Row", Index: row, Length: t.numRows}
		}
		drop[row] = true
	}
	keep := make([]int, 0, t.numRows-len(drop))
	for i := 0; i < t.numRows; i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	for i, data := range t.cols {
		t.cols[i] = data.project(keep)
	}
	t.numRows = len(keep)
	t.bumpGeneration()
	return nil
}

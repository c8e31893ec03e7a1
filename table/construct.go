package table

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/schema"
)

// ColumnSpec fully describes one column for FromSpecs: its name,
// declared type, nullability, and values (nil entries are missing).
type ColumnSpec struct {
	Name     string
	Type     tabular.ColumnType
	Nullable bool
	Values   []interface{}
}

// FromSpecs builds a Table from an ordered list of fully-specified
// columns. All value slices must share one length.
func FromSpecs(specs []ColumnSpec) (tabular.Table, error) {
	sch := schema.CreateSchema()
	numRows := 0
	if len(specs) > 0 {
		numRows = len(specs[0].Values)
	}
	cols := make([]*columnData, 0, len(specs))
	for _, spec := range specs {
		if len(spec.Values) != numRows {
			return nil, errors.LengthMismatchError{Name: spec.Name, Expected: numRows, Actual: len(spec.Values)}
		}
		if err := sch.CreateColumn(spec.Name, spec.Type, spec.Nullable); err != nil {
			return nil, err
		}
		data := newColumnData(numRows)
		for i, v := range spec.Values {
			if v == nil {
				if !spec.Nullable {
					return nil, errors.TypeMismatchError{Name: spec.Name, Expected: tabular.TypeToString(spec.Type), Actual: "missing"}
				}
				data.values = append(data.values, nil)
				data.nulls.Add(i)
				continue
			}
			cv, err := coerceValue(spec.Name, spec.Type, v)
			if err != nil {
				return nil, err
			}
			data.values = append(data.values, cv)
		}
		cols = append(cols, data)
	}
	return createTableImpl(sch, cols, numRows), nil
}

// FromColumns builds a Table from a mapping of column name to
// homogeneous value slice, inferring each column's type. Column
// order is the sorted name order, map iteration being unordered.
func FromColumns(cols map[string]interface{}) (tabular.Table, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	specs := make([]ColumnSpec, 0, len(names))
	numRows := -1
	for _, name := range names {
		vs := toValueSlice(cols[name])
		if numRows == -1 {
			numRows = len(vs)
		} else if len(vs) != numRows {
			return nil, errors.LengthMismatchError{Name: name, Expected: numRows, Actual: len(vs)}
		}
		colType, nullable, normalized, err := inferColumn(name, vs)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ColumnSpec{Name: name, Type: colType, Nullable: nullable, Values: normalized})
	}
	return FromSpecs(specs)
}

// FromRows builds a Table from a row-major 2-D array. A nil names
// slice produces positional default names col0, col1, ...
func FromRows(rows [][]interface{}, names []string) (tabular.Table, error) {
	numCols := len(names)
	if numCols == 0 {
		for _, row := range rows {
			if len(row) > numCols {
				numCols = len(row)
			}
		}
		names = make([]string, numCols)
		for i := range names {
			names[i] = fmt.Sprintf("col%d", i)
		}
	}
	specs := make([]ColumnSpec, 0, numCols)
	for c, name := range names {
		vs := make([]interface{}, len(rows))
		for r, row := range rows {
			if c >= len(row) {
				return nil, errors.LengthMismatchError{Name: name, Expected: numCols, Actual: len(row)}
			}
			vs[r] = row[c]
		}
		colType, nullable, normalized, err := inferColumn(name, vs)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ColumnSpec{Name: name, Type: colType, Nullable: nullable, Values: normalized})
	}
	return FromSpecs(specs)
}

// FromRecords builds a Table from a sequence of record-like
// mappings, with union column semantics: columns appear in order of
// first appearance across records, records lacking a column
// contribute a missing value, and mixed value kinds widen via the
// promotion lattice.
func FromRecords(records []map[string]interface{}) (tabular.Table, error) {
	var order []string
	seen := make(map[string]bool)
	for _, rec := range records {
		recNames := make([]string, 0, len(rec))
		for name := range rec {
			recNames = append(recNames, name)
		}
		sort.Strings(recNames)
		for _, name := range recNames {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	specs := make([]ColumnSpec, 0, len(order))
	for _, name := range order {
		vs := make([]interface{}, len(records))
		for i, rec := range records {
			vs[i] = rec[name]
		}
		colType, nullable, normalized, err := inferColumn(name, vs)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ColumnSpec{Name: name, Type: colType, Nullable: nullable, Values: normalized})
	}
	return FromSpecs(specs)
}

// FromJSONRecords builds a Table from a sequence of JSON objects,
// one per string, treating each top-level field as a column with
// union column semantics. Non-scalar fields are retained as their
// raw JSON text.
func FromJSONRecords(records []string) (tabular.Table, error) {
	maps := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		parsed := gjson.Parse(rec)
		if !parsed.IsObject() {
			return nil, errors.ValidationError{Subject: "JSON record", Reason: fmt.Sprintf("record %d is not an object", i)}
		}
		m := make(map[string]interface{})
		parsed.ForEach(func(key, value gjson.Result) bool {
			switch value.Type {
			case gjson.Null:
				m[key.String()] = nil
			case gjson.True, gjson.False:
				m[key.String()] = value.Bool()
			case gjson.Number:
				m[key.String()] = value.Float()
			case gjson.String:
				m[key.String()] = value.String()
			default:
				m[key.String()] = value.Raw
			}
			return true
		})
		maps[i] = m
	}
	return FromRecords(maps)
}

// FromTable constructs a new Table from an existing Table's
// columns. By default each column is copied; with noCopy the new
// Table aliases the source's backing storage, so mutations through
// either Table are visible through the other. Independently
// resizing an aliased column leaves both Tables detectably
// corrupted, which CheckValid reports.
func FromTable(src tabular.Table, noCopy bool) (tabular.Table, error) {
	if !noCopy {
		return src.Copy(), nil
	}
	impl, ok := src.(*tableImpl)
	if !ok {
		return nil, errors.UnsupportedOptionError{Option: "noCopy", Reason: "source does not own backing storage"}
	}
	impl.lock.RLock()
	defer impl.lock.RUnlock()
	cols := make([]*columnData, len(impl.cols))
	copy(cols, impl.cols)
	return createTableImpl(impl.schema.Clone(), cols, impl.numRows), nil
}

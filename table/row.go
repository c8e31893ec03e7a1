package table

import (
	"fmt"
	"strings"
	"time"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// rowImpl is a handle onto a single row of a Table or View. Handles
// produced by read-only operations carry readOnly and reject all
// mutation.
type rowImpl struct {
	t        tabular.Table
	row      int
	readOnly bool
}

// CreateRow returns a handle onto one row of any Table. Read-only
// handles reject all mutation.
func CreateRow(t tabular.Table, row int, readOnly bool) tabular.Row {
	return &rowImpl{t: t, row: row, readOnly: readOnly}
}

// Schema returns a read-only copy of the schema for this row
func (r *rowImpl) Schema() tabular.Schema {
	return r.t.Schema()
}

// Index returns the position of this row within its Table
func (r *rowImpl) Index() int {
	return r.row
}

// ToString returns a string representation of this row
func (r *rowImpl) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "{")
	sch := r.t.Schema()
	sch.ForEachColumn(func(name string, col tabular.Column) error {
		v, err := r.t.Get(r.row, name)
		if err != nil {
			fmt.Fprintf(&res, "\"%s\": <%v>,", name, err)
			return nil
		}
		if v == nil {
			fmt.Fprintf(&res, "\"%s\": nil,", name)
		} else {
			fmt.Fprintf(&res, "\"%s\": %s,", name, col.Type().ToString(v))
		}
		return nil
	})
	fmt.Fprint(&res, "}")
	return res.String()
}

// IsNil returns true iff the given column value is missing in this
// row. If an error occurs, this function will return false.
func (r *rowImpl) IsNil(colName string) bool {
	isNil, err := r.t.IsNil(r.row, colName)
	if err != nil {
		return false
	}
	return isNil
}

// SetNil sets the given column value to missing within this row
func (r *rowImpl) SetNil(colName string) error {
	if r.readOnly {
		return errors.UnsupportedOptionError{Option: "SetNil", Reason: "row handle is read-only"}
	}
	return r.t.SetNil(r.row, colName)
}

// Get returns the value of any column, or nil if it is missing
func (r *rowImpl) Get(colName string) (interface{}, error) {
	return r.t.Get(r.row, colName)
}

func (r *rowImpl) getTyped(colName string, expected string) (interface{}, error) {
	v, err := r.t.Get(r.row, colName)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.TypeMismatchError{Name: colName, Expected: expected, Actual: "missing"}
	}
	return v, nil
}

// GetBool retrieves a single bool from the column with the given name
func (r *rowImpl) GetBool(colName string) (bool, error) {
	v, err := r.getTyped(colName, "bool")
	if err != nil {
		return false, err
	}
	bv, ok := v.(bool)
	if !ok {
		return false, errors.TypeMismatchError{Name: colName, Expected: "bool", Actual: fmt.Sprintf("%T", v)}
	}
	return bv, nil
}

// GetInt64 retrieves a single int64 from the column with the given name
func (r *rowImpl) GetInt64(colName string) (int64, error) {
	v, err := r.getTyped(colName, "int64")
	if err != nil {
		return 0, err
	}
	iv, ok := v.(int64)
	if !ok {
		return 0, errors.TypeMismatchError{Name: colName, Expected: "int64", Actual: fmt.Sprintf("%T", v)}
	}
	return iv, nil
}

// GetFloat64 retrieves a single float64 from the column with the
// given name, coercing stored integers
func (r *rowImpl) GetFloat64(colName string) (float64, error) {
	v, err := r.getTyped(colName, "float64")
	if err != nil {
		return 0, err
	}
	switch tv := v.(type) {
	case float64:
		return tv, nil
	case int64:
		return float64(tv), nil
	default:
		return 0, errors.TypeMismatchError{Name: colName, Expected: "float64", Actual: fmt.Sprintf("%T", v)}
	}
}

// GetString retrieves a single string from the column with the given name
func (r *rowImpl) GetString(colName string) (string, error) {
	v, err := r.getTyped(colName, "string")
	if err != nil {
		return "", err
	}
	sv, ok := v.(string)
	if !ok {
		return "", errors.TypeMismatchError{Name: colName, Expected: "string", Actual: fmt.Sprintf("%T", v)}
	}
	return sv, nil
}

// GetTime retrieves a single Time from the column with the given name
func (r *rowImpl) GetTime(colName string) (time.Time, error) {
	v, err := r.getTyped(colName, "time")
	if err != nil {
		return time.Time{}, err
	}
	tv, ok := v.(time.Time)
	if !ok {
		return time.Time{}, errors.TypeMismatchError{Name: colName, Expected: "time", Actual: fmt.Sprintf("%T", v)}
	}
	return tv, nil
}

// Set modifies any column value in this row, performing kind checks
func (r *rowImpl) Set(colName string, value interface{}) error {
	if r.readOnly {
		return errors.UnsupportedOptionError{Option: "Set", Reason: "row handle is read-only"}
	}
	return r.t.Set(r.row, colName, value)
}

// SetBool modifies a single bool in the column with the given name
func (r *rowImpl) SetBool(colName string, value bool) error {
	return r.Set(colName, value)
}

// SetInt64 modifies a single int64 in the column with the given name
func (r *rowImpl) SetInt64(colName string, value int64) error {
	return r.Set(colName, value)
}

// SetFloat64 modifies a single float64 in the column with the given name
func (r *rowImpl) SetFloat64(colName string, value float64) error {
	return r.Set(colName, value)
}

// SetString modifies a single string in the column with the given name
func (r *rowImpl) SetString(colName string, value string) error {
	return r.Set(colName, value)
}

// SetTime modifies a single Time in the column with the given name
func (r *rowImpl) SetTime(colName string, value time.Time) error {
	return r.Set(colName, value)
}

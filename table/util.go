package table

import (
	"fmt"
	"reflect"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// coerceValue normalizes v and verifies it is storable in a column
// of type t, converting integers to floats where the column admits
// floats but not integers.
func coerceValue(colName string, t tabular.ColumnType, v interface{}) (interface{}, error) {
	k, nv, ok := tabular.NormalizeValue(v)
	if !ok {
		return nil, errors.TypeMismatchError{
			Name:     colName,
			Expected: tabular.TypeToString(t),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	if !t.Accepts(v) {
		return nil, errors.TypeMismatchError{
			Name:     colName,
			Expected: tabular.TypeToString(t),
			Actual:   tabular.KindToString(k),
		}
	}
	if k == tabular.Int64Kind && admitsFloatOnly(t) {
		return float64(nv.(int64)), nil
	}
	return nv, nil
}

// admitsFloatOnly returns true iff t stores floats but not integers
func admitsFloatOnly(t tabular.ColumnType) bool {
	hasFloat := false
	for _, k := range t.Kinds() {
		if k == tabular.Int64Kind {
			return false
		}
		if k == tabular.Float64Kind {
			hasFloat = true
		}
	}
	return hasFloat
}

// toValueSlice converts any Go slice to a []interface{}, or wraps a
// scalar into a length-1 slice for broadcasting.
func toValueSlice(v interface{}) []interface{} {
	if v == nil {
		return []interface{}{nil}
	}
	if vs, ok := v.([]interface{}); ok {
		return vs
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// inferColumn derives the narrowest column type covering every
// value in vs, promoting across mixed kinds, and normalizes the
// values. Missing entries force nullability; a column holding only
// missing values starts as a nullable string column, widening later
// if concrete values arrive.
func inferColumn(colName string, vs []interface{}) (tabular.ColumnType, bool, []interface{}, error) {
	var colType tabular.ColumnType
	nullable := false
	normalized := make([]interface{}, len(vs))
	for i, v := range vs {
		if v == nil {
			nullable = true
			continue
		}
		vt, ok := tabular.TypeOfValue(v)
		if !ok {
			return nil, false, nil, errors.TypeMismatchError{
				Name:     colName,
				Expected: "scalar",
				Actual:   fmt.Sprintf("%T", v),
			}
		}
		if colType == nil {
			colType = vt
		} else {
			colType = tabular.Promote(colType, vt)
		}
		_, nv, _ := tabular.NormalizeValue(v)
		normalized[i] = nv
	}
	if colType == nil {
		colType = &tabular.StringColumnType{}
		nullable = true
	}
	// re-coerce in case promotion widened ints to floats
	for i, v := range normalized {
		if v == nil {
			continue
		}
		cv, err := coerceValue(colName, colType, v)
		if err != nil {
			return nil, false, nil, err
		}
		normalized[i] = cv
	}
	return colType, nullable, normalized, nil
}

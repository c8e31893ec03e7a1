package reshape

import (
	"fmt"

	"go.uber.org/zap"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/internal/hashkey"
	"github.com/go-tabular/tabular/logging"
	"github.com/go-tabular/tabular/table"
)

// UnstackOptions configures Unstack.
type UnstackOptions struct {
	// KeyColumns lists the columns identifying an output row.
	// Defaults to every column other than the variable and value
	// columns.
	KeyColumns []string
	// VariableColumn names the column holding output column names,
	// "variable" by default
	VariableColumn string
	// ValueColumn names the column holding values, "value" by
	// default
	ValueColumn string
	// Fill is the value stored for absent (key, variable)
	// combinations, missing by default
	Fill interface{}
}

// Unstack pivots a long-layout Table back into wide layout: one
// output row per distinct key tuple and one output column per
// distinct variable value, both in first-appearance order. A key
// tuple carrying the same variable twice is an error.
func Unstack(t tabular.Table, opts *UnstackOptions) (tabular.Table, error) {
	if opts == nil {
		opts = &UnstackOptions{}
	}
	if err := t.CheckValid(); err != nil {
		return nil, err
	}
	sch := t.Schema()
	varName := opts.VariableColumn
	if varName == "" {
		varName = "variable"
	}
	valName := opts.ValueColumn
	if valName == "" {
		valName = "value"
	}
	varCol, err := sch.GetColumn(varName)
	if err != nil {
		return nil, err
	}
	valCol, err := sch.GetColumn(valName)
	if err != nil {
		return nil, err
	}
	keyCols := opts.KeyColumns
	if keyCols == nil {
		for _, name := range sch.ColumnNames() {
			if name != varName && name != valName {
				keyCols = append(keyCols, name)
			}
		}
	} else {
		for _, name := range keyCols {
			if !sch.HasColumn(name) {
				return nil, errors.MissingColumnError{Name: name}
			}
			if name == varName || name == valName {
				return nil, errors.ValidationError{Subject: "unstack",
					Reason: "column " + name + " cannot be both a key and a reshape column"}
			}
		}
	}
	if len(keyCols) == 0 {
		return nil, errors.NoKeyColumnError{}
	}

	type keyGroup struct {
		key   []interface{}
		cells map[string]interface{}
		found map[string]bool
	}
	var groups []*keyGroup
	buckets := make(map[uint64][]int)
	var variables []string
	varSeen := make(map[string]bool)
	numRows := t.NumRows()
	for row := 0; row < numRows; row++ {
		key := make([]interface{}, len(keyCols))
		for i, name := range keyCols {
			v, err := t.Get(row, name)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}
		vv, err := t.Get(row, varName)
		if err != nil {
			return nil, err
		}
		if vv == nil {
			return nil, errors.ValidationError{Subject: "unstack",
				Reason: fmt.Sprintf("variable is missing at row %d", row)}
		}
		variable, ok := vv.(string)
		if !ok {
			variable = varCol.Type().ToString(vv)
		}
		value, err := t.Get(row, valName)
		if err != nil {
			return nil, err
		}
		h := hashkey.Hash(key)
		var grp *keyGroup
		for _, idx := range buckets[h] {
			if hashkey.Equal(groups[idx].key, key) {
				grp = groups[idx]
				break
			}
		}
		if grp == nil {
			grp = &keyGroup{key: key, cells: make(map[string]interface{}), found: make(map[string]bool)}
			buckets[h] = append(buckets[h], len(groups))
			groups = append(groups, grp)
		}
		if grp.found[variable] {
			return nil, errors.ValidationError{Subject: "unstack",
				Reason: fmt.Sprintf("duplicate variable %s for key %v", variable, key)}
		}
		grp.found[variable] = true
		grp.cells[variable] = value
		if !varSeen[variable] {
			varSeen[variable] = true
			variables = append(variables, variable)
		}
	}

	specs := make([]table.ColumnSpec, 0, len(keyCols)+len(variables))
	keySet := make(map[string]bool, len(keyCols))
	for i, name := range keyCols {
		col, err := sch.GetColumn(name)
		if err != nil {
			return nil, err
		}
		keySet[name] = true
		values := make([]interface{}, len(groups))
		nullable := col.Nullable()
		for g, grp := range groups {
			values[g] = grp.key[i]
			if grp.key[i] == nil {
				nullable = true
			}
		}
		specs = append(specs, table.ColumnSpec{Name: name, Type: col.Type(), Nullable: nullable, Values: values})
	}
	for _, variable := range variables {
		if keySet[variable] {
			return nil, errors.DuplicateNameError{Name: variable}
		}
		values := make([]interface{}, len(groups))
		nullable := valCol.Nullable()
		for g, grp := range groups {
			v, ok := grp.cells[variable]
			if !ok {
				v = opts.Fill
			}
			if v == nil {
				nullable = true
			}
			values[g] = v
		}
		specs = append(specs, table.ColumnSpec{Name: variable, Type: valCol.Type(), Nullable: nullable, Values: values})
	}
	logging.Debug("unstacked table",
		zap.String("table", t.ID()),
		zap.Int("rows", len(groups)),
		zap.Int("variables", len(variables)))
	return table.FromSpecs(specs)
}

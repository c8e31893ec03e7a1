package join

import (
	"fmt"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/table"
)

// assemble materializes the output table of a join from matched row
// pairs: the left columns in left order, then the right columns
// minus the right key columns. Key columns of rows only the right
// side contributed take their values from the right key.
func assemble(left tabular.Table, right tabular.Table, keys []Key, opts *Options, pairs []rowPair) (tabular.Table, error) {
	rightKeyFor := make(map[string]string, len(keys))
	rightKeySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		rightKeyFor[k.Left] = k.Right
		rightKeySet[k.Right] = true
	}
	var specs []table.ColumnSpec
	used := make(map[string]bool)
	err := left.Schema().ForEachColumn(func(name string, col tabular.Column) error {
		values := make([]interface{}, len(pairs))
		nullable := col.Nullable()
		rightName, isKey := rightKeyFor[name]
		for i, p := range pairs {
			var v interface{}
			var err error
			switch {
			case p.left >= 0:
				v, err = left.Get(p.left, name)
			case isKey:
				v, err = right.Get(p.right, rightName)
			}
			if err != nil {
				return err
			}
			if v == nil {
				nullable = true
			}
			values[i] = v
		}
		colType := col.Type()
		if isKey {
			rightCol, err := right.Schema().GetColumn(rightName)
			if err != nil {
				return err
			}
			colType = tabular.Promote(colType, rightCol.Type())
		}
		specs = append(specs, table.ColumnSpec{Name: name, Type: colType, Nullable: nullable, Values: values})
		used[name] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = right.Schema().ForEachColumn(func(name string, col tabular.Column) error {
		if rightKeySet[name] {
			return nil
		}
		outName, err := outputName(name, used, opts.MakeUnique)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(pairs))
		nullable := col.Nullable()
		for i, p := range pairs {
			if p.right < 0 {
				nullable = true
				continue
			}
			v, err := right.Get(p.right, name)
			if err != nil {
				return err
			}
			if v == nil {
				nullable = true
			}
			values[i] = v
		}
		specs = append(specs, table.ColumnSpec{Name: outName, Type: col.Type(), Nullable: nullable, Values: values})
		used[outName] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table.FromSpecs(specs)
}

// outputName resolves a right-side column name against the names
// already emitted, suffixing when makeUnique allows it
func outputName(name string, used map[string]bool, makeUnique bool) (string, error) {
	if !used[name] {
		return name, nil
	}
	if !makeUnique {
		return "", errors.DuplicateNameError{Name: name}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !used[candidate] {
			return candidate, nil
		}
	}
}

// Package reshape converts Tables between wide and long layouts:
// Stack melts one column per variable into variable/value rows, and
// Unstack pivots them back.
package reshape

import (
	"go.uber.org/zap"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/logging"
	"github.com/go-tabular/tabular/schema"
	"github.com/go-tabular/tabular/table"
)

// StackOptions configures Stack.
type StackOptions struct {
	// ValueColumns lists the columns to melt into rows. Defaults to
	// every numeric column.
	ValueColumns []string
	// IDColumns lists the columns repeated per output row. Defaults
	// to every column not selected as a value column.
	IDColumns []string
	// VariableName names the output column holding original column
	// names, "variable" by default
	VariableName string
	// ValueName names the output column holding values, "value" by
	// default
	ValueName string
	// Mode selects Copy for an independent result or Share for a
	// lazy view over the source's storage
	Mode tabular.SelectionMode
}

// stackPlan is a resolved Stack invocation: which columns melt,
// which repeat, and what the output schema looks like.
type stackPlan struct {
	source    tabular.Table
	valueCols []string
	idCols    []string
	varName   string
	valName   string
	valueType tabular.ColumnType
	nullable  bool
	schema    tabular.Schema
}

func resolveStack(t tabular.Table, opts *StackOptions) (*stackPlan, error) {
	if opts == nil {
		opts = &StackOptions{}
	}
	sch := t.Schema()
	plan := &stackPlan{
		source:  t,
		varName: opts.VariableName,
		valName: opts.ValueName,
	}
	if plan.varName == "" {
		plan.varName = "variable"
	}
	if plan.valName == "" {
		plan.valName = "value"
	}
	plan.valueCols = opts.ValueColumns
	if plan.valueCols == nil {
		for _, name := range sch.ColumnNames() {
			col, err := sch.GetColumn(name)
			if err != nil {
				return nil, err
			}
			if tabular.IsNumeric(col.Type()) {
				plan.valueCols = append(plan.valueCols, name)
			}
		}
	}
	if len(plan.valueCols) == 0 {
		return nil, errors.ValidationError{Subject: "stack", Reason: "no value columns to melt"}
	}
	valueSet := make(map[string]bool, len(plan.valueCols))
	for _, name := range plan.valueCols {
		col, err := sch.GetColumn(name)
		if err != nil {
			return nil, err
		}
		valueSet[name] = true
		if plan.valueType == nil {
			plan.valueType = col.Type()
		} else {
			plan.valueType = tabular.Promote(plan.valueType, col.Type())
		}
		if col.Nullable() {
			plan.nullable = true
		}
	}
	plan.idCols = opts.IDColumns
	if plan.idCols == nil {
		for _, name := range sch.ColumnNames() {
			if !valueSet[name] {
				plan.idCols = append(plan.idCols, name)
			}
		}
	} else {
		for _, name := range plan.idCols {
			if !sch.HasColumn(name) {
				return nil, errors.MissingColumnError{Name: name}
			}
			if valueSet[name] {
				return nil, errors.ValidationError{Subject: "stack",
					Reason: "column " + name + " is both an id and a value column"}
			}
		}
	}
	outSchema := schema.CreateSchema()
	for _, name := range plan.idCols {
		col, err := sch.GetColumn(name)
		if err != nil {
			return nil, err
		}
		if err := outSchema.CreateColumn(name, col.Type(), col.Nullable()); err != nil {
			return nil, err
		}
	}
	if err := outSchema.CreateColumn(plan.varName, &tabular.StringColumnType{}, false); err != nil {
		return nil, err
	}
	if err := outSchema.CreateColumn(plan.valName, plan.valueType, plan.nullable); err != nil {
		return nil, err
	}
	plan.schema = outSchema
	return plan, nil
}

// Stack melts a wide Table into long layout: one output row per
// (source row, value column) combination, value columns stacked
// variable-major. Share mode yields a lazy view over the source's
// storage, invalidated by structural changes to it.
func Stack(t tabular.Table, opts *StackOptions) (tabular.Table, error) {
	if err := t.CheckValid(); err != nil {
		return nil, err
	}
	plan, err := resolveStack(t, opts)
	if err != nil {
		return nil, err
	}
	logging.Debug("stacked table",
		zap.String("table", t.ID()),
		zap.Strings("values", plan.valueCols),
		zap.Int("rows", t.NumRows()*len(plan.valueCols)))
	if opts != nil && opts.Mode == tabular.Share {
		return createStackView(plan), nil
	}
	return materializeStack(plan)
}

// materializeStack builds an independent long-layout Table
func materializeStack(plan *stackPlan) (tabular.Table, error) {
	src := plan.source
	numRows := src.NumRows()
	total := numRows * len(plan.valueCols)
	specs := make([]table.ColumnSpec, 0, len(plan.idCols)+2)
	for _, name := range plan.idCols {
		col, err := src.Schema().GetColumn(name)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, 0, total)
		for range plan.valueCols {
			for row := 0; row < numRows; row++ {
				v, err := src.Get(row, name)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
		}
		specs = append(specs, table.ColumnSpec{Name: name, Type: col.Type(), Nullable: col.Nullable(), Values: values})
	}
	variables := make([]interface{}, 0, total)
	values := make([]interface{}, 0, total)
	nullable := plan.nullable
	for _, valueCol := range plan.valueCols {
		for row := 0; row < numRows; row++ {
			v, err := src.Get(row, valueCol)
			if err != nil {
				return nil, err
			}
			if v == nil {
				nullable = true
			}
			variables = append(variables, valueCol)
			values = append(values, v)
		}
	}
	specs = append(specs,
		table.ColumnSpec{Name: plan.varName, Type: &tabular.StringColumnType{}, Nullable: false, Values: variables},
		table.ColumnSpec{Name: plan.valName, Type: plan.valueType, Nullable: nullable, Values: values})
	return table.FromSpecs(specs)
}

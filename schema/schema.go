// Package schema implements tabular.Schema: the mapping from column
// names to column descriptors which every Table carries.
package schema

import (
	"fmt"
	"sort"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// column describes the position, type and nullability of a
// named field within a Table.
type column struct {
	idx      int
	colType  tabular.ColumnType
	nullable bool
}

// Clone returns a copy of this Column
func (c *column) Clone() tabular.Column {
	return &column{c.idx, c.colType, c.nullable}
}

// Index returns the index of this Column within a Schema
func (c *column) Index() int {
	return c.idx
}

// SetIndex modifies the index of this Column within a Schema
func (c *column) SetIndex(newIndex int) {
	c.idx = newIndex
}

// Type returns the ColumnType of this Column
func (c *column) Type() tabular.ColumnType {
	return c.colType
}

// SetType modifies the ColumnType of this Column
func (c *column) SetType(newType tabular.ColumnType) {
	c.colType = newType
}

// Nullable returns true iff values in this Column may be missing
func (c *column) Nullable() bool {
	return c.nullable
}

// schema is a mapping from column names to column descriptors.
type schema struct {
	schema map[string]*column
}

// CreateSchema is a factory for Schemas
func CreateSchema() tabular.Schema {
	return &schema{
		schema: make(map[string]*column),
	}
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(otherSchema tabular.Schema) error {
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	return s.ForEachColumn(func(name string, col tabular.Column) error {
		otherCol, err := otherSchema.GetColumn(name)
		if err != nil {
			return err
		}
		if col.Index() != otherCol.Index() {
			return fmt.Errorf("Column %s indices do not match", name)
		}
		if tabular.TypeToString(col.Type()) != tabular.TypeToString(otherCol.Type()) {
			return fmt.Errorf("Column %s types do not match", name)
		}
		if col.Nullable() != otherCol.Nullable() {
			return fmt.Errorf("Column %s nullability does not match", name)
		}
		return nil
	})
}

// Clone returns a deep copy of this Schema
func (s *schema) Clone() tabular.Schema {
	newSchema := make(map[string]*column)
	for k, v := range s.schema {
		newSchema[k] = &column{v.idx, v.colType, v.nullable}
	}
	return &schema{schema: newSchema}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.schema)
}

// GetColumn returns the descriptor for a named column
func (s *schema) GetColumn(colName string) (col tabular.Column, err error) {
	c, ok := s.schema[colName]
	if !ok {
		return nil, errors.MissingColumnError{Name: colName}
	}
	return c, nil
}

// GetColumnAt returns the name and descriptor of the column at an index
func (s *schema) GetColumnAt(idx int) (colName string, col tabular.Column, err error) {
	if idx < 0 || idx >= len(s.schema) {
		return "", nil, errors.IndexOutOfRangeError{What: "Column", Index: idx, Length: len(s.schema)}
	}
	for k, v := range s.schema {
		if v.idx == idx {
			return k, v, nil
		}
	}
	return "", nil, errors.IndexOutOfRangeError{What: "Column", Index: idx, Length: len(s.schema)}
}

// HasColumn returns true iff this schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.schema[colName]
	return ok
}

// CreateColumn defines a new column within the Schema
func (s *schema) CreateColumn(colName string, columnType tabular.ColumnType, nullable bool) error {
	if _, exists := s.schema[colName]; exists {
		return errors.DuplicateNameError{Name: colName}
	}
	s.schema[colName] = &column{len(s.schema), columnType, nullable}
	return nil
}

// RenameColumn renames a single column within the Schema
func (s *schema) RenameColumn(oldName string, newName string) error {
	col, ok := s.schema[oldName]
	if !ok {
		return errors.MissingColumnError{Name: oldName}
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.schema[newName]; exists {
		return errors.DuplicateNameError{Name: newName}
	}
	s.schema[newName] = col
	delete(s.schema, oldName)
	return nil
}

// RenameColumns renames several columns at once. With makeUnique,
// colliding target names receive a deterministic numeric suffix
// (_1, _2, ...) in column index order; without it, any collision
// fails before the Schema is altered.
func (s *schema) RenameColumns(mapping map[string]string, makeUnique bool) error {
	for oldName := range mapping {
		if _, ok := s.schema[oldName]; !ok {
			return errors.MissingColumnError{Name: oldName}
		}
	}
	// compute the full target name list in index order before mutating
	names := s.ColumnNames()
	targets := make([]string, len(names))
	for i, name := range names {
		if newName, ok := mapping[name]; ok {
			targets[i] = newName
		} else {
			targets[i] = name
		}
	}
	seen := make(map[string]int)
	for i, target := range targets {
		if n, dup := seen[target]; dup {
			if !makeUnique {
				return errors.DuplicateNameError{Name: target}
			}
			seen[target] = n + 1
			targets[i] = fmt.Sprintf("%s_%d", target, n)
			// the suffixed name itself must not collide
			if _, exists := seen[targets[i]]; exists {
				return errors.DuplicateNameError{Name: targets[i]}
			}
			seen[targets[i]] = 1
		} else {
			seen[target] = 1
		}
	}
	newSchema := make(map[string]*column)
	for i, name := range names {
		newSchema[targets[i]] = s.schema[name]
	}
	s.schema = newSchema
	return nil
}

// WidenColumn promotes the type of a column via the promotion lattice
func (s *schema) WidenColumn(colName string, to tabular.ColumnType) error {
	col, ok := s.schema[colName]
	if !ok {
		return errors.MissingColumnError{Name: colName}
	}
	col.colType = tabular.Promote(col.colType, to)
	return nil
}

// MakeNullable marks a column as permitting missing values
func (s *schema) MakeNullable(colName string) error {
	col, ok := s.schema[colName]
	if !ok {
		return errors.MissingColumnError{Name: colName}
	}
	col.nullable = true
	return nil
}

// RemoveColumn removes a column from the Schema, shifting the
// indices of all later columns down by one
func (s *schema) RemoveColumn(colName string) bool {
	col, ok := s.schema[colName]
	if !ok {
		return false
	}
	removedIdx := col.idx
	delete(s.schema, colName)
	for _, v := range s.schema {
		if v.idx > removedIdx {
			v.idx--
		}
	}
	return true
}

// ReorderColumns rearranges the Schema's column order. newOrder
// must name every column exactly once.
func (s *schema) ReorderColumns(newOrder []string) error {
	if len(newOrder) != len(s.schema) {
		return errors.LengthMismatchError{Name: "column order", Expected: len(s.schema), Actual: len(newOrder)}
	}
	seen := make(map[string]bool)
	for _, name := range newOrder {
		if _, ok := s.schema[name]; !ok {
			return errors.MissingColumnError{Name: name}
		}
		if seen[name] {
			return errors.DuplicateNameError{Name: name}
		}
		seen[name] = true
	}
	for i, name := range newOrder {
		s.schema[name].idx = i
	}
	return nil
}

// ColumnNames returns the names in the schema, in index order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.schema))
	for k, v := range s.schema {
		names[v.idx] = k
	}
	return names
}

// ColumnTypes returns the types in the schema, in index order
func (s *schema) ColumnTypes() []tabular.ColumnType {
	types := make([]tabular.ColumnType, len(s.schema))
	for _, v := range s.schema {
		types[v.idx] = v.colType
	}
	return types
}

// ForEachColumn iterates over the columns in this Schema, in index order
func (s *schema) ForEachColumn(fn func(name string, col tabular.Column) error) error {
	names := make([]string, 0, len(s.schema))
	for k := range s.schema {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.schema[names[i]].idx < s.schema[names[j]].idx
	})
	for _, k := range names {
		if err := fn(k, s.schema[k]); err != nil {
			return err
		}
	}
	return nil
}

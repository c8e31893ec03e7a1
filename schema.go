package tabular

// Schema is a mapping from column names to column descriptors.
// It allows one to obtain descriptors by name, define new columns,
// rename, reorder and remove columns, and introspect the
// (name, type, nullable) triples a Table exposes to serializers.
type Schema interface {
	Clone() Schema                                                                 // Clone returns a deep copy of this Schema
	Equals(otherSchema Schema) error                                               // Equals returns nil iff this and another Schema are equivalent
	NumColumns() int                                                               // NumColumns returns the number of columns in this Schema
	GetColumn(colName string) (col Column, err error)                              // GetColumn returns the descriptor for a named column
	GetColumnAt(idx int) (colName string, col Column, err error)                   // GetColumnAt returns the name and descriptor of the column at an index
	HasColumn(colName string) bool                                                 // HasColumn returns true iff this schema contains a column with the given name
	CreateColumn(colName string, columnType ColumnType, nullable bool) error       // CreateColumn defines a new column within the Schema
	RenameColumn(oldName string, newName string) error                             // RenameColumn renames a single column within the Schema
	RenameColumns(mapping map[string]string, makeUnique bool) error                // RenameColumns renames several columns at once, optionally suffixing collisions
	WidenColumn(colName string, to ColumnType) error                               // WidenColumn promotes the type of a column via the promotion lattice
	MakeNullable(colName string) error                                             // MakeNullable marks a column as permitting missing values
	RemoveColumn(colName string) (wasRemoved bool)                                 // RemoveColumn removes a column from the Schema
	ReorderColumns(newOrder []string) error                                        // ReorderColumns rearranges the Schema's column order
	ColumnNames() []string                                                         // ColumnNames returns the names in the schema, in index order
	ColumnTypes() []ColumnType                                                     // ColumnTypes returns the types in the schema, in index order
	ForEachColumn(fn func(name string, col Column) error) error                    // ForEachColumn iterates over columns, in index order
}

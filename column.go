package tabular

// Column describes a single named column within a Schema:
// its position, declared element type, and nullability.
type Column interface {
	Clone() Column              // Clone returns a copy of this Column
	Index() int                 // Index returns the index of this Column within a Schema
	SetIndex(newIndex int)      // Modifies the Index of this Column within a Schema
	Type() ColumnType           // Type returns the ColumnType of this Column
	SetType(newType ColumnType) // Modifies the ColumnType of this Column, used during type promotion
	Nullable() bool             // Nullable returns true iff values in this Column may be missing
}

package tabular

// SelectionMode determines the ownership semantics of a selection:
// Share returns structures referencing the original backing storage,
// while Copy allocates fresh, independent storage.
type SelectionMode int

const (
	// Copy mode selection allocates new backing storage, fully independent of the source
	Copy SelectionMode = iota
	// Share mode selection references the source's backing storage, and is
	// valid only while the source Table is alive and structurally unaltered
	Share
)

// AppendPolicy determines how AppendRow treats keys which do not
// line up exactly with a Table's column set.
type AppendPolicy int

const (
	// Strict append fails on absent or unknown keys
	Strict AppendPolicy = iota
	// Fill append treats absent keys as missing values
	Fill
	// Union append adds unknown keys as new nullable columns, backfilling
	// prior rows with missing values, and widens existing column types
	// via the promotion lattice when incoming values require it
	Union
)

// A Table is an ordered collection of named, typed, nullable columns
// sharing a common row count. A Table may own its backing storage
// exclusively, or share it with other Tables and Views.
type Table interface {
	ID() string          // ID retrieves the unique ID of this Table
	Schema() Schema      // Schema returns a read-only copy of the schema of this Table
	NumRows() int        // NumRows retrieves the number of rows in this Table
	NumColumns() int     // NumColumns retrieves the number of columns in this Table
	Generation() uint64  // Generation retrieves the structural generation of the backing storage
	IsView() bool        // IsView returns true iff this Table is a non-owning projection of another
	ToString() string    // ToString returns a string representation of this Table
	CheckValid() error   // CheckValid verifies that all columns still share the Table's row count

	Get(row int, colName string) (interface{}, error)  // Get returns a cell value by row and column name, or nil if missing
	GetAt(row int, col int) (interface{}, error)       // GetAt returns a cell value by row and column index, or nil if missing
	Set(row int, colName string, value interface{}) error // Set modifies a cell value by row and column name
	SetAt(row int, col int, value interface{}) error      // SetAt modifies a cell value by row and column index
	IsNil(row int, colName string) (bool, error)          // IsNil returns true iff the given cell is missing
	SetNil(row int, colName string) error                 // SetNil marks the given cell missing
	GetRow(rowNum int) Row                                // GetRow retrieves a writable handle onto a specific row
	ForEachRow(fn MapOperation) error                     // ForEachRow iterates over read-only handles of every row in order

	Select(rows []int, colNames []string, rowMode SelectionMode, colMode SelectionMode) (Table, error) // Select projects rows and columns with independent ownership modes
	SelectColumns(colNames []string, mode SelectionMode) (Table, error)                               // SelectColumns projects a subset of columns over all rows
	SelectRows(rows []int, mode SelectionMode) (Table, error)                                         // SelectRows projects a subset of rows over all columns
	FilterRows(fn FilterOperation, mode SelectionMode) (Table, error)                                 // FilterRows retains the rows for which fn returns true
	Copy() Table                                                                                      // Copy produces a Table equal in content with no shared backing storage

	Rename(mapping map[string]string, makeUnique bool) error                                             // Rename renames columns, optionally suffixing collisions deterministically
	ReorderColumns(newOrder []string) error                                                              // ReorderColumns rearranges column order
	InsertColumn(pos int, colName string, columnType ColumnType, nullable bool, values interface{}) error // InsertColumn adds a column at a position, broadcasting length-1 values
	DropColumn(colName string) error                                                                     // DropColumn removes a column and its backing storage
	AppendRow(values map[string]interface{}, policy AppendPolicy) error                                  // AppendRow grows every column by one according to the append policy
	DeleteRows(rows []int) error                                                                         // DeleteRows removes the given rows from every column
}

// A View is a Table implementation which holds a reference to a
// parent Table plus explicit row and column index lists, forwarding
// reads and cell writes to the parent's backing storage. A View is
// invalidated by any structural change to its parent, detected via
// a generation counter on every access.
type View interface {
	Table
	Parent() Table       // Parent returns the Table this View projects
	RowIndexes() []int   // RowIndexes returns the parent row index for each view row
	ColumnIndexes() []int // ColumnIndexes returns the parent column index for each view column
}

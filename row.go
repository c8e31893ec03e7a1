package tabular

import "time"

// Row is a handle onto a single row of a Table. In practice, users
// of Row call its getter and setter methods to retrieve, manipulate
// and store data. Handles produced by read-only operations (such as
// filtering) reject all mutation.
type Row interface {
	Schema() Schema                                     // Schema returns a read-only copy of the schema for a row
	Index() int                                         // Index returns the position of this row within its Table
	ToString() string                                   // ToString returns a string representation of this row
	IsNil(colName string) bool                          // IsNil returns true iff the given column value is missing in this row. If an error occurs, this function will return false.
	SetNil(colName string) error                        // SetNil sets the given column value to missing within this row
	Get(colName string) (col interface{}, err error)    // Get returns the value of any column as an interface{}, or nil if it is missing
	GetBool(colName string) (col bool, err error)       // GetBool retrieves a single bool from the column with the given name
	GetInt64(colName string) (col int64, err error)     // GetInt64 retrieves a single int64 from the column with the given name
	GetFloat64(colName string) (col float64, err error) // GetFloat64 retrieves a single float64 from the column with the given name
	GetString(colName string) (col string, err error)   // GetString retrieves a single string from the column with the given name
	GetTime(colName string) (col time.Time, err error)  // GetTime retrieves a single Time from the column with the given name
	Set(colName string, value interface{}) error        // Set modifies any column value in this row, performing kind checks
	SetBool(colName string, value bool) error           // SetBool modifies a single bool in the column with the given name
	SetInt64(colName string, value int64) error         // SetInt64 modifies a single int64 in the column with the given name
	SetFloat64(colName string, value float64) error     // SetFloat64 modifies a single float64 in the column with the given name
	SetString(colName string, value string) error       // SetString modifies a single string in the column with the given name
	SetTime(colName string, value time.Time) error      // SetTime modifies a single Time in the column with the given name
}

package tabular

// MapOperation - A generic function for visiting Rows
type MapOperation func(row Row) error

// FilterOperation - A generic function for determining whether or not a Row should be retained
type FilterOperation func(row Row) (bool, error)

// GroupOperation - A generic function for turning one group of a Table into a new Table
type GroupOperation func(group Table) (Table, error)

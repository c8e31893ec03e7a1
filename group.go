package tabular

// MatchMissing is the policy governing whether missing join or
// group keys match each other, never match, or cause an error.
type MatchMissing int

const (
	// MatchMissingError fails with a MissingKeyError if any key contains a missing value
	MatchMissingError MatchMissing = iota
	// MatchMissingEqual treats a missing key value as equal to another missing key value
	MatchMissingEqual
	// MatchMissingNotEqual treats a missing key value as matching nothing, not even another missing
	MatchMissingNotEqual
)

// A Reduction folds the values of one column within one group down
// to a single value. Missing values are presented as nil entries.
type Reduction interface {
	OutputType(in ColumnType) (ColumnType, error)    // OutputType returns the column type produced when reducing a column of type in
	Reduce(values []interface{}) (interface{}, error) // Reduce folds one group's values for one column into a single value, or nil for missing
}

// An Aggregation pairs an input column with a Reduction and an
// output column name. An empty As defaults to the input name.
type Aggregation struct {
	Column string
	As     string
	Reduce Reduction
}

// A GroupIndex partitions the rows of a Table by the distinct value
// combinations of a set of key columns, supporting
// split-apply-combine. A GroupIndex is subordinate to its source
// Table and is invalidated by structural changes to it.
type GroupIndex interface {
	Source() Table                                        // Source returns the Table this GroupIndex partitions
	KeyColumns() []string                                 // KeyColumns returns the names of the grouping key columns
	NumGroups() int                                       // NumGroups returns the number of distinct key combinations
	GroupKey(group int) []interface{}                     // GroupKey returns the key tuple of a group, nil entries marking missing
	GroupRows(group int) []int                            // GroupRows returns the ordered source row indices of a group
	ForEachGroup(fn func(group int, rows []int) error) error // ForEachGroup iterates groups in group order
	Combine(aggs ...Aggregation) (Table, error)           // Combine emits exactly one row per group, keys plus reduced values
	CombineWith(fn GroupOperation) (Table, error)         // CombineWith emits whatever rows fn produces per group, keys broadcast; empty results drop the group
	Transform(aggs ...Aggregation) (Table, error)         // Transform emits one row per source row, reductions broadcast within each group
	TransformWith(fn GroupOperation) (Table, error)       // TransformWith broadcasts fn's per-group rows back onto source rows
}

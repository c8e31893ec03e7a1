// Package group implements tabular.GroupIndex: the partition of a
// Table's rows by key-column value combinations which underpins
// split-apply-combine.
package group

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/internal/hashkey"
	"github.com/go-tabular/tabular/logging"
)

// Options configures how GroupBy partitions rows.
type Options struct {
	// Sort orders groups by key tuple instead of first appearance
	Sort bool
	// SkipMissing drops rows whose key tuple contains a missing value
	SkipMissing bool
	// CoalesceMissing collapses all missing-containing rows into a
	// single group instead of one group per distinct combination
	CoalesceMissing bool
	// Parallelism > 1 spreads Combine reductions across that many
	// goroutines; the source table is only read
	Parallelism int
}

type groupEntry struct {
	key  []interface{}
	rows []int
}

// groupIndex is Tabular's implementation of GroupIndex. It captures
// its source's generation at construction and revalidates it on
// every operation.
type groupIndex struct {
	source     tabular.Table
	keyCols    []string
	opts       Options
	generation uint64
	groups     []*groupEntry
}

// GroupBy partitions the rows of a Table by the distinct value
// combinations of the key columns, preserving first-appearance
// order unless opts.Sort is set.
func GroupBy(t tabular.Table, keyColumns []string, opts *Options) (tabular.GroupIndex, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(keyColumns) == 0 {
		return nil, errors.ValidationError{Subject: "group keys", Reason: "at least one key column is required"}
	}
	if err := t.CheckValid(); err != nil {
		return nil, err
	}
	sch := t.Schema()
	for _, name := range keyColumns {
		if !sch.HasColumn(name) {
			return nil, errors.MissingColumnError{Name: name}
		}
	}
	gi := &groupIndex{
		source:     t,
		keyCols:    append([]string{}, keyColumns...),
		opts:       *opts,
		generation: t.Generation(),
	}
	buckets := make(map[uint64][]int) // hash -> indices into gi.groups
	numRows := t.NumRows()
	coalesced := -1
	for row := 0; row < numRows; row++ {
		key := make([]interface{}, len(keyColumns))
		hasMissing := false
		for i, name := range keyColumns {
			v, err := t.Get(row, name)
			if err != nil {
				return nil, err
			}
			if v == nil {
				hasMissing = true
			}
			key[i] = v
		}
		if hasMissing {
			if opts.SkipMissing {
				continue
			}
			if opts.CoalesceMissing {
				if coalesced == -1 {
					coalesced = len(gi.groups)
					gi.groups = append(gi.groups, &groupEntry{key: key, rows: []int{row}})
				} else {
					gi.groups[coalesced].rows = append(gi.groups[coalesced].rows, row)
				}
				continue
			}
		}
		h := hashkey.Hash(key)
		found := false
		for _, idx := range buckets[h] {
			if hashkey.Equal(gi.groups[idx].key, key) {
				gi.groups[idx].rows = append(gi.groups[idx].rows, row)
				found = true
				break
			}
		}
		if !found {
			buckets[h] = append(buckets[h], len(gi.groups))
			gi.groups = append(gi.groups, &groupEntry{key: key, rows: []int{row}})
		}
	}
	if opts.Sort {
		sort.SliceStable(gi.groups, func(i, j int) bool {
			return hashkey.Less(gi.groups[i].key, gi.groups[j].key)
		})
	}
	logging.Debug("grouped table",
		zap.String("table", t.ID()),
		zap.Strings("keys", keyColumns),
		zap.Int("groups", len(gi.groups)))
	return gi, nil
}

// checkFresh fails if the source changed structurally since this
// GroupIndex was built
func (gi *groupIndex) checkFresh() error {
	if gi.source.Generation() != gi.generation {
		return errors.StaleViewError{TableID: gi.source.ID(), Expected: gi.generation, Actual: gi.source.Generation()}
	}
	return gi.source.CheckValid()
}

// Source returns the Table this GroupIndex partitions
func (gi *groupIndex) Source() tabular.Table {
	return gi.source
}

// KeyColumns returns the names of the grouping key columns
func (gi *groupIndex) KeyColumns() []string {
	out := make([]string, len(gi.keyCols))
	copy(out, gi.keyCols)
	return out
}

// NumGroups returns the number of distinct key combinations
func (gi *groupIndex) NumGroups() int {
	return len(gi.groups)
}

// GroupKey returns the key tuple of a group, nil entries marking missing
func (gi *groupIndex) GroupKey(group int) []interface{} {
	if group < 0 || group >= len(gi.groups) {
		return nil
	}
	out := make([]interface{}, len(gi.groups[group].key))
	copy(out, gi.groups[group].key)
	return out
}

// GroupRows returns the ordered source row indices of a group
func (gi *groupIndex) GroupRows(group int) []int {
	if group < 0 || group >= len(gi.groups) {
		return nil
	}
	out := make([]int, len(gi.groups[group].rows))
	copy(out, gi.groups[group].rows)
	return out
}

// ForEachGroup iterates groups in group order
func (gi *groupIndex) ForEachGroup(fn func(group int, rows []int) error) error {
	if err := gi.checkFresh(); err != nil {
		return err
	}
	for i, g := range gi.groups {
		if err := fn(i, g.rows); err != nil {
			return err
		}
	}
	return nil
}

func (gi *groupIndex) keyName(group int) string {
	return fmt.Sprintf("%v", gi.groups[group].key)
}

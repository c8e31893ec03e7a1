// Package join implements relational joins between two Tables: the
// classic inner, left, right, outer, semi, anti and cross variants,
// with configurable missing-key matching and name collision policy.
package join

import (
	"fmt"

	"go.uber.org/zap"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/internal/hashkey"
	"github.com/go-tabular/tabular/logging"
)

// Kind selects the join variant.
type Kind int

const (
	// Inner emits only key matches, the full per-key cross product
	Inner Kind = iota
	// Left preserves every left row, unmatched rows carrying missing right values
	Left
	// Right preserves every right row, unmatched rows carrying missing left values
	Right
	// Outer preserves every row of both sides
	Outer
	// Semi emits each left row with at least one match, once, left columns only
	Semi
	// Anti emits each left row with no match, left columns only
	Anti
	// Cross emits the full cross product, ignoring keys
	Cross
)

// KindToString returns a human-readable name for a join Kind
func KindToString(k Kind) string {
	switch k {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Outer:
		return "outer"
	case Semi:
		return "semi"
	case Anti:
		return "anti"
	case Cross:
		return "cross"
	default:
		return "unknown"
	}
}

// Key pairs one left-table column with one right-table column.
type Key struct {
	Left  string
	Right string
}

// On builds a key list matching identically-named columns on both sides
func On(names ...string) []Key {
	keys := make([]Key, len(names))
	for i, name := range names {
		keys[i] = Key{Left: name, Right: name}
	}
	return keys
}

// Pair builds a single key matching a left column against a
// differently-named right column
func Pair(left string, right string) Key {
	return Key{Left: left, Right: right}
}

// Options configures a join.
type Options struct {
	// MatchMissing governs missing key values: fail, match each
	// other, or match nothing
	MatchMissing tabular.MatchMissing
	// MakeUnique suffixes colliding non-key output names instead of
	// failing with a DuplicateNameError
	MakeUnique bool
	// ValidateLeftUnique fails before joining if the left side has
	// duplicate key tuples
	ValidateLeftUnique bool
	// ValidateRightUnique fails before joining if the right side has
	// duplicate key tuples
	ValidateRightUnique bool
}

// rowPair is one output row: a left source row and a right source
// row, either (but not both) possibly absent (-1).
type rowPair struct {
	left  int
	right int
}

// Join joins two Tables on the given key pairs. Duplicate keys on
// either side emit the full per-key cross product of matching rows.
func Join(kind Kind, left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := left.CheckValid(); err != nil {
		return nil, err
	}
	if err := right.CheckValid(); err != nil {
		return nil, err
	}
	if kind == Cross {
		return crossJoin(left, right, opts)
	}
	if len(keys) == 0 {
		return nil, errors.NoKeyColumnError{}
	}
	if kind == Outer && opts.MatchMissing == tabular.MatchMissingNotEqual {
		return nil, errors.UnsupportedOptionError{Option: "matchMissing=notequal",
			Reason: "an outer join cannot preserve rows whose keys match nothing"}
	}
	for _, k := range keys {
		if !left.Schema().HasColumn(k.Left) {
			return nil, errors.MissingColumnError{Name: k.Left}
		}
		if !right.Schema().HasColumn(k.Right) {
			return nil, errors.MissingColumnError{Name: k.Right}
		}
	}
	leftCols := make([]string, len(keys))
	rightCols := make([]string, len(keys))
	for i, k := range keys {
		leftCols[i] = k.Left
		rightCols[i] = k.Right
	}
	if opts.MatchMissing == tabular.MatchMissingError {
		if err := failOnMissingKeys(left, leftCols); err != nil {
			return nil, err
		}
		if err := failOnMissingKeys(right, rightCols); err != nil {
			return nil, err
		}
	}
	if opts.ValidateLeftUnique {
		if err := validateUnique(left, leftCols, "left"); err != nil {
			return nil, err
		}
	}
	if opts.ValidateRightUnique {
		if err := validateUnique(right, rightCols, "right"); err != nil {
			return nil, err
		}
	}
	var pairs []rowPair
	var err error
	if kind == Right {
		pairs, err = probePairs(right, rightCols, left, leftCols, opts, true, false)
		for i := range pairs {
			pairs[i].left, pairs[i].right = pairs[i].right, pairs[i].left
		}
	} else {
		keepUnmatched := kind == Left || kind == Outer || kind == Anti
		pairs, err = probePairs(left, leftCols, right, rightCols, opts, keepUnmatched, kind == Outer)
	}
	if err != nil {
		return nil, err
	}
	logging.Debug("joined tables",
		zap.String("kind", KindToString(kind)),
		zap.String("left", left.ID()),
		zap.String("right", right.ID()),
		zap.Int("rows", len(pairs)))
	if kind == Semi || kind == Anti {
		rows := make([]int, 0, len(pairs))
		matched := kind == Semi
		for _, p := range pairs {
			if (p.right >= 0) == matched {
				if matched && len(rows) > 0 && rows[len(rows)-1] == p.left {
					continue
				}
				rows = append(rows, p.left)
			}
		}
		return left.SelectRows(rows, tabular.Copy)
	}
	return assemble(left, right, keys, opts, pairs)
}

// InnerJoin emits the full per-key cross product of matching rows
func InnerJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Inner, left, right, keys, opts)
}

// LeftJoin preserves every left row, filling unmatched right columns with missing
func LeftJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Left, left, right, keys, opts)
}

// RightJoin preserves every right row, filling unmatched left columns with missing
func RightJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Right, left, right, keys, opts)
}

// OuterJoin preserves every row of both sides
func OuterJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Outer, left, right, keys, opts)
}

// SemiJoin emits each left row with at least one right match, left columns only
func SemiJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Semi, left, right, keys, opts)
}

// AntiJoin emits each left row with no right match, left columns only
func AntiJoin(left tabular.Table, right tabular.Table, keys []Key, opts *Options) (tabular.Table, error) {
	return Join(Anti, left, right, keys, opts)
}

// CrossJoin emits the full cross product of both tables' rows
func CrossJoin(left tabular.Table, right tabular.Table, opts *Options) (tabular.Table, error) {
	return Join(Cross, left, right, nil, opts)
}

// rowKey reads one row's key tuple
func rowKey(t tabular.Table, row int, cols []string) ([]interface{}, bool, error) {
	key := make([]interface{}, len(cols))
	hasMissing := false
	for i, name := range cols {
		v, err := t.Get(row, name)
		if err != nil {
			return nil, false, err
		}
		if v == nil {
			hasMissing = true
		}
		key[i] = v
	}
	return key, hasMissing, nil
}

// failOnMissingKeys enforces the default missing-key policy
func failOnMissingKeys(t tabular.Table, cols []string) error {
	numRows := t.NumRows()
	for row := 0; row < numRows; row++ {
		for _, name := range cols {
			v, err := t.Get(row, name)
			if err != nil {
				return err
			}
			if v == nil {
				return errors.MissingKeyError{Column: name, Row: row}
			}
		}
	}
	return nil
}

// validateUnique fails if any key tuple occurs more than once
func validateUnique(t tabular.Table, cols []string, side string) error {
	type entry struct {
		key []interface{}
	}
	buckets := make(map[uint64][]entry)
	numRows := t.NumRows()
	for row := 0; row < numRows; row++ {
		key, _, err := rowKey(t, row, cols)
		if err != nil {
			return err
		}
		h := hashkey.Hash(key)
		for _, e := range buckets[h] {
			if hashkey.Equal(e.key, key) {
				return errors.ValidationError{Subject: side + " join keys",
					Reason: fmt.Sprintf("key %v is not unique", key)}
			}
		}
		buckets[h] = append(buckets[h], entry{key: key})
	}
	return nil
}

// keyBucket holds all rows of one side sharing one key tuple
type keyBucket struct {
	key     []interface{}
	rows    []int
	matched bool
}

// buildIndex hashes one side's key tuples into buckets. Rows whose
// key contains a missing value are excluded when notEqual is set.
func buildIndex(t tabular.Table, cols []string, notEqual bool) (map[uint64][]*keyBucket, error) {
	index := make(map[uint64][]*keyBucket)
	numRows := t.NumRows()
	for row := 0; row < numRows; row++ {
		key, hasMissing, err := rowKey(t, row, cols)
		if err != nil {
			return nil, err
		}
		if hasMissing && notEqual {
			continue
		}
		h := hashkey.Hash(key)
		found := false
		for _, b := range index[h] {
			if hashkey.Equal(b.key, key) {
				b.rows = append(b.rows, row)
				found = true
				break
			}
		}
		if !found {
			index[h] = append(index[h], &keyBucket{key: key, rows: []int{row}})
		}
	}
	return index, nil
}

// probePairs builds the matched row pairs of a join: the probe side
// is scanned in row order against a hash index over the build side.
// keepUnmatched emits probe rows with no match paired against -1,
// and appendUnmatchedBuild additionally emits build-side rows no
// probe row reached.
func probePairs(probe tabular.Table, probeCols []string, build tabular.Table, buildCols []string, opts *Options, keepUnmatched bool, appendUnmatchedBuild bool) ([]rowPair, error) {
	notEqual := opts.MatchMissing == tabular.MatchMissingNotEqual
	index, err := buildIndex(build, buildCols, notEqual)
	if err != nil {
		return nil, err
	}
	var pairs []rowPair
	numRows := probe.NumRows()
	for row := 0; row < numRows; row++ {
		key, hasMissing, err := rowKey(probe, row, probeCols)
		if err != nil {
			return nil, err
		}
		var bucket *keyBucket
		if !(hasMissing && notEqual) {
			for _, b := range index[hashkey.Hash(key)] {
				if hashkey.Equal(b.key, key) {
					bucket = b
					break
				}
			}
		}
		if bucket == nil {
			pairs = append(pairs, rowPair{left: row, right: -1})
			continue
		}
		bucket.matched = true
		for _, other := range bucket.rows {
			pairs = append(pairs, rowPair{left: row, right: other})
		}
	}
	if !keepUnmatched {
		kept := pairs[:0]
		for _, p := range pairs {
			if p.right >= 0 {
				kept = append(kept, p)
			}
		}
		pairs = kept
	}
	if appendUnmatchedBuild {
		numBuild := build.NumRows()
		seen := make([]bool, numBuild)
		for _, byHash := range index {
			for _, b := range byHash {
				if b.matched {
					for _, row := range b.rows {
						seen[row] = true
					}
				}
			}
		}
		for row := 0; row < numBuild; row++ {
			if !seen[row] {
				pairs = append(pairs, rowPair{left: -1, right: row})
			}
		}
	}
	return pairs, nil
}

// crossJoin emits every combination of left and right rows, left-major
func crossJoin(left tabular.Table, right tabular.Table, opts *Options) (tabular.Table, error) {
	numLeft, numRight := left.NumRows(), right.NumRows()
	pairs := make([]rowPair, 0, numLeft*numRight)
	for l := 0; l < numLeft; l++ {
		for r := 0; r < numRight; r++ {
			pairs = append(pairs, rowPair{left: l, right: r})
		}
	}
	return assemble(left, right, nil, opts, pairs)
}

package group

import (
	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/internal/hashkey"
)

// First returns a Reduction yielding the first value of each group,
// in source row order. Missing values count.
func First() tabular.Reduction {
	return &firstReduction{}
}

// Count returns a Reduction yielding the number of rows in each
// group, missing values included.
func Count() tabular.Reduction {
	return &countReduction{}
}

// Sum returns a Reduction yielding the sum of each group's values,
// skipping missing entries. An empty or all-missing group sums to
// zero. Sum only applies to numeric columns.
func Sum() tabular.Reduction {
	return &sumReduction{}
}

// Mean returns a Reduction yielding the arithmetic mean of each
// group's values as a float64, skipping missing entries. An empty or
// all-missing group yields missing. Mean only applies to numeric
// columns.
func Mean() tabular.Reduction {
	return &meanReduction{}
}

// Min returns a Reduction yielding the smallest value in each group,
// skipping missing entries. An empty or all-missing group yields
// missing.
func Min() tabular.Reduction {
	return &minReduction{}
}

// Max returns a Reduction yielding the largest value in each group,
// skipping missing entries. An empty or all-missing group yields
// missing.
func Max() tabular.Reduction {
	return &maxReduction{}
}

type firstReduction struct{}

func (r *firstReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	return in, nil
}

func (r *firstReduction) Reduce(values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

type countReduction struct{}

func (r *countReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	return &tabular.Int64ColumnType{}, nil
}

func (r *countReduction) Reduce(values []interface{}) (interface{}, error) {
	return int64(len(values)), nil
}

// requireNumeric rejects input types a numeric reduction cannot fold
func requireNumeric(name string, in tabular.ColumnType) error {
	if !tabular.IsNumeric(in) {
		return errors.UnsupportedOptionError{Option: name,
			Reason: "column type " + tabular.TypeToString(in) + " is not numeric"}
	}
	return nil
}

type sumReduction struct{}

func (r *sumReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	if err := requireNumeric("sum", in); err != nil {
		return nil, err
	}
	return in, nil
}

func (r *sumReduction) Reduce(values []interface{}) (interface{}, error) {
	var isum int64
	var fsum float64
	sawFloat := false
	sawAny := false
	for _, v := range values {
		switch tv := v.(type) {
		case nil:
		case int64:
			isum += tv
			sawAny = true
		case float64:
			fsum += tv
			sawFloat = true
			sawAny = true
		default:
			return nil, errors.UnsupportedOptionError{Option: "sum", Reason: "non-numeric value in column"}
		}
	}
	if !sawAny {
		return int64(0), nil
	}
	if sawFloat {
		return fsum + float64(isum), nil
	}
	return isum, nil
}

type meanReduction struct{}

func (r *meanReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	if err := requireNumeric("mean", in); err != nil {
		return nil, err
	}
	return &tabular.Float64ColumnType{}, nil
}

func (r *meanReduction) Reduce(values []interface{}) (interface{}, error) {
	var sum float64
	n := 0
	for _, v := range values {
		switch tv := v.(type) {
		case nil:
		case int64:
			sum += float64(tv)
			n++
		case float64:
			sum += tv
			n++
		default:
			return nil, errors.UnsupportedOptionError{Option: "mean", Reason: "non-numeric value in column"}
		}
	}
	if n == 0 {
		return nil, nil
	}
	return sum / float64(n), nil
}

type minReduction struct{}

func (r *minReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	return in, nil
}

func (r *minReduction) Reduce(values []interface{}) (interface{}, error) {
	var best interface{}
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil || hashkey.Compare(v, best) < 0 {
			best = v
		}
	}
	return best, nil
}

type maxReduction struct{}

func (r *maxReduction) OutputType(in tabular.ColumnType) (tabular.ColumnType, error) {
	return in, nil
}

func (r *maxReduction) Reduce(values []interface{}) (interface{}, error) {
	var best interface{}
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil || hashkey.Compare(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

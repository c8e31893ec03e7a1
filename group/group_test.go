package group

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
	"github.com/go-tabular/tabular/table"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func createSalesTable(t *testing.T) tabular.Table {
	tbl, err := table.FromSpecs([]table.ColumnSpec{
		{Name: "region", Type: &tabular.StringColumnType{}, Nullable: true, Values: []interface{}{"east", "west", "east", nil, "west"}},
		{Name: "units", Type: &tabular.Int64ColumnType{}, Values: []interface{}{int64(10), int64(20), int64(30), int64(40), int64(50)}},
		{Name: "price", Type: &tabular.Float64ColumnType{}, Nullable: true, Values: []interface{}{1.0, 2.0, nil, 4.0, 5.0}},
	})
	require.Nil(t, err)
	return tbl
}

func TestGroupByFirstAppearanceOrder(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)
	require.Equal(t, 3, gi.NumGroups())
	require.Equal(t, []interface{}{"east"}, gi.GroupKey(0))
	require.Equal(t, []interface{}{"west"}, gi.GroupKey(1))
	require.Equal(t, []interface{}{nil}, gi.GroupKey(2))
	require.Equal(t, []int{0, 2}, gi.GroupRows(0))
	require.Equal(t, []int{1, 4}, gi.GroupRows(1))
	require.Equal(t, []int{3}, gi.GroupRows(2))
}

func TestGroupBySorted(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, &Options{Sort: true})
	require.Nil(t, err)
	require.Equal(t, []interface{}{"east"}, gi.GroupKey(0))
	require.Equal(t, []interface{}{"west"}, gi.GroupKey(1))
	// missing keys sort last
	require.Equal(t, []interface{}{nil}, gi.GroupKey(2))
}

func TestGroupBySkipMissing(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, &Options{SkipMissing: true})
	require.Nil(t, err)
	require.Equal(t, 2, gi.NumGroups())
}

func TestGroupByValidation(t *testing.T) {
	tbl := createSalesTable(t)
	_, err := GroupBy(tbl, nil, nil)
	require.IsType(t, errors.ValidationError{}, err)
	_, err = GroupBy(tbl, []string{"nope"}, nil)
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestCombineReductions(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	out, err := gi.Combine(
		tabular.Aggregation{Column: "units", As: "total", Reduce: Sum()},
		tabular.Aggregation{Column: "units", As: "n", Reduce: Count()},
		tabular.Aggregation{Column: "price", As: "avg", Reduce: Mean()},
	)
	require.Nil(t, err)
	require.Equal(t, 3, out.NumRows())
	require.Equal(t, []string{"region", "total", "n", "avg"}, out.Schema().ColumnNames())

	// east: rows 0 and 2
	v, err := out.Get(0, "total")
	require.Nil(t, err)
	require.Equal(t, int64(40), v)
	v, err = out.Get(0, "n")
	require.Nil(t, err)
	require.Equal(t, int64(2), v)
	// east's price has one missing entry, skipped by Mean
	v, err = out.Get(0, "avg")
	require.Nil(t, err)
	require.Equal(t, 1.0, v)

	// the missing-region group survives as its own row
	v, err = out.Get(2, "region")
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = out.Get(2, "total")
	require.Nil(t, err)
	require.Equal(t, int64(40), v)
}

func TestCombineParallelMatchesSequential(t *testing.T) {
	tbl := createSalesTable(t)
	seqIdx, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)
	parIdx, err := GroupBy(tbl, []string{"region"}, &Options{Parallelism: 4})
	require.Nil(t, err)

	aggs := []tabular.Aggregation{
		{Column: "units", As: "lo", Reduce: Min()},
		{Column: "units", As: "hi", Reduce: Max()},
	}
	seq, err := seqIdx.Combine(aggs...)
	require.Nil(t, err)
	par, err := parIdx.Combine(aggs...)
	require.Nil(t, err)
	require.Equal(t, seq.ToString(), par.ToString())
}

func TestCombineNameCollisions(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	_, err = gi.Combine(tabular.Aggregation{Column: "units", As: "region", Reduce: Sum()})
	require.IsType(t, errors.DuplicateNameError{}, err)

	_, err = gi.Combine(
		tabular.Aggregation{Column: "units", Reduce: Sum()},
		tabular.Aggregation{Column: "units", Reduce: Count()},
	)
	require.IsType(t, errors.DuplicateNameError{}, err)
}

func TestCombineRejectsNonNumericReduction(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)
	_, err = gi.Combine(tabular.Aggregation{Column: "region", As: "s", Reduce: Sum()})
	require.NotNil(t, err)
}

func TestTransformBroadcastsWithinGroups(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	out, err := gi.Transform(tabular.Aggregation{Column: "units", As: "total", Reduce: Sum()})
	require.Nil(t, err)
	// original row count and order preserved
	require.Equal(t, 5, out.NumRows())
	require.Equal(t, []string{"region", "units", "price", "total"}, out.Schema().ColumnNames())

	expected := []int64{40, 70, 40, 40, 70}
	for i, want := range expected {
		v, err := out.Get(i, "total")
		require.Nil(t, err)
		require.Equal(t, want, v)
	}
}

func TestTransformReplacesNamedColumn(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	out, err := gi.Transform(tabular.Aggregation{Column: "units", As: "units", Reduce: Max()})
	require.Nil(t, err)
	require.Equal(t, []string{"region", "units", "price"}, out.Schema().ColumnNames())
	v, err := out.Get(0, "units")
	require.Nil(t, err)
	require.Equal(t, int64(30), v)
}

func TestGroupFirstYieldsOneRowPerKey(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)
	out, err := gi.Combine(tabular.Aggregation{Column: "units", Reduce: First()})
	require.Nil(t, err)
	require.Equal(t, gi.NumGroups(), out.NumRows())
	v, err := out.Get(1, "units")
	require.Nil(t, err)
	require.Equal(t, int64(20), v)
}

func TestCombineWith(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	// emit one row per group member above the first, dropping
	// single-row groups entirely
	out, err := gi.CombineWith(func(group tabular.Table) (tabular.Table, error) {
		if group.NumRows() < 2 {
			return nil, nil
		}
		return group.Select([]int{1}, []string{"units", "price"}, tabular.Copy, tabular.Copy)
	})
	require.Nil(t, err)
	require.Equal(t, 2, out.NumRows())
	// key columns broadcast across each group's emitted rows
	v, err := out.Get(0, "region")
	require.Nil(t, err)
	require.Equal(t, "east", v)
	v, err = out.Get(0, "units")
	require.Nil(t, err)
	require.Equal(t, int64(30), v)
}

func TestCombineWithAllGroupsDropped(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	out, err := gi.CombineWith(func(group tabular.Table) (tabular.Table, error) {
		return nil, nil
	})
	require.Nil(t, err)
	require.Equal(t, 0, out.NumRows())
	require.Equal(t, []string{"region"}, out.Schema().ColumnNames())
}

func TestCombineWithRejectsKeyCollision(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)
	_, err = gi.CombineWith(func(group tabular.Table) (tabular.Table, error) {
		return group.Copy(), nil
	})
	require.IsType(t, errors.DuplicateNameError{}, err)
}

func TestTransformWithBroadcastAndPositional(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	// single-row results broadcast across the group
	out, err := gi.TransformWith(func(group tabular.Table) (tabular.Table, error) {
		return group.Select([]int{0}, []string{"units"}, tabular.Copy, tabular.Copy)
	})
	require.Nil(t, err)
	require.Equal(t, 5, out.NumRows())
	v, err := out.Get(2, "units")
	require.Nil(t, err)
	require.Equal(t, int64(10), v)

	// full-size results map positionally
	out, err = gi.TransformWith(func(group tabular.Table) (tabular.Table, error) {
		return group.SelectColumns([]string{"units"}, tabular.Copy)
	})
	require.Nil(t, err)
	v, err = out.Get(2, "units")
	require.Nil(t, err)
	require.Equal(t, int64(30), v)
}

func TestTransformWithRejectsEmptyAndRaggedResults(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	_, err = gi.TransformWith(func(group tabular.Table) (tabular.Table, error) {
		return nil, nil
	})
	require.IsType(t, errors.EmptyGroupResultError{}, err)

	_, err = gi.TransformWith(func(group tabular.Table) (tabular.Table, error) {
		return group.Select([]int{0, 0, 0}, []string{"units"}, tabular.Copy, tabular.Copy)
	})
	require.IsType(t, errors.LengthMismatchError{}, err)
}

func TestGroupIndexGoesStale(t *testing.T) {
	tbl := createSalesTable(t)
	gi, err := GroupBy(tbl, []string{"region"}, nil)
	require.Nil(t, err)

	require.Nil(t, tbl.DropColumn("price"))
	_, err = gi.Combine(tabular.Aggregation{Column: "units", Reduce: Sum()})
	require.IsType(t, errors.StaleViewError{}, err)
	err = gi.ForEachGroup(func(group int, rows []int) error { return nil })
	require.IsType(t, errors.StaleViewError{}, err)
}

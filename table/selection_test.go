package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

func TestSelectCopyIsIndependent(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.Select([]int{0, 2}, []string{"name", "id"}, tabular.Copy, tabular.Copy)
	require.Nil(t, err)
	require.False(t, sel.IsView())
	require.Equal(t, 2, sel.NumRows())
	// columns come out in selection order
	require.Equal(t, []string{"name", "id"}, sel.Schema().ColumnNames())

	v, err := sel.Get(1, "name")
	require.Nil(t, err)
	require.Equal(t, "edsger", v)

	require.Nil(t, sel.Set(0, "name", "changed"))
	v, err = src.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "ada", v)
}

func TestSelectShareIsView(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.Select([]int{2, 0}, []string{"name"}, tabular.Share, tabular.Share)
	require.Nil(t, err)
	require.True(t, sel.IsView())

	view, ok := sel.(tabular.View)
	require.True(t, ok)
	require.Equal(t, src.ID(), view.Parent().ID())
	require.Equal(t, []int{2, 0}, view.RowIndexes())

	// view rows come out in selection order
	v, err := sel.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "edsger", v)

	// writes through the view hit the parent
	require.Nil(t, sel.Set(1, "name", "lovelace"))
	v, err = src.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "lovelace", v)

	// writes through the parent are visible through the view
	require.Nil(t, src.Set(2, "name", "dijkstra"))
	v, err = sel.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "dijkstra", v)
}

func TestSelectCopyColumnsShareRows(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.Select([]int{0, 1}, []string{"name"}, tabular.Share, tabular.Copy)
	require.Nil(t, err)
	require.True(t, sel.IsView())
	require.Equal(t, 2, sel.NumRows())

	// the column copy detaches the selection from the source
	require.Nil(t, sel.Set(0, "name", "changed"))
	v, err := src.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "ada", v)

	// and source writes stay invisible
	require.Nil(t, src.Set(1, "name", "hopper"))
	v, err = sel.Get(1, "name")
	require.Nil(t, err)
	require.Equal(t, "grace", v)
}

func TestViewGoesStaleOnStructuralChange(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.SelectRows([]int{0, 1}, tabular.Share)
	require.Nil(t, err)

	// cell writes do not invalidate the view
	require.Nil(t, src.Set(0, "id", int64(10)))
	v, err := sel.Get(0, "id")
	require.Nil(t, err)
	require.Equal(t, int64(10), v)

	require.Nil(t, src.DropColumn("score"))
	_, err = sel.Get(0, "id")
	require.IsType(t, errors.StaleViewError{}, err)
	require.IsType(t, errors.StaleViewError{}, sel.CheckValid())
}

func TestViewRejectsStructuralMutation(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.SelectRows(nil, tabular.Share)
	require.Nil(t, err)

	require.IsType(t, errors.UnsupportedOptionError{}, sel.DropColumn("id"))
	require.IsType(t, errors.UnsupportedOptionError{}, sel.Rename(map[string]string{"id": "x"}, false))
	require.IsType(t, errors.UnsupportedOptionError{}, sel.DeleteRows([]int{0}))
	require.IsType(t, errors.UnsupportedOptionError{}, sel.AppendRow(map[string]interface{}{}, tabular.Strict))
}

func TestViewOfViewComposesIndices(t *testing.T) {
	src := createPeopleTable(t)
	first, err := src.SelectRows([]int{2, 1, 0}, tabular.Share)
	require.Nil(t, err)
	second, err := first.SelectRows([]int{0, 2}, tabular.Share)
	require.Nil(t, err)
	require.True(t, second.IsView())

	view, ok := second.(tabular.View)
	require.True(t, ok)
	// composed onto the original parent
	require.Equal(t, src.ID(), view.Parent().ID())
	require.Equal(t, []int{2, 0}, view.RowIndexes())

	v, err := second.Get(1, "name")
	require.Nil(t, err)
	require.Equal(t, "ada", v)
}

func TestViewCopyMaterializes(t *testing.T) {
	src := createPeopleTable(t)
	sel, err := src.SelectRows([]int{1}, tabular.Share)
	require.Nil(t, err)
	copied := sel.Copy()
	require.False(t, copied.IsView())
	require.Equal(t, 1, copied.NumRows())

	require.Nil(t, src.DropColumn("score"))
	// the copy outlives the parent's structural change
	v, err := copied.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "grace", v)
}

func TestFilterRows(t *testing.T) {
	src := createPeopleTable(t)
	filtered, err := src.FilterRows(func(row tabular.Row) (bool, error) {
		id, err := row.GetInt64("id")
		if err != nil {
			return false, err
		}
		return id >= 2, nil
	}, tabular.Copy)
	require.Nil(t, err)
	require.Equal(t, 2, filtered.NumRows())
	v, err := filtered.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "grace", v)
}

func TestFilterRowsHandlesAreReadOnly(t *testing.T) {
	src := createPeopleTable(t)
	_, err := src.FilterRows(func(row tabular.Row) (bool, error) {
		return true, row.Set("name", "nope")
	}, tabular.Copy)
	require.IsType(t, errors.UnsupportedOptionError{}, err)
}

func TestSelectRejectsBadIndices(t *testing.T) {
	src := createPeopleTable(t)
	_, err := src.SelectRows([]int{7}, tabular.Copy)
	require.IsType(t, errors.IndexOutOfRangeError{}, err)
	_, err = src.SelectColumns([]string{"nope"}, tabular.Copy)
	require.IsType(t, errors.MissingColumnError{}, err)
}

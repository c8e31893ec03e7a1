package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

func createPeopleTable(t *testing.T) tabular.Table {
	tbl, err := FromSpecs([]ColumnSpec{
		{Name: "id", Type: &tabular.Int64ColumnType{}, Values: []interface{}{int64(1), int64(2), int64(3)}},
		{Name: "name", Type: &tabular.StringColumnType{}, Values: []interface{}{"ada", "grace", "edsger"}},
		{Name: "score", Type: &tabular.Float64ColumnType{}, Nullable: true, Values: []interface{}{1.5, nil, 3.25}},
	})
	require.Nil(t, err)
	return tbl
}

func TestFromSpecsBasic(t *testing.T) {
	tbl := createPeopleTable(t)
	require.Equal(t, 3, tbl.NumRows())
	require.Equal(t, 3, tbl.NumColumns())
	require.Nil(t, tbl.CheckValid())
	require.False(t, tbl.IsView())

	v, err := tbl.Get(1, "name")
	require.Nil(t, err)
	require.Equal(t, "grace", v)

	v, err = tbl.Get(1, "score")
	require.Nil(t, err)
	require.Nil(t, v)

	isNil, err := tbl.IsNil(1, "score")
	require.Nil(t, err)
	require.True(t, isNil)

	_, err = tbl.Get(5, "name")
	require.IsType(t, errors.IndexOutOfRangeError{}, err)
	_, err = tbl.Get(0, "nope")
	require.IsType(t, errors.MissingColumnError{}, err)
}

func TestFromSpecsRejectsNilInNonNullable(t *testing.T) {
	_, err := FromSpecs([]ColumnSpec{
		{Name: "id", Type: &tabular.Int64ColumnType{}, Values: []interface{}{int64(1), nil}},
	})
	require.IsType(t, errors.TypeMismatchError{}, err)
}

func TestFromSpecsRejectsRaggedColumns(t *testing.T) {
	_, err := FromSpecs([]ColumnSpec{
		{Name: "a", Type: &tabular.Int64ColumnType{}, Values: []interface{}{int64(1), int64(2)}},
		{Name: "b", Type: &tabular.Int64ColumnType{}, Values: []interface{}{int64(1)}},
	})
	require.IsType(t, errors.LengthMismatchError{}, err)
}

func TestSetCoercesAndTypeChecks(t *testing.T) {
	tbl := createPeopleTable(t)
	// plain ints normalize into int64 cells
	require.Nil(t, tbl.Set(0, "id", 7))
	v, err := tbl.Get(0, "id")
	require.Nil(t, err)
	require.Equal(t, int64(7), v)

	// ints widen into float columns
	require.Nil(t, tbl.Set(0, "score", 2))
	v, err = tbl.Get(0, "score")
	require.Nil(t, err)
	require.Equal(t, float64(2), v)

	err = tbl.Set(0, "id", "seven")
	require.IsType(t, errors.TypeMismatchError{}, err)

	err = tbl.SetNil(0, "name")
	require.IsType(t, errors.TypeMismatchError{}, err)
	require.Nil(t, tbl.SetNil(0, "score"))
}

func TestCellWritesDoNotInvalidateViews(t *testing.T) {
	tbl := createPeopleTable(t)
	gen := tbl.Generation()
	require.Nil(t, tbl.Set(0, "id", int64(9)))
	require.Equal(t, gen, tbl.Generation())
	require.Nil(t, tbl.DropColumn("score"))
	require.NotEqual(t, gen, tbl.Generation())
}

func TestFromColumnsInference(t *testing.T) {
	tbl, err := FromColumns(map[string]interface{}{
		"id":    []int{1, 2},
		"ratio": []float64{0.5, 0.25},
		"name":  []string{"a", "b"},
	})
	require.Nil(t, err)
	// map construction orders columns by sorted name
	require.Equal(t, []string{"id", "name", "ratio"}, tbl.Schema().ColumnNames())
	v, err := tbl.Get(0, "id")
	require.Nil(t, err)
	require.Equal(t, int64(1), v)
}

func TestFromRecordsUnionColumns(t *testing.T) {
	tbl, err := FromRecords([]map[string]interface{}{
		{"id": 1, "name": "ada"},
		{"id": 2, "score": 4.5},
	})
	require.Nil(t, err)
	require.Equal(t, []string{"id", "name", "score"}, tbl.Schema().ColumnNames())
	v, err := tbl.Get(0, "score")
	require.Nil(t, err)
	require.Nil(t, v)
	col, err := tbl.Schema().GetColumn("name")
	require.Nil(t, err)
	require.True(t, col.Nullable())
}

func TestFromJSONRecords(t *testing.T) {
	tbl, err := FromJSONRecords([]string{
		`{"id": 1, "name": "ada", "active": true}`,
		`{"id": 2, "name": null, "tags": ["x", "y"]}`,
	})
	require.Nil(t, err)
	v, err := tbl.Get(0, "id")
	require.Nil(t, err)
	require.Equal(t, float64(1), v)
	v, err = tbl.Get(1, "name")
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = tbl.Get(1, "tags")
	require.Nil(t, err)
	require.Equal(t, `["x", "y"]`, v)

	_, err = FromJSONRecords([]string{`[1, 2]`})
	require.IsType(t, errors.ValidationError{}, err)
}

func TestAppendRowStrict(t *testing.T) {
	tbl := createPeopleTable(t)
	err := tbl.AppendRow(map[string]interface{}{"id": 4, "name": "alan"}, tabular.Strict)
	require.IsType(t, errors.MissingColumnError{}, err)
	require.Equal(t, 3, tbl.NumRows())

	err = tbl.AppendRow(map[string]interface{}{"id": 4, "name": "alan", "score": 2.0, "extra": 1}, tabular.Strict)
	require.IsType(t, errors.MissingColumnError{}, err)

	err = tbl.AppendRow(map[string]interface{}{"id": 4, "name": "alan", "score": nil}, tabular.Strict)
	require.Nil(t, err)
	require.Equal(t, 4, tbl.NumRows())
	isNil, err := tbl.IsNil(3, "score")
	require.Nil(t, err)
	require.True(t, isNil)
}

func TestAppendRowFill(t *testing.T) {
	tbl := createPeopleTable(t)
	// name is non-nullable, so filling it with missing fails atomically
	err := tbl.AppendRow(map[string]interface{}{"id": 4}, tabular.Fill)
	require.IsType(t, errors.TypeMismatchError{}, err)
	require.Equal(t, 3, tbl.NumRows())

	err = tbl.AppendRow(map[string]interface{}{"id": 4, "name": "alan"}, tabular.Fill)
	require.Nil(t, err)
	require.Equal(t, 4, tbl.NumRows())
}

func TestAppendRowUnion(t *testing.T) {
	tbl := createPeopleTable(t)
	err := tbl.AppendRow(map[string]interface{}{"id": 4.5, "country": "uk"}, tabular.Union)
	require.Nil(t, err)
	require.Equal(t, 4, tbl.NumRows())
	require.Equal(t, 4, tbl.NumColumns())

	// id widened to float64, prior values converted
	v, err := tbl.Get(0, "id")
	require.Nil(t, err)
	require.Equal(t, float64(1), v)
	v, err = tbl.Get(3, "id")
	require.Nil(t, err)
	require.Equal(t, 4.5, v)

	// name became nullable to admit the filled row
	col, err := tbl.Schema().GetColumn("name")
	require.Nil(t, err)
	require.True(t, col.Nullable())

	// country backfills prior rows with missing
	v, err = tbl.Get(0, "country")
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = tbl.Get(3, "country")
	require.Nil(t, err)
	require.Equal(t, "uk", v)
}

func TestDeleteRows(t *testing.T) {
	tbl := createPeopleTable(t)
	err := tbl.DeleteRows([]int{5})
	require.IsType(t, errors.IndexOutOfRangeError{}, err)

	require.Nil(t, tbl.DeleteRows([]int{0, 2}))
	require.Equal(t, 1, tbl.NumRows())
	v, err := tbl.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "grace", v)
}

func TestInsertColumnBroadcast(t *testing.T) {
	tbl := createPeopleTable(t)
	require.Nil(t, tbl.InsertColumn(1, "active", &tabular.BoolColumnType{}, false, true))
	require.Equal(t, []string{"id", "active", "name", "score"}, tbl.Schema().ColumnNames())
	v, err := tbl.Get(2, "active")
	require.Nil(t, err)
	require.Equal(t, true, v)

	err = tbl.InsertColumn(0, "short", &tabular.Int64ColumnType{}, false, []int{1, 2})
	require.IsType(t, errors.LengthMismatchError{}, err)

	err = tbl.InsertColumn(0, "active", &tabular.BoolColumnType{}, false, false)
	require.IsType(t, errors.DuplicateNameError{}, err)
}

func TestRenameAndReorder(t *testing.T) {
	tbl := createPeopleTable(t)
	require.Nil(t, tbl.Rename(map[string]string{"name": "label"}, false))
	require.Equal(t, []string{"id", "label", "score"}, tbl.Schema().ColumnNames())

	err := tbl.Rename(map[string]string{"label": "id"}, false)
	require.IsType(t, errors.DuplicateNameError{}, err)

	require.Nil(t, tbl.ReorderColumns([]string{"score", "id", "label"}))
	require.Equal(t, []string{"score", "id", "label"}, tbl.Schema().ColumnNames())
	v, err := tbl.GetAt(0, 1)
	require.Nil(t, err)
	require.Equal(t, int64(1), v)
}

func TestAliasedTableSharesWrites(t *testing.T) {
	src := createPeopleTable(t)
	alias, err := FromTable(src, true)
	require.Nil(t, err)

	require.Nil(t, alias.Set(0, "name", "lovelace"))
	v, err := src.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "lovelace", v)
}

func TestAliasedResizeDetectedAsCorruption(t *testing.T) {
	src := createPeopleTable(t)
	alias, err := FromTable(src, true)
	require.Nil(t, err)

	// growing the alias leaves the source's columns longer than it
	// believes they are
	require.Nil(t, alias.AppendRow(map[string]interface{}{"id": 4, "name": "alan", "score": nil}, tabular.Strict))
	err = src.CheckValid()
	require.NotNil(t, err)
	_, err = src.Get(0, "name")
	require.NotNil(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	src := createPeopleTable(t)
	dst := src.Copy()
	require.Nil(t, dst.Set(0, "name", "changed"))
	v, err := src.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "ada", v)

	require.Nil(t, dst.DropColumn("score"))
	require.Equal(t, 3, src.NumColumns())
	require.Nil(t, src.CheckValid())
}

func TestGetRowTypedAccess(t *testing.T) {
	tbl := createPeopleTable(t)
	row := tbl.GetRow(0)
	id, err := row.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(1), id)
	name, err := row.GetString("name")
	require.Nil(t, err)
	require.Equal(t, "ada", name)
	score, err := row.GetFloat64("score")
	require.Nil(t, err)
	require.Equal(t, 1.5, score)

	_, err = tbl.GetRow(1).GetFloat64("score")
	require.IsType(t, errors.TypeMismatchError{}, err)
	require.True(t, tbl.GetRow(1).IsNil("score"))
}

func TestForEachRowHandlesAreReadOnly(t *testing.T) {
	tbl := createPeopleTable(t)
	count := 0
	err := tbl.ForEachRow(func(row tabular.Row) error {
		count++
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, 3, count)

	err = tbl.ForEachRow(func(row tabular.Row) error {
		return row.Set("name", "visited")
	})
	require.IsType(t, errors.UnsupportedOptionError{}, err)
	v, err := tbl.Get(0, "name")
	require.Nil(t, err)
	require.Equal(t, "ada", v)
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

func TestSchemaCreateAndLookup(t *testing.T) {
	sch := CreateSchema()
	err := sch.CreateColumn("id", &tabular.Int64ColumnType{}, false)
	require.Nil(t, err)
	err = sch.CreateColumn("name", &tabular.StringColumnType{}, true)
	require.Nil(t, err)

	require.Equal(t, 2, sch.NumColumns())
	require.True(t, sch.HasColumn("id"))
	require.False(t, sch.HasColumn("missing"))

	col, err := sch.GetColumn("name")
	require.Nil(t, err)
	require.Equal(t, 1, col.Index())
	require.True(t, col.Nullable())

	_, err = sch.GetColumn("missing")
	require.IsType(t, errors.MissingColumnError{}, err)
	require.Equal(t, []string{"id", "name"}, sch.ColumnNames())
}

func TestSchemaDuplicateColumn(t *testing.T) {
	sch := CreateSchema()
	err := sch.CreateColumn("id", &tabular.Int64ColumnType{}, false)
	require.Nil(t, err)
	err = sch.CreateColumn("id", &tabular.StringColumnType{}, false)
	require.IsType(t, errors.DuplicateNameError{}, err)
}

func TestSchemaEquality(t *testing.T) {
	sch1 := CreateSchema()
	require.Nil(t, sch1.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	require.Nil(t, sch1.CreateColumn("b", &tabular.StringColumnType{}, true))

	sch2 := CreateSchema()
	require.Nil(t, sch2.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	require.Nil(t, sch2.CreateColumn("b", &tabular.StringColumnType{}, true))
	require.Nil(t, sch1.Equals(sch2))

	sch3 := CreateSchema()
	require.Nil(t, sch3.CreateColumn("b", &tabular.StringColumnType{}, true))
	require.Nil(t, sch3.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	require.NotNil(t, sch1.Equals(sch3))
}

func TestSchemaRenameCollision(t *testing.T) {
	sch := CreateSchema()
	require.Nil(t, sch.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	require.Nil(t, sch.CreateColumn("b", &tabular.Int64ColumnType{}, false))

	err := sch.RenameColumns(map[string]string{"b": "a"}, false)
	require.IsType(t, errors.DuplicateNameError{}, err)
	// nothing changed
	require.Equal(t, []string{"a", "b"}, sch.ColumnNames())

	err = sch.RenameColumns(map[string]string{"b": "a"}, true)
	require.Nil(t, err)
	require.Equal(t, []string{"a", "a_1"}, sch.ColumnNames())
}

func TestSchemaReorderAndRemove(t *testing.T) {
	sch := CreateSchema()
	require.Nil(t, sch.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	require.Nil(t, sch.CreateColumn("b", &tabular.StringColumnType{}, false))
	require.Nil(t, sch.CreateColumn("c", &tabular.Float64ColumnType{}, false))

	require.Nil(t, sch.ReorderColumns([]string{"c", "a", "b"}))
	require.Equal(t, []string{"c", "a", "b"}, sch.ColumnNames())

	require.True(t, sch.RemoveColumn("a"))
	require.False(t, sch.RemoveColumn("a"))
	require.Equal(t, []string{"c", "b"}, sch.ColumnNames())
	col, err := sch.GetColumn("b")
	require.Nil(t, err)
	require.Equal(t, 1, col.Index())
}

func TestSchemaWidenColumn(t *testing.T) {
	sch := CreateSchema()
	require.Nil(t, sch.CreateColumn("x", &tabular.Int64ColumnType{}, false))
	require.Nil(t, sch.WidenColumn("x", &tabular.Float64ColumnType{}))
	col, err := sch.GetColumn("x")
	require.Nil(t, err)
	require.IsType(t, &tabular.Float64ColumnType{}, col.Type())
	require.False(t, col.Nullable())

	require.Nil(t, sch.MakeNullable("x"))
	col, err = sch.GetColumn("x")
	require.Nil(t, err)
	require.True(t, col.Nullable())
}

func TestSchemaClone(t *testing.T) {
	sch := CreateSchema()
	require.Nil(t, sch.CreateColumn("a", &tabular.Int64ColumnType{}, false))
	clone := sch.Clone()
	require.Nil(t, clone.CreateColumn("b", &tabular.StringColumnType{}, false))
	require.Equal(t, 1, sch.NumColumns())
	require.Equal(t, 2, clone.NumColumns())
}

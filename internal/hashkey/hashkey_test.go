package hashkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashPromotedNumericKeys(t *testing.T) {
	// a widened int keys the same bucket as its float form
	a := []interface{}{int64(3), "x"}
	b := []interface{}{float64(3), "x"}
	require.Equal(t, Hash(a), Hash(b))
	require.True(t, Equal(a, b))
}

func TestHashDistinguishesKinds(t *testing.T) {
	require.False(t, Equal([]interface{}{int64(1)}, []interface{}{"1"}))
	require.False(t, Equal([]interface{}{true}, []interface{}{int64(1)}))
}

func TestMissingEqualsMissingOnly(t *testing.T) {
	require.True(t, Equal([]interface{}{nil}, []interface{}{nil}))
	require.False(t, Equal([]interface{}{nil}, []interface{}{int64(0)}))
	require.False(t, Equal([]interface{}{nil}, []interface{}{""}))
	require.Equal(t, Hash([]interface{}{nil}), Hash([]interface{}{nil}))
}

func TestLessOrdering(t *testing.T) {
	require.True(t, Less([]interface{}{int64(1)}, []interface{}{int64(2)}))
	require.True(t, Less([]interface{}{int64(1), "a"}, []interface{}{int64(1), "b"}))
	require.False(t, Less([]interface{}{int64(2)}, []interface{}{int64(1)}))
	// missing sorts after every value
	require.True(t, Less([]interface{}{int64(5)}, []interface{}{nil}))
	require.False(t, Less([]interface{}{nil}, []interface{}{int64(5)}))
}

func TestCompareScalars(t *testing.T) {
	require.Equal(t, 0, Compare(int64(2), float64(2)))
	require.Equal(t, -1, Compare(int64(1), int64(2)))
	require.Equal(t, 1, Compare("b", "a"))

	earlier := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)
	require.Equal(t, -1, Compare(earlier, later))
	require.Equal(t, 0, Compare(earlier, earlier))
}

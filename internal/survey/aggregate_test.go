package survey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(cat, a, b string) Record {
	return Record{"cat": cat, "a": a, "b": b}
}

func TestAggregate_MeanExcludesUnparsable(t *testing.T) {
	records := []Record{rec("A", "3", "4"), rec("A", "x", "2"), rec("A", "5", "2")}
	got, err := Aggregate(records, "cat", "a", "b", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Label)
	assert.Equal(t, 3, got[0].Count)
	assert.InDelta(t, 4.0, got[0].Axis1Mean, 1e-9)
	assert.InDelta(t, 8.0/3.0, got[0].Axis2Mean, 1e-9)
}

func TestAggregate_EmptyInput(t *testing.T) {
	got, err := Aggregate(nil, "cat", "a", "b", 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregate_DropsSparseGroups(t *testing.T) {
	records := []Record{
		rec("X", "1", "1"), rec("X", "2", "2"),
		rec("Y", "1", "1"), rec("Y", "2", "2"), rec("Y", "3", "3"),
	}
	got, err := Aggregate(records, "cat", "a", "b", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Y", got[0].Label)
	assert.Equal(t, 3, got[0].Count)
	assert.InDelta(t, 2.0, got[0].Axis1Mean, 1e-9)
}

func TestAggregate_CountIncludesUnparsableRows(t *testing.T) {
	// Membership is decided before numeric filtering.
	records := []Record{rec("A", "4", "1"), rec("A", "", ""), rec("A", "n/a", "?")}
	got, err := Aggregate(records, "cat", "a", "b", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Count)
	assert.InDelta(t, 4.0, got[0].Axis1Mean, 1e-9)
	assert.InDelta(t, 1.0, got[0].Axis2Mean, 1e-9)
}

func TestAggregate_DropsGroupWithoutParseableAxis(t *testing.T) {
	records := []Record{
		rec("A", "1", ""), rec("A", "2", "x"),
		rec("B", "1", "5"),
	}
	got, err := Aggregate(records, "cat", "a", "b", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Label)
}

func TestAggregate_BlankCategoriesIgnored(t *testing.T) {
	records := []Record{
		rec("", "1", "1"), rec("   ", "1", "1"), {"a": "1", "b": "1"},
		rec("Z", "2", "4"),
	}
	got, err := Aggregate(records, "cat", "a", "b", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Z", got[0].Label)
	assert.Equal(t, 1, got[0].Count)
}

func TestAggregate_FirstSeenOrderAndNoDuplicates(t *testing.T) {
	records := []Record{
		rec("beta", "1", "1"), rec("alpha", "2", "2"), rec("beta", "3", "3"),
		rec("gamma", "4", "4"), rec("alpha", "5", "5"),
	}
	got, err := Aggregate(records, "cat", "a", "b", 0)
	require.NoError(t, err)
	labels := make([]string, len(got))
	for i, s := range got {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{"beta", "alpha", "gamma"}, labels)
}

func TestAggregate_NonPositiveMinCountActsAsOne(t *testing.T) {
	records := []Record{rec("solo", "2", "3")}
	for _, mc := range []int{0, -4, 1} {
		got, err := Aggregate(records, "cat", "a", "b", mc)
		require.NoError(t, err)
		require.Len(t, got, 1, "minCount=%d", mc)
		assert.Equal(t, 1, got[0].Count)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []Record{
		rec("A", "1", "2"), rec("B", "2", "x"), rec("A", "3", "4"),
		rec("B", "4", "1"), rec("C", "5", "5"), rec("A", "y", "1"),
	}
	first, err := Aggregate(records, "cat", "a", "b", 2)
	require.NoError(t, err)
	second, err := Aggregate(records, "cat", "a", "b", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregate_Properties(t *testing.T) {
	records := []Record{
		rec("A", "1", "2"), rec("B", "2", "x"), rec("A", "3", "4"),
		rec("B", "4", "1"), rec("C", "5", "5"), rec("A", "y", "1"),
		rec("D", "2", "2"), rec("D", "2", "2"), rec("D", "2", "2"), rec("", "1", "1"),
	}
	distinct := map[string]bool{}
	for _, r := range records {
		if !r.Blank("cat") {
			distinct[r["cat"]] = true
		}
	}
	for _, minCount := range []int{-1, 0, 1, 2, 3, 4} {
		got, err := Aggregate(records, "cat", "a", "b", minCount)
		require.NoError(t, err)
		floor := minCount
		if floor < 1 {
			floor = 1
		}
		seen := map[string]bool{}
		for _, s := range got {
			assert.GreaterOrEqual(t, s.Count, floor)
			assert.False(t, seen[s.Label], "duplicate label %q", s.Label)
			assert.True(t, distinct[s.Label], "label %q not in input", s.Label)
			seen[s.Label] = true
		}
	}
	// D has complete data: count matches the number of summed values.
	got, err := Aggregate(records, "cat", "a", "b", 3)
	require.NoError(t, err)
	for _, s := range got {
		if s.Label == "D" {
			assert.Equal(t, 3, s.Count)
			assert.Equal(t, s.Count, len(Numbers(records[6:9], "a")))
		}
	}
}

func TestAggregate_UnknownField(t *testing.T) {
	records := []Record{rec("A", "1", "1")}
	_, err := Aggregate(records, "cat", "a", "missing", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), "missing")
}

func TestAggregate_FieldMissingFromSomeRecordsIsNotAnError(t *testing.T) {
	records := []Record{rec("A", "1", "1"), {"cat": "A"}, {"cat": "A", "a": "3"}}
	got, err := Aggregate(records, "cat", "a", "b", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 2.0, got[0].Axis1Mean, 1e-9)
	assert.InDelta(t, 1.0, got[0].Axis2Mean, 1e-9)
}

package sjonq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	testCases := []struct {
		name string
		node string
		want int
	}{
		{name: "sequence counts elements", node: "vendor.items", want: 7},
		{name: "mapping counts keys", node: "vendor", want: 5},
		{name: "scalar has no count", node: "vendor.name", want: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := fixture(t)
			got, err := q.From(tc.node).Count()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCount_RunsPipeline(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").WhereEqual("price", 850).Count()
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestFirstLastNth(t *testing.T) {
	q := fixture(t)
	q.From("vendor.items")

	first, err := q.First()
	require.NoError(t, err)
	assert.Equal(t, float64(1), first.(map[string]interface{})["id"])

	last, err := q.Last()
	require.NoError(t, err)
	assert.Equal(t, "HP core i3 SSD", last.(map[string]interface{})["name"])

	second, err := q.Nth(1)
	require.NoError(t, err)
	assert.Equal(t, float64(2), second.(map[string]interface{})["id"])

	secondToLast, err := q.Nth(-2)
	require.NoError(t, err)
	assert.Equal(t, float64(6), secondToLast.(map[string]interface{})["id"])
}

func TestNth_OutOfRange(t *testing.T) {
	q := fixture(t)
	q.From("vendor.items")

	_, err := q.Nth(100)
	var rangeErr *ErrIndexOutOfRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 100, rangeErr.Index)
	assert.Equal(t, 7, rangeErr.Length)

	_, err = q.Nth(-100)
	assert.ErrorAs(t, err, &rangeErr)
}

func TestNth_EmptySequence(t *testing.T) {
	q, err := New(`[]`)
	require.NoError(t, err)

	_, err = q.First()
	var rangeErr *ErrIndexOutOfRange
	assert.ErrorAs(t, err, &rangeErr)
}

func TestNth_NonSequenceViewYieldsNothing(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor").First()
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGroupBy(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").GroupBy("price").Get()
	require.NoError(t, err)

	groups, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, groups, 5)
	assert.Len(t, groups["850"].([]interface{}), 3)
	assert.Len(t, groups["1700"].([]interface{}), 1)
}

// TestGroupBy_UnresolvableAttributeAborts pins the all-or-nothing rule: one
// element missing the attribute leaves the whole view unchanged.
func TestGroupBy_UnresolvableAttributeAborts(t *testing.T) {
	q := fixture(t)

	// Only item 5 carries "key"; the first element already aborts.
	got, err := q.From("vendor.items").GroupBy("key").Get()
	require.NoError(t, err)
	list, ok := got.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 7)
}

func TestGroupBy_NonSequenceViewBecomesEmptyMapping(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor").GroupBy("name").Get()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, got)
}

func TestSort_ScalarSequence(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.prices").Sort(nil, false).Get()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{89.9, 150.1, 400.87, float64(1200), float64(2100), float64(2400)}, got)
}

func TestSort_ReverseWithKey(t *testing.T) {
	q := fixture(t)

	byPrice := func(v interface{}) interface{} {
		return v.(map[string]interface{})["price"]
	}
	got, err := q.From("vendor.items").Sort(byPrice, true).Get()
	require.NoError(t, err)

	list := got.([]interface{})
	assert.Equal(t, float64(1700), list[0].(map[string]interface{})["price"])
	assert.Equal(t, float64(850), list[6].(map[string]interface{})["price"])
}

func TestSortBy(t *testing.T) {
	q := fixture(t)
	q.From("vendor.items").SortBy("price", false)
	require.NoError(t, q.Error())

	got, err := q.Get()
	require.NoError(t, err)
	list := got.([]interface{})
	assert.Equal(t, float64(850), list[0].(map[string]interface{})["price"])
	assert.Equal(t, float64(1700), list[6].(map[string]interface{})["price"])
	// Stable: the three price-850 elements keep their original order.
	assert.Equal(t, "Fujitsu", list[0].(map[string]interface{})["name"])
	assert.Equal(t, "HP core i5", list[1].(map[string]interface{})["name"])
	assert.Equal(t, "HP core i3 SSD", list[2].(map[string]interface{})["name"])
}

func TestSortBy_MissingAttributeIsFatal(t *testing.T) {
	q := fixture(t)
	q.From("vendor.items").SortBy("key", false)

	var attrErr *ErrAttributeMissing
	require.ErrorAs(t, q.Error(), &attrErr)
	assert.Equal(t, "key", attrErr.Attribute)
}

// SortBy runs before the pipeline, so pending filters that would remove the
// offending elements do not rescue it.
func TestSortBy_PendingFiltersDoNotApplyFirst(t *testing.T) {
	q := fixture(t)
	q.From("vendor.items").WhereEqual("id", 5).SortBy("key", false)
	assert.Error(t, q.Error())
}

func TestPluck(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").WhereEqual("price", 850).Pluck("name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Fujitsu", "HP core i5", "HP core i3 SSD"}, got)
}

func TestPluck_SkipsNullAndMissing(t *testing.T) {
	q := fixture(t)

	// Item 7 has a null id.
	got, err := q.From("vendor.items").Pluck("id")
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestPluck_ReappliesDistinctAndLimit(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").Distinct("price").Limit(3).Pluck("price")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(1350), float64(1700), float64(1200)}, got)
}

func TestSum(t *testing.T) {
	q := fixture(t)

	scalars, err := q.Copy().From("vendor.prices").Sum()
	require.NoError(t, err)
	assert.InDelta(t, 6340.87, scalars, 0.001)

	mappings, err := q.Copy().From("vendor.items").Sum("price")
	require.NoError(t, err)
	assert.InDelta(t, 7750, mappings, 0.001)
}

func TestSum_PropertyOnScalarSequenceEmptiesSet(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.prices").Sum("price")
	require.NoError(t, err)
	assert.Zero(t, got)
}

// One mapping element missing the property empties the whole collected set.
func TestSum_MissingPropertyEmptiesSet(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").Sum("key")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestSum_NoPropertyOnMappingSequenceEmptiesSet(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").Sum()
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestMinMaxAvg(t *testing.T) {
	q := fixture(t)

	min, err := q.Copy().From("vendor.items").Min("price")
	require.NoError(t, err)
	assert.InDelta(t, 850, min, 0.001)

	max, err := q.Copy().From("vendor.items").Max("price")
	require.NoError(t, err)
	assert.InDelta(t, 1700, max, 0.001)

	avg, err := q.Copy().From("vendor.prices").Avg()
	require.NoError(t, err)
	assert.InDelta(t, 6340.87/6, avg, 0.001)
}

func TestMinMaxAvg_EmptySetIsFatal(t *testing.T) {
	q, err := New(`[]`)
	require.NoError(t, err)

	var emptyErr *ErrEmptySet

	_, err = q.Min()
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "Min", emptyErr.Operation)

	_, err = q.Max()
	require.ErrorAs(t, err, &emptyErr)

	_, err = q.Avg()
	require.ErrorAs(t, err, &emptyErr)

	// Sum of nothing is zero, not an error.
	sum, err := q.Sum()
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestAggregate_SingleMappingView(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items.4").Sum("key")
	require.NoError(t, err)
	assert.InDelta(t, 2300, got, 0.001)
}

func TestAggregate_ReappliesDistinctAndLimit(t *testing.T) {
	q := fixture(t)

	got, err := q.From("vendor.items").Distinct("price").Sum("price")
	require.NoError(t, err)
	// Distinct prices: 1350 + 1700 + 1200 + 850 + 950.
	assert.InDelta(t, 6050, got, 0.001)
}

func TestTerminal_PropagatesChainError(t *testing.T) {
	q := fixture(t)
	q.From("vendor.warehouse")

	var pathErr *ErrPathNotFound

	_, err := q.Count()
	assert.ErrorAs(t, err, &pathErr)
	_, err = q.First()
	assert.ErrorAs(t, err, &pathErr)
	_, err = q.Pluck("name")
	assert.ErrorAs(t, err, &pathErr)
	_, err = q.Sum("price")
	assert.ErrorAs(t, err, &pathErr)
}

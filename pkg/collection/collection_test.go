package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/collection"
)

type row struct {
	key string
	n   int
}

func TestMapFilterReject(t *testing.T) {
	in := []int{1, 2, 3, 4}

	assert.Equal(t, []string{"1", "2", "3", "4"}, collection.Map(in, func(i int) string {
		return string(rune('0' + i))
	}))
	assert.Equal(t, []int{2, 4}, collection.Filter(in, func(i int) bool { return i%2 == 0 }))
	assert.Equal(t, []int{1, 3}, collection.Reject(in, func(i int) bool { return i%2 == 0 }))
}

func TestFilter_NeverNil(t *testing.T) {
	out := collection.Filter([]int(nil), func(int) bool { return true })
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestIndexOfAndFirst(t *testing.T) {
	in := []row{{"a", 1}, {"b", 2}, {"b", 3}}

	assert.Equal(t, 1, collection.IndexOf(in, func(r row) bool { return r.key == "b" }))
	assert.Equal(t, -1, collection.IndexOf(in, func(r row) bool { return r.key == "z" }))

	got, ok := collection.First(in, func(r row) bool { return r.key == "b" })
	assert.True(t, ok)
	assert.Equal(t, 2, got.n)

	_, ok = collection.First(in, func(r row) bool { return r.key == "z" })
	assert.False(t, ok)
}

func TestGroupBy(t *testing.T) {
	in := []row{{"a", 1}, {"b", 2}, {"a", 3}}
	groups := collection.GroupBy(in, func(r row) string { return r.key })

	assert.Len(t, groups, 2)
	assert.Equal(t, []row{{"a", 1}, {"a", 3}}, groups["a"])
}

func TestSortBy_Stable(t *testing.T) {
	in := []row{{"b", 1}, {"a", 2}, {"b", 3}, {"a", 4}}
	collection.SortBy(in, func(x, y row) bool { return x.key < y.key })

	assert.Equal(t, []row{{"a", 2}, {"a", 4}, {"b", 1}, {"b", 3}}, in)
}

func TestReduce(t *testing.T) {
	sum := collection.Reduce([]int{1, 2, 3}, 10, func(acc, v int) int { return acc + v })
	assert.Equal(t, 16, sum)
}

func TestClone_Independent(t *testing.T) {
	in := []int{1, 2}
	out := collection.Clone(in)
	out[0] = 9

	assert.Equal(t, 1, in[0])
	assert.NotNil(t, collection.Clone([]int(nil)))
}

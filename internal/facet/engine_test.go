package facet

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id      string
	title   string
	series  string
	speaker string
	kind    string
	date    string
}

func testSchema() Schema[item] {
	return Schema[item]{
		ID:         func(it item) string { return it.id },
		Tab:        func(it item) string { return it.kind },
		Tabs:       []string{"study", "devotional"},
		DefaultTab: AllValue,
		Search: []Accessor[item]{
			func(it item) string { return it.title },
			func(it item) string { return it.series },
			func(it item) string { return it.speaker },
		},
		Filters: map[string]Accessor[item]{
			"series":  func(it item) string { return it.series },
			"speaker": func(it item) string { return it.speaker },
		},
		Date: func(it item) string { return it.date },
		Sorts: map[string]SortKey[item]{
			"date":  {Value: func(it item) string { return it.date }, Kind: SortDate},
			"title": {Value: func(it item) string { return it.title }, Kind: SortText},
		},
		DefaultSort:      "date",
		DefaultDirection: Desc,
		PageSize:         9,
	}
}

func numbered(n int) []item {
	out := make([]item, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, item{
			id:    fmt.Sprintf("m%02d", i),
			title: fmt.Sprintf("Message %d", i),
			date:  fmt.Sprintf("2024-01-%02d", i),
			kind:  "study",
		})
	}
	return out
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestPaginationLoadMore(t *testing.T) {
	s := testSchema()
	items := numbered(15)
	st := NewState(s)

	v := ComputeView(items, s, st)
	assert.Len(t, v.Visible, 9)
	assert.True(t, v.HasMore)
	assert.Equal(t, 15, v.Total)

	st = st.LoadMore()
	assert.Equal(t, 18, st.DisplayCount)
	v = ComputeView(items, s, st)
	assert.Len(t, v.Visible, 15)
	assert.False(t, v.HasMore)
}

func TestComputeViewIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	s := testSchema()
	items := numbered(12)
	before := slices.Clone(items)
	st := NewState(s).WithSearch("message 1")

	a := ComputeView(items, s, st)
	b := ComputeView(items, s, st)
	assert.Equal(t, a, b)
	assert.Equal(t, before, items)
}

func TestPaginationIsPrefix(t *testing.T) {
	s := testSchema()
	items := numbered(20)
	st := NewState(s)

	prev := ComputeView(items, s, st).Visible
	for range 3 {
		st = st.LoadMore()
		cur := ComputeView(items, s, st).Visible
		require.GreaterOrEqual(t, len(cur), len(prev))
		assert.Equal(t, ids(prev), ids(cur[:len(prev)]))
		prev = cur
	}
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	s := testSchema()
	items := []item{
		{id: "a", title: "Amazing Grace", date: "2024-01-01"},
		{id: "b", title: "Hope", series: "Grace Upon Grace", date: "2024-01-02"},
		{id: "c", title: "Faith", speaker: "Pastor Grace Lee", date: "2024-01-03"},
		{id: "d", title: "Love", date: "2024-01-04"},
	}

	upper := ComputeView(items, s, NewState(s).WithSearch("GRACE"))
	lower := ComputeView(items, s, NewState(s).WithSearch("grace"))
	assert.Equal(t, ids(upper.Visible), ids(lower.Visible))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(lower.Visible))
}

func TestWhitespaceSearchMatchesEverything(t *testing.T) {
	s := testSchema()
	items := numbered(4)
	v := ComputeView(items, s, NewState(s).WithSearch("   "))
	assert.Equal(t, 4, v.Total)
	assert.False(t, v.Filtered)
}

func TestTabScope(t *testing.T) {
	s := testSchema()
	items := []item{
		{id: "a", kind: "study", date: "2024-01-01"},
		{id: "b", kind: "devotional", date: "2024-01-02"},
		{id: "c", kind: "study", date: "2024-01-03"},
	}

	v := ComputeView(items, s, NewState(s).WithTab("study"))
	assert.Equal(t, []string{"c", "a"}, ids(v.Visible))

	v = ComputeView(items, s, NewState(s).WithTab(AllValue))
	assert.Equal(t, 3, v.Total)
}

func TestCategoricalFiltersRequireExactEquality(t *testing.T) {
	s := testSchema()
	items := []item{
		{id: "a", series: "Romans", speaker: "Ana", date: "2024-01-01"},
		{id: "b", series: "Romans 2", speaker: "Ana", date: "2024-01-02"},
		{id: "c", series: "Romans", speaker: "Ben", date: "2024-01-03"},
		{id: "d", speaker: "Ana", date: "2024-01-04"},
	}

	st := NewState(s).WithFilter("series", "Romans")
	assert.Equal(t, []string{"c", "a"}, ids(ComputeView(items, s, st).Visible))

	st = st.WithFilter("speaker", "Ana")
	assert.Equal(t, []string{"a"}, ids(ComputeView(items, s, st).Visible))

	st = st.WithFilter("series", AllValue)
	assert.Equal(t, []string{"d", "b", "a"}, ids(ComputeView(items, s, st).Visible))

	// Unknown filter keys impose nothing.
	st = NewState(s).WithFilter("book", "Genesis")
	assert.Equal(t, 4, ComputeView(items, s, st).Total)
}

func TestDateRangeIsInclusiveAndOpenEnded(t *testing.T) {
	s := testSchema()
	items := numbered(10)
	items = append(items, item{id: "undated", title: "Undated"})

	v := ComputeView(items, s, NewState(s).WithDateRange("2024-01-03", "2024-01-05"))
	assert.Equal(t, []string{"m05", "m04", "m03"}, ids(v.Visible))

	v = ComputeView(items, s, NewState(s).WithDateRange("2024-01-09", ""))
	assert.Equal(t, []string{"m10", "m09"}, ids(v.Visible))

	v = ComputeView(items, s, NewState(s).WithDateRange("", "2024-01-01"))
	assert.Equal(t, []string{"m01"}, ids(v.Visible))

	// No bounds: undated items are included.
	v = ComputeView(items, s, NewState(s))
	assert.Equal(t, 11, v.Total)
}

func TestSortDirectionAndTieBreak(t *testing.T) {
	s := testSchema()
	items := []item{
		{id: "c", title: "Same", date: "2024-01-01"},
		{id: "a", title: "Same", date: "2024-01-01"},
		{id: "b", title: "Later", date: "2024-02-01"},
	}

	desc := ComputeView(items, s, NewState(s))
	assert.Equal(t, []string{"b", "a", "c"}, ids(desc.Visible))

	asc := ComputeView(items, s, NewState(s).WithSort("date", Asc))
	assert.Equal(t, []string{"a", "c", "b"}, ids(asc.Visible))

	// Same output whatever the input order.
	reversed := slices.Clone(items)
	slices.Reverse(reversed)
	assert.Equal(t, ids(asc.Visible), ids(ComputeView(reversed, s, NewState(s).WithSort("date", Asc)).Visible))
}

func TestTextSortIsLocaleAware(t *testing.T) {
	s := testSchema()
	items := []item{
		{id: "1", title: "banana"},
		{id: "2", title: "Cherry"},
		{id: "3", title: "apple"},
		{id: "4", title: "Éclair"},
	}

	v := ComputeView(items, s, NewState(s).WithSort("title", Asc))
	// Byte order would put "Cherry" first and "Éclair" last.
	assert.Equal(t, []string{"apple", "banana", "Cherry", "Éclair"}, titles(v.Visible))
}

func titles(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.title
	}
	return out
}

func TestEmptyCollection(t *testing.T) {
	s := testSchema()
	v := ComputeView(nil, s, NewState(s).WithSearch("grace"))
	assert.NotNil(t, v.Visible)
	assert.Empty(t, v.Visible)
	assert.False(t, v.HasMore)
	assert.True(t, v.Empty())
	assert.True(t, v.Filtered)
}

func TestOversizedDisplayCount(t *testing.T) {
	s := testSchema()
	st := NewState(s)
	st.DisplayCount = 500
	v := ComputeView(numbered(3), s, st)
	assert.Len(t, v.Visible, 3)
	assert.False(t, v.HasMore)
}

func TestNoMatchesIsFilteredEmptyState(t *testing.T) {
	s := testSchema()
	st := NewState(s).WithTab("study").WithSearch("nothing like this")
	v := ComputeView(numbered(5), s, st)
	assert.True(t, v.Empty())
	assert.True(t, v.Filtered)

	cleared := st.Clear()
	assert.Equal(t, "study", cleared.Tab)
	v = ComputeView(numbered(5), s, cleared)
	assert.Equal(t, 5, v.Total)
	assert.False(t, v.Filtered)
}

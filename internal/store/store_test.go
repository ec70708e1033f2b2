package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func textItem(content string, ts time.Time) *Item {
	return &Item{
		Content:   content,
		Kind:      KindText,
		DataType:  "text",
		Timestamp: ts,
	}
}

// insertSeq inserts n text items with strictly increasing timestamps and
// returns the contents, oldest first.
func insertSeq(t *testing.T, s *Store, n, cap int) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	contents := make([]string, n)
	for i := 0; i < n; i++ {
		contents[i] = fmt.Sprintf("item-%03d", i)
		_, err := s.Insert(ctx, textItem(contents[i], base.Add(time.Duration(i)*time.Second)), cap)
		require.NoError(t, err)
	}
	return contents
}

func TestInsertDeduplicatesSameContentKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	_, err := s.Insert(ctx, textItem("hello", base), 10)
	require.NoError(t, err)
	_, err = s.Insert(ctx, textItem("world", base.Add(time.Second)), 10)
	require.NoError(t, err)
	_, err = s.Insert(ctx, textItem("hello", base.Add(2*time.Second)), 10)
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "hello", items[0].Content, "duplicate should move to the front")
	assert.Equal(t, "world", items[1].Content)
}

func TestInsertSameContentDifferentKindNotDeduplicated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	_, err := s.Insert(ctx, textItem("/tmp/x.png", base), 10)
	require.NoError(t, err)
	_, err = s.Insert(ctx, &Item{
		Content: "/tmp/x.png", Kind: KindImage, DataType: "image", Timestamp: base.Add(time.Second),
	}, 10)
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInsertEvictsOldestBeyondCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 4; i++ {
		evicted, err := s.Insert(ctx, textItem(fmt.Sprintf("item-%d", i), base.Add(time.Duration(i)*time.Second)), 5)
		require.NoError(t, err)
		assert.Empty(t, evicted)
	}

	// Sixth and seventh inserts push the two oldest out.
	_, err := s.Insert(ctx, textItem("item-4", base.Add(4*time.Second)), 5)
	require.NoError(t, err)
	evicted, err := s.Insert(ctx, textItem("item-5", base.Add(5*time.Second)), 5)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "item-0", evicted[0].Content)

	evicted, err = s.Insert(ctx, textItem("item-6", base.Add(6*time.Second)), 5)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "item-1", evicted[0].Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestPinnedItemsExemptFromEviction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	// More pinned items than the cap allows.
	for i := 0; i < 4; i++ {
		item := textItem(fmt.Sprintf("pinned-%d", i), base.Add(time.Duration(i)*time.Second))
		item.IsPinned = true
		_, err := s.Insert(ctx, item, 2)
		require.NoError(t, err)
	}

	evicted, err := s.Insert(ctx, textItem("plain", base.Add(10*time.Second)), 2)
	require.NoError(t, err)
	assert.Empty(t, evicted)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCollectedItemsExemptFromEviction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	col, err := s.CreateCollection(ctx, "snippets")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		item := textItem(fmt.Sprintf("collected-%d", i), base.Add(time.Duration(i)*time.Second))
		item.CollectionID = &col.ID
		_, err := s.Insert(ctx, item, 1)
		require.NoError(t, err)
	}

	// Only the plain items compete for the single cap slot.
	_, err = s.Insert(ctx, textItem("plain-0", base.Add(10*time.Second)), 1)
	require.NoError(t, err)
	evicted, err := s.Insert(ctx, textItem("plain-1", base.Add(11*time.Second)), 1)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "plain-0", evicted[0].Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := newTestStore(t)
	contents := insertSeq(t, s, 5, 10)

	items, err := s.History(context.Background(), HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, contents[len(contents)-1-i], item.Content)
	}
}

func TestHistoryPaginationNoOverlap(t *testing.T) {
	s := newTestStore(t)
	insertSeq(t, s, 25, 100)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for page := 1; page <= 3; page++ {
		items, err := s.History(ctx, HistoryQuery{Page: page, PageSize: 10})
		require.NoError(t, err)
		for _, item := range items {
			assert.False(t, seen[item.ID], "item %d returned on two pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	empty, err := s.History(ctx, HistoryQuery{Page: 4, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistorySubstringSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i, content := range []string{"Hello World", "hello there", "goodbye"} {
		_, err := s.Insert(ctx, textItem(content, base.Add(time.Duration(i)*time.Second)), 10)
		require.NoError(t, err)
	}

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10, Query: "HELLO"})
	require.NoError(t, err)
	assert.Len(t, items, 2, "default matching is case-insensitive")

	items, err = s.History(ctx, HistoryQuery{Page: 1, PageSize: 10, Query: "Hello", CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hello World", items[0].Content)
}

func TestHistoryRegexSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i, content := range []string{"v1.2.3", "version one", "v10"} {
		_, err := s.Insert(ctx, textItem(content, base.Add(time.Duration(i)*time.Second)), 10)
		require.NoError(t, err)
	}

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10, Query: `^v\d+`, UseRegex: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestHistoryInvalidRegexFailsDistinctly(t *testing.T) {
	s := newTestStore(t)
	insertSeq(t, s, 3, 10)

	items, err := s.History(context.Background(), HistoryQuery{
		Page: 1, PageSize: 10, Query: "([unclosed", UseRegex: true,
	})
	require.Error(t, err, "invalid pattern must fail, not return zero matches")
	assert.Nil(t, items)
	assert.Contains(t, err.Error(), "invalid search pattern")
}

func TestHistoryCollectionFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	col, err := s.CreateCollection(ctx, "work")
	require.NoError(t, err)

	inCol := textItem("in collection", base)
	inCol.CollectionID = &col.ID
	_, err = s.Insert(ctx, inCol, 10)
	require.NoError(t, err)
	_, err = s.Insert(ctx, textItem("loose", base.Add(time.Second)), 10)
	require.NoError(t, err)

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10, CollectionID: &col.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "in collection", items[0].Content)
}

func TestUpdateTimestampMovesToFront(t *testing.T) {
	s := newTestStore(t)
	insertSeq(t, s, 3, 10)
	ctx := context.Background()

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	oldest := items[len(items)-1]

	require.NoError(t, s.UpdateTimestamp(ctx, oldest.ID))

	items, err = s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, items[0].ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "refresh must not duplicate")
}

func TestUpdateTimestampNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateTimestamp(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReturnsItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, textItem("doomed", time.Now()), 10)
	require.NoError(t, err)

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)

	deleted, err := s.Delete(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", deleted.Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.Delete(ctx, items[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTogglePinInvolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, textItem("pin me", time.Now()), 10)
	require.NoError(t, err)
	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	id := items[0].ID

	pinned, err := s.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.True(t, pinned)

	pinned, err = s.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.False(t, pinned, "two toggles must restore the original value")

	_, err = s.TogglePin(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, textItem("secret", time.Now()), 10)
	require.NoError(t, err)
	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)

	sensitive, err := s.ToggleSensitive(ctx, items[0].ID)
	require.NoError(t, err)
	assert.True(t, sensitive)

	_, err = s.ToggleSensitive(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateContentKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	insertSeq(t, s, 3, 10)
	ctx := context.Background()

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	middle := items[1]

	note := "edited"
	require.NoError(t, s.UpdateContent(ctx, middle.ID, "new content", "text", &note, nil))

	items, err = s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, middle.ID, items[1].ID, "edit must not change the order position")
	assert.Equal(t, "new content", items[1].Content)
	require.NotNil(t, items[1].Note)
	assert.Equal(t, "edited", *items[1].Note)

	err = s.UpdateContent(ctx, 9999, "x", "text", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearRespectsKeepFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	col, err := s.CreateCollection(ctx, "keepers")
	require.NoError(t, err)

	pinned := textItem("pinned", base)
	pinned.IsPinned = true
	_, err = s.Insert(ctx, pinned, 10)
	require.NoError(t, err)

	collected := textItem("collected", base.Add(time.Second))
	collected.CollectionID = &col.ID
	_, err = s.Insert(ctx, collected, 10)
	require.NoError(t, err)

	_, err = s.Insert(ctx, textItem("plain", base.Add(2*time.Second)), 10)
	require.NoError(t, err)

	removed, err := s.Clear(ctx, true, true)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "plain", removed[0].Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Dropping both flags removes everything left.
	removed, err = s.Clear(ctx, false, false)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteCollectionUnlinksItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col, err := s.CreateCollection(ctx, "temp")
	require.NoError(t, err)

	item := textItem("member", time.Now())
	item.CollectionID = &col.ID
	_, err = s.Insert(ctx, item, 10)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCollection(ctx, col.ID))

	collections, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)

	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1, "members must survive collection deletion")
	assert.Nil(t, items[0].CollectionID)

	err = s.DeleteCollection(ctx, col.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetItemCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col, err := s.CreateCollection(ctx, "dest")
	require.NoError(t, err)

	_, err = s.Insert(ctx, textItem("movable", time.Now()), 10)
	require.NoError(t, err)
	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	id := items[0].ID

	require.NoError(t, s.SetItemCollection(ctx, id, &col.ID))
	items, err = s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.NotNil(t, items[0].CollectionID)
	assert.Equal(t, col.ID, *items[0].CollectionID)

	require.NoError(t, s.SetItemCollection(ctx, id, nil))
	items, err = s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Nil(t, items[0].CollectionID)

	err = s.SetItemCollection(ctx, 9999, &col.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, textItem("the content", time.Now()), 10)
	require.NoError(t, err)
	items, err := s.History(ctx, HistoryQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)

	content, err := s.ItemContent(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "the content", content)

	_, err = s.ItemContent(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

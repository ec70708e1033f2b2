// Package store owns the persisted clipboard history: the size-capped item
// log, pin/sensitive flags, collections, and searchable pagination.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ErrNotFound is returned by id-keyed operations when no such row exists.
var ErrNotFound = errors.New("item not found")

type Store struct {
	db *bun.DB
}

func Open(dbPath string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	ctx := context.Background()

	models := []interface{}{
		(*Item)(nil),
		(*Collection)(nil),
	}

	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_items_timestamp ON clipboard_items(timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_items_kind_content ON clipboard_items(kind, content)",
		"CREATE INDEX IF NOT EXISTS idx_items_pinned ON clipboard_items(is_pinned)",
		"CREATE INDEX IF NOT EXISTS idx_items_collection ON clipboard_items(collection_id)",
	}

	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Insert stores item at the front of the history. If an item with the same
// (content, kind) pair already exists it is refreshed in place and moved to
// the front instead of duplicated. After inserting, the oldest non-exempt
// items beyond cap are evicted and returned so the caller can remove any
// backing image files. Pinned and collection-assigned items never count
// against the cap and are never evicted.
func (s *Store) Insert(ctx context.Context, item *Item, cap int) ([]Item, error) {
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	var existing Item
	err := s.db.NewSelect().
		Model(&existing).
		Where("content = ?", item.Content).
		Where("kind = ?", item.Kind).
		Scan(ctx)
	switch {
	case err == nil:
		_, err = s.db.NewUpdate().
			Model((*Item)(nil)).
			Set("timestamp = ?", item.Timestamp).
			Set("data_type = ?", item.DataType).
			Set("source_app = ?", item.SourceApp).
			Set("html_content = ?", item.HTMLContent).
			Where("id = ?", existing.ID).
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh existing item: %w", err)
		}
		item.ID = existing.ID
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to insert clipboard item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check existing item: %w", err)
	}

	return s.prune(ctx, cap)
}

// prune deletes and returns the oldest non-exempt items beyond cap.
func (s *Store) prune(ctx context.Context, cap int) ([]Item, error) {
	if cap <= 0 {
		return nil, nil
	}

	count, err := s.db.NewSelect().
		Model((*Item)(nil)).
		Where("is_pinned = ?", false).
		Where("collection_id IS NULL").
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count evictable items: %w", err)
	}
	if count <= cap {
		return nil, nil
	}

	var victims []Item
	err = s.db.NewSelect().
		Model(&victims).
		Where("is_pinned = ?", false).
		Where("collection_id IS NULL").
		Order("timestamp ASC", "id ASC").
		Limit(count - cap).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select eviction victims: %w", err)
	}

	ids := make([]int64, len(victims))
	for i, v := range victims {
		ids[i] = v.ID
	}

	_, err = s.db.NewDelete().
		Model((*Item)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to evict items: %w", err)
	}

	return victims, nil
}

// HistoryQuery selects a page of the newest-first history ordering.
// Page is 1-based. An empty Query applies no text filter.
type HistoryQuery struct {
	Page          int
	PageSize      int
	Query         string
	UseRegex      bool
	CaseSensitive bool
	CollectionID  *int64
}

// History returns one page of the filtered history. An invalid regular
// expression fails the call; it is never downgraded to a literal match.
func (s *Store) History(ctx context.Context, q HistoryQuery) ([]Item, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}

	if q.Query == "" {
		var items []Item
		sel := s.db.NewSelect().
			Model(&items).
			Order("timestamp DESC", "id DESC").
			Limit(q.PageSize).
			Offset((q.Page - 1) * q.PageSize)
		if q.CollectionID != nil {
			sel = sel.Where("collection_id = ?", *q.CollectionID)
		}
		if err := sel.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to query history: %w", err)
		}
		return items, nil
	}

	match, err := buildMatcher(q.Query, q.UseRegex, q.CaseSensitive)
	if err != nil {
		return nil, err
	}

	var all []Item
	sel := s.db.NewSelect().
		Model(&all).
		Order("timestamp DESC", "id DESC")
	if q.CollectionID != nil {
		sel = sel.Where("collection_id = ?", *q.CollectionID)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	filtered := all[:0]
	for _, item := range all {
		if match(item.Content) {
			filtered = append(filtered, item)
		}
	}

	start := (q.Page - 1) * q.PageSize
	if start >= len(filtered) {
		return []Item{}, nil
	}
	end := start + q.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func buildMatcher(query string, useRegex, caseSensitive bool) (func(string) bool, error) {
	if useRegex {
		pattern := query
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid search pattern: %w", err)
		}
		return re.MatchString, nil
	}
	if caseSensitive {
		return func(content string) bool {
			return strings.Contains(content, query)
		}, nil
	}
	lowered := strings.ToLower(query)
	return func(content string) bool {
		return strings.Contains(strings.ToLower(content), lowered)
	}, nil
}

// UpdateTimestamp refreshes an item's recency without creating a duplicate.
func (s *Store) UpdateTimestamp(ctx context.Context, id int64) error {
	res, err := s.db.NewUpdate().
		Model((*Item)(nil)).
		Set("timestamp = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update timestamp: %w", err)
	}
	return requireAffected(res)
}

// Delete removes the item and returns it so the caller can clean up any
// backing file.
func (s *Store) Delete(ctx context.Context, id int64) (*Item, error) {
	item, err := s.itemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NewDelete().
		Model((*Item)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	return item, nil
}

func (s *Store) ToggleSensitive(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "is_sensitive")
}

func (s *Store) TogglePin(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, id, "is_pinned")
}

func (s *Store) toggle(ctx context.Context, id int64, column string) (bool, error) {
	item, err := s.itemByID(ctx, id)
	if err != nil {
		return false, err
	}

	var next bool
	switch column {
	case "is_sensitive":
		next = !item.IsSensitive
	case "is_pinned":
		next = !item.IsPinned
	}

	_, err = s.db.NewUpdate().
		Model((*Item)(nil)).
		Set(column+" = ?", next).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", column, err)
	}

	return next, nil
}

// UpdateContent edits an item in place. The timestamp is untouched so the
// item keeps its position in the ordering.
func (s *Store) UpdateContent(ctx context.Context, id int64, content, dataType string, note, html *string) error {
	res, err := s.db.NewUpdate().
		Model((*Item)(nil)).
		Set("content = ?", content).
		Set("data_type = ?", dataType).
		Set("note = ?", note).
		Set("html_content = ?", html).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update item content: %w", err)
	}
	return requireAffected(res)
}

// Clear removes all items except those exempted by the two keep flags and
// returns the removed items for file cleanup.
func (s *Store) Clear(ctx context.Context, keepPinned, keepCollected bool) ([]Item, error) {
	var victims []Item
	sel := s.db.NewSelect().Model(&victims)
	if keepPinned {
		sel = sel.Where("is_pinned = ?", false)
	}
	if keepCollected {
		sel = sel.Where("collection_id IS NULL")
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to select items to clear: %w", err)
	}
	if len(victims) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(victims))
	for i, v := range victims {
		ids[i] = v.ID
	}

	_, err := s.db.NewDelete().
		Model((*Item)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear history: %w", err)
	}

	return victims, nil
}

// ItemContent returns the raw content of a single item.
func (s *Store) ItemContent(ctx context.Context, id int64) (string, error) {
	item, err := s.itemByID(ctx, id)
	if err != nil {
		return "", err
	}
	return item.Content, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*Item)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (s *Store) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	collection := &Collection{Name: name}
	if _, err := s.db.NewInsert().Model(collection).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return collection, nil
}

func (s *Store) Collections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	err := s.db.NewSelect().
		Model(&collections).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// DeleteCollection removes the collection and unlinks its member items.
// Members are kept; they only lose the collection reference (and with it
// their eviction exemption).
func (s *Store) DeleteCollection(ctx context.Context, id int64) error {
	_, err := s.db.NewUpdate().
		Model((*Item)(nil)).
		Set("collection_id = NULL").
		Where("collection_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to unlink collection items: %w", err)
	}

	res, err := s.db.NewDelete().
		Model((*Collection)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) SetItemCollection(ctx context.Context, itemID int64, collectionID *int64) error {
	res, err := s.db.NewUpdate().
		Model((*Item)(nil)).
		Set("collection_id = ?", collectionID).
		Where("id = ?", itemID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set item collection: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) itemByID(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := s.db.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by id: %w", err)
	}
	return &item, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

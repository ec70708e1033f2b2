package store

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	KindText  = "text"
	KindImage = "image"
)

// Item is one clipboard history entry. For image items Content holds the path
// of the single backing file on disk; the file's lifecycle follows the row.
type Item struct {
	bun.BaseModel `bun:"table:clipboard_items"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Content      string    `bun:"content,notnull" json:"content"`
	Kind         string    `bun:"kind,notnull" json:"kind"`
	DataType     string    `bun:"data_type,notnull" json:"data_type"`
	Timestamp    time.Time `bun:"timestamp,notnull" json:"timestamp"`
	IsPinned     bool      `bun:"is_pinned,default:false" json:"is_pinned"`
	IsSensitive  bool      `bun:"is_sensitive,default:false" json:"is_sensitive"`
	SourceApp    *string   `bun:"source_app" json:"source_app,omitempty"`
	CollectionID *int64    `bun:"collection_id" json:"collection_id,omitempty"`
	Note         *string   `bun:"note" json:"note,omitempty"`
	HTMLContent  *string   `bun:"html_content" json:"html_content,omitempty"`
}

// Exempt reports whether the item is protected from cap-driven eviction.
func (i *Item) Exempt() bool {
	return i.IsPinned || i.CollectionID != nil
}

type Collection struct {
	bun.BaseModel `bun:"table:collections"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

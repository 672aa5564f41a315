package models

import (
	"time"
)

// ContentItem is the row shape shared by all content tables. The table a row
// lives in is chosen per query via ContentType.Table, so the struct itself
// carries no table name.
//
// PostDate follows the catalog's storage convention: it holds one day less
// than the true publish date of the content. The window package owns the
// compensation; nothing else should re-adjust it.
type ContentItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:500;not null" json:"name"`
	Link      string    `gorm:"size:2000;not null" json:"link"`
	Link2     string    `gorm:"size:2000" json:"link2,omitempty"`
	LinkP     string    `gorm:"size:2000" json:"linkP,omitempty"`
	LinkG     string    `gorm:"size:2000" json:"linkG,omitempty"`
	LinkMV1   string    `gorm:"size:2000" json:"linkMV1,omitempty"`
	LinkMV2   string    `gorm:"size:2000" json:"linkMV2,omitempty"`
	LinkMV3   string    `gorm:"size:2000" json:"linkMV3,omitempty"`
	LinkMV4   string    `gorm:"size:2000" json:"linkMV4,omitempty"`
	Category  string    `gorm:"size:255;index" json:"category,omitempty"`
	Region    string    `gorm:"size:255;index" json:"region,omitempty"`
	PostDate  time.Time `gorm:"not null;index" json:"postDate"`
	Slug      string    `gorm:"size:255;uniqueIndex" json:"slug"`
	Thumbnail string    `gorm:"size:1024" json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

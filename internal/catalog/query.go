package catalog

import (
	"strings"

	"gorm.io/gorm"

	"contentvault/internal/window"
)

// Query holds the recognized search options. All filters are optional and
// conjunctive; a zero value means no constraint on that dimension.
type Query struct {
	Search    string       // case-insensitive substring match on name
	Category  string       // exact match
	Region    string       // exact match
	Month     int          // 1-12, against the month component of post_date
	Window    window.Range // coarse date window, applied after the merge
	SortBy    string       // postDate (default), name or createdAt
	SortOrder string       // ASC or DESC (default)
	Page      int
	Limit     int
}

var sortColumns = map[string]string{
	"postDate":  "post_date",
	"name":      "name",
	"createdAt": "created_at",
}

func (q Query) withDefaults() Query {
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "postDate"
	}
	if !strings.EqualFold(q.SortOrder, "ASC") {
		q.SortOrder = "DESC"
	} else {
		q.SortOrder = "ASC"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	return q
}

// Scope translates the query into per-table predicates. The same scope works
// against every content table since they share one schema shape.
func (q Query) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.Region != "" {
			db = db.Where("region = ?", q.Region)
		}
		if q.Month >= 1 && q.Month <= 12 {
			// month extraction is the one dialect-specific predicate
			if db.Dialector.Name() == "sqlite" {
				db = db.Where("CAST(strftime('%m', post_date) AS INTEGER) = ?", q.Month)
			} else {
				db = db.Where("MONTH(post_date) = ?", q.Month)
			}
		}
		return db
	}
}

func (q Query) orderClause() string {
	return sortColumns[q.SortBy] + " " + q.SortOrder
}

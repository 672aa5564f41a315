package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"contentvault/internal/models"
	"contentvault/internal/window"
)

// Descriptor parameterizes one aggregation surface, so every content type
// shares a single query/merge/paginate path instead of its own route logic.
type Descriptor struct {
	// ListSources are the tables scanned by the plain listing and by a
	// search without a term.
	ListSources []models.ContentType
	// SearchSources are the tables fanned out to when a search term is
	// present.
	SearchSources []models.ContentType
	// ForceCategory pins the category filter regardless of the request
	// (the banned aggregator forces "Banned").
	ForceCategory string
	// Label overrides the per-row contentType tag; when set, the source
	// table is recorded in originalSource instead.
	Label models.ContentType
}

// TypeDescriptor is the surface for a regular content table: its own table
// for listings, all tables for term search.
func TypeDescriptor(t models.ContentType) Descriptor {
	return Descriptor{
		ListSources:   []models.ContentType{t},
		SearchSources: models.AllTypes(),
	}
}

// BannedDescriptor aggregates rows flagged category=Banned out of the source
// tables. It has no table of its own to list.
func BannedDescriptor() Descriptor {
	return Descriptor{
		ListSources:   models.BannedSources(),
		SearchSources: models.BannedSources(),
		ForceCategory: models.BannedCategory,
		Label:         models.TypeBanned,
	}
}

// Tagged is a content row annotated with the table it came from.
type Tagged struct {
	models.ContentItem
	ContentType    models.ContentType `json:"contentType"`
	OriginalSource models.ContentType `json:"originalSource,omitempty"`
}

// Page is the decoded list payload.
type Page struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
	Data       []Tagged `json:"data"`
}

// Search fans q out across the descriptor's source tables, tags each row
// with its origin, merges, re-sorts globally and slices out the requested
// page. Pagination has to happen after the merge: per-table ordering does not
// survive concatenation, so the full combined set is materialized first.
// Any failing sub-query aborts the whole aggregation.
func (s *Service) Search(ctx context.Context, d Descriptor, q Query) (*Page, error) {
	q = q.withDefaults()
	if d.ForceCategory != "" {
		q.Category = d.ForceCategory
	}

	sources := d.ListSources
	if q.Search != "" {
		sources = d.SearchSources
	}

	rows, err := s.fanOut(ctx, sources, q, d)
	if err != nil {
		return nil, err
	}
	sortTagged(rows, q.SortBy, q.SortOrder)
	if q.Window != "" && q.Window != window.RangeAll {
		rows = filterWindow(rows, q.Window, time.Now())
	}
	return slicePage(rows, q.Page, q.Limit), nil
}

func (s *Service) fanOut(ctx context.Context, sources []models.ContentType, q Query, d Descriptor) ([]Tagged, error) {
	g, ctx := errgroup.WithContext(ctx)
	buckets := make([][]Tagged, len(sources))

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			db := s.DB.WithContext(ctx).Table(src.Table()).Scopes(q.Scope())
			if s.ScanCap > 0 {
				db = db.Limit(s.ScanCap)
			}
			var items []models.ContentItem
			if err := db.Order(q.orderClause()).Find(&items).Error; err != nil {
				return fmt.Errorf("query %s: %w", src.Table(), err)
			}
			tagged := make([]Tagged, 0, len(items))
			for _, it := range items {
				t := Tagged{ContentItem: it, ContentType: src}
				if d.Label != "" {
					t.ContentType = d.Label
					t.OriginalSource = src
				}
				tagged = append(tagged, t)
			}
			buckets[i] = tagged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Tagged
	for _, b := range buckets {
		all = append(all, b...)
	}
	return all, nil
}

func sortTagged(rows []Tagged, sortBy, order string) {
	desc := strings.EqualFold(order, "DESC")
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareTagged(rows[i], rows[j], sortBy)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareTagged(a, b Tagged, sortBy string) int {
	switch sortBy {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "createdAt":
		return compareTime(a.CreatedAt, b.CreatedAt)
	default:
		return compareTime(a.PostDate, b.PostDate)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func filterWindow(rows []Tagged, r window.Range, now time.Time) []Tagged {
	kept := rows[:0]
	for _, row := range rows {
		if window.Matches(r, row.ContentItem, now) {
			kept = append(kept, row)
		}
	}
	return kept
}

func slicePage(rows []Tagged, page, limit int) *Page {
	total := len(rows)
	offset := (page - 1) * limit
	data := []Tagged{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		data = rows[offset:end]
	}
	return &Page{
		Page:       page,
		PerPage:    limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		Data:       data,
	}
}

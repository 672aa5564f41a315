// Package catalog is the data service behind the content API: it builds
// per-table predicates from request options, fans queries out across the
// content tables, merges and paginates, and owns the row lifecycle
// (create with slug assignment, patch, delete).
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"contentvault/internal/models"
	"contentvault/internal/slug"
)

// insertRetries bounds how many times a generated slug is re-probed after a
// duplicate-key insert. The unique index on slug is the actual guarantee;
// this loop only rides out concurrent writers picking the same base.
const insertRetries = 3

type Service struct {
	DB *gorm.DB
	// ScanCap bounds the rows pulled from each table during aggregation,
	// keeping the in-memory merge from growing with the tables. Zero
	// means no cap.
	ScanCap int
	// ListPageSize is the fixed page size of the plain listings.
	ListPageSize int
}

func NewService(db *gorm.DB, scanCap, listPageSize int) *Service {
	if listPageSize < 1 {
		listPageSize = 900
	}
	return &Service{DB: db, ScanCap: scanCap, ListPageSize: listPageSize}
}

// Create inserts one row, assigning id and slug when absent. A supplied slug
// must pass the format check and be free.
func (s *Service) Create(ctx context.Context, typ models.ContentType, item *models.ContentItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(item.Link) == "" {
		return fmt.Errorf("%w: link is required", ErrInvalidInput)
	}
	if item.PostDate.IsZero() {
		item.PostDate = time.Now()
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	if item.Slug != "" {
		if !slug.Valid(item.Slug) {
			return fmt.Errorf("%w: malformed slug %q", ErrInvalidInput, item.Slug)
		}
		if err := s.insert(ctx, typ, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrConflict, item.Slug)
			}
			return err
		}
		return nil
	}

	base, err := slug.Base(item.PostDate, item.Name)
	if err != nil {
		return err
	}
	for i := 0; i < insertRetries; i++ {
		candidate, err := slug.Unique(base, func(sl string) (bool, error) {
			return s.slugTaken(ctx, typ, sl, "")
		})
		if err != nil {
			return err
		}
		item.Slug = candidate
		err = s.insert(ctx, typ, item)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("insert %s: %w", typ, slug.ErrExhausted)
}

// CreateBulk inserts the batch in order, assigning slugs one by one so that
// identical names within the batch come out suffixed.
func (s *Service) CreateBulk(ctx context.Context, typ models.ContentType, items []models.ContentItem) ([]models.ContentItem, error) {
	created := make([]models.ContentItem, 0, len(items))
	for i := range items {
		if err := s.Create(ctx, typ, &items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		created = append(created, items[i])
	}
	return created, nil
}

// List is the fixed-page-size public listing of one surface. A single-table
// surface pages in the database; the banned aggregator has to merge first.
func (s *Service) List(ctx context.Context, d Descriptor, page int, region string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if len(d.ListSources) != 1 {
		return s.Search(ctx, d, Query{Region: region, Page: page, Limit: s.ListPageSize})
	}

	src := d.ListSources[0]
	q := Query{Region: region, Category: d.ForceCategory}

	var total int64
	if err := s.DB.WithContext(ctx).Table(src.Table()).Scopes(q.Scope()).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", src.Table(), err)
	}

	var items []models.ContentItem
	err := s.DB.WithContext(ctx).Table(src.Table()).Scopes(q.Scope()).
		Order("post_date DESC").
		Limit(s.ListPageSize).Offset((page - 1) * s.ListPageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", src.Table(), err)
	}

	data := make([]Tagged, 0, len(items))
	for _, it := range items {
		data = append(data, Tagged{ContentItem: it, ContentType: src})
	}
	return &Page{
		Page:       page,
		PerPage:    s.ListPageSize,
		Total:      int(total),
		TotalPages: (int(total) + s.ListPageSize - 1) / s.ListPageSize,
		Data:       data,
	}, nil
}

// GetBySlug looks one row up by its public identifier.
func (s *Service) GetBySlug(ctx context.Context, typ models.ContentType, sl string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.DB.WithContext(ctx).Table(typ.Table()).Where("slug = ?", sl).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slug %s", ErrNotFound, sl)
		}
		return nil, fmt.Errorf("get %s by slug: %w", typ, err)
	}
	return &item, nil
}

// GetByID looks one row up by primary key.
func (s *Service) GetByID(ctx context.Context, typ models.ContentType, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.DB.WithContext(ctx).Table(typ.Table()).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get %s by id: %w", typ, err)
	}
	return &item, nil
}

// Patch carries the updatable fields of a partial update; nil means leave the
// column alone.
type Patch struct {
	Name      *string
	Link      *string
	Link2     *string
	LinkP     *string
	LinkG     *string
	LinkMV1   *string
	LinkMV2   *string
	LinkMV3   *string
	LinkMV4   *string
	Category  *string
	Region    *string
	PostDate  *time.Time
	Slug      *string
	Thumbnail *string
}

func (p Patch) columns() map[string]any {
	set := map[string]any{}
	put := func(col string, v *string) {
		if v != nil {
			set[col] = *v
		}
	}
	put("name", p.Name)
	put("link", p.Link)
	put("link2", p.Link2)
	put("link_p", p.LinkP)
	put("link_g", p.LinkG)
	put("link_mv1", p.LinkMV1)
	put("link_mv2", p.LinkMV2)
	put("link_mv3", p.LinkMV3)
	put("link_mv4", p.LinkMV4)
	put("category", p.Category)
	put("region", p.Region)
	put("slug", p.Slug)
	put("thumbnail", p.Thumbnail)
	if p.PostDate != nil {
		set["post_date"] = *p.PostDate
	}
	return set
}

// Update applies a partial patch. An explicit slug is validated against the
// canonical format and checked for collisions with other rows before commit.
func (s *Service) Update(ctx context.Context, typ models.ContentType, id string, p Patch) (*models.ContentItem, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if p.Link != nil && strings.TrimSpace(*p.Link) == "" {
		return nil, fmt.Errorf("%w: link cannot be empty", ErrInvalidInput)
	}
	if p.Slug != nil {
		if *p.Slug == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
		}
		if !slug.Valid(*p.Slug) {
			return nil, fmt.Errorf("%w: malformed slug %q", ErrInvalidInput, *p.Slug)
		}
		taken, err := s.slugTaken(ctx, typ, *p.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: %s", ErrConflict, *p.Slug)
		}
	}

	if _, err := s.GetByID(ctx, typ, id); err != nil {
		return nil, err
	}

	set := p.columns()
	if len(set) > 0 {
		err := s.DB.WithContext(ctx).Table(typ.Table()).Where("id = ?", id).Updates(set).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: %s", ErrConflict, *p.Slug)
			}
			return nil, fmt.Errorf("update %s: %w", typ, err)
		}
	}
	return s.GetByID(ctx, typ, id)
}

// Delete removes one row, returning it so callers can clean up attached
// objects.
func (s *Service) Delete(ctx context.Context, typ models.ContentType, id string) (*models.ContentItem, error) {
	item, err := s.GetByID(ctx, typ, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Table(typ.Table()).Where("id = ?", id).Delete(&models.ContentItem{}).Error
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", typ, err)
	}
	return item, nil
}

func (s *Service) insert(ctx context.Context, typ models.ContentType, item *models.ContentItem) error {
	if err := s.DB.WithContext(ctx).Table(typ.Table()).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("insert %s: %w", typ, err)
	}
	return nil
}

func (s *Service) slugTaken(ctx context.Context, typ models.ContentType, sl, ignoreID string) (bool, error) {
	db := s.DB.WithContext(ctx).Table(typ.Table()).Where("slug = ?", sl)
	if ignoreID != "" {
		db = db.Where("id <> ?", ignoreID)
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check slug %s: %w", typ, err)
	}
	return n > 0, nil
}

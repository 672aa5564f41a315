package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contentvault/internal/db"
	"contentvault/internal/models"
	"contentvault/internal/window"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(gdb, 0, 900)
}

func seed(t *testing.T, s *Service, typ models.ContentType, name string, postDate time.Time, mutate ...func(*models.ContentItem)) models.ContentItem {
	t.Helper()
	item := models.ContentItem{
		Name:     name,
		Link:     "https://mirror.example/" + name,
		PostDate: postDate,
	}
	for _, m := range mutate {
		m(&item)
	}
	if err := s.Create(context.Background(), typ, &item); err != nil {
		t.Fatalf("seed %s/%s: %v", typ, name, err)
	}
	return item
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCreateGeneratesSlug(t *testing.T) {
	s := newTestService(t)

	first := seed(t, s, models.TypeAsian, "Test Show!", day(2024, 3, 1))
	if first.Slug != "2024-03-01-test-show" {
		t.Errorf("first slug = %q, want 2024-03-01-test-show", first.Slug)
	}

	second := seed(t, s, models.TypeAsian, "Test Show!", day(2024, 3, 1))
	if second.Slug != "2024-03-01-test-show-1" {
		t.Errorf("second slug = %q, want 2024-03-01-test-show-1", second.Slug)
	}

	// same name in another table starts from the unsuffixed base again
	other := seed(t, s, models.TypeWestern, "Test Show!", day(2024, 3, 1))
	if other.Slug != "2024-03-01-test-show" {
		t.Errorf("other-table slug = %q, want 2024-03-01-test-show", other.Slug)
	}
}

func TestCreateValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	err := s.Create(ctx, models.TypeAsian, &models.ContentItem{Link: "https://x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing name: got %v, want ErrInvalidInput", err)
	}

	err = s.Create(ctx, models.TypeAsian, &models.ContentItem{Name: "x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing link: got %v, want ErrInvalidInput", err)
	}

	err = s.Create(ctx, models.TypeAsian, &models.ContentItem{
		Name: "x", Link: "https://x", PostDate: day(2024, 1, 1), Slug: "not a slug",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("malformed slug: got %v, want ErrInvalidInput", err)
	}
}

func TestCreateExplicitSlugConflict(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	seed(t, s, models.TypeAsian, "Original", day(2024, 5, 5), func(it *models.ContentItem) {
		it.Slug = "2024-05-05-original"
	})

	err := s.Create(ctx, models.TypeAsian, &models.ContentItem{
		Name: "Clone", Link: "https://x", PostDate: day(2024, 5, 5), Slug: "2024-05-05-original",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate explicit slug: got %v, want ErrConflict", err)
	}
}

func TestCreateBulkSuffixesWithinBatch(t *testing.T) {
	s := newTestService(t)

	created, err := s.CreateBulk(context.Background(), models.TypeVip, []models.ContentItem{
		{Name: "Same Name", Link: "https://a", PostDate: day(2024, 6, 1)},
		{Name: "Same Name", Link: "https://b", PostDate: day(2024, 6, 1)},
	})
	if err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}
	if created[0].Slug != "2024-06-01-same-name" || created[1].Slug != "2024-06-01-same-name-1" {
		t.Errorf("bulk slugs = %q, %q", created[0].Slug, created[1].Slug)
	}
}

func TestSearchFanOutMergeSort(t *testing.T) {
	s := newTestService(t)

	// interleaved dates across two tables
	seed(t, s, models.TypeAsian, "Alpha Clip", day(2024, 1, 10))
	seed(t, s, models.TypeAsian, "Gamma Clip", day(2024, 1, 30))
	seed(t, s, models.TypeWestern, "Beta Clip", day(2024, 1, 20))
	seed(t, s, models.TypeWestern, "Delta Clip", day(2024, 1, 5))
	seed(t, s, models.TypeWestern, "Unrelated", day(2024, 1, 25))

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{Search: "clip"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("total = %d, want 4", page.Total)
	}
	for i := 1; i < len(page.Data); i++ {
		if page.Data[i].PostDate.After(page.Data[i-1].PostDate) {
			t.Errorf("merged output not monotonic descending at index %d", i)
		}
	}
	types := map[models.ContentType]bool{}
	for _, row := range page.Data {
		types[row.ContentType] = true
	}
	if !types[models.TypeAsian] || !types[models.TypeWestern] {
		t.Errorf("expected rows from both source tables, got %v", types)
	}
	if page.Data[0].Name != "Gamma Clip" {
		t.Errorf("newest row first, got %q", page.Data[0].Name)
	}
}

func TestSearchSortAscending(t *testing.T) {
	s := newTestService(t)

	seed(t, s, models.TypeAsian, "Old Clip", day(2024, 1, 1))
	seed(t, s, models.TypeWestern, "New Clip", day(2024, 2, 1))

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{
		Search: "clip", SortOrder: "ASC",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Data[0].Name != "Old Clip" || page.Data[1].Name != "New Clip" {
		t.Errorf("ascending order wrong: %q, %q", page.Data[0].Name, page.Data[1].Name)
	}
}

func TestSearchWithoutTermStaysOnOwnTable(t *testing.T) {
	s := newTestService(t)

	seed(t, s, models.TypeAsian, "Own Row", day(2024, 1, 1))
	seed(t, s, models.TypeWestern, "Foreign Row", day(2024, 1, 2))

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 || page.Data[0].Name != "Own Row" {
		t.Errorf("expected only the type's own table, got %+v", page.Data)
	}
}

func TestSearchPagination(t *testing.T) {
	s := newTestService(t)

	for i := 0; i < 5; i++ {
		seed(t, s, models.TypeAsian, fmt.Sprintf("Clip %d", i), day(2024, 1, i+1))
	}

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("total = %d, totalPages = %d; want 5, 3", page.Total, page.TotalPages)
	}
	if len(page.Data) != 2 {
		t.Errorf("page 2 length = %d, want 2", len(page.Data))
	}

	last, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(last.Data) != 1 {
		t.Errorf("last page length = %d, want 1", len(last.Data))
	}

	past, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(past.Data) != 0 || past.Total != 5 {
		t.Errorf("past-the-end page: len = %d, total = %d", len(past.Data), past.Total)
	}
}

func TestSearchMonthFilter(t *testing.T) {
	s := newTestService(t)

	seed(t, s, models.TypeAsian, "March Clip", day(2024, 3, 10))
	seed(t, s, models.TypeAsian, "April Clip", day(2024, 4, 10))

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{Month: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 || page.Data[0].Name != "March Clip" {
		t.Errorf("month filter returned %+v", page.Data)
	}
}

func TestSearchCategoryAndRegion(t *testing.T) {
	s := newTestService(t)

	seed(t, s, models.TypeAsian, "Match", day(2024, 2, 1), func(it *models.ContentItem) {
		it.Category = "Cosplay"
		it.Region = "JP"
	})
	seed(t, s, models.TypeAsian, "Wrong Region", day(2024, 2, 2), func(it *models.ContentItem) {
		it.Category = "Cosplay"
		it.Region = "KR"
	})

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{
		Category: "Cosplay", Region: "JP",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 || page.Data[0].Name != "Match" {
		t.Errorf("conjunctive filters returned %+v", page.Data)
	}
}

func TestSearchWindowFilter(t *testing.T) {
	s := newTestService(t)
	today := time.Now()

	// stored one day behind: content date lands on today
	seed(t, s, models.TypeAsian, "Fresh Clip", today.AddDate(0, 0, -1))
	// content date lands a week back
	seed(t, s, models.TypeAsian, "Stale Clip", today.AddDate(0, 0, -9))

	page, err := s.Search(context.Background(), TypeDescriptor(models.TypeAsian), Query{
		Window: window.RangeToday,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 || page.Data[0].Name != "Fresh Clip" {
		t.Errorf("window filter returned %+v", page.Data)
	}
}

func TestBannedAggregator(t *testing.T) {
	s := newTestService(t)

	seed(t, s, models.TypeAsian, "Banned A", day(2024, 1, 2), func(it *models.ContentItem) {
		it.Category = models.BannedCategory
	})
	seed(t, s, models.TypeWestern, "Banned W", day(2024, 1, 3), func(it *models.ContentItem) {
		it.Category = models.BannedCategory
	})
	seed(t, s, models.TypeAsian, "Regular", day(2024, 1, 4))

	page, err := s.Search(context.Background(), BannedDescriptor(), Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
	for _, row := range page.Data {
		if row.ContentType != models.TypeBanned {
			t.Errorf("row %q tagged %q, want banned", row.Name, row.ContentType)
		}
		if row.OriginalSource != models.TypeAsian && row.OriginalSource != models.TypeWestern {
			t.Errorf("row %q has originalSource %q", row.Name, row.OriginalSource)
		}
	}
	if page.Data[0].Name != "Banned W" {
		t.Errorf("newest banned row first, got %q", page.Data[0].Name)
	}
}

func TestListSingleTable(t *testing.T) {
	s := newTestService(t)
	s.ListPageSize = 2

	seed(t, s, models.TypeAsian, "One", day(2024, 1, 1), func(it *models.ContentItem) { it.Region = "JP" })
	seed(t, s, models.TypeAsian, "Two", day(2024, 1, 2), func(it *models.ContentItem) { it.Region = "JP" })
	seed(t, s, models.TypeAsian, "Three", day(2024, 1, 3), func(it *models.ContentItem) { it.Region = "KR" })

	page, err := s.List(context.Background(), TypeDescriptor(models.TypeAsian), 1, "JP")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.PerPage != 2 {
		t.Errorf("total = %d, perPage = %d; want 2, 2", page.Total, page.PerPage)
	}
	if page.Data[0].Name != "Two" {
		t.Errorf("region listing order wrong: %q first", page.Data[0].Name)
	}
}

func TestGetBySlug(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created := seed(t, s, models.TypeAsian, "Findable", day(2024, 7, 1))

	got, err := s.GetBySlug(ctx, models.TypeAsian, created.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got id %q, want %q", got.ID, created.ID)
	}

	if _, err := s.GetBySlug(ctx, models.TypeAsian, "2024-07-01-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing slug: got %v, want ErrNotFound", err)
	}
}

func TestUpdateSlugRules(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := seed(t, s, models.TypeAsian, "First", day(2024, 8, 1))
	b := seed(t, s, models.TypeAsian, "Second", day(2024, 8, 2))

	empty := ""
	if _, err := s.Update(ctx, models.TypeAsian, b.ID, Patch{Slug: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty slug: got %v, want ErrInvalidInput", err)
	}

	bad := "Not A Slug"
	if _, err := s.Update(ctx, models.TypeAsian, b.ID, Patch{Slug: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("malformed slug: got %v, want ErrInvalidInput", err)
	}

	dup := a.Slug
	if _, err := s.Update(ctx, models.TypeAsian, b.ID, Patch{Slug: &dup}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate slug: got %v, want ErrConflict", err)
	}

	// keeping your own slug is not a conflict
	own := b.Slug
	if _, err := s.Update(ctx, models.TypeAsian, b.ID, Patch{Slug: &own}); err != nil {
		t.Errorf("own slug: %v", err)
	}
}

func TestUpdatePatchesFields(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	item := seed(t, s, models.TypeAsian, "Before", day(2024, 9, 1))

	name := "After"
	region := "JP"
	got, err := s.Update(ctx, models.TypeAsian, item.ID, Patch{Name: &name, Region: &region})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "After" || got.Region != "JP" {
		t.Errorf("patched row = %+v", got)
	}
	if got.Link != item.Link {
		t.Errorf("untouched field changed: %q -> %q", item.Link, got.Link)
	}

	if _, err := s.Update(ctx, models.TypeAsian, "missing-id", Patch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	item := seed(t, s, models.TypeAsian, "Doomed", day(2024, 10, 1))

	if _, err := s.Delete(ctx, models.TypeAsian, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, models.TypeAsian, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted row still found: %v", err)
	}
	if _, err := s.Delete(ctx, models.TypeAsian, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

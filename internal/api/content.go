package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contentvault/internal/catalog"
	"contentvault/internal/models"
	"contentvault/internal/window"
)

// ContentRequest is the create payload; PostDate accepts RFC 3339 or a bare
// YYYY-MM-DD date and defaults to now when omitted.
type ContentRequest struct {
	Name      string `json:"name"`
	Link      string `json:"link"`
	Link2     string `json:"link2"`
	LinkP     string `json:"linkP"`
	LinkG     string `json:"linkG"`
	LinkMV1   string `json:"linkMV1"`
	LinkMV2   string `json:"linkMV2"`
	LinkMV3   string `json:"linkMV3"`
	LinkMV4   string `json:"linkMV4"`
	Category  string `json:"category"`
	Region    string `json:"region"`
	PostDate  string `json:"postDate"`
	Slug      string `json:"slug"`
	Thumbnail string `json:"thumbnail"`
}

func (r ContentRequest) toItem() (models.ContentItem, error) {
	item := models.ContentItem{
		Name:      r.Name,
		Link:      r.Link,
		Link2:     r.Link2,
		LinkP:     r.LinkP,
		LinkG:     r.LinkG,
		LinkMV1:   r.LinkMV1,
		LinkMV2:   r.LinkMV2,
		LinkMV3:   r.LinkMV3,
		LinkMV4:   r.LinkMV4,
		Category:  r.Category,
		Region:    r.Region,
		Slug:      r.Slug,
		Thumbnail: r.Thumbnail,
	}
	if r.PostDate != "" {
		t, err := parseDate(r.PostDate)
		if err != nil {
			return item, fmt.Errorf("%w: postDate %q", catalog.ErrInvalidInput, r.PostDate)
		}
		item.PostDate = t
	}
	return item, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// bare dates are UTC midnight; slugs derive from the UTC date part
	return time.Parse("2006-01-02", s)
}

func (s *Server) createContent(typ models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		// accept a single object or a batch
		var batch []ContentRequest
		if err := json.Unmarshal(raw, &batch); err == nil {
			items := make([]models.ContentItem, 0, len(batch))
			for _, req := range batch {
				item, err := req.toItem()
				if err != nil {
					renderError(c, err)
					return
				}
				items = append(items, item)
			}
			created, err := s.Catalog.CreateBulk(c.Request.Context(), typ, items)
			if err != nil {
				renderError(c, err)
				return
			}
			c.JSON(http.StatusCreated, created)
			return
		}

		var req ContentRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		item, err := req.toItem()
		if err != nil {
			renderError(c, err)
			return
		}
		if err := s.Catalog.Create(c.Request.Context(), typ, &item); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func (s *Server) searchContent(d catalog.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rng, ok := window.Parse(c.Query("range"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		q := catalog.Query{
			Search:    c.Query("search"),
			Category:  c.Query("category"),
			Region:    c.Query("region"),
			Month:     parseInt(c.Query("month"), 0),
			Window:    rng,
			SortBy:    c.DefaultQuery("sortBy", "postDate"),
			SortOrder: c.DefaultQuery("sortOrder", "DESC"),
			Page:      parseInt(c.Query("page"), 1),
			Limit:     parseInt(c.Query("limit"), 20),
		}
		page, err := s.Catalog.Search(c.Request.Context(), d, q)
		if err != nil {
			renderError(c, err)
			return
		}
		s.renderEncoded(c, http.StatusOK, page)
	}
}

func (s *Server) listContent(d catalog.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := s.Catalog.List(c.Request.Context(), d, parseInt(c.Query("page"), 1), c.Query("region"))
		if err != nil {
			renderError(c, err)
			return
		}
		s.renderEncoded(c, http.StatusOK, page)
	}
}

func (s *Server) getContent(typ models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := s.Catalog.GetBySlug(c.Request.Context(), typ, c.Param("slug"))
		if err != nil {
			renderError(c, err)
			return
		}
		s.renderEncoded(c, http.StatusOK, item)
	}
}

// UpdateRequest is the partial patch payload; absent fields stay untouched.
type UpdateRequest struct {
	Name      *string `json:"name"`
	Link      *string `json:"link"`
	Link2     *string `json:"link2"`
	LinkP     *string `json:"linkP"`
	LinkG     *string `json:"linkG"`
	LinkMV1   *string `json:"linkMV1"`
	LinkMV2   *string `json:"linkMV2"`
	LinkMV3   *string `json:"linkMV3"`
	LinkMV4   *string `json:"linkMV4"`
	Category  *string `json:"category"`
	Region    *string `json:"region"`
	PostDate  *string `json:"postDate"`
	Slug      *string `json:"slug"`
	Thumbnail *string `json:"thumbnail"`
}

func (s *Server) updateContent(typ models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		patch := catalog.Patch{
			Name:      req.Name,
			Link:      req.Link,
			Link2:     req.Link2,
			LinkP:     req.LinkP,
			LinkG:     req.LinkG,
			LinkMV1:   req.LinkMV1,
			LinkMV2:   req.LinkMV2,
			LinkMV3:   req.LinkMV3,
			LinkMV4:   req.LinkMV4,
			Category:  req.Category,
			Region:    req.Region,
			Slug:      req.Slug,
			Thumbnail: req.Thumbnail,
		}
		if req.PostDate != nil {
			t, err := parseDate(*req.PostDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid postDate"})
				return
			}
			patch.PostDate = &t
		}
		item, err := s.Catalog.Update(c.Request.Context(), typ, c.Param("id"), patch)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func (s *Server) deleteContent(typ models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		item, err := s.Catalog.Delete(c.Request.Context(), typ, id)
		if err != nil {
			renderError(c, err)
			return
		}
		if s.Store != nil && item.Thumbnail != "" {
			_ = s.Store.RemovePrefix(c.Request.Context(), thumbPrefixFor(typ, id))
		}
		c.JSON(http.StatusOK, gin.H{"message": "content deleted"})
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"contentvault/internal/auth"
	"contentvault/internal/catalog"
	"contentvault/internal/codec"
	"contentvault/internal/models"
	"contentvault/internal/slug"
	"contentvault/internal/storage"
)

type Server struct {
	DB      *gorm.DB
	Catalog *catalog.Service
	Store   *storage.MinioStore
	Tokens  auth.TokenService
}

// RegisterRoutes wires one parameterized route set per content type plus the
// banned aggregator. Admin routes are only registered when a JWT secret is
// configured.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	var admin gin.HandlerFunc
	if len(s.Tokens.Secret) > 0 {
		admin = auth.RequireAdmin(s.Tokens)
	} else {
		log.Printf("admin endpoints disabled (JWT_SECRET not set)")
	}

	content := r.Group("/content")
	for _, typ := range models.AllTypes() {
		if typ == models.TypeBanned {
			s.registerAggregator(content, typ, catalog.BannedDescriptor())
			continue
		}
		s.registerType(content, admin, typ)
	}

	if s.Store != nil {
		r.GET("/thumbs/*path", s.getThumbnail)
	}
}

func (s *Server) registerType(g *gin.RouterGroup, admin gin.HandlerFunc, typ models.ContentType) {
	d := catalog.TypeDescriptor(typ)
	grp := g.Group("/" + string(typ))
	grp.GET("/search", s.searchContent(d))
	grp.GET("", s.listContent(d))
	grp.GET("/:slug", s.getContent(typ))
	if admin == nil {
		return
	}
	grp.POST("", admin, s.createContent(typ))
	grp.PUT("/:id", admin, s.updateContent(typ))
	grp.DELETE("/:id", admin, s.deleteContent(typ))
	if s.Store != nil {
		grp.POST("/:id/thumbnail", admin, s.uploadThumbnail(typ))
	}
}

// registerAggregator exposes only the read side: the aggregator owns no table
// to create into or look slugs up in.
func (s *Server) registerAggregator(g *gin.RouterGroup, typ models.ContentType, d catalog.Descriptor) {
	grp := g.Group("/" + string(typ))
	grp.GET("/search", s.searchContent(d))
	grp.GET("", s.listContent(d))
}

// renderEncoded wraps the payload in the compatibility envelope expected by
// existing clients.
func (s *Server) renderEncoded(c *gin.Context, status int, payload any) {
	enc, err := codec.Encode(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
		return
	}
	c.JSON(status, gin.H{"data": enc})
}

func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrInvalidInput), errors.Is(err, slug.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

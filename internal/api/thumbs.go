package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"contentvault/internal/catalog"
	"contentvault/internal/models"
	"contentvault/internal/storage"
)

func thumbPrefixFor(typ models.ContentType, id string) string {
	return storage.ThumbPrefix(string(typ), id)
}

// uploadThumbnail stores the raw image object and points the row's thumbnail
// field at it. Any resizing or format work happens upstream.
func (s *Server) uploadThumbnail(typ models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := s.Catalog.GetByID(c.Request.Context(), typ, id); err != nil {
			renderError(c, err)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
			return
		}
		defer file.Close()

		object := storage.ThumbObject(string(typ), id, header.Filename)
		contentType := storage.GuessContentType(header.Filename, header.Header.Get("Content-Type"))
		if err := s.Store.PutStream(c.Request.Context(), object, file, header.Size, contentType); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store thumbnail failed"})
			return
		}

		item, err := s.Catalog.Update(c.Request.Context(), typ, id, catalog.Patch{Thumbnail: &object})
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func (s *Server) getThumbnail(c *gin.Context) {
	p := c.Param("path")
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	obj, err := s.Store.Get(c.Request.Context(), "thumbs/"+p)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if stat.ContentType != "" {
		c.Header("Content-Type", stat.ContentType)
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, obj)
}

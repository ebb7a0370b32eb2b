package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler exposes freshly resolved galleries outside of any session.
type Handler struct {
	Resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{Resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)             // GET /catalog
	rg.GET("/:gallery", h.gallery) // GET /catalog/:gallery
}

func (h *Handler) list(c *gin.Context) {
	coll := h.Resolver.LoadGalleries(c.Request.Context())
	c.JSON(http.StatusOK, coll)
}

func (h *Handler) gallery(c *gin.Context) {
	name := strings.TrimSpace(c.Param("gallery"))
	coll := h.Resolver.LoadGalleries(c.Request.Context())
	items, ok := coll.Gallery(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown gallery"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gallery": name,
		"total":   len(items),
		"items":   items,
	})
}

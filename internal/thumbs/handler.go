package thumbs

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artshop/internal/catalog"
	"artshop/internal/metrics"
	"artshop/pkg/logging"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:gallery/:file", h.get) // GET /thumbs/:gallery/:file?size=thumb|medium
}

func (h *Handler) get(c *gin.Context) {
	gallery := strings.TrimSpace(c.Param("gallery"))
	file := strings.TrimSpace(c.Param("file"))
	size := c.DefaultQuery("size", DefaultSize)

	res, err := h.Service.Thumbnail(gallery, file, size)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrUnknownSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	case errors.Is(err, ErrDecode):
		// formats the encoder cannot read are served as-is
		metrics.Thumbnail(size, metrics.ThumbFallback)
		c.Redirect(http.StatusFound, catalog.PublicPath(gallery, file))
		return
	default:
		logging.OrNop(h.Service.Logger).Error("thumbnail failed",
			zap.String("gallery", gallery),
			zap.String("file", file),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "thumbnail failed"})
		return
	}

	outcome := metrics.ThumbRendered
	if res.Cached {
		outcome = metrics.ThumbHit
	}
	metrics.Thumbnail(size, outcome)

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/jpeg", res.Data)
}

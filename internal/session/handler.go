package session

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artshop/internal/metrics"
	"artshop/internal/topics"
	"artshop/pkg/logging"
	"artshop/pkg/models"
)

type Handler struct {
	Sessions *Manager
	Tree     *topics.Tree
	Logger   *zap.Logger
}

func NewHandler(sessions *Manager, tree *topics.Tree, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, Tree: tree, Logger: logging.OrNop(logger).Named("session")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.DELETE("/:id", h.end)

	rg.GET("/:id/view", h.view)
	rg.GET("/:id/galleries", h.galleries)
	rg.GET("/:id/galleries/:name", h.gallery)
	rg.POST("/:id/reload", h.reload)

	rg.POST("/:id/topic", h.toggle((*State).ToggleTopic))
	rg.POST("/:id/subtopic", h.toggle((*State).ToggleSubtopic))
	rg.POST("/:id/gallery", h.toggle((*State).ToggleGallery))

	rg.POST("/:id/detail", h.showDetail)
	rg.DELETE("/:id/detail", h.simple((*State).CloseDetail))

	rg.POST("/:id/cart", h.simple((*State).AddToCart))
	rg.POST("/:id/cart/open", h.simple((*State).OpenCart))
	rg.POST("/:id/cart/close", h.simple((*State).CloseCart))
	rg.DELETE("/:id/cart", h.simple((*State).ClearCart))
	rg.DELETE("/:id/cart/:index", h.removeFromCart)
	rg.POST("/:id/checkout", h.checkout)
}

func (h *Handler) state(c *gin.Context) (*State, bool) {
	st, err := h.Sessions.Get(strings.TrimSpace(c.Param("id")))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
		return nil, false
	}
	return st, true
}

func (h *Handler) create(c *gin.Context) {
	st := h.Sessions.Create(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{
		"session":   st.Snapshot(),
		"galleries": st.Galleries(),
	})
}

func (h *Handler) get(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Snapshot())
}

func (h *Handler) end(c *gin.Context) {
	if err := h.Sessions.End(strings.TrimSpace(c.Param("id"))); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ended"})
}

func (h *Handler) view(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	snap := st.Snapshot()
	coll := st.Galleries()
	lookup := func(g string) []models.GalleryItem {
		items, _ := coll.Gallery(g)
		return items
	}
	c.JSON(http.StatusOK, gin.H{
		"session": snap,
		"topics":  topics.BuildView(h.Tree, snap.Selection, lookup),
	})
}

func (h *Handler) galleries(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Galleries())
}

func (h *Handler) gallery(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	name, found := h.galleryKey(st, c.Param("name"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown gallery"})
		return
	}
	items, _ := st.Galleries().Gallery(name)
	c.JSON(http.StatusOK, gin.H{
		"gallery": name,
		"total":   len(items),
		"items":   items,
	})
}

func (h *Handler) reload(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	coll := st.Reload(c.Request.Context(), h.Sessions.Loader)
	c.JSON(http.StatusOK, coll)
}

type nameReq struct {
	Name string `json:"name"`
}

func (h *Handler) toggle(op func(*State, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := h.state(c)
		if !ok {
			return
		}
		var req nameReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		op(st, req.Name)
		c.JSON(http.StatusOK, st.Snapshot())
	}
}

func (h *Handler) simple(op func(*State)) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := h.state(c)
		if !ok {
			return
		}
		op(st)
		c.JSON(http.StatusOK, st.Snapshot())
	}
}

type detailReq struct {
	Gallery string `json:"gallery"`
	Index   *int   `json:"index"`
}

func (h *Handler) showDetail(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	var req detailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index required"})
		return
	}

	name, found := h.galleryKey(st, req.Gallery)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown gallery"})
		return
	}
	item, found := st.Galleries().Item(name, *req.Index)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no item at index"})
		return
	}

	st.ShowDetail(item)
	c.JSON(http.StatusOK, st.Snapshot())
}

func (h *Handler) removeFromCart(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	st.RemoveFromCart(idx)
	c.JSON(http.StatusOK, st.Snapshot())
}

func (h *Handler) checkout(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	receipt := st.Checkout()
	metrics.Checkout(receipt.Count)
	logging.OrNop(h.Logger).Info("checkout",
		zap.String("session_id", st.ID()),
		zap.Int("items", receipt.Count),
		zap.Float64("total", receipt.Total),
	)
	c.JSON(http.StatusOK, gin.H{
		"receipt": receipt,
		"session": st.Snapshot(),
	})
}

// galleryKey accepts either a gallery folder or the display name of a
// gallery entry in the topic tree.
func (h *Handler) galleryKey(st *State, name string) (string, bool) {
	name = strings.TrimSpace(name)
	coll := st.Galleries()
	if _, ok := coll.Gallery(name); ok {
		return name, true
	}
	if h.Tree == nil {
		return "", false
	}
	folder, ok := h.Tree.FindGallery(name)
	if !ok {
		return "", false
	}
	if _, ok := coll.Gallery(folder); !ok {
		return "", false
	}
	return folder, true
}

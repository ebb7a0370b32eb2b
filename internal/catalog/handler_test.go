package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artshop/pkg/models"
)

func TestHandlerServesFreshCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	writeGallery(t, root, "original", "sunset.jpg")
	store := newStore(t, metaRow{path: "original/sunset.jpg", name: "Sunset", price: 12.0, display: 1})

	r := gin.New()
	NewHandler(NewResolver(root, store, nil, nil)).RegisterRoutes(r.Group("/catalog"))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/catalog")
	require.Equal(t, http.StatusOK, w.Code)
	var coll Collection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
	assert.Equal(t, DefaultGalleries, coll.Names)
	assert.Empty(t, coll.Items["pergamano"])
	require.Len(t, coll.Items["original"], 1)
	assert.Equal(t, 12.0, coll.Items["original"][0].Price)

	writeGallery(t, root, "pergamano", "lace.png")
	w = get("/catalog/pergamano")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Gallery string               `json:"gallery"`
		Total   int                  `json:"total"`
		Items   []models.GalleryItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Lace", resp.Items[0].Name)

	assert.Equal(t, http.StatusNotFound, get("/catalog/unknown").Code)
}

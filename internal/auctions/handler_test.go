package auctions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/auctions")
	api.POST("", h.Create)
	api.GET("", h.List)
	api.GET("/:id", h.Get)
	api.PUT("/:id", h.Update)
	api.DELETE("/:id", h.Delete)
	api.POST("/:id/start", h.Start)
	api.POST("/:id/pause", h.Pause)
	api.POST("/:id/resume", h.Resume)
	api.POST("/:id/stop", h.Stop)
	api.PATCH("/:id/time", h.AdjustTime)
	api.GET("/:id/donors/top", h.TopDonors)
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestHandlerCreate(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("valid", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{
			"streamer": "santiago", "title": "night auction", "timer_minutes": 5,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeData(t, w)
		require.NotEmpty(t, data["id"])
		require.Equal(t, "draft", data["status"])
		require.Contains(t, data["overlay_url"], "/overlay/auction/")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{"streamer": "s"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("timer out of range", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{
			"streamer": "s", "title": "t", "timer_minutes": 2000,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		body := gin.H{"id": "dup", "streamer": "s", "title": "t", "timer_minutes": 5}
		require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/auctions", body).Code)
		require.Equal(t, http.StatusConflict, doJSON(t, r, http.MethodPost, "/api/auctions", body).Code)
	})
}

func TestHandlerLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{
		"id": "a1", "streamer": "s", "title": "t", "timer_minutes": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auctions/a1/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "active", decodeData(t, w)["status"])

	// starting twice is an illegal transition
	w = doJSON(t, r, http.MethodPost, "/api/auctions/a1/start", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auctions/a1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auctions/a1/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/auctions/a1/time", gin.H{"seconds": -30})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(90), decodeData(t, w)["remaining_seconds"])

	// zero delta is a valid no-op, not a missing field
	w = doJSON(t, r, http.MethodPatch, "/api/auctions/a1/time", gin.H{"seconds": 0})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(90), decodeData(t, w)["remaining_seconds"])

	w = doJSON(t, r, http.MethodPatch, "/api/auctions/a1/time", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auctions/a1/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "stopped", decodeData(t, w)["status"])

	w = doJSON(t, r, http.MethodDelete, "/api/auctions/a1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/auctions/a1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerUpdate(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{
		"id": "a1", "streamer": "s", "title": "t", "timer_minutes": 2,
	})

	w := doJSON(t, r, http.MethodPut, "/api/auctions/a1", gin.H{"title": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "renamed", decodeData(t, w)["title"])

	doJSON(t, r, http.MethodPost, "/api/auctions/a1/start", nil)
	w = doJSON(t, r, http.MethodPut, "/api/auctions/a1", gin.H{"title": "again"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHandlerUnknownAuction(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auctions/nope"},
		{http.MethodPost, "/api/auctions/nope/start"},
		{http.MethodPost, "/api/auctions/nope/stop"},
		{http.MethodDelete, "/api/auctions/nope"},
		{http.MethodGet, "/api/auctions/nope/donors/top"},
	} {
		w := doJSON(t, r, route.method, route.path, nil)
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", route.method, route.path)
	}
}

func TestHandlerTopDonors(t *testing.T) {
	r, svc := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{
		"id": "a1", "streamer": "s", "title": "t", "timer_minutes": 2,
	})
	doJSON(t, r, http.MethodPost, "/api/auctions/a1/start", nil)

	svc.HandleGift("a1", "alice", 100, "Rose", "")
	svc.HandleGift("a1", "bob", 250, "Galaxy", "")

	w := doJSON(t, r, http.MethodGet, "/api/auctions/a1/donors/top?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	top := data["top_donors"].([]any)
	require.Len(t, top, 1)
	first := top[0].(map[string]any)
	require.Equal(t, "bob", first["username"])
	require.Equal(t, float64(250), first["total_amount"])
	require.Equal(t, float64(350), data["total_donations"])

	w = doJSON(t, r, http.MethodGet, "/api/auctions/a1/donors/top?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerList(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{"id": "a1", "streamer": "s", "title": "one", "timer_minutes": 1})
	doJSON(t, r, http.MethodPost, "/api/auctions", gin.H{"id": "a2", "streamer": "s", "title": "two", "timer_minutes": 1})

	w := doJSON(t, r, http.MethodGet, "/api/auctions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
}

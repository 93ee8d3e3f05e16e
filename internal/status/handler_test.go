package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduboard/internal/domain"
	"eduboard/internal/gateway"
	"eduboard/internal/store"
)

// stubAPI satisfies gateway.API; fail switches every call to rejection.
type stubAPI struct {
	fail bool
}

func (a *stubAPI) err() error {
	if a.fail {
		return errors.New("backend down")
	}
	return nil
}

func (a *stubAPI) MarkRead(context.Context, string) error            { return a.err() }
func (a *stubAPI) MarkAllRead(context.Context) error                 { return a.err() }
func (a *stubAPI) Delete(context.Context, string) error              { return a.err() }
func (a *stubAPI) UpdateSettings(context.Context, domain.Settings) error { return a.err() }

func setupSurface(t *testing.T, api *stubAPI) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New()
	st.Seed([]domain.Notification{
		{ID: "a", Kind: domain.KindGrade, Title: "Graded", CreatedAt: time.Now()},
		{ID: "b", Kind: domain.KindQuiz, Title: "Quiz", CreatedAt: time.Now().Add(-time.Hour), IsRead: true},
	})

	gw := gateway.New(api, st)
	h := NewHandler(st, gw,
		func() string { return "open" },
		func() bool { return false })

	router := gin.New()
	h.RegisterRoutes(router.Group("/local"))
	return router, st
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Status(t *testing.T) {
	router, _ := setupSurface(t, &stubAPI{})

	w := perform(router, http.MethodGet, "/local/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Connection  string `json:"connection"`
			Degraded    bool   `json:"degraded"`
			UnreadCount int    `json:"unread_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "open", resp.Data.Connection)
	assert.False(t, resp.Data.Degraded)
	assert.Equal(t, 1, resp.Data.UnreadCount)
}

func TestHandler_GetNotifications(t *testing.T) {
	router, _ := setupSurface(t, &stubAPI{})

	w := perform(router, http.MethodGet, "/local/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Notifications []domain.Notification `json:"notifications"`
			UnreadCount   int                   `json:"unread_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Notifications, 2)
	assert.Equal(t, "a", resp.Data.Notifications[0].ID, "newest first")
	assert.Equal(t, 1, resp.Data.UnreadCount)
}

func TestHandler_MarkAsRead(t *testing.T) {
	router, st := setupSurface(t, &stubAPI{})

	w := perform(router, http.MethodPatch, "/local/notifications/a/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, st.UnreadCount())
}

func TestHandler_MutationFailureSurfacesRecoverableError(t *testing.T) {
	router, st := setupSurface(t, &stubAPI{fail: true})

	w := perform(router, http.MethodPatch, "/local/notifications/a/read", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REMOTE_REJECTED", resp.Error.Code)

	got, _ := st.Get("a")
	assert.False(t, got.IsRead, "store reverted behind the error")
}

func TestHandler_UpdateSettings(t *testing.T) {
	router, _ := setupSurface(t, &stubAPI{})

	w := perform(router, http.MethodPut, "/local/settings", map[string]bool{"pushEnabled": false})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.Settings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.PushEnabled)
	assert.True(t, resp.Data.EmailEnabled)
}

func TestHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New()
	gw := gateway.New(&stubAPI{}, st)

	h := NewHandler(st, gw, func() string { return "closed" }, func() bool { return true }).
		WithRefresh(func(context.Context) error {
			st.Seed([]domain.Notification{{ID: "fresh", CreatedAt: time.Now()}})
			return nil
		})

	router := gin.New()
	h.RegisterRoutes(router.Group("/local"))

	w := perform(router, http.MethodPost, "/local/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, st.Len())

	// Without the hook the capability is reported, not faked.
	bare := gin.New()
	NewHandler(st, gw, func() string { return "closed" }, func() bool { return true }).
		RegisterRoutes(bare.Group("/local"))
	w = perform(bare, http.MethodPost, "/local/refresh", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestHandler_DeleteAndBadBody(t *testing.T) {
	router, st := setupSurface(t, &stubAPI{})

	w := perform(router, http.MethodDelete, "/local/notifications/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, st.Len())

	req := httptest.NewRequest(http.MethodPut, "/local/settings", bytes.NewBufferString("{bad"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

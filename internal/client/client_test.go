package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduboard/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
}

func setupPortal(t *testing.T, seen *[]recordedRequest) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	record := func(c *gin.Context) {
		*seen = append(*seen, recordedRequest{
			method: c.Request.Method,
			path:   c.Request.URL.Path,
			auth:   c.GetHeader("Authorization"),
		})
	}
	router.Use(record)

	router.GET("/student/notifications/", func(c *gin.Context) {
		c.JSON(http.StatusOK, []domain.Notification{
			{ID: "n1", Kind: domain.KindGrade, Title: "Graded", CreatedAt: time.Now(), IsRead: false},
		})
	})
	router.GET("/student/notification-settings/", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.Settings{EmailEnabled: true})
	})
	router.PUT("/student/notifications/:id/read/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.PUT("/student/notifications/mark-all-read/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.DELETE("/student/notifications/:id/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.PUT("/student/notification-settings/", func(c *gin.Context) {
		var s domain.Settings
		require.NoError(t, c.ShouldBindJSON(&s))
		c.Status(http.StatusNoContent)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SendsBearerToken(t *testing.T) {
	var seen []recordedRequest
	srv := setupPortal(t, &seen)
	c := New(srv.URL, "tok-123", time.Second)

	list, err := c.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].ID)

	require.Len(t, seen, 1)
	assert.Equal(t, "Bearer tok-123", seen[0].auth)
}

func TestClient_MutationEndpoints(t *testing.T) {
	var seen []recordedRequest
	srv := setupPortal(t, &seen)
	c := New(srv.URL, "tok", time.Second)
	ctx := context.Background()

	require.NoError(t, c.MarkRead(ctx, "n1"))
	require.NoError(t, c.MarkAllRead(ctx))
	require.NoError(t, c.Delete(ctx, "n1"))
	require.NoError(t, c.UpdateSettings(ctx, domain.DefaultSettings()))

	require.Len(t, seen, 4)
	assert.Equal(t, recordedRequest{"PUT", "/student/notifications/n1/read/", "Bearer tok"}, seen[0])
	assert.Equal(t, recordedRequest{"PUT", "/student/notifications/mark-all-read/", "Bearer tok"}, seen[1])
	assert.Equal(t, recordedRequest{"DELETE", "/student/notifications/n1/", "Bearer tok"}, seen[2])
	assert.Equal(t, recordedRequest{"PUT", "/student/notification-settings/", "Bearer tok"}, seen[3])
}

func TestClient_SurfacesHTTPErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/student/notifications/", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "expired token"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := New(srv.URL, "stale", time.Second)
	_, err := c.Notifications(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

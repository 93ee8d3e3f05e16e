// Package status is the local observer surface of the sync sidecar: a small
// HTTP API the presentation layer polls and drives user actions through. It
// only ever reads the store and funnels mutations into the gateway.
package status

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduboard/internal/domain"
	"eduboard/internal/gateway"
	"eduboard/internal/pkg/response"
)

// connInfo carries the connection manager accessors the surface reports on.
type connInfo struct {
	state    func() string
	degraded func() bool
}

// Reader is the read side of the store.
type Reader interface {
	Snapshot() []domain.Notification
	UnreadCount() int
}

// Mutator is the slice of the gateway the surface drives.
type Mutator interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error
	Settings() domain.Settings
}

type Handler struct {
	store   Reader
	gw      Mutator
	conn    connInfo
	refresh func(ctx context.Context) error
}

// NewHandler wires the surface. stateFn/degradedFn come from the connection
// manager (kept as funcs so tests can stub them trivially).
func NewHandler(store Reader, gw Mutator, stateFn func() string, degradedFn func() bool) *Handler {
	return &Handler{
		store: store,
		gw:    gw,
		conn:  connInfo{state: stateFn, degraded: degradedFn},
	}
}

// WithRefresh installs the manual re-bootstrap hook. Without it the refresh
// route reports the capability as unavailable.
func (h *Handler) WithRefresh(fn func(ctx context.Context) error) *Handler {
	h.refresh = fn
	return h
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", h.GetStatus)
	g := r.Group("/notifications")
	{
		g.GET("", h.GetNotifications)
		g.PATCH("/:id/read", h.MarkAsRead)
		g.PATCH("/read-all", h.MarkAllAsRead)
		g.DELETE("/:id", h.Delete)
	}
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.POST("/refresh", h.Refresh)
}

// Refresh re-runs the bootstrap; the REST path stays authoritative when the
// push channel is down.
func (h *Handler) Refresh(c *gin.Context) {
	if h.refresh == nil {
		response.Error(c, http.StatusNotImplemented, "REFRESH_UNAVAILABLE", "Manual refresh is not wired")
		return
	}
	if err := h.refresh(c.Request.Context()); err != nil {
		response.Error(c, http.StatusBadGateway, "REFRESH_FAILED", "Bootstrap fetch failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":       "refreshed",
		"unread_count": h.store.UnreadCount(),
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"connection":   h.conn.state(),
		"degraded":     h.conn.degraded(),
		"unread_count": h.store.UnreadCount(),
	})
}

func (h *Handler) GetNotifications(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"notifications": h.store.Snapshot(),
		"unread_count":  h.store.UnreadCount(),
	})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Notification ID is required")
		return
	}
	if err := h.gw.MarkRead(c.Request.Context(), id); err != nil {
		h.mutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	if err := h.gw.MarkAllRead(c.Request.Context()); err != nil {
		h.mutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "all_read"})
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Notification ID is required")
		return
	}
	if err := h.gw.Delete(c.Request.Context(), id); err != nil {
		h.mutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetSettings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.gw.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Failed to parse settings patch")
		return
	}
	if err := h.gw.UpdateSettings(c.Request.Context(), patch); err != nil {
		h.mutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.gw.Settings())
}

func (h *Handler) mutationError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrRemoteRejected) {
		// Recoverable: the optimistic change is already reverted.
		response.Error(c, http.StatusBadGateway, "REMOTE_REJECTED", err.Error())
		return
	}
	response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to apply update")
}

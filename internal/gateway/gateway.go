// Package gateway funnels user-initiated state changes: each mutation is
// applied to the store optimistically, confirmed over REST, and reverted if
// the server rejects it. Calls for the same record are serialized; calls for
// different records proceed concurrently.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"eduboard/internal/domain"
	"eduboard/internal/store"
)

// settingsKey serializes settings updates alongside per-record locks.
// Record ids are server-assigned and never collide with it.
const settingsKey = "\x00settings"

type Gateway struct {
	api   API
	store *store.Store

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	settings domain.Settings
}

func New(api API, st *store.Store) *Gateway {
	return &Gateway{
		api:      api,
		store:    st,
		locks:    make(map[string]*sync.Mutex),
		settings: domain.DefaultSettings(),
	}
}

// SetSettings installs the bootstrap settings as the optimistic baseline.
func (g *Gateway) SetSettings(s domain.Settings) {
	g.mu.Lock()
	g.settings = s
	g.mu.Unlock()
}

// Settings returns the current (optimistically maintained) settings.
func (g *Gateway) Settings() domain.Settings {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settings
}

func (g *Gateway) lockFor(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}

// MarkRead optimistically flags the record read and confirms with the
// server. Absent or already-read records are a no-op, so a second call while
// the first is in flight does nothing.
func (g *Gateway) MarkRead(ctx context.Context, id string) error {
	l := g.lockFor(id)
	l.Lock()
	defer l.Unlock()

	prior, ok := g.store.Get(id)
	if !ok || prior.IsRead {
		return nil
	}

	g.store.MarkRead(id)
	if err := g.api.MarkRead(ctx, id); err != nil {
		g.store.Restore(prior)
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	return nil
}

// MarkAllRead optimistically flags every record read and confirms with the
// server, restoring the previously-unread records on failure.
func (g *Gateway) MarkAllRead(ctx context.Context) error {
	var unread []domain.Notification
	for _, rec := range g.store.Snapshot() {
		if !rec.IsRead {
			unread = append(unread, rec)
		}
	}
	if len(unread) == 0 {
		return nil
	}

	g.store.MarkAllRead()
	if err := g.api.MarkAllRead(ctx); err != nil {
		for _, rec := range unread {
			g.store.Restore(rec)
		}
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	return nil
}

// Delete optimistically removes the record and confirms with the server,
// re-inserting it on failure.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	l := g.lockFor(id)
	l.Lock()
	defer l.Unlock()

	prior, ok := g.store.Get(id)
	if !ok {
		return nil
	}

	g.store.Remove(id)
	if err := g.api.Delete(ctx, id); err != nil {
		g.store.Restore(prior)
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	return nil
}

// UpdateSettings applies the patch optimistically and confirms the resulting
// settings with the server, reverting the baseline on failure.
func (g *Gateway) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error {
	l := g.lockFor(settingsKey)
	l.Lock()
	defer l.Unlock()

	g.mu.Lock()
	prior := g.settings
	next := patch.Apply(prior)
	g.settings = next
	g.mu.Unlock()

	if err := g.api.UpdateSettings(ctx, next); err != nil {
		g.mu.Lock()
		g.settings = prior
		g.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrRemoteRejected, err)
	}
	return nil
}

// InsertLocal synthesizes a purely local record (e.g. a degraded-mode
// notice). It never leaves the client, so no REST confirmation happens; this
// is the one place the client mints an id.
func (g *Gateway) InsertLocal(kind domain.Kind, title, message string) domain.Notification {
	rec := domain.Notification{
		ID:        "local-" + uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	// The id is fresh, so Upsert cannot regress a read record.
	_ = g.store.Upsert(rec)
	return rec
}

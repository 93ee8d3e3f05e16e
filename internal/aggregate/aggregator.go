// Package aggregate performs the bootstrap fan-out: every portal endpoint is
// fetched concurrently, each with its own timeout, and every failure is
// substituted from a declared per-source fallback table. Callers always get a
// usable snapshot; what they may not get is live data.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"eduboard/internal/domain"
)

var (
	// ErrTimeoutTooLarge rejects a per-source budget beyond the hard ceiling.
	ErrTimeoutTooLarge = errors.New("aggregate: per-source timeout exceeds ceiling")
	// ErrAllEssentialFailed signals that no essential endpoint produced live
	// data. The snapshot returned alongside it is still usable.
	ErrAllEssentialFailed = errors.New("aggregate: all essential sources failed")
)

// MaxSourceTimeout is the hard ceiling on the caller-supplied per-source
// budget; anything larger would let a dead endpoint stall the bootstrap.
const MaxSourceTimeout = 2 * time.Minute

// Snapshot is the consistent view produced by one bootstrap. It is consumed
// immediately to seed the store and not retained.
type Snapshot struct {
	Notifications []domain.Notification
	Announcements []domain.Announcement
	Settings      domain.Settings
	Overview      domain.Overview

	// Live is true when at least one source returned real data.
	Live bool
	// Fallback lists the sources whose data was substituted.
	Fallback []string
}

// Records merges notifications and announcements into the store's record
// shape, newest first.
func (s *Snapshot) Records() []domain.Notification {
	out := make([]domain.Notification, 0, len(s.Notifications)+len(s.Announcements))
	out = append(out, s.Notifications...)
	for _, a := range s.Announcements {
		out = append(out, a.AsNotification())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type Aggregator struct {
	api           Fetcher
	sourceTimeout time.Duration
}

// New creates an aggregator with the given per-source timeout budget.
func New(api Fetcher, sourceTimeout time.Duration) *Aggregator {
	return &Aggregator{api: api, sourceTimeout: sourceTimeout}
}

// source is one row of the fallback table: how to fetch, what to substitute
// on failure, and whether the row counts as essential for the "data
// unavailable" signal.
type source struct {
	name      string
	essential bool
	fetch     func(ctx context.Context, snap *Snapshot) error
	fallback  func(snap *Snapshot)
}

func (a *Aggregator) sources() []source {
	return []source{
		{
			name:      "notifications",
			essential: true,
			fetch: func(ctx context.Context, snap *Snapshot) error {
				list, err := a.api.Notifications(ctx)
				if err != nil {
					return err
				}
				snap.Notifications = list
				return nil
			},
			fallback: func(snap *Snapshot) { snap.Notifications = []domain.Notification{} },
		},
		{
			name: "announcements",
			fetch: func(ctx context.Context, snap *Snapshot) error {
				list, err := a.api.Announcements(ctx)
				if err != nil {
					return err
				}
				snap.Announcements = list
				return nil
			},
			fallback: func(snap *Snapshot) { snap.Announcements = []domain.Announcement{} },
		},
		{
			name: "settings",
			fetch: func(ctx context.Context, snap *Snapshot) error {
				s, err := a.api.Settings(ctx)
				if err != nil {
					return err
				}
				snap.Settings = s
				return nil
			},
			fallback: func(snap *Snapshot) { snap.Settings = domain.DefaultSettings() },
		},
		{
			name:      "overview",
			essential: true,
			fetch: func(ctx context.Context, snap *Snapshot) error {
				o, err := a.api.Overview(ctx)
				if err != nil {
					return err
				}
				snap.Overview = o
				return nil
			},
			fallback: func(snap *Snapshot) { snap.Overview = domain.PlaceholderOverview() },
		},
	}
}

// Aggregate fetches all sources concurrently and waits for every one to
// settle. Individual failures are logged and substituted, never propagated;
// the only errors crossing this boundary are an oversized timeout budget and
// the one-shot ErrAllEssentialFailed signal (the snapshot next to it is still
// valid).
func (a *Aggregator) Aggregate(ctx context.Context) (*Snapshot, error) {
	if a.sourceTimeout > MaxSourceTimeout {
		return nil, ErrTimeoutTooLarge
	}

	snap := &Snapshot{}
	sources := a.sources()
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()
			errs[i] = src.fetch(fetchCtx, snap)
		}(i, src)
	}
	wg.Wait()

	essentialLive := false
	essentialTotal := 0
	for i, src := range sources {
		if src.essential {
			essentialTotal++
		}
		if errs[i] != nil {
			log.Printf("bootstrap: %s unavailable, using fallback: %v", src.name, errs[i])
			src.fallback(snap)
			snap.Fallback = append(snap.Fallback, src.name)
			continue
		}
		snap.Live = true
		if src.essential {
			essentialLive = true
		}
	}

	if essentialTotal > 0 && !essentialLive {
		return snap, ErrAllEssentialFailed
	}
	return snap, nil
}

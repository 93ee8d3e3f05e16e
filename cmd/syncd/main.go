package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"eduboard/internal/aggregate"
	"eduboard/internal/client"
	"eduboard/internal/config"
	"eduboard/internal/conn"
	"eduboard/internal/domain"
	"eduboard/internal/gateway"
	"eduboard/internal/status"
	"eduboard/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	api := client.New(cfg.APIBase, cfg.Token, cfg.RequestTimeout)
	st := store.New()
	gw := gateway.New(api, st)

	agg := aggregate.New(api, cfg.SourceTimeout)

	// Bootstrap: a degraded snapshot is still a snapshot.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SourceTimeout+5*time.Second)
	snap, err := agg.Aggregate(ctx)
	cancel()
	if err != nil {
		if !errors.Is(err, aggregate.ErrAllEssentialFailed) {
			log.Fatal(err)
		}
		log.Printf("bootstrap: no live essential data, starting degraded")
	}
	st.Seed(snap.Records())
	gw.SetSettings(snap.Settings)
	log.Printf("bootstrap: %d records, %d unread, live=%t fallback=%v",
		st.Len(), st.UnreadCount(), snap.Live, snap.Fallback)

	mgr := conn.New(conn.Options{
		WSBase:      cfg.WSBase,
		Token:       cfg.Token,
		BaseDelay:   cfg.ReconnectBase,
		MaxDelay:    cfg.ReconnectMax,
		MaxAttempts: cfg.ReconnectRetries,
	}, st)
	mgr.Connect()

	// Example display collaborator: consume the validated push events.
	events, unsubscribe := mgr.Subscribe()
	go func() {
		for rec := range events {
			log.Printf("push: %s [%s] %s", rec.ID, rec.Kind, rec.Title)
		}
	}()

	// Surface a local record once the push channel degrades to REST-only.
	go watchDegraded(mgr, gw)

	router := gin.Default()
	h := status.NewHandler(st, gw,
		func() string { return mgr.State().String() },
		mgr.Degraded).
		WithRefresh(func(ctx context.Context) error {
			snap, err := agg.Aggregate(ctx)
			if err != nil && !errors.Is(err, aggregate.ErrAllEssentialFailed) {
				return err
			}
			st.Seed(snap.Records())
			gw.SetSettings(snap.Settings)
			return nil
		})
	h.RegisterRoutes(router.Group("/local"))

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	log.Printf("status surface on %s", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	mgr.Disconnect()
	unsubscribe()
	st.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// watchDegraded posts one local notice when the retry budget runs out.
func watchDegraded(mgr *conn.Manager, gw *gateway.Gateway) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if mgr.Degraded() {
			gw.InsertLocal(domain.KindInfo, "Live updates paused",
				"Realtime connection unavailable; showing data from periodic refresh.")
			return
		}
		if s := mgr.State(); s == conn.StateClosed || s == conn.StateIdle {
			return
		}
	}
}

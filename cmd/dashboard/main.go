// cmd/dashboard — the indicator dashboard service.
//
// Wires the full pipeline: price feed WebSocket -> tick ring -> session
// (streaming buffer + indicator recompute) -> gateway hub -> browser
// WebSocket, with Redis-persisted indicator instances, SQLite daily-bar
// history, and a Prometheus metrics/health server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradeboard/config"
	"tradeboard/internal/feed"
	"tradeboard/internal/gateway"
	"tradeboard/internal/history"
	"tradeboard/internal/logger"
	"tradeboard/internal/metrics"
	"tradeboard/internal/ringbuf"
	"tradeboard/internal/session"
	"tradeboard/internal/stream"
	"tradeboard/internal/tools"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

var processStart = time.Now()

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// .env is optional; process env wins over it.
	if err := godotenv.Load(); err == nil {
		log.Println("[dashboard] loaded .env")
	}

	cfg := config.Load()
	slogger := logger.Init("dashboard", cfg.LogLevel)
	slogger.Info("starting", "symbol", cfg.Symbol, "feed", cfg.FeedURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Redis (instance persistence + health); degrade gracefully ----
	var rdb *goredis.Client
	{
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			slogger.Warn("redis unavailable, instance persistence disabled", "addr", cfg.RedisAddr, "err", err)
			client.Close()
		} else {
			rdb = client
			log.Printf("[dashboard] redis connected at %s", cfg.RedisAddr)
		}
	}

	// ---- SQLite history ----
	hist, err := history.New(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[dashboard] history store: %v", err)
	}
	defer hist.Close()

	// ---- Metrics + health ----
	met := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetSymbol(cfg.Symbol)
	health.StartLivenessChecker(ctx, rdb, hist.DB(), 10*time.Second)
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Session ----
	buf := stream.NewBufferWith(cfg.MinDelta, cfg.RetentionSecs)
	var store *session.Store
	if rdb != nil {
		store = session.NewStore(rdb)
	}
	sess := session.New(slogger, cfg.Symbol, buf, store, met)
	sess.Restore(ctx)

	// ---- Gateway hub ----
	hub := gateway.NewHub(met)
	sess.OnUpdate = func(u session.Update) {
		health.SetSymbol(u.Symbol)
		health.SetLastTickTime(time.Now())
		hub.HandleUpdate(u)
	}

	// ---- Feed -> ring -> session ----
	ring := ringbuf.New(cfg.RingCapacity)
	client, err := feed.New(feed.Config{URL: cfg.FeedURL})
	if err != nil {
		log.Fatalf("[dashboard] feed config: %v", err)
	}
	client.OnReconnect = met.FeedReconnects.Inc
	client.OnConnected = health.SetFeedConnected
	client.OnOverflow = met.RingBufOverflow.Inc
	go func() {
		if err := client.Start(ctx, ring); err != nil {
			slogger.Error("feed stopped", "err", err)
		}
	}()
	go sess.Run(ctx, ring)

	// ---- HTTP server ----
	th := tools.NewHandler(sess, slogger, met)
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, sess, th, hist, rdb, processStart)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[dashboard] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[dashboard] server error: %v", err)
		}
	}()

	// ---- Graceful shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slogger.Info("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	if rdb != nil {
		rdb.Close()
	}
	log.Println("[dashboard] stopped")
}

package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick rejection reasons, used as the label values of TicksRejected.
const (
	RejectOutOfOrder = "out_of_order"
	RejectMinDelta   = "min_delta"
)

// Metrics holds all Prometheus metrics for the dashboard engine.
type Metrics struct {
	TicksTotal    prometheus.Counter
	TicksAccepted prometheus.Counter
	TicksRejected *prometheus.CounterVec // labels: reason

	RecomputeDur       prometheus.Histogram
	CalculatorFaults   prometheus.Counter
	DerivedSeriesTotal prometheus.Counter

	FeedReconnects  prometheus.Counter
	RingBufOverflow prometheus.Counter

	HistoryQueryDur prometheus.Histogram
	ToolCallsTotal  *prometheus.CounterVec // labels: tool

	WSClients prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ticks_total",
			Help: "Total ticks received from the price feed",
		}),
		TicksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ticks_accepted_total",
			Help: "Ticks accepted into the streaming buffer",
		}),
		TicksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ticks_rejected_total",
			Help: "Ticks rejected by the streaming buffer (by reason)",
		}, []string{"reason"}),

		RecomputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_recompute_duration_seconds",
			Help:    "Full indicator recompute latency per accepted tick",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		CalculatorFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_calculator_faults_total",
			Help: "Indicator instances omitted from output due to calculator faults",
		}),
		DerivedSeriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_derived_series_total",
			Help: "Total derived series emitted by the processor",
		}),

		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_feed_reconnects_total",
			Help: "Price feed WebSocket reconnection attempts",
		}),
		RingBufOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ringbuf_overflow_total",
			Help: "Ring buffer push overflows (dropped ticks)",
		}),

		HistoryQueryDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_history_query_duration_seconds",
			Help:    "SQLite history query latency",
			Buckets: prometheus.DefBuckets,
		}),
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_tool_calls_total",
			Help: "Agent tool calls handled (by tool name)",
		}, []string{"tool"}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Currently connected browser WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.TicksAccepted,
		m.TicksRejected,
		m.RecomputeDur,
		m.CalculatorFaults,
		m.DerivedSeriesTotal,
		m.FeedReconnects,
		m.RingBufOverflow,
		m.HistoryQueryDur,
		m.ToolCallsTotal,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedConnected  bool
	LastTickTime   time.Time
	RedisConnected bool
	SQLiteOK       bool
	Symbol         string

	RedisLatencyMs  float64
	SQLiteLatencyMs float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetFeedConnected(v bool) {
	h.mu.Lock()
	h.FeedConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetSymbol(sym string) {
	h.mu.Lock()
	h.Symbol = sym
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.FeedConnected || !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		Symbol          string  `json:"symbol"`
		FeedConnected   bool    `json:"feed_connected"`
		LastTickTime    string  `json:"last_tick_time"`
		TickAge         string  `json:"tick_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		Symbol:          h.Symbol,
		FeedConnected:   h.FeedConnected,
		LastTickTime:    h.LastTickTime.Format(time.RFC3339),
		TickAge:         tickAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

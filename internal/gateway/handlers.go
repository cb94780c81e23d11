package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"tradeboard/internal/history"
	"tradeboard/internal/indicator"
	"tradeboard/internal/model"
	"tradeboard/internal/session"
	"tradeboard/internal/tools"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, sess *session.Session, th *tools.Handler, hist *history.Store, rdb *goredis.Client, processStart time.Time) {
	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	// REST: indicator instance CRUD
	mux.HandleFunc("/api/indicators", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)

		case http.MethodGet:
			writeJSON(w, sess.ListIndicators())

		case http.MethodPost:
			var req struct {
				Kind   string           `json:"kind"`
				Params model.Parameters `json:"params"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
				return
			}
			writeJSON(w, map[string]string{"result": sess.AddIndicator(req.Kind, req.Params)})

		case http.MethodDelete:
			query := r.URL.Query().Get("query")
			writeJSON(w, map[string]string{"result": sess.RemoveIndicator(query)})

		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
	})

	// REST: modify indicator parameters
	mux.HandleFunc("/api/indicators/modify", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Query  string           `json:"query"`
			Params model.Parameters `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"result": sess.ModifyIndicator(req.Query, req.Params)})
	})

	// REST: indicator registry (kinds, defaults, colors) for the editing UI
	mux.HandleFunc("/api/registry", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, indicator.Registry())
	})

	// REST: latest price points + derived series snapshot
	mux.HandleFunc("/api/series", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, seriesSnapshot{
			Symbol: sess.Symbol(),
			Points: sess.Points(),
			Series: sess.Series(),
		})
	})

	// REST: agent tool-call entry
	mux.HandleFunc("/api/tool", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
		if err != nil {
			http.Error(w, `{"error":"body read failed"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"result": th.Handle(raw)})
	})

	// REST: pull daily bars from SQLite into the live buffer
	mux.HandleFunc("/api/history/load", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var req historyLoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
		if req.Symbol == "" {
			req.Symbol = sess.Symbol()
		}
		if req.To == 0 {
			req.To = time.Now().Unix()
		}
		result, err := hist.Load(req.Symbol, req.From, req.To)
		if err != nil {
			log.Printf("[gateway] history load failed: %v", err)
			http.Error(w, `{"error":"history query failed"}`, http.StatusInternalServerError)
			return
		}
		sess.SwitchSymbol(req.Symbol)
		loaded := sess.LoadHistory(result.Points)
		writeJSON(w, map[string]interface{}{
			"symbol": result.Symbol,
			"loaded": loaded,
			"stats":  result.Stats,
		})
	})

	// REST: upsert daily bars (backfill ingest)
	mux.HandleFunc("/api/history/bars", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var req barsUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
		if req.Symbol == "" || len(req.Bars) == 0 {
			http.Error(w, `{"error":"symbol and bars are required"}`, http.StatusBadRequest)
			return
		}
		if err := hist.Upsert(req.Symbol, req.Bars); err != nil {
			log.Printf("[gateway] bars upsert failed: %v", err)
			http.Error(w, `{"error":"upsert failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"status": "ok", "stored": len(req.Bars)})
	})

	// REST: switch the active symbol
	mux.HandleFunc("/api/symbol", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Symbol string `json:"symbol"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
			http.Error(w, `{"error":"symbol is required"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"result": sess.SwitchSymbol(req.Symbol)})
	})

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)

		redisOK := true
		if rdb == nil {
			redisOK = false
		} else if err := rdb.Ping(r.Context()).Err(); err != nil {
			redisOK = false
		}

		writeJSON(w, map[string]interface{}{
			"status":     "ok",
			"symbol":     sess.Symbol(),
			"redis":      redisOK,
			"ws_clients": hub.ClientCount(),
			"uptime_sec": int64(time.Since(processStart).Seconds()),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

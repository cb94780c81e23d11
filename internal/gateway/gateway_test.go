package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradeboard/internal/model"
	"tradeboard/internal/session"
	"tradeboard/internal/stream"
	"tradeboard/internal/tools"
)

// envelope is the parsed WS message structure.
type envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
	TS      string          `json:"ts"`
	Seq     int64           `json:"seq"`
}

func TestBuildEnvelopeFormat(t *testing.T) {
	channel := ChannelSeries
	data := []byte(`{"symbol":"AAPL","series":[]}`)
	now := time.Date(2026, 2, 25, 10, 0, 1, 0, time.UTC)

	buf := buildEnvelope(channel, data, now, 42)

	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\nraw: %s", err, buf)
	}
	if env.Channel != channel {
		t.Errorf("channel: got %q, want %q", env.Channel, channel)
	}
	if env.Seq != 42 {
		t.Errorf("seq: got %d, want 42", env.Seq)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("data is not valid JSON: %v", err)
	}
	if _, ok := payload["symbol"]; !ok {
		t.Error("data missing 'symbol' field")
	}

	parsed, err := time.Parse(time.RFC3339Nano, env.TS)
	if err != nil {
		t.Errorf("ts is not valid RFC3339Nano: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("ts: got %v, want %v", parsed, now)
	}
}

func TestBuildEnvelopeNestedData(t *testing.T) {
	data := []byte(`{"note":"test","nested":{"a":1},"arr":[1,2,3]}`)
	buf := buildEnvelope(ChannelPrice, data, time.Now().UTC(), 999)

	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\nraw: %s", err, buf)
	}
	if env.Seq != 999 {
		t.Errorf("seq: got %d, want 999", env.Seq)
	}
}

func TestHub_BroadcastSeqMonotonic(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < 5; i++ {
		h.Broadcast(ChannelPrice, []byte(`{}`))
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.seq != 5 {
		t.Errorf("seq = %d, want 5", h.seq)
	}
}

func TestHub_HandleUpdateKeepsLatest(t *testing.T) {
	h := NewHub(nil)
	h.HandleUpdate(session.Update{
		Symbol: "AAPL",
		Price:  model.PricePoint{Time: 7, Value: 101.5},
		Series: []model.DerivedSeries{{ID: "sma-1", Label: "SMA"}},
	})

	h.mu.RLock()
	price, okP := h.latest[ChannelPrice]
	series, okS := h.latest[ChannelSeries]
	h.mu.RUnlock()

	if !okP || !okS {
		t.Fatal("both channels must hold a latest payload")
	}
	var pp pricePayload
	if err := json.Unmarshal(price.Data, &pp); err != nil || pp.Point.Value != 101.5 {
		t.Errorf("price payload = %s (%v)", price.Data, err)
	}
	var sp seriesPayload
	if err := json.Unmarshal(series.Data, &sp); err != nil || len(sp.Series) != 1 {
		t.Errorf("series payload = %s (%v)", series.Data, err)
	}
}

// ─────────────────────────── REST surface ───────────────────────────

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(logger, "AAPL", stream.NewBuffer(), nil, nil)
	hub := NewHub(nil)
	sess.OnUpdate = hub.HandleUpdate
	th := tools.NewHandler(sess, logger, nil)

	mux := http.NewServeMux()
	RegisterRoutes(mux, hub, sess, th, nil, nil, time.Now())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) map[string]interface{} {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s: status %d: %s", url, resp.StatusCode, raw)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestRoutes_IndicatorCRUD(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv.URL+"/api/indicators", `{"kind":"sma","params":{"period":10}}`)
	if !strings.Contains(out["result"].(string), "sma-1") {
		t.Fatalf("add result = %v", out)
	}

	resp, err := http.Get(srv.URL + "/api/indicators")
	if err != nil {
		t.Fatal(err)
	}
	var list []model.IndicatorInstance
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 || list[0].ID != "sma-1" {
		t.Fatalf("list = %v", list)
	}

	out = postJSON(t, srv.URL+"/api/indicators/modify", `{"query":"sma","params":{"period":50}}`)
	if !strings.Contains(out["result"].(string), "period=50") {
		t.Fatalf("modify result = %v", out)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/indicators?query=sma", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var del map[string]string
	json.NewDecoder(resp.Body).Decode(&del)
	resp.Body.Close()
	if !strings.Contains(del["result"], "Removed sma-1") {
		t.Fatalf("delete result = %v", del)
	}
}

func TestRoutes_ToolEndpoint(t *testing.T) {
	srv := newTestServer(t)
	out := postJSON(t, srv.URL+"/api/tool", `{"name":"add_indicator","args":{"kind":"rsi"}}`)
	if !strings.Contains(out["result"].(string), "rsi-1") {
		t.Fatalf("tool result = %v", out)
	}
	out = postJSON(t, srv.URL+"/api/tool", `{"name":"remove_indicator","args":{"query":"nothing"}}`)
	if !strings.Contains(out["result"].(string), "was found") {
		t.Fatalf("tool result = %v", out)
	}
}

func TestRoutes_SeriesSnapshot(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/indicators", `{"kind":"vwap"}`)

	resp, err := http.Get(srv.URL + "/api/series")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap seriesSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Symbol != "AAPL" {
		t.Errorf("symbol = %q", snap.Symbol)
	}
	if len(snap.Series) != 1 || snap.Series[0].ID != "vwap-1" {
		t.Errorf("series = %v", snap.Series)
	}
}

func TestRoutes_Registry(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/registry")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var regs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&regs); err != nil {
		t.Fatal(err)
	}
	if len(regs) != 8 {
		t.Fatalf("registry entries = %d, want 8", len(regs))
	}
	if regs[0]["kind"] != "sma" {
		t.Errorf("first kind = %v, want sma", regs[0]["kind"])
	}
}

func TestRoutes_SymbolSwitch(t *testing.T) {
	srv := newTestServer(t)
	out := postJSON(t, srv.URL+"/api/symbol", `{"symbol":"msft"}`)
	if out["result"] != "Switched to MSFT." {
		t.Fatalf("result = %v", out)
	}
}

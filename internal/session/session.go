// Package session holds the live state of one dashboard: the active symbol,
// its streaming price buffer, and the ordered list of indicator instances.
// One goroutine drains the tick ring and recomputes derived series on every
// accepted sample; all mutations of the instance list go through the
// operations below, which double as the agent tool surface.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tradeboard/internal/indicator"
	"tradeboard/internal/metrics"
	"tradeboard/internal/model"
	"tradeboard/internal/ringbuf"
	"tradeboard/internal/stream"
)

// Update is one recompute result handed to the gateway hub.
type Update struct {
	Symbol string
	Price  model.PricePoint
	Series []model.DerivedSeries
}

// Session is safe for concurrent use; the ingest loop and the HTTP/tool
// surface share it.
type Session struct {
	mu       sync.Mutex
	log      *slog.Logger
	symbol   string
	buf      *stream.Buffer
	proc     *indicator.Processor
	insts    []model.IndicatorInstance
	counters map[model.IndicatorKind]int
	series   []model.DerivedSeries
	store    *Store
	met      *metrics.Metrics

	// OnUpdate, when set, receives every recompute result. Called without
	// the session lock held.
	OnUpdate func(Update)
}

// New creates a Session for the given symbol. store and met may be nil.
func New(logger *slog.Logger, symbol string, buf *stream.Buffer, store *Store, met *metrics.Metrics) *Session {
	s := &Session{
		log:      logger,
		symbol:   symbol,
		buf:      buf,
		store:    store,
		met:      met,
		counters: make(map[model.IndicatorKind]int),
	}
	s.proc = indicator.NewProcessor(logger)
	s.proc.OnFault = func(string) {
		if met != nil {
			met.CalculatorFaults.Inc()
		}
	}
	return s
}

// Restore loads a previously persisted instance list and resumes the per-kind
// id counters above the highest restored suffix.
func (s *Session) Restore(ctx context.Context) {
	list, ok := s.store.Load(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	s.insts = list
	for _, inst := range list {
		kind := inst.Kind
		if i := strings.LastIndex(inst.ID, "-"); i > 0 {
			if n, err := strconv.Atoi(inst.ID[i+1:]); err == nil && n > s.counters[kind] {
				s.counters[kind] = n
			}
		}
	}
	s.mu.Unlock()
}

// Run drains the tick ring until ctx is cancelled. Single consumer.
func (s *Session) Run(ctx context.Context, ring *ringbuf.Ring) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		tk, ok := ring.Pop()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		s.Ingest(tk)
	}
}

// Ingest applies one live tick. Ticks for a symbol other than the active one
// are stale leftovers from a switch and are dropped. Returns true if the tick
// was accepted into the buffer (and a recompute broadcast).
func (s *Session) Ingest(tk model.Tick) bool {
	if s.met != nil {
		s.met.TicksTotal.Inc()
	}

	s.mu.Lock()
	if tk.Symbol != "" && tk.Symbol != s.symbol {
		s.mu.Unlock()
		return false
	}
	last, hadLast := s.buf.Last()
	p := model.PricePoint{Time: tk.Time, Value: tk.Value}
	if !s.buf.Append(p) {
		s.mu.Unlock()
		if s.met != nil {
			reason := metrics.RejectMinDelta
			if hadLast && tk.Time <= last.Time {
				reason = metrics.RejectOutOfOrder
			}
			s.met.TicksRejected.WithLabelValues(reason).Inc()
		}
		return false
	}
	if s.met != nil {
		s.met.TicksAccepted.Inc()
	}
	upd := s.recomputeLocked(p)
	s.mu.Unlock()

	s.publish(upd)
	return true
}

// recomputeLocked runs the processor over the current buffer and instance
// list. Caller holds s.mu.
func (s *Session) recomputeLocked(price model.PricePoint) Update {
	start := time.Now()
	s.series = s.proc.Process(s.buf.Points(), s.insts)
	if s.met != nil {
		s.met.RecomputeDur.Observe(time.Since(start).Seconds())
		s.met.DerivedSeriesTotal.Add(float64(len(s.series)))
	}
	return Update{Symbol: s.symbol, Price: price, Series: s.series}
}

func (s *Session) publish(upd Update) {
	if s.OnUpdate != nil {
		s.OnUpdate(upd)
	}
}

// afterMutationLocked persists, recomputes, and returns the update to
// publish. Caller holds s.mu.
func (s *Session) afterMutationLocked() Update {
	s.store.Save(s.snapshotLocked())
	price, _ := s.buf.Last()
	return s.recomputeLocked(price)
}

// ─────────────────────────── instance operations ───────────────────────────

// AddIndicator creates a fresh instance of the given kind with the registry
// defaults, overridden by params. The result is always a human-readable
// confirmation; an unknown kind names the valid ones.
func (s *Session) AddIndicator(kind string, params model.Parameters) string {
	k := model.IndicatorKind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.Valid() {
		return fmt.Sprintf("Unknown indicator type %q. Valid types: %s.", kind, kindNames())
	}
	desc := indicator.Lookup(k)

	s.mu.Lock()
	s.counters[k]++
	inst := model.IndicatorInstance{
		ID:          fmt.Sprintf("%s-%d", k, s.counters[k]),
		Kind:        k,
		DisplayName: desc.DisplayName,
		Parameters:  params.Clone(),
		Color:       desc.Color,
		Visible:     true,
	}
	s.insts = append(s.insts, inst)
	upd := s.afterMutationLocked()
	s.mu.Unlock()

	s.publish(upd)
	return fmt.Sprintf("Added %s (%s).", inst.ID, desc.DisplayName)
}

// RemoveIndicator removes every instance whose id, display name, or kind
// contains the query (case-insensitive). No match leaves the list unchanged.
func (s *Session) RemoveIndicator(query string) string {
	s.mu.Lock()
	matched := s.matchLocked(query)
	if len(matched) == 0 {
		s.mu.Unlock()
		return notFound(query)
	}
	removed := make([]string, 0, len(matched))
	keep := s.insts[:0]
	for i, inst := range s.insts {
		if containsInt(matched, i) {
			removed = append(removed, inst.ID)
			continue
		}
		keep = append(keep, inst)
	}
	s.insts = keep
	upd := s.afterMutationLocked()
	s.mu.Unlock()

	s.publish(upd)
	return fmt.Sprintf("Removed %s.", strings.Join(removed, ", "))
}

// ModifyIndicator overlays params onto every matching instance's overrides.
func (s *Session) ModifyIndicator(query string, params model.Parameters) string {
	s.mu.Lock()
	matched := s.matchLocked(query)
	if len(matched) == 0 {
		s.mu.Unlock()
		return notFound(query)
	}
	changed := make([]string, 0, len(matched))
	for _, i := range matched {
		if s.insts[i].Parameters == nil {
			s.insts[i].Parameters = model.Parameters{}
		}
		for key, v := range params {
			s.insts[i].Parameters[key] = v
		}
		changed = append(changed, s.insts[i].ID)
	}
	upd := s.afterMutationLocked()
	s.mu.Unlock()

	s.publish(upd)
	return fmt.Sprintf("Updated %s with %s.", strings.Join(changed, ", "), formatParams(params))
}

// SetVisible toggles visibility on every matching instance.
func (s *Session) SetVisible(query string, visible bool) string {
	s.mu.Lock()
	matched := s.matchLocked(query)
	if len(matched) == 0 {
		s.mu.Unlock()
		return notFound(query)
	}
	changed := make([]string, 0, len(matched))
	for _, i := range matched {
		s.insts[i].Visible = visible
		changed = append(changed, s.insts[i].ID)
	}
	upd := s.afterMutationLocked()
	s.mu.Unlock()

	s.publish(upd)
	verb := "Hid"
	if visible {
		verb = "Made visible"
	}
	return fmt.Sprintf("%s %s.", verb, strings.Join(changed, ", "))
}

// ListIndicators returns a snapshot copy of the instance list.
func (s *Session) ListIndicators() []model.IndicatorInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SwitchSymbol resets the buffer and changes the active symbol. The instance
// list survives the switch. No-op when the symbol is already active.
func (s *Session) SwitchSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	s.mu.Lock()
	if symbol == "" || symbol == s.symbol {
		cur := s.symbol
		s.mu.Unlock()
		return fmt.Sprintf("Already streaming %s.", cur)
	}
	s.symbol = symbol
	s.buf.Reset()
	upd := s.recomputeLocked(model.PricePoint{})
	s.mu.Unlock()

	s.publish(upd)
	s.log.Info("switched symbol", "symbol", symbol)
	return fmt.Sprintf("Switched to %s.", symbol)
}

// LoadHistory bulk-replaces the buffer with historical bars and recomputes.
func (s *Session) LoadHistory(bars []model.PricePoint) int {
	s.mu.Lock()
	n := s.buf.Load(bars)
	price, _ := s.buf.Last()
	upd := s.recomputeLocked(price)
	s.mu.Unlock()

	s.publish(upd)
	s.log.Info("loaded history", "symbol", upd.Symbol, "points", n)
	return n
}

// Symbol returns the active symbol.
func (s *Session) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// Series returns the latest recompute output.
func (s *Session) Series() []model.DerivedSeries {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.DerivedSeries, len(s.series))
	copy(out, s.series)
	return out
}

// Points returns a snapshot of the streaming buffer.
func (s *Session) Points() []model.PricePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Points()
}

// ─────────────────────────── helpers ───────────────────────────

// matchLocked returns the indices of every instance whose id, display name,
// or kind contains the query, case-insensitively. Caller holds s.mu.
func (s *Session) matchLocked(query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []int
	for i, inst := range s.insts {
		if strings.Contains(strings.ToLower(inst.ID), q) ||
			strings.Contains(strings.ToLower(inst.DisplayName), q) ||
			strings.Contains(strings.ToLower(string(inst.Kind)), q) {
			out = append(out, i)
		}
	}
	return out
}

func (s *Session) snapshotLocked() []model.IndicatorInstance {
	out := make([]model.IndicatorInstance, len(s.insts))
	copy(out, s.insts)
	for i := range out {
		out[i].Parameters = out[i].Parameters.Clone()
	}
	return out
}

func notFound(query string) string {
	return fmt.Sprintf("No indicator matching %q was found.", query)
}

func kindNames() string {
	kinds := model.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func formatParams(p model.Parameters) string {
	if len(p) == 0 {
		return "no changes"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, strconv.FormatFloat(p[k], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

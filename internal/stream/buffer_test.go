package stream

import (
	"testing"

	"tradeboard/internal/model"
)

func pt(t int64, v float64) model.PricePoint {
	return model.PricePoint{Time: t, Value: v}
}

// ─────────────────────────── ordering ───────────────────────────

func TestBuffer_AppendOrdered(t *testing.T) {
	b := NewBuffer()
	if !b.Append(pt(1, 100)) || !b.Append(pt(2, 101)) || !b.Append(pt(3, 102)) {
		t.Fatal("ordered appends must be accepted")
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
}

func TestBuffer_RejectsOutOfOrderAndDuplicate(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(10, 100))

	cases := []struct {
		name string
		p    model.PricePoint
	}{
		{"earlier", pt(9, 200)},
		{"equal", pt(10, 200)},
	}
	for _, tc := range cases {
		before := b.Len()
		if b.Append(tc.p) {
			t.Errorf("%s: accepted, want rejected", tc.name)
		}
		if b.Len() != before {
			t.Errorf("%s: rejection changed len %d -> %d", tc.name, before, b.Len())
		}
	}
	// A rejected tick must not become the reference for later ones.
	if !b.Append(pt(11, 101)) {
		t.Fatal("next in-order tick must still be accepted")
	}
}

// ─────────────────────────── min delta ───────────────────────────

func TestBuffer_RejectsSubThresholdMove(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(1, 100.00))

	if b.Append(pt(2, 100.005)) {
		t.Error("move of 0.005 accepted, want rejected")
	}
	if b.Append(pt(3, 99.995)) {
		t.Error("move of -0.005 accepted, want rejected")
	}
	// Exactly the threshold is a real move.
	if !b.Append(pt(4, 100.01)) {
		t.Error("move of exactly 0.01 rejected, want accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBuffer_FirstPointBypassesMinDelta(t *testing.T) {
	b := NewBuffer()
	if !b.Append(pt(1, 0.0001)) {
		t.Fatal("first point must be accepted regardless of value")
	}
}

func TestBuffer_DeltaMeasuredFromStoredPoint(t *testing.T) {
	// Three sub-threshold moves that sum past the threshold: each is
	// compared against the last STORED value, so the third one lands.
	b := NewBuffer()
	b.Append(pt(1, 100.000))
	b.Append(pt(2, 100.004))
	b.Append(pt(3, 100.008))
	if !b.Append(pt(4, 100.012)) {
		t.Fatal("cumulative move past threshold must be accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

// ─────────────────────────── retention ───────────────────────────

func TestBuffer_TrimsBeyondRetention(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(0, 100))
	b.Append(pt(1800, 101))
	b.Append(pt(3600, 102))
	// 4000 - 3600 = 400: the point at t=0 falls out of the window.
	b.Append(pt(4000, 103))

	got := b.Points()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	latest := got[len(got)-1].Time
	for _, p := range got {
		if p.Time < latest-DefaultRetentionSecs {
			t.Errorf("point at t=%d is older than retention window", p.Time)
		}
	}
	if got[0].Time != 1800 {
		t.Errorf("oldest retained = %d, want 1800", got[0].Time)
	}
}

func TestBuffer_BoundaryPointRetained(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(100, 100))
	b.Append(pt(3700, 101)) // 100 == 3700 - 3600, exactly on the boundary
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2: boundary point must survive", b.Len())
	}
}

// ─────────────────────────── reset / load ───────────────────────────

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(1, 100))
	b.Append(pt(2, 101))
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", b.Len())
	}
	if _, ok := b.Last(); ok {
		t.Fatal("Last after reset reported a point")
	}
	// The old series must not leak into ordering checks.
	if !b.Append(pt(1, 100)) {
		t.Fatal("append after reset must start fresh")
	}
}

func TestBuffer_LoadBypassesMinDelta(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(1, 500)) // pre-existing live data is replaced
	n := b.Load([]model.PricePoint{
		pt(10, 100.000),
		pt(11, 100.001), // sub-threshold move, still stored
		pt(12, 100.002),
	})
	if n != 3 || b.Len() != 3 {
		t.Fatalf("loaded %d (len %d), want 3", n, b.Len())
	}
	if got := b.Points()[0]; got.Time != 10 {
		t.Errorf("first point time = %d, want 10 (old data must be gone)", got.Time)
	}
}

func TestBuffer_LoadDropsUnorderedPoints(t *testing.T) {
	b := NewBuffer()
	n := b.Load([]model.PricePoint{
		pt(10, 100),
		pt(9, 101),  // out of order
		pt(10, 102), // duplicate timestamp
		pt(11, 103),
	})
	if n != 2 {
		t.Fatalf("loaded %d, want 2", n)
	}
	got := b.Points()
	if got[0].Time != 10 || got[1].Time != 11 {
		t.Errorf("times = %d,%d, want 10,11", got[0].Time, got[1].Time)
	}
}

func TestBuffer_AppendAfterLoadAppliesLivePolicy(t *testing.T) {
	b := NewBuffer()
	b.Load([]model.PricePoint{pt(10, 100)})
	if b.Append(pt(11, 100.005)) {
		t.Error("live sub-threshold move after load accepted, want rejected")
	}
	if !b.Append(pt(11, 100.05)) {
		t.Error("live move after load rejected, want accepted")
	}
}

// ─────────────────────────── snapshots ───────────────────────────

func TestBuffer_PointsIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Append(pt(1, 100))
	snap := b.Points()
	snap[0].Value = -1
	if got, _ := b.Last(); got.Value != 100 {
		t.Fatalf("mutating snapshot changed buffer: %v", got.Value)
	}
}

func TestBuffer_CustomPolicy(t *testing.T) {
	b := NewBufferWith(1.0, 18)
	b.Append(pt(1, 100))
	if b.Append(pt(2, 100.5)) {
		t.Error("move below custom minDelta accepted")
	}
	b.Append(pt(2, 101))
	b.Append(pt(20, 103)) // 20-18=2: t=1 falls out
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2 with custom retention", b.Len())
	}
}

package compiler

import (
	"math"
	"testing"

	"vibecut/internal/timeline"
)

func TestComputeTransform(t *testing.T) {
	cases := []struct {
		name      string
		clip      timeline.Clip
		duration  float64
		window    float64
		speed     float64
		effective float64
	}{
		{name: "plain", clip: timeline.Clip{Speed: 1}, duration: 3, window: 3, speed: 1, effective: 3},
		{name: "trimmed", clip: timeline.Clip{TrimStart: 1, TrimEnd: 0.5, Speed: 1}, duration: 4, window: 2.5, speed: 1, effective: 2.5},
		{name: "fast", clip: timeline.Clip{Speed: 2}, duration: 4, window: 4, speed: 2, effective: 2},
		{name: "slow", clip: timeline.Clip{Speed: 0.25}, duration: 1, window: 1, speed: 0.25, effective: 4},
		{name: "over-trimmed", clip: timeline.Clip{TrimStart: 3, TrimEnd: 3, Speed: 1}, duration: 4, window: 0, speed: 1, effective: 0},
		{name: "zero speed floored", clip: timeline.Clip{Speed: 0}, duration: 1, window: 1, speed: 0.01, effective: 100},
		{name: "negative speed floored", clip: timeline.Clip{Speed: -3}, duration: 1, window: 1, speed: 0.01, effective: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTransform(tc.clip, timeline.MediaFile{Duration: tc.duration}, 0.01)
			if !approx(got.SourceWindow, tc.window) || !approx(got.Speed, tc.speed) || !approx(got.Effective, tc.effective) {
				t.Fatalf("unexpected transform %+v", got)
			}
			if got.Speed <= 0 {
				t.Fatalf("speed must stay positive, got %v", got.Speed)
			}
		})
	}
}

func TestComputeTransformKeepsReverseOnTrimmedWindow(t *testing.T) {
	got := ComputeTransform(timeline.Clip{TrimStart: 2, TrimEnd: 1, Speed: 1, Reverse: true}, timeline.MediaFile{Duration: 10}, 0.01)
	if !got.Reverse || got.SourceStart != 2 || !approx(got.SourceWindow, 7) {
		t.Fatalf("unexpected transform %+v", got)
	}
}

func TestTempoChainRoundTrips(t *testing.T) {
	for _, speed := range []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 4, 5, 10, 100} {
		chain := TempoChain(speed)
		if len(chain) == 0 {
			t.Fatalf("speed %v: empty chain", speed)
		}
		product := 1.0
		for _, ratio := range chain {
			if ratio < MinTempo || ratio > MaxTempo {
				t.Fatalf("speed %v: ratio %v out of range in %v", speed, ratio, chain)
			}
			product *= ratio
		}
		if math.Abs(product-speed) > 1e-9*speed {
			t.Fatalf("speed %v: chain %v multiplies to %v", speed, chain, product)
		}
	}
}

func TestTempoChainShapes(t *testing.T) {
	cases := map[float64][]float64{
		4:   {2, 2, 1},
		0.1: {0.5, 0.5, 0.5, 0.8},
		1.5: {1.5},
	}
	for speed, want := range cases {
		got := TempoChain(speed)
		if len(got) != len(want) {
			t.Fatalf("speed %v: expected %v, got %v", speed, want, got)
		}
		for i := range want {
			if !approx(got[i], want[i]) {
				t.Fatalf("speed %v: expected %v, got %v", speed, want, got)
			}
		}
	}
	if TempoChain(0) != nil || TempoChain(-1) != nil {
		t.Fatalf("expected nil chain for non-positive speed")
	}
}

func TestTransformTruncate(t *testing.T) {
	base := ComputeTransform(timeline.Clip{TrimStart: 1, Speed: 2}, timeline.MediaFile{Duration: 7}, 0.01)

	cut := base.Truncate(1)
	if !approx(cut.Effective, 1) || !approx(cut.SourceWindow, 2) || !approx(cut.SourceStart, 1) {
		t.Fatalf("unexpected forward truncation %+v", cut)
	}

	reversed := base
	reversed.Reverse = true
	cut = reversed.Truncate(1)
	if !approx(cut.SourceStart, 5) || !approx(cut.SourceWindow, 2) {
		t.Fatalf("reversed truncation should keep the window end, got %+v", cut)
	}

	if same := base.Truncate(10); same != base {
		t.Fatalf("truncating past the effective duration must be a no-op, got %+v", same)
	}
}

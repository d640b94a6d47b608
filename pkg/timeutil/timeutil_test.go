package timeutil

import (
	"math/rand"
	"testing"
	"time"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{
			name:      "multiple values returns maximum",
			durations: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 200 * time.Millisecond},
			want:      500 * time.Millisecond,
		},
		{
			name:      "single value returns that value",
			durations: []time.Duration{300 * time.Millisecond},
			want:      300 * time.Millisecond,
		},
		{
			name:      "empty slice returns zero",
			durations: []time.Duration{},
			want:      0,
		},
		{
			name:      "negative durations handled correctly",
			durations: []time.Duration{-100 * time.Millisecond, 50 * time.Millisecond, -200 * time.Millisecond},
			want:      50 * time.Millisecond,
		},
		{
			name:      "all negative returns least negative",
			durations: []time.Duration{-100 * time.Millisecond, -50 * time.Millisecond, -200 * time.Millisecond},
			want:      -50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDuration(tt.durations)
			if got != tt.want {
				t.Errorf("MaxDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxDurationDoesNotMutateInput(t *testing.T) {
	original := []time.Duration{1 * time.Second, 3 * time.Second, 2 * time.Second}
	expected := []time.Duration{1 * time.Second, 3 * time.Second, 2 * time.Second}
	_ = MaxDuration(original)
	for i := range original {
		if original[i] != expected[i] {
			t.Errorf("MaxDuration mutated input slice: got %v at index %d, want %v", original[i], i, expected[i])
		}
	}
}

func TestJitterWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	max := 50 * time.Millisecond
	for i := 0; i < 1000; i++ {
		got := JitterWithin(max, rng)
		if got < 0 || got >= max {
			t.Fatalf("JitterWithin() = %v, want in [0, %v)", got, max)
		}
	}
}

func TestJitterWithinZeroMax(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := JitterWithin(0, rng); got != 0 {
		t.Errorf("JitterWithin(0, rng) = %v, want 0", got)
	}
	if got := JitterWithin(-1, rng); got != 0 {
		t.Errorf("JitterWithin(-1, rng) = %v, want 0", got)
	}
}

func TestJitterWithinNilRNG(t *testing.T) {
	if got := JitterWithin(time.Second, nil); got != 0 {
		t.Errorf("JitterWithin(time.Second, nil) = %v, want 0", got)
	}
}

func TestRealSleeperSleepsApproximately(t *testing.T) {
	s := NewRealSleeper()
	start := time.Now()
	s.Sleep(10 * time.Millisecond)
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Sleep returned too early: %v", elapsed)
	}
}

func TestRealSleeperNonPositiveIsNoop(t *testing.T) {
	s := NewRealSleeper()
	start := time.Now()
	s.Sleep(0)
	s.Sleep(-time.Second)
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Errorf("Sleep(non-positive) blocked for %v, want near-instant", elapsed)
	}
}

package kvstore

import (
	"context"
	"testing"
	"time"
)

func TestFixed_WaitsForDuration(t *testing.T) {
	sim := Fixed(20 * time.Millisecond)

	start := time.Now()
	if err := sim.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, want >= 20ms", elapsed)
	}
}

func TestFixed_CancelledContext(t *testing.T) {
	sim := Fixed(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sim.Wait(ctx)
	if err == nil {
		t.Fatal("Wait with cancelled context should return an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait should return promptly on cancellation, took %v", elapsed)
	}
}

func TestNone_ReturnsImmediately(t *testing.T) {
	sim := None()
	if err := sim.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestNone_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := None().Wait(ctx); err == nil {
		t.Error("Wait with cancelled context should return an error")
	}
}

package fanout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpawn_OrderPreserved(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { time.Sleep(15 * time.Millisecond); return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
		func(ctx context.Context) (int, error) { time.Sleep(5 * time.Millisecond); return 3, nil },
	}
	results, err := Spawn(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	want := []int{1, 2, 3}
	for i, r := range results {
		if r.Value != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, r.Value, want[i])
		}
	}
}

func TestSpawn_PerTaskErrorsPreserved(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
	}
	results, err := Spawn(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("results[0].Err = %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, want boom", results[1].Err)
	}
}

func TestSpawn_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
	}
	_, err := Spawn(ctx, tasks)
	if err == nil {
		t.Fatalf("Spawn: want error for cancelled ctx")
	}
}

func TestSpawn_Empty(t *testing.T) {
	results, err := Spawn[int](context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("Spawn(nil) = %v, %v", results, err)
	}
}

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
	done    chan string
}

func newRecordingDeleter(buffer int) *recordingDeleter {
	return &recordingDeleter{fail: map[string]bool{}, done: make(chan string, buffer)}
}

func (r *recordingDeleter) Delete(_ context.Context, key string) error {
	defer func() { r.done <- key }()
	if r.fail[key] {
		return errors.New("storage unavailable")
	}
	r.mu.Lock()
	r.deleted = append(r.deleted, key)
	r.mu.Unlock()
	return nil
}

func waitFor(t *testing.T, ch <-chan string, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-timeout:
			t.Fatalf("timed out after %d of %d deletions", i, n)
		}
	}
}

func TestDispatcher_DeletesEnqueuedKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newRecordingDeleter(10)
	d := NewDispatcher(2, store, zerolog.Nop())
	d.Start(ctx)

	keys := []string{"books/a.png", "books/b.jpg", "books/c.webp"}
	for _, k := range keys {
		d.Enqueue(k)
	}
	waitFor(t, store.done, len(keys))

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.deleted) != len(keys) {
		t.Fatalf("expected %d deletions, got %v", len(keys), store.deleted)
	}
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newRecordingDeleter(10)
	store.fail["books/bad.png"] = true
	d := NewDispatcher(1, store, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue("books/bad.png")
	d.Enqueue("books/good.png")
	waitFor(t, store.done, 2)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.deleted) != 1 || store.deleted[0] != "books/good.png" {
		t.Fatalf("expected only good key deleted, got %v", store.deleted)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// Workers are never started, so the single buffer fills up.
	d := NewDispatcher(1, newRecordingDeleter(0), zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue("books/k.png")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_IgnoresEmptyKey(t *testing.T) {
	d := NewDispatcher(1, newRecordingDeleter(0), zerolog.Nop())
	d.Enqueue("")
	if len(d.workers[0]) != 0 {
		t.Fatal("empty key should not be queued")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingDeleter(0), zerolog.Nop())
	for _, k := range []string{"books/a.png", "books/b.png", "x"} {
		first := d.shardIndex(k)
		if first < 0 || first >= 8 {
			t.Fatalf("index %d out of range", first)
		}
		if d.shardIndex(k) != first {
			t.Fatalf("shard index for %q changed", k)
		}
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(3, newRecordingDeleter(0), zerolog.Nop())
	d.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		d.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

// checkpointer_test.go — Unit tests for the progress checkpointer.
package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore records upserts in memory and can be told to fail.
type fakeStore struct {
	mu       sync.Mutex
	rec      *Record
	writes   []Record
	failNext int // number of upcoming Upsert calls to fail
}

func (f *fakeStore) Get(ctx context.Context, userID, contentID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return nil, nil
	}
	r := *f.rec
	return &r, nil
}

func (f *fakeStore) Upsert(ctx context.Context, userID, contentID string, progressSeconds int, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return errors.New("store unavailable")
	}
	f.writes = append(f.writes, Record{
		UserID:          userID,
		ContentID:       contentID,
		ProgressSeconds: progressSeconds,
		Completed:       completed,
	})
	return nil
}

func (f *fakeStore) written() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, len(f.writes))
	copy(out, f.writes)
	return out
}

// settle waits for fire-and-forget writes to land.
func settle() { time.Sleep(50 * time.Millisecond) }

func TestObserve_RateLimitsToTenSecondDelta(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	// A position update every simulated second for 25 seconds.
	for pos := 1; pos <= 25; pos++ {
		c.Observe(float64(pos))
	}
	settle()

	writes := store.written()
	if len(writes) != 2 {
		t.Fatalf("expected exactly 2 checkpoint writes for 25s of playback, got %d: %+v", len(writes), writes)
	}
	if writes[0].ProgressSeconds != 10 || writes[1].ProgressSeconds != 20 {
		t.Errorf("expected checkpoints at 10 and 20, got %d and %d",
			writes[0].ProgressSeconds, writes[1].ProgressSeconds)
	}
	for _, w := range writes {
		if w.Completed {
			t.Errorf("checkpoint at %d should not be marked completed", w.ProgressSeconds)
		}
		if w.UserID != "u1" || w.ContentID != "c1" {
			t.Errorf("checkpoint carried wrong identity: %+v", w)
		}
	}
}

// blockingStore holds the first upsert open until released, so further
// qualifying updates arrive while that write is still in flight.
type blockingStore struct {
	fakeStore
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Upsert(ctx context.Context, userID, contentID string, progressSeconds int, completed bool) error {
	b.once.Do(func() { <-b.release })
	return b.fakeStore.Upsert(ctx, userID, contentID, progressSeconds, completed)
}

func TestObserve_InFlightWritesCommitInOrder(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	c.Observe(10) // writer dispatched, blocked inside the store
	c.Observe(20) // qualifies while the first write is in flight
	c.Observe(30) // coalesces over 20
	close(store.release)
	settle()

	writes := store.written()
	if len(writes) != 2 {
		t.Fatalf("expected the blocked write plus one coalesced write, got %+v", writes)
	}
	if writes[0].ProgressSeconds != 10 || writes[1].ProgressSeconds != 30 {
		t.Errorf("checkpoints out of order or uncoalesced: %+v", writes)
	}
}

func TestObserve_BackwardSeekQualifies(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	c.Observe(20) // delta 20 from 0
	settle()
	c.Observe(5) // rewind, |5-20| = 15
	settle()

	writes := store.written()
	if len(writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(writes))
	}
	if writes[1].ProgressSeconds != 5 {
		t.Errorf("rewind checkpoint = %d; want 5", writes[1].ProgressSeconds)
	}
}

func TestObserve_AnonymousNeverWrites(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "", ContentID: "c1"})

	for pos := 0; pos <= 100; pos += 10 {
		c.Observe(float64(pos))
	}
	settle()

	if n := len(store.written()); n != 0 {
		t.Errorf("anonymous session wrote %d checkpoints; want 0", n)
	}
}

func TestObserve_FailedWriteRetriedByNextUpdate(t *testing.T) {
	store := &fakeStore{failNext: 1}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	c.Observe(10) // fails, gate rolls back to 0
	settle()
	c.Observe(11) // delta 11 from 0 — qualifies again
	settle()

	writes := store.written()
	if len(writes) != 1 {
		t.Fatalf("expected 1 successful write after retry, got %d", len(writes))
	}
	if writes[0].ProgressSeconds != 11 {
		t.Errorf("retried checkpoint = %d; want 11", writes[0].ProgressSeconds)
	}
}

func TestBegin_OffersResumeBeyondGate(t *testing.T) {
	store := &fakeStore{rec: &Record{UserID: "u1", ContentID: "c1", ProgressSeconds: 45}}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	prompt, err := c.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !prompt.Offered {
		t.Fatal("expected resume prompt for 45s of saved progress")
	}
	if prompt.PositionSeconds != 45 {
		t.Errorf("prompt position = %d; want 45", prompt.PositionSeconds)
	}
}

func TestBegin_NoPromptAtOrBelowGate(t *testing.T) {
	store := &fakeStore{rec: &Record{UserID: "u1", ContentID: "c1", ProgressSeconds: 20}}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	prompt, err := c.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if prompt.Offered {
		t.Error("no prompt expected for 20s of saved progress")
	}

	// The stored position still seeds the rate limiter.
	c.Observe(25) // |25-20| = 5, dropped
	c.Observe(31) // |31-20| = 11, written
	settle()
	writes := store.written()
	if len(writes) != 1 || writes[0].ProgressSeconds != 31 {
		t.Errorf("expected one checkpoint at 31 after Begin seeded the gate, got %+v", writes)
	}
}

func TestBegin_NoPromptWhenCompleted(t *testing.T) {
	store := &fakeStore{rec: &Record{UserID: "u1", ContentID: "c1", ProgressSeconds: 500, Completed: true}}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	prompt, err := c.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if prompt.Offered {
		t.Error("completed content must not offer a resume prompt")
	}
}

func TestBegin_NoRecordNoPrompt(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	prompt, err := c.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if prompt.Offered {
		t.Error("no prompt expected without a prior record")
	}
}

func TestResolve_ResumeReturnsStoredPosition(t *testing.T) {
	store := &fakeStore{rec: &Record{UserID: "u1", ContentID: "c1", ProgressSeconds: 45}}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	if _, err := c.Begin(context.Background()); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if got := c.Resolve(true); got != 45 {
		t.Errorf("Resolve(resume) = %v; want 45", got)
	}
	settle()
	if n := len(store.written()); n != 0 {
		t.Errorf("resume should not write, got %d writes", n)
	}
}

func TestResolve_RestartClearsRecord(t *testing.T) {
	store := &fakeStore{rec: &Record{UserID: "u1", ContentID: "c1", ProgressSeconds: 45}}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	if _, err := c.Begin(context.Background()); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if got := c.Resolve(false); got != 0 {
		t.Errorf("Resolve(restart) = %v; want 0", got)
	}
	settle()

	writes := store.written()
	if len(writes) != 1 || writes[0].ProgressSeconds != 0 {
		t.Fatalf("restart should clear the record to 0, got %+v", writes)
	}

	// The gate resets too: 10s of fresh playback checkpoints again.
	c.Observe(10)
	settle()
	writes = store.written()
	if len(writes) != 2 || writes[1].ProgressSeconds != 10 {
		t.Errorf("expected a checkpoint at 10 after restart, got %+v", writes)
	}
}

func TestMarkCompleted_WritesAndStopsObserving(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "u1", ContentID: "c1"})

	if err := c.MarkCompleted(context.Background(), 1200); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}
	writes := store.written()
	if len(writes) != 1 || !writes[0].Completed || writes[0].ProgressSeconds != 1200 {
		t.Fatalf("expected a completed write at 1200, got %+v", writes)
	}

	// Stray position updates after completion are dropped.
	c.Observe(1300)
	settle()
	if n := len(store.written()); n != 1 {
		t.Errorf("Observe after completion wrote %d extra checkpoints", n-1)
	}
}

func TestMarkCompleted_AnonymousNoop(t *testing.T) {
	store := &fakeStore{}
	c := New(Options{Store: store, UserID: "", ContentID: "c1"})

	if err := c.MarkCompleted(context.Background(), 1200); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}
	if n := len(store.written()); n != 0 {
		t.Errorf("anonymous completion wrote %d records; want 0", n)
	}
}

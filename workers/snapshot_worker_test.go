package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"leaderboard-service/models"
	"leaderboard-service/services"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
}

func (m *memoryUploader) PutJSON(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failKey {
		return errors.New("bucket unavailable")
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

func (m *memoryUploader) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

type fakeStore struct {
	services.ScoreStore
	games  []int64
	scores map[int64][]models.LeaderboardEntry
	err    error
}

func (f *fakeStore) GameIDs(context.Context) ([]int64, error) {
	return f.games, f.err
}

func (f *fakeStore) TopScores(_ context.Context, gameID int64, limit int) ([]models.LeaderboardEntry, error) {
	entries := f.scores[gameID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var snapshotNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func TestSnapshotRunOnce(t *testing.T) {
	store := &fakeStore{
		games: []int64{1, 2},
		scores: map[int64][]models.LeaderboardEntry{
			1: {
				{PlayerName: "Alice", PlayerScore: 900, CreatedAt: snapshotNow},
				{PlayerName: "Bob", PlayerScore: 800, CreatedAt: snapshotNow},
			},
		},
	}
	up := &memoryUploader{}
	w := NewSnapshotWorker(store, up, "Word Games", 1, time.Minute)
	w.now = func() time.Time { return snapshotNow }

	n, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 {
		t.Fatalf("written = %d, want 2", n)
	}

	raw, ok := up.get("word-games/1.json")
	if !ok {
		t.Fatalf("missing snapshot for game 1; have %v", up.objects)
	}
	var snap models.LeaderboardSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.GameID != 1 || len(snap.Entries) != 1 || snap.Entries[0].PlayerName != "Alice" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !snap.GeneratedAt.Equal(snapshotNow) {
		t.Fatalf("generated_at = %s", snap.GeneratedAt)
	}

	raw, ok = up.get("word-games/2.json")
	if !ok {
		t.Fatal("missing snapshot for empty game 2")
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Entries == nil || len(snap.Entries) != 0 {
		t.Fatalf("empty game entries = %#v, want []", snap.Entries)
	}
}

func TestSnapshotSkipsFailedUpload(t *testing.T) {
	store := &fakeStore{games: []int64{1, 2}}
	up := &memoryUploader{failKey: "leaderboards/1.json"}
	w := NewSnapshotWorker(store, up, "", 10, time.Minute)

	n, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 1 {
		t.Fatalf("written = %d, want 1", n)
	}
	if _, ok := up.get("leaderboards/2.json"); !ok {
		t.Fatal("game 2 should still be exported")
	}
}

func TestSnapshotStoreError(t *testing.T) {
	w := NewSnapshotWorker(&fakeStore{err: errors.New("db down")}, &memoryUploader{}, "x", 10, time.Minute)

	if _, err := w.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error when games cannot be listed")
	}
}

func TestSnapshotStartStop(t *testing.T) {
	store := &fakeStore{games: []int64{5}}
	up := &memoryUploader{}
	w := NewSnapshotWorker(store, up, "boards", 10, time.Hour)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := up.get("boards/5.json"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("immediate run did not export a snapshot")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

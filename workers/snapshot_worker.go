// workers/snapshot_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"leaderboard-service/models"
	"leaderboard-service/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
)

const defaultSnapshotPrefix = "leaderboards"

// SnapshotUploader stores one rendered leaderboard document.
type SnapshotUploader interface {
	PutJSON(ctx context.Context, key string, body []byte) error
}

// SnapshotWorker periodically exports every game's top scores to object
// storage so a CDN can serve the board without hitting the service.
type SnapshotWorker struct {
	store    services.ScoreStore
	uploader SnapshotUploader
	prefix   string
	limit    int
	interval time.Duration
	now      func() time.Time

	sched gocron.Scheduler
}

func NewSnapshotWorker(store services.ScoreStore, uploader SnapshotUploader, prefix string, limit int, interval time.Duration) *SnapshotWorker {
	p := slug.Make(prefix)
	if p == "" {
		p = defaultSnapshotPrefix
	}
	if limit <= 0 {
		limit = services.DefaultLeaderboardLimit
	}
	return &SnapshotWorker{
		store:    store,
		uploader: uploader,
		prefix:   p,
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Key returns the object key for a game's snapshot.
func (w *SnapshotWorker) Key(gameID int64) string {
	return fmt.Sprintf("%s/%d.json", w.prefix, gameID)
}

// RunOnce exports a snapshot for every game. A failing game is logged and
// skipped; the returned count is the number of snapshots written.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (int, error) {
	ids, err := w.store.GameIDs(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, id := range ids {
		if err := w.exportGame(ctx, id); err != nil {
			log.Printf("❌ [SNAPSHOT] game %d: %v", id, err)
			continue
		}
		written++
	}
	return written, nil
}

func (w *SnapshotWorker) exportGame(ctx context.Context, gameID int64) error {
	entries, err := w.store.TopScores(ctx, gameID, w.limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	body, err := json.Marshal(models.LeaderboardSnapshot{
		GameID:      gameID,
		GeneratedAt: w.now().UTC(),
		Entries:     entries,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return w.uploader.PutJSON(ctx, w.Key(gameID), body)
}

// Start schedules RunOnce every interval, starting immediately. Runs never overlap.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			n, err := w.RunOnce(ctx)
			if err != nil {
				log.Printf("❌ [SNAPSHOT] run failed: %v", err)
				return
			}
			log.Printf("✅ [SNAPSHOT] exported %d leaderboard(s) to %s/", n, w.prefix)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule snapshot job: %w", err)
	}

	w.sched = sched
	sched.Start()
	log.Printf("🔁 [SNAPSHOT] exporting every %s", w.interval)
	return nil
}

func (w *SnapshotWorker) Stop() error {
	if w.sched == nil {
		return nil
	}
	return w.sched.Shutdown()
}

// Package db is the persistence worker: it saves and lists replays for
// whichever goroutine calls it, guarding its in-memory state with a
// short-lived mutex section per the single-owner/copy-out discipline the
// rest of the system follows.
package db

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"rhythmforge/pkg/replay"
)

// SaveReplayRequest is the outbound command the top-level state machine
// issues when a play finishes.
type SaveReplayRequest struct {
	BeatmapHash string
	TimestampS  int64
	Score       int32
	Accuracy    float64
	MaxCombo    int32
	Rate        float64
	Data        *replay.Data
}

// Record is a persisted replay plus the id the store assigned it.
type Record struct {
	ID          int64        `json:"id"`
	BeatmapHash string       `json:"beatmap_hash"`
	TimestampS  int64        `json:"timestamp_s"`
	Score       int32        `json:"score"`
	Accuracy    float64      `json:"accuracy"`
	MaxCombo    int32        `json:"max_combo"`
	Rate        float64      `json:"rate"`
	Data        *replay.Data `json:"data"`
}

// Worker is a store called directly by its users: an in-memory index
// guarded by a mutex, backed by one JSON file per replay on disk. Queries copy their result out
// from under the lock before returning.
type Worker struct {
	log     *slog.Logger
	dir     string
	mu      sync.Mutex
	nextID  int64
	records map[string][]*Record // keyed by beatmap hash
}

// NewWorker opens (or creates) a persistence worker rooted at dir.
func NewWorker(dir string, log *slog.Logger) (*Worker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("db: create dir: %w", err)
	}
	w := &Worker{
		log:     log,
		dir:     dir,
		records: make(map[string][]*Record),
		nextID:  1,
	}
	if err := w.loadAll(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Worker) replayPath(id int64) string {
	return filepath.Join(w.dir, fmt.Sprintf("replay_%d.json", id))
}

func (w *Worker) loadAll() error {
	entries, err := os.ReadDir(w.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("db: read dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(w.dir, entry.Name()))
		if err != nil {
			w.log.Warn("skipping unreadable replay file", "file", entry.Name(), "error", err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			w.log.Warn("skipping corrupt replay file", "file", entry.Name(), "error", err)
			continue
		}
		w.records[rec.BeatmapHash] = append(w.records[rec.BeatmapHash], &rec)
		if rec.ID >= w.nextID {
			w.nextID = rec.ID + 1
		}
	}
	return nil
}

// SaveReplay persists a finished play and returns the id assigned to it.
func (w *Worker) SaveReplay(req SaveReplayRequest) (int64, error) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	rec := &Record{
		ID:          id,
		BeatmapHash: req.BeatmapHash,
		TimestampS:  req.TimestampS,
		Score:       req.Score,
		Accuracy:    req.Accuracy,
		MaxCombo:    req.MaxCombo,
		Rate:        req.Rate,
		Data:        req.Data,
	}
	w.records[req.BeatmapHash] = append(w.records[req.BeatmapHash], rec)
	w.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("db: encode replay: %w", err)
	}
	if err := os.WriteFile(w.replayPath(id), raw, 0o644); err != nil {
		return 0, fmt.Errorf("db: write replay: %w", err)
	}
	w.log.Info("replay saved", "id", id, "beatmap_hash", req.BeatmapHash, "score", req.Score)
	return id, nil
}

// ListReplays returns every replay recorded for beatmapHash, copied out
// from under the lock so callers never see a shared, mutable slice.
func (w *Worker) ListReplays(beatmapHash string) []Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	src := w.records[beatmapHash]
	out := make([]Record, len(src))
	for i, r := range src {
		out[i] = *r
	}
	return out
}

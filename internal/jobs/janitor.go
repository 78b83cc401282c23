package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
)

// Scheduler abstracts deferred execution so tests can run cleanup tasks
// synchronously instead of waiting out real timers.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// NewTimerScheduler returns the production scheduler backed by time.AfterFunc.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

// Janitor owns deferred archive removal and the periodic temp-root sweep.
type Janitor struct {
	cfg   *config.Config
	sched Scheduler
}

func NewJanitor(cfg *config.Config, sched Scheduler) *Janitor {
	return &Janitor{cfg: cfg, sched: sched}
}

// ScheduleArchiveRemoval deletes the archive after the configured grace
// delay, long enough to cover a slow client download. The task runs
// independently of the request that enqueued it and only logs when the file
// is already gone.
func (j *Janitor) ScheduleArchiveRemoval(path string) {
	j.sched.AfterFunc(j.cfg.ZipCleanupDelay, func() {
		if err := os.Remove(path); err != nil {
			log.Printf("🧹 ZIP already gone or not removable: %s (%v)", path, err)
			return
		}
		log.Printf("🧹 Cleaned up ZIP: %s", path)
	})
}

// StartSweeper runs a background loop that removes session directories left
// behind by crashed batches. Anything in the temp root older than the sweep
// interval is fair game; live sessions are far younger than that.
func (j *Janitor) StartSweeper() {
	ticker := time.NewTicker(j.cfg.CleanupInterval)

	go func() {
		for range ticker.C {
			log.Println("🧹 Janitor: Starting scheduled cleanup...")
			j.sweepOnce()
			log.Println("✅ Janitor: Cleanup finished.")
		}
	}()
}

func (j *Janitor) sweepOnce() {
	entries, err := os.ReadDir(j.cfg.TempDir)
	if err != nil {
		log.Printf("❌ Janitor Error: Could not read temp dir: %v", err)
		return
	}

	cutoff := time.Now().Add(-j.cfg.CleanupInterval)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		stale := filepath.Join(j.cfg.TempDir, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			log.Printf("❌ Janitor Error: Could not remove %s: %v", stale, err)
			continue
		}
		log.Printf("🧹 Removed stale session directory: %s", stale)
	}
}

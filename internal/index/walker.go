package index

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"filedex/internal/filesystem"
	"filedex/internal/logging"
	"filedex/internal/metrics"
	"filedex/internal/workers"
)

const (
	// Number of records to upsert per transaction
	walkBatchSize = 500

	// Cap on stat workers; directory walks on NFS degrade past this
	maxStatWorkers = 8
)

// Walker keeps the store in sync with the filesystem under a root
// directory: one full walk at startup, then periodic re-walks that also
// drop entries for files that disappeared.
type Walker struct {
	store    *Store
	rootDir  string
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	mu              sync.Mutex
	isWalking       bool
	lastWalkTime    time.Time
	initialComplete bool
	initialErr      error

	filesIndexed atomic.Int64
}

// NewWalker creates a walker for rootDir re-indexing every interval.
func NewWalker(store *Store, rootDir string, interval time.Duration) *Walker {
	return &Walker{
		store:    store,
		rootDir:  rootDir,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the initial walk and the periodic re-walk loop in the
// background.
func (w *Walker) Start() {
	go func() {
		logging.Info("Starting initial index walk of %s", w.rootDir)
		if err := w.Walk(); err != nil {
			logging.Error("Initial index walk failed: %v", err)
			w.mu.Lock()
			w.initialErr = err
			w.mu.Unlock()
		}
	}()

	go w.periodicWalk()
}

// Stop terminates the periodic loop and interrupts a walk in progress.
func (w *Walker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Ready reports whether the initial walk has completed.
func (w *Walker) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initialComplete
}

// InitialError returns the error of the initial walk, if any.
func (w *Walker) InitialError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initialErr
}

// IsWalking reports whether a walk is currently in progress.
func (w *Walker) IsWalking() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isWalking
}

// LastWalkTime returns the completion time of the last walk.
func (w *Walker) LastWalkTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastWalkTime
}

// FilesIndexed returns the number of entries indexed by the last walk.
func (w *Walker) FilesIndexed() int64 {
	return w.filesIndexed.Load()
}

// TriggerWalk requests an immediate re-walk in the background.
func (w *Walker) TriggerWalk() {
	go func() {
		if err := w.Walk(); err != nil {
			logging.Error("Triggered index walk failed: %v", err)
		}
	}()
}

// Walk performs one full index pass. Concurrent calls coalesce: if a
// walk is already running the call returns immediately.
func (w *Walker) Walk() error {
	if !w.tryStartWalk() {
		logging.Info("Index walk already in progress, skipping")
		return nil
	}
	defer w.finishWalk()

	metrics.WalkerIsRunning.Set(1)
	defer metrics.WalkerIsRunning.Set(0)
	metrics.WalkerRunsTotal.Inc()

	startTime := time.Now()
	w.filesIndexed.Store(0)

	records, err := w.collectRecords()
	if err != nil {
		metrics.WalkerErrors.Inc()
		return err
	}

	if err := w.storeRecords(records); err != nil {
		metrics.WalkerErrors.Inc()
		return err
	}

	// Drop entries for paths that no longer exist
	if err := w.cleanupMissing(startTime); err != nil {
		logging.Error("Error cleaning up missing files: %v", err)
		metrics.WalkerErrors.Inc()
	}

	duration := time.Since(startTime)
	w.mu.Lock()
	w.lastWalkTime = time.Now()
	w.mu.Unlock()

	metrics.WalkerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.WalkerLastRunDuration.Set(duration.Seconds())
	metrics.WalkerFilesIndexed.Add(float64(len(records)))

	logging.Info("Index walk complete: %d entries in %v", len(records), duration)
	return nil
}

// collectRecords walks the tree, stat-ing entries on a small worker pool.
func (w *Walker) collectRecords() ([]FileRecord, error) {
	numWorkers := workers.ForIO(maxStatWorkers)
	logging.Debug("Walking %s with %d stat workers", w.rootDir, numWorkers)

	paths := make(chan string, 2*walkBatchSize)
	results := make(chan FileRecord, 2*walkBatchSize)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				rec, ok := w.statRecord(path)
				if ok {
					results <- rec
				}
			}
		}()
	}

	var walkErr error
	go func() {
		defer close(paths)
		walkErr = filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-w.stopChan:
				return fs.SkipAll
			default:
			}

			if err != nil {
				logging.Warn("Error accessing path %s: %v", path, err)
				return nil
			}
			if path == w.rootDir {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			paths <- path
			return nil
		})
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var records []FileRecord
	for rec := range results {
		records = append(records, rec)
		w.filesIndexed.Add(1)
	}

	if walkErr != nil && !errors.Is(walkErr, fs.SkipAll) {
		return nil, walkErr
	}
	return records, nil
}

// statRecord builds a FileRecord for one path.
func (w *Walker) statRecord(path string) (FileRecord, bool) {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Debug("Stat failed for %s: %v", path, err)
		return FileRecord{}, false
	}

	rec := FileRecord{
		Name:       info.Name(),
		Path:       path,
		ParentPath: filepath.Dir(path),
		IsFile:     !info.IsDir(),
		ModTime:    info.ModTime(),
	}
	if rec.IsFile {
		rec.Size = info.Size()
		rec.Ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Name())), ".")
	}

	return rec, true
}

// storeRecords upserts records in transactions of walkBatchSize.
func (w *Walker) storeRecords(records []FileRecord) error {
	for i := 0; i < len(records); i += walkBatchSize {
		select {
		case <-w.stopChan:
			return nil
		default:
		}

		end := i + walkBatchSize
		if end > len(records) {
			end = len(records)
		}

		tx, err := w.store.BeginBatch()
		if err != nil {
			return err
		}
		for j := i; j < end; j++ {
			if err := w.store.UpsertFile(tx, &records[j]); err != nil {
				logging.Warn("Error upserting %s: %v", records[j].Path, err)
			}
		}
		if err := w.store.EndBatch(tx, nil); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) cleanupMissing(walkStart time.Time) error {
	tx, err := w.store.BeginBatch()
	if err != nil {
		return err
	}

	deleted, err := w.store.DeleteMissing(tx, walkStart)
	if err != nil {
		if endErr := w.store.EndBatch(tx, err); endErr != nil {
			logging.Error("failed to end batch after cleanup error: %v", endErr)
		}
		return err
	}

	if err := w.store.EndBatch(tx, nil); err != nil {
		return err
	}

	if deleted > 0 {
		logging.Info("Removed %d missing entries from index", deleted)
	}
	return nil
}

func (w *Walker) tryStartWalk() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isWalking {
		return false
	}
	w.isWalking = true
	return true
}

func (w *Walker) finishWalk() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.isWalking = false
	w.initialComplete = true
}

func (w *Walker) periodicWalk() {
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-index triggered")
			if err := w.Walk(); err != nil {
				logging.Error("Periodic index walk failed: %v", err)
			}
		case <-w.stopChan:
			return
		}
	}
}

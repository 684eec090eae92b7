// Package analysis orchestrates enrichment runs: it enumerates input images,
// obtains detection signals, classifies them and commits the resulting
// records in batches. Failures are isolated per image, progress is committed
// incrementally so an interrupted run can resume, and cancellation is honored
// between images.
package analysis

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tkalin/phototag-go/internal/classify"
	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/datastore"
	"github.com/tkalin/phototag-go/internal/errors"
	"github.com/tkalin/phototag-go/internal/logging"
	"github.com/tkalin/phototag-go/internal/vision"
)

// Mode selects which images a run visits and whether results are committed.
type Mode string

const (
	// ModeProcessNew enriches only images without an existing record.
	ModeProcessNew Mode = "process-new"
	// ModeReanalyzeAll re-enriches every image that already has a record.
	ModeReanalyzeAll Mode = "reanalyze-all"
	// ModeReanalyzeOne re-enriches a single named image.
	ModeReanalyzeOne Mode = "reanalyze-one"
	// ModeTestBatch enriches a small sample without committing anything.
	ModeTestBatch Mode = "test-batch"
)

// DefaultTestBatchSize is used when a test batch run does not set a limit.
const DefaultTestBatchSize = 5

// RunOptions select the run mode and its parameters.
type RunOptions struct {
	Mode Mode
	// Identifier names the single image for ModeReanalyzeOne.
	Identifier string
	// Limit caps the number of images for ModeTestBatch.
	Limit int
}

// Failure records one image that could not be enriched.
type Failure struct {
	Identifier string
	Reason     string
}

// RunSummary is the outcome of a run.
type RunSummary struct {
	RunID      string
	Mode       Mode
	StartedAt  time.Time
	Duration   time.Duration
	Enumerated int
	Processed  int
	Skipped    int
	Failed     int
	Flagged    int
	Committed  int
	Failures   []Failure
}

// Runner executes enrichment runs against a store and a signal source.
type Runner struct {
	settings *conf.Settings
	store    datastore.Interface
	source   vision.SignalSource
	engine   *classify.Engine
	metrics  *Metrics
	log      *slog.Logger

	// readFile is swapped out by tests.
	readFile func(string) ([]byte, error)
}

// NewRunner assembles a runner from its collaborators. Metrics may be nil.
func NewRunner(settings *conf.Settings, store datastore.Interface, source vision.SignalSource, engine *classify.Engine, metrics *Metrics) *Runner {
	log := logging.ForService("analysis")
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		settings: settings,
		store:    store,
		source:   source,
		engine:   engine,
		metrics:  metrics,
		log:      log,
		readFile: os.ReadFile,
	}
}

// Run executes one enrichment run. The returned summary is valid even when
// an error is returned: a cancelled or aborted run reports the progress it
// made, and everything committed before the interruption stays committed.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (RunSummary, error) {
	summary := RunSummary{
		RunID:     uuid.New().String(),
		Mode:      opts.Mode,
		StartedAt: time.Now(),
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		if r.metrics != nil {
			r.metrics.runDuration.Observe(summary.Duration.Seconds())
		}
	}()

	files, skipped, err := r.selectFiles(opts)
	if err != nil {
		return summary, err
	}
	summary.Enumerated = len(files) + skipped
	summary.Skipped = skipped
	dryRun := opts.Mode == ModeTestBatch

	r.log.Info("run started",
		"run_id", summary.RunID,
		"mode", string(opts.Mode),
		"images", len(files),
		"skipped", skipped,
		"dry_run", dryRun)

	batchSize := r.settings.Sync.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	var batch []*datastore.ImageRecord
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !dryRun {
			if err := r.store.CommitBatch(batch); err != nil {
				return err
			}
			if r.metrics != nil {
				r.metrics.batchesCommitted.Inc()
			}
			summary.Committed += len(batch)
		}
		r.log.Info("batch committed", "run_id", summary.RunID, "size", len(batch), "dry_run", dryRun)
		batch = batch[:0]
		return nil
	}

	for _, file := range files {
		// Cancellation is honored between images, never mid-image.
		if ctx.Err() != nil {
			if ferr := flush(); ferr != nil {
				return summary, ferr
			}
			return summary, errors.New(ctx.Err()).
				Component("analysis").
				Category(errors.CategoryCancellation).
				Context("run_id", summary.RunID).
				Build()
		}

		record, err := r.enrich(ctx, file)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Identifier: file.Name, Reason: err.Error()})
			if r.metrics != nil {
				r.metrics.imagesFailed.Inc()
			}
			r.log.Warn("image failed", "run_id", summary.RunID, "image", file.Name, "error", err)
			continue
		}

		summary.Processed++
		if record.Status == datastore.StatusPending {
			summary.Flagged++
			if r.metrics != nil {
				r.metrics.imagesFlagged.Inc()
			}
		}
		if r.metrics != nil {
			r.metrics.imagesProcessed.WithLabelValues(string(opts.Mode)).Inc()
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			// A failing store aborts the run, there is nowhere to put
			// further results.
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}

	r.log.Info("run finished",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"flagged", summary.Flagged,
		"committed", summary.Committed)
	return summary, nil
}

// selectFiles resolves the run mode to a concrete list of images. The second
// return value counts images excluded by the mode filter.
func (r *Runner) selectFiles(opts RunOptions) ([]ImageFile, int, error) {
	if opts.Mode == ModeReanalyzeOne {
		if opts.Identifier == "" {
			return nil, 0, errors.Newf("reanalyze-one requires an image name").
				Component("analysis").
				Category(errors.CategoryValidation).
				Build()
		}
		path := opts.Identifier
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.settings.Input.Path, opts.Identifier)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, 0, errors.New(err).
				Component("analysis").
				Category(errors.CategoryFileIO).
				Context("image", opts.Identifier).
				Build()
		}
		return []ImageFile{{Name: filepath.Base(path), Path: path}}, 0, nil
	}

	files, err := enumerateImages(r.settings.Input.Path, r.settings.Input.Recursive, r.settings.Input.Extensions)
	if err != nil {
		return nil, 0, err
	}

	switch opts.Mode {
	case ModeProcessNew, ModeReanalyzeAll:
		known, err := r.store.KnownFilenames()
		if err != nil {
			return nil, 0, err
		}
		keepKnown := opts.Mode == ModeReanalyzeAll
		var kept []ImageFile
		for _, f := range files {
			if known[f.Name] == keepKnown {
				kept = append(kept, f)
			}
		}
		return kept, len(files) - len(kept), nil
	case ModeTestBatch:
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultTestBatchSize
		}
		if len(files) > limit {
			return files[:limit], len(files) - limit, nil
		}
		return files, 0, nil
	default:
		return nil, 0, errors.Newf("unknown run mode %q", opts.Mode).
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}
}

// enrich analyzes and classifies a single image.
func (r *Runner) enrich(ctx context.Context, file ImageFile) (*datastore.ImageRecord, error) {
	data, err := r.readFile(file.Path)
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryImageRead).
			Context("image", file.Name).
			Build()
	}

	sig, err := r.analyzeWithRetry(ctx, file.Name, data)
	if err != nil {
		return nil, err
	}

	res := r.engine.Classify(&sig)

	status := datastore.StatusProcessed
	if res.Flagged {
		status = datastore.StatusPending
		r.log.Debug("quality gate held record", "image", file.Name, "reason", res.FlagReason)
	}

	return &datastore.ImageRecord{
		Filename:     file.Name,
		Description:  res.Description,
		Country:      res.Country,
		Keywords:     res.Keywords,
		Confidence:   res.Confidence,
		SourceType:   "local",
		MetadataIsAI: true,
		Status:       status,
		ProcessedAt:  time.Now(),
	}, nil
}

// analyzeWithRetry calls the signal source with bounded exponential backoff.
// Only transient failures are retried, permanent ones surface immediately.
func (r *Runner) analyzeWithRetry(ctx context.Context, name string, data []byte) (vision.Signal, error) {
	maxAttempts := r.settings.Vision.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := r.settings.Vision.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sig, err := r.source.Analyze(ctx, name, data)
		if err == nil {
			return sig, nil
		}
		lastErr = err
		if !errors.IsTransient(err) {
			return vision.Signal{}, err
		}
		if attempt == maxAttempts {
			break
		}
		r.log.Debug("transient failure, retrying",
			"image", name,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return vision.Signal{}, errors.New(ctx.Err()).
				Component("analysis").
				Category(errors.CategoryCancellation).
				Build()
		case <-timer.C:
		}
		delay *= 2
	}
	return vision.Signal{}, lastErr
}

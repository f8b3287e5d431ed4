package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mms/internal/domain"
	"mms/internal/remote"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 3
	defaultBackoff     = 250 * time.Millisecond
)

// Orchestrator executes a confirmed plan: downloads via the strategy the
// plan carries, then deletions. A single orchestrator allows one run at
// a time; the mods directory is treated as exclusively owned for the
// duration of Execute.
type Orchestrator struct {
	client *remote.Client
	logger *slog.Logger

	workers     int
	maxAttempts int
	backoff     time.Duration

	running atomic.Bool
}

// OrchestratorOption adjusts orchestrator tuning.
type OrchestratorOption func(*Orchestrator)

// WithWorkers sets the bounded worker count for per-file downloads.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithRetry sets the per-unit attempt cap and base backoff.
func WithRetry(maxAttempts int, backoff time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			o.backoff = backoff
		}
	}
}

// NewOrchestrator creates an orchestrator using the given remote client.
// A nil logger disables logging.
func NewOrchestrator(client *remote.Client, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := &Orchestrator{
		client:      client,
		logger:      logger,
		workers:     defaultWorkers,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs the plan. Events are streamed to onEvent (which may be
// nil) as units move through queued, in-progress, succeeded or failed.
// Units that exhaust their retries are reported in the result; the batch
// continues past them. Deletions only start once the download phase has
// finished. A second Execute while one is running returns
// domain.ErrSyncInProgress. On cancellation the result so far is
// returned together with the context error; no partially written file is
// left at its final path.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan, onEvent EventFunc) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer o.running.Store(false)

	if plan.ModsPath == "" {
		return nil, fmt.Errorf("plan has no mods path: %w", domain.ErrPlanNotReady)
	}
	if onEvent == nil {
		onEvent = func(ProgressEvent) {}
	}

	result := &Result{}

	switch plan.Strategy {
	case domain.StrategyPerFile:
		o.downloadPerFile(ctx, plan, onEvent, result)
	case domain.StrategyBulk:
		o.downloadBulk(ctx, plan, onEvent, result)
	default:
		return nil, fmt.Errorf("unknown download strategy: %v", plan.Strategy)
	}

	// Deletions run even after partial download failure, but never
	// before the download phase has quiesced.
	o.deleteFiles(ctx, plan, onEvent, result)

	if ctx.Err() != nil {
		result.Cancelled = true
		return result, ctx.Err()
	}
	return result, nil
}

// downloadPerFile fans the plan's downloads out over a bounded worker
// pool.
func (o *Orchestrator) downloadPerFile(ctx context.Context, plan *Plan, onEvent EventFunc, result *Result) {
	jobs := make(chan domain.ModEntry)

	workers := o.workers
	if len(plan.Downloads) < workers {
		workers = len(plan.Downloads)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				err := o.runWithRetry(ctx, entry.Name, UnitDownload, onEvent, func(attempt int) error {
					return o.fetchOne(ctx, plan.Branch, entry, plan.ModsPath, attempt, onEvent)
				})
				mu.Lock()
				if err != nil {
					result.DownloadsFailed++
					result.Failures = append(result.Failures, UnitFailure{Unit: entry.Name, Kind: UnitDownload, Reason: err.Error()})
				} else {
					result.DownloadsSucceeded++
				}
				mu.Unlock()
			}
		}()
	}

	for _, entry := range plan.Downloads {
		select {
		case <-ctx.Done():
			// Stop scheduling; in-flight units wind down on their own.
		case jobs <- entry:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
}

// fetchOne performs a single download attempt for one entry.
func (o *Orchestrator) fetchOne(ctx context.Context, branch string, entry domain.ModEntry, modsPath string, attempt int, onEvent EventFunc) error {
	body, length, err := o.client.FetchMod(ctx, branch, entry.Name)
	if err != nil {
		return err
	}
	defer body.Close()

	if length <= 0 {
		length = entry.Size
	}

	destPath := filepath.Join(modsPath, entry.Name)
	_, err = writeAtomic(ctx, destPath, body, length, func(p TransferProgress) {
		onEvent(ProgressEvent{
			Unit:       entry.Name,
			Kind:       UnitDownload,
			State:      StateInProgress,
			Attempt:    attempt,
			Downloaded: p.Downloaded,
			TotalBytes: p.TotalBytes,
		})
	})
	return err
}

// downloadBulk fetches the branch archive once, then extracts the
// selected members into the mods directory. The fetch+extract pair is
// one retryable unit; success counts every planned download as
// succeeded.
func (o *Orchestrator) downloadBulk(ctx context.Context, plan *Plan, onEvent EventFunc, result *Result) {
	if len(plan.Downloads) == 0 {
		return
	}

	unitName := plan.Branch + ".zip"
	wanted := make([]string, len(plan.Downloads))
	for i, entry := range plan.Downloads {
		wanted[i] = entry.Name
	}

	err := o.runWithRetry(ctx, unitName, UnitArchive, onEvent, func(attempt int) error {
		tmpDir, err := os.MkdirTemp("", "mms-archive-")
		if err != nil {
			return fmt.Errorf("creating temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		archivePath := filepath.Join(tmpDir, unitName)
		body, length, err := o.client.FetchArchive(ctx, plan.Branch)
		if err != nil {
			return err
		}
		defer body.Close()

		if _, err := writeAtomic(ctx, archivePath, body, length, func(p TransferProgress) {
			onEvent(ProgressEvent{
				Unit:       unitName,
				Kind:       UnitArchive,
				State:      StateInProgress,
				Attempt:    attempt,
				Downloaded: p.Downloaded,
				TotalBytes: p.TotalBytes,
			})
		}); err != nil {
			return err
		}

		return ExtractSelected(ctx, archivePath, plan.ModsPath, wanted, func(name string, memberBytes int64) {
			onEvent(ProgressEvent{
				Unit:       name,
				Kind:       UnitDownload,
				State:      StateSucceeded,
				Attempt:    attempt,
				Downloaded: memberBytes,
			})
		})
	})

	if err != nil {
		result.DownloadsFailed += len(plan.Downloads)
		result.Failures = append(result.Failures, UnitFailure{Unit: unitName, Kind: UnitArchive, Reason: err.Error()})
		return
	}
	result.DownloadsSucceeded += len(plan.Downloads)
}

// deleteFiles removes the plan's delete set sequentially. Deletes are
// not retried; a missing file counts as success (already gone).
func (o *Orchestrator) deleteFiles(ctx context.Context, plan *Plan, onEvent EventFunc, result *Result) {
	for _, name := range plan.Deletes {
		select {
		case <-ctx.Done():
			return
		default:
		}

		onEvent(ProgressEvent{Unit: name, Kind: UnitDelete, State: StateInProgress, Attempt: 1})

		err := os.Remove(filepath.Join(plan.ModsPath, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("delete failed", "file", name, "error", err)
			result.DeletesFailed++
			result.Failures = append(result.Failures, UnitFailure{Unit: name, Kind: UnitDelete, Reason: err.Error()})
			onEvent(ProgressEvent{Unit: name, Kind: UnitDelete, State: StateFailed, Attempt: 1, Reason: err.Error()})
			continue
		}
		result.DeletesSucceeded++
		onEvent(ProgressEvent{Unit: name, Kind: UnitDelete, State: StateSucceeded, Attempt: 1})
	}
}

// runWithRetry drives one unit through its attempt state machine:
// queued, in flight, then succeeded, retrying with backoff, or failed
// once attempts are exhausted. Cancellation is never retried.
func (o *Orchestrator) runWithRetry(ctx context.Context, unit string, kind UnitKind, onEvent EventFunc, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		onEvent(ProgressEvent{Unit: unit, Kind: kind, State: StateQueued, Attempt: attempt})

		lastErr = fn(attempt)
		if lastErr == nil {
			onEvent(ProgressEvent{Unit: unit, Kind: kind, State: StateSucceeded, Attempt: attempt})
			return nil
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		o.logger.Warn("unit attempt failed", "unit", unit, "kind", kind.String(), "attempt", attempt, "error", lastErr)

		if attempt < o.maxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(o.backoff * time.Duration(attempt)):
				continue
			}
			break
		}
	}

	onEvent(ProgressEvent{Unit: unit, Kind: kind, State: StateFailed, Attempt: o.maxAttempts, Reason: lastErr.Error()})
	return lastErr
}

// Package pipeline runs fetch, extract, clean, split and report in order.
//
// Every stage consumes its input completely and writes its output completely
// before the next one starts. The first failing stage aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/BoFFire/kabyliner/internal"
	"github.com/BoFFire/kabyliner/internal/cleaner"
	"github.com/BoFFire/kabyliner/internal/config"
	"github.com/BoFFire/kabyliner/internal/fetcher"
	"github.com/BoFFire/kabyliner/internal/report"
	"github.com/BoFFire/kabyliner/internal/splitter"
	"github.com/BoFFire/kabyliner/internal/tmx"
)

// Recorder persists a run summary. *store.Store satisfies it.
type Recorder interface {
	SaveRun(ctx context.Context, run internal.RunRecord) (string, error)
}

// Options carries the collaborators of a run. Zero values are usable.
type Options struct {
	// Stdout receives progress and summary lines.
	Stdout io.Writer
	// Logger receives stage diagnostics.
	Logger *log.Logger
	// Recorder, when set, stores one RunRecord per run.
	Recorder Recorder
	// Fetcher overrides the fetcher built from the config.
	Fetcher *fetcher.Fetcher
}

// Result is the outcome of a completed run.
type Result struct {
	RunID   string
	Fetch   fetcher.Result
	Extract tmx.Stats
	Clean   cleaner.Stats
	Split   int
	Summary report.Summary
}

// StageError names the stage that aborted the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run executes the whole pipeline described by cfg.
func Run(ctx context.Context, cfg config.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	f := opts.Fetcher
	if f == nil {
		f = fetcher.New(cfg.HTTPTimeout, logger)
	}

	started := time.Now()
	res := &Result{}
	err := run(ctx, cfg, f, stdout, logger, res)

	if opts.Recorder != nil {
		// An interrupted run is still recorded.
		id, recErr := opts.Recorder.SaveRun(context.WithoutCancel(ctx), record(cfg, res, err, started))
		if recErr != nil {
			logger.Printf("[history] [status=%q] failed to record run\n", recErr)
		} else {
			res.RunID = id
		}
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

func run(ctx context.Context, cfg config.Config, f *fetcher.Fetcher, stdout io.Writer, logger *log.Logger, res *Result) error {
	fmt.Fprintf(stdout, "Fetching %s ...\n", cfg.RemoteURL)
	fetched, err := f.Fetch(ctx, cfg.RemoteURL, cfg.LocalTMXPath)
	if fetched != nil {
		res.Fetch = *fetched
	}
	if err != nil {
		return &StageError{Stage: "fetch", Err: err}
	}
	if res.Fetch.Downloaded {
		fmt.Fprintf(stdout, "Downloaded TMX file saved as: %s (%d bytes)\n", cfg.LocalTMXPath, res.Fetch.Written)
	} else {
		fmt.Fprintf(stdout, "File '%s' already exists with matching size (%d bytes). Skipping download.\n", cfg.LocalTMXPath, res.Fetch.LocalSize)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	res.Extract, err = tmx.ExtractFile(cfg.LocalTMXPath, cfg.RawOutputPath, cfg.SourceLang, cfg.TargetLang, logger)
	if err != nil {
		return &StageError{Stage: "extract", Err: err}
	}
	fmt.Fprintf(stdout, "Parallel corpus extracted to %s (%d pairs from %d units)\n", cfg.RawOutputPath, res.Extract.Pairs, res.Extract.Units)

	if err := ctx.Err(); err != nil {
		return err
	}
	res.Clean, err = cleaner.CleanFile(cfg.RawOutputPath, cfg.CleanOutputPath, cfg.SourceLang, cfg.TargetLang, cleaner.Options{
		Verbose:       cfg.Verbose,
		ProgressEvery: cfg.ProgressEvery,
		Logger:        logger,
	})
	if err != nil {
		return &StageError{Stage: "clean", Err: err}
	}
	fmt.Fprintf(stdout, "Cleaned corpus saved to %s (kept %d, removed %d)\n", cfg.CleanOutputPath, res.Clean.Kept, res.Clean.Removed)

	if err := ctx.Err(); err != nil {
		return err
	}
	res.Split, err = splitter.SplitFile(cfg.CleanOutputPath, cfg.SourceTextPath, cfg.TargetTextPath)
	if err != nil {
		return &StageError{Stage: "split", Err: err}
	}
	fmt.Fprintf(stdout, "Extracted sentences to %s and %s\n", cfg.SourceTextPath, cfg.TargetTextPath)

	counts, err := report.CountLines(cfg.RawOutputPath, cfg.CleanOutputPath, cfg.SourceTextPath, cfg.TargetTextPath)
	if err != nil {
		return &StageError{Stage: "report", Err: err}
	}
	res.Summary = report.Summary{
		SourceLang:  cfg.SourceLang,
		TargetLang:  cfg.TargetLang,
		RawPairs:    counts[0].Lines - 1,
		CleanPairs:  counts[1].Lines - 1,
		Removed:     res.Clean.Removed,
		SourceLines: counts[2].Lines,
		TargetLines: counts[3].Lines,
		SourcePath:  cfg.SourceTextPath,
		TargetPath:  cfg.TargetTextPath,
	}
	if err := res.Summary.Print(stdout); err != nil {
		return &StageError{Stage: "report", Err: err}
	}
	return nil
}

func record(cfg config.Config, res *Result, err error, started time.Time) internal.RunRecord {
	r := internal.RunRecord{
		RemoteURL:   cfg.RemoteURL,
		LocalPath:   cfg.LocalTMXPath,
		Downloaded:  res.Fetch.Downloaded,
		LocalSize:   res.Fetch.LocalSize,
		RemoteSize:  res.Fetch.RemoteSize,
		Units:       res.Extract.Units,
		Pairs:       res.Extract.Pairs,
		Kept:        res.Clean.Kept,
		Removed:     res.Clean.Removed,
		SourceLines: res.Summary.SourceLines,
		TargetLines: res.Summary.TargetLines,
		Status:      internal.RunCompleted,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if err != nil {
		r.Status = internal.RunFailed
		r.Error = err.Error()
	}
	return r
}

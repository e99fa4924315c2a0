package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/depositpack/depositpack/pkg/planner"
)

// maxWorkers caps the default pool size; archive builds are CPU-bound.
const maxWorkers = 8

type Config struct {
	// Concurrency is the archive-build pool size; 0 means
	// min(GOMAXPROCS, 8).
	Concurrency int
	// DoubleZip wraps every built archive in an outer zip so the
	// destination platform cannot auto-unpack it.
	DoubleZip bool
}

// Executor realizes packaging plans by building their archives with a
// bounded worker pool.
type Executor struct {
	concurrency int
	doubleZip   bool
}

func New(cfg Config) *Executor {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = min(runtime.GOMAXPROCS(0), maxWorkers)
	}
	return &Executor{
		concurrency: concurrency,
		doubleZip:   cfg.DoubleZip,
	}
}

// Execute builds every archive in the plan and returns the final
// artifact paths in plan-item order, regardless of which worker
// finished first. Singles pass through unchanged. The first build
// failure aborts the run once in-flight workers drain; archives
// already written stay in the plan's workdir. With DoubleZip set, the
// returned paths are the outer wrappers and the plan's directory
// labels are extended to cover them.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) ([]string, error) {
	paths := make([]string, len(plan.Items))

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for i, item := range plan.Items {
		if item.Kind != planner.KindArchive {
			paths[i] = item.Path
			continue
		}
		wg.Add(1)
		go func(idx int, itm planner.Item) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if failed() || ctx.Err() != nil {
				return
			}
			out, err := e.buildArchive(itm)
			if err != nil {
				fail(fmt.Errorf("build %s: %w", filepath.Base(itm.ArchivePath), err))
				return
			}
			paths[idx] = out
		}(i, item)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.doubleZip {
		for i, item := range plan.Items {
			if item.Kind == planner.KindArchive {
				plan.DirLabels[paths[i]] = plan.DirLabels[item.ArchivePath]
			}
		}
	}
	return paths, nil
}

func (e *Executor) buildArchive(item planner.Item) (string, error) {
	if err := writeZip(item.ArchivePath, item.Members, item.Mode); err != nil {
		return "", err
	}
	if !e.doubleZip {
		return item.ArchivePath, nil
	}
	return wrapArchive(item.ArchivePath)
}

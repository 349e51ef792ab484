package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"json2video/config"
	"json2video/types"
)

// ErrSweepInProgress is returned when another process holds the input directory lock
var ErrSweepInProgress = errors.New("another batch sweep is already running")

const lockFileName = ".json2video.lock"

// Summary counts the outcome of one directory sweep
type Summary struct {
	Found    int
	Rendered int
	Failed   int
	UpToDate int
	Failures map[string]string
}

// ProcessFromDirectory renders every .json/.yaml/.yml document in inputDir into
// OutputDir, at most workers at a time. Documents whose output is newer than the
// document itself are skipped, so repeated sweeps only pick up new work.
func (p *Processor) ProcessFromDirectory(ctx context.Context, inputDir string, workers int) (Summary, error) {
	lock := flock.New(filepath.Join(inputDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Summary{}, ErrSweepInProgress
	}
	defer lock.Unlock()

	files, err := documentFiles(inputDir)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Found: len(files), Failures: map[string]string{}}
	if len(files) == 0 {
		log.Printf("No documents found in %s", inputDir)
		return summary, nil
	}
	log.Printf("Found %d documents to process", len(files))

	if workers <= 0 {
		workers = config.MaxConcurrentJobs
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		rendered  atomic.Int32
		upToDate  atomic.Int32
		semaphore = make(chan struct{}, workers)
	)

	files = rejectCollisions(files, summary.Failures)

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			skipped, err := p.processFile(ctx, file, idx+1, len(files))
			switch {
			case err != nil:
				mu.Lock()
				summary.Failures[filepath.Base(file)] = err.Error()
				mu.Unlock()
			case skipped:
				upToDate.Add(1)
			default:
				rendered.Add(1)
			}
		}(i, file)
	}
	wg.Wait()

	summary.Rendered = int(rendered.Load())
	summary.UpToDate = int(upToDate.Load())
	summary.Failed = len(summary.Failures)
	log.Printf("Batch done: %d rendered, %d up to date, %d failed", summary.Rendered, summary.UpToDate, summary.Failed)
	return summary, ctx.Err()
}

func (p *Processor) processFile(ctx context.Context, file string, current, total int) (bool, error) {
	log.Printf("[%d/%d] Processing: %s", current, total, filepath.Base(file))

	doc, err := types.LoadDocument(file)
	if err != nil {
		return false, err
	}
	ext, err := OutputExtension(doc)
	if err != nil {
		return false, err
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	outputPath := filepath.Join(p.OutputDir, base+ext)

	if upToDate(file, outputPath) {
		log.Printf("[%d/%d] %s is up to date", current, total, filepath.Base(outputPath))
		return true, nil
	}

	if res := p.Render(ctx, doc, outputPath); !res.OK() {
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️  Failed to remove partial output %s: %v", outputPath, err)
		}
		return false, errors.New(res.Message)
	}
	return false, nil
}

// rejectCollisions drops documents that share a base name, since they would
// render into the same output file, and records them as failures.
func rejectCollisions(files []string, failures map[string]string) []string {
	byStem := make(map[string][]string, len(files))
	for _, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		byStem[stem] = append(byStem[stem], filepath.Base(file))
	}

	kept := files[:0:0]
	for _, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if names := byStem[stem]; len(names) > 1 {
			failures[filepath.Base(file)] = fmt.Sprintf("output name %q is shared by %s", stem, strings.Join(names, ", "))
			continue
		}
		kept = append(kept, file)
	}
	return kept
}

func documentFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func upToDate(input, output string) bool {
	in, err := os.Stat(input)
	if err != nil {
		return false
	}
	out, err := os.Stat(output)
	if err != nil {
		return false
	}
	return out.ModTime().After(in.ModTime())
}

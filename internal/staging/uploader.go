package staging

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/depositpack/depositpack/internal/logging"
)

const (
	defaultConcurrency = 4
	defaultPrefix      = "deposits"
)

// Artifact is one realized upload item: a local path plus the
// first-level directory label it belongs under.
type Artifact struct {
	Path  string
	Label string
}

// Result reports the outcome of one artifact push.
type Result struct {
	Artifact Artifact
	Key      string
	Bytes    int64
	Skipped  bool
	Err      error
}

// Config configures an Uploader.
type Config struct {
	Bucket      string
	Prefix      string // key prefix, defaults to "deposits"
	Concurrency int
	DryRun      bool
	Logger      *logging.Logger
}

// Uploader pushes artifacts to a staging bucket under a unique batch
// prefix, so repeated pushes of the same dataset never collide.
type Uploader struct {
	client      Client
	bucket      string
	prefix      string
	batch       string
	concurrency int
	dryRun      bool
	logger      *logging.Logger
}

// NewUploader creates an uploader with a fresh batch identifier.
func NewUploader(client Client, cfg Config) *Uploader {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Uploader{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      prefix,
		batch:       uuid.NewString(),
		concurrency: concurrency,
		dryRun:      cfg.DryRun,
		logger:      cfg.Logger,
	}
}

// Batch returns the batch identifier all keys of this uploader share.
func (u *Uploader) Batch() string {
	return u.batch
}

// Push uploads the artifacts with bounded concurrency. Results are
// returned in artifact order; the error aggregates any failures.
func (u *Uploader) Push(ctx context.Context, artifacts []Artifact) ([]Result, error) {
	results := make([]Result, len(artifacts))
	jobs := make(chan int, len(artifacts))

	var wg sync.WaitGroup
	for i := 0; i < u.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = Result{Artifact: artifacts[idx], Key: u.key(artifacts[idx]), Err: ctx.Err()}
					continue
				}
				results[idx] = u.pushOne(ctx, artifacts[idx])
			}
		}()
	}

	for i := range artifacts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, pushError(results)
}

// pushOne uploads a single artifact, skipping objects already staged
// with a matching size.
func (u *Uploader) pushOne(ctx context.Context, a Artifact) Result {
	res := Result{Artifact: a, Key: u.key(a)}

	info, err := os.Stat(a.Path)
	if err != nil {
		res.Err = fmt.Errorf("stat artifact: %w", err)
		return res
	}
	res.Bytes = info.Size()

	if u.logger != nil {
		u.logger.Info("upload", "key", res.Key, "size", logging.FormatBytes(info.Size()))
	}
	if u.dryRun {
		return res
	}

	// Head failures other than ErrNotFound are ignored here; a real
	// problem surfaces on the upload itself.
	if existing, err := u.client.Head(ctx, u.bucket, res.Key); err == nil && existing.Size == info.Size() {
		res.Skipped = true
		return res
	}

	f, err := os.Open(a.Path)
	if err != nil {
		res.Err = fmt.Errorf("open artifact: %w", err)
		return res
	}
	defer f.Close()

	err = u.client.Put(ctx, &PutRequest{
		Bucket:      u.bucket,
		Key:         res.Key,
		Body:        f,
		Size:        info.Size(),
		ContentType: guessContentType(a.Path),
		Metadata:    map[string]string{"deposit-batch": u.batch},
	})
	if err != nil {
		res.Err = fmt.Errorf("put object: %w", err)
	}

	return res
}

// key builds the object key: <prefix>/<batch>/<label>/<basename>.
func (u *Uploader) key(a Artifact) string {
	return path.Join(u.prefix, u.batch, a.Label, filepath.Base(a.Path))
}

func guessContentType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// pushError aggregates failed results into a single error.
func pushError(results []Result) error {
	var failed []string
	var first error
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, filepath.Base(r.Artifact.Path))
			if first == nil {
				first = r.Err
			}
		}
	}
	if first == nil {
		return nil
	}
	if len(failed) > 10 {
		failed = append(failed[:10], "...")
	}
	return fmt.Errorf("some uploads failed: %s (first error: %w)", strings.Join(failed, ", "), first)
}

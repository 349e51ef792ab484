package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"json2video/common"
	"json2video/config"
	"json2video/fetch"
	"json2video/publish"
	"json2video/timeline"
	"json2video/types"
)

// Composer encodes a resolved timeline
type Composer interface {
	Compose(ctx context.Context, tl *timeline.Timeline, outputPath string) (string, error)
}

// ObjectUploader pushes finished videos to object storage
type ObjectUploader interface {
	UploadFile(ctx context.Context, bucket, key, path string) error
}

// Publisher posts finished videos to a video platform
type Publisher interface {
	Upload(ctx context.Context, videoPath string, meta publish.Metadata) (string, error)
}

// Deps wires a Processor. Assembler and Composer are required; the rest are optional.
type Deps struct {
	Assembler *timeline.Assembler
	Composer  Composer
	// Media localizes remote video/audio paths and remote documents
	Media     timeline.Downloader
	Store     StatusStore
	Objects   ObjectUploader
	Bucket    string
	Prefix    string
	Publisher Publisher
	OutputDir string
	// KeepAssets leaves narration and downloaded files on disk after a job
	KeepAssets bool
}

// Processor runs the document -> timeline -> video pipeline for one job at a time.
// It holds no per-job state, so one Processor can serve concurrent jobs.
type Processor struct {
	Deps
}

func NewProcessor(d Deps) *Processor {
	if d.Store == nil {
		d.Store = NewMemoryStatusStore()
	}
	if d.OutputDir == "" {
		d.OutputDir = config.OutputDir
	}
	return &Processor{Deps: d}
}

// Render converts one document into a video at outputPath
func (p *Processor) Render(ctx context.Context, doc *types.Document, outputPath string) types.Result {
	_, out, err := p.render(ctx, doc, outputPath)
	if err != nil {
		log.Printf("❌ Render failed for %s: %v", outputPath, err)
		return types.Failed(err)
	}
	return types.Succeeded(out)
}

// Plan resolves a document without encoding it. Fetched and synthesized files are left in place.
func (p *Processor) Plan(ctx context.Context, doc *types.Document) (*timeline.Timeline, error) {
	doc, _, err := p.localize(ctx, doc)
	if err != nil {
		return nil, err
	}
	return p.Assembler.Assemble(ctx, doc)
}

func (p *Processor) render(ctx context.Context, doc *types.Document, outputPath string) (*timeline.Timeline, string, error) {
	if doc == nil {
		return nil, "", &types.InputError{Reason: "document is empty"}
	}
	local, fetched, err := p.localize(ctx, doc)
	if !p.KeepAssets {
		defer removeAll(fetched)
	}
	if err != nil {
		return nil, "", err
	}

	// each job records its own image downloads so they can be removed afterwards
	assembler := *p.Assembler
	downloads := &recordingDownloader{next: assembler.Downloader}
	if assembler.Downloader != nil {
		assembler.Downloader = downloads
	}

	tl, err := assembler.Assemble(ctx, local)
	if !p.KeepAssets {
		defer func() { removeAll(downloads.files()) }()
	}
	if err != nil {
		return nil, "", err
	}
	if !p.KeepAssets {
		defer removeNarration(tl)
	}

	out, err := p.Composer.Compose(ctx, tl, outputPath)
	if err != nil {
		return tl, "", err
	}
	return tl, out, nil
}

// MarkQueued records a newly accepted job
func (p *Processor) MarkQueued(ctx context.Context, jobID string) {
	p.save(ctx, Status{JobID: jobID, State: StateQueued})
}

// Handle runs a full job: render, then optional upload and publish, recording status as it goes
func (p *Processor) Handle(ctx context.Context, req RenderRequest) Status {
	status := Status{JobID: req.JobID, State: StateRunning}
	if err := req.Check(); err != nil {
		return p.finish(ctx, status, &types.InputError{Reason: "render request", Err: err})
	}
	p.save(ctx, status)
	log.Printf("🎬 Processing job %s", req.JobID)

	doc := req.Document
	if doc == nil {
		var err error
		if doc, err = p.loadDocument(ctx, req.DocumentPath); err != nil {
			return p.finish(ctx, status, err)
		}
	}

	ext, err := OutputExtension(doc)
	if err != nil {
		return p.finish(ctx, status, err)
	}
	name := req.OutputName
	if name == "" {
		name = req.JobID
	}
	outputPath := filepath.Join(p.OutputDir, strings.TrimSuffix(name, filepath.Ext(name))+ext)

	tl, out, err := p.render(ctx, doc, outputPath)
	if tl != nil {
		for _, s := range tl.Skipped {
			status.Skipped = append(status.Skipped, fmt.Sprintf("%s: %s", s.Label, s.Reason))
		}
	}
	if err != nil {
		return p.finish(ctx, status, err)
	}
	status.Result = types.Succeeded(out)

	if req.Upload && p.Objects != nil && p.Bucket != "" {
		key := common.JoinKey(p.Prefix, filepath.Base(out))
		if err := p.Objects.UploadFile(ctx, p.Bucket, key, out); err != nil {
			return p.finish(ctx, status, fmt.Errorf("upload to s3://%s/%s failed: %w", p.Bucket, key, err))
		}
		status.OutputURL = fmt.Sprintf("s3://%s/%s", p.Bucket, key)
		log.Printf("Uploaded %s to %s", out, status.OutputURL)
	}

	if req.Publish != nil {
		if p.Publisher == nil {
			log.Printf("Skipping YouTube upload for job %s (no credentials)", req.JobID)
		} else {
			id, err := p.Publisher.Upload(ctx, out, *req.Publish)
			if err != nil {
				return p.finish(ctx, status, fmt.Errorf("publish failed: %w", err))
			}
			status.VideoID = id
		}
	}

	return p.finish(ctx, status, nil)
}

func (p *Processor) finish(ctx context.Context, status Status, err error) Status {
	if err != nil {
		status.State = StateFailed
		status.Result = types.Failed(err)
		log.Printf("❌ Job %s failed: %v", status.JobID, err)
	} else {
		status.State = StateSucceeded
		log.Printf("✅ Job %s done: %s", status.JobID, status.Result.OutputPath)
	}
	p.save(ctx, status)
	return status
}

func (p *Processor) save(ctx context.Context, s Status) {
	s.UpdatedAt = time.Now().UTC()
	if err := p.Store.Save(ctx, s); err != nil {
		log.Printf("Failed to save status for job %s: %v", s.JobID, err)
	}
}

// Status looks up a job
func (p *Processor) Status(ctx context.Context, jobID string) (Status, bool, error) {
	return p.Store.Get(ctx, jobID)
}

func (p *Processor) loadDocument(ctx context.Context, path string) (*types.Document, error) {
	if !fetch.IsRemote(path) {
		return types.LoadDocument(path)
	}
	if p.Media == nil {
		return nil, &types.InputError{Reason: "cannot fetch remote document " + path}
	}
	local, err := p.Media.Download(ctx, path)
	if err != nil {
		return nil, &types.InputError{Reason: "unable to fetch document " + path, Err: err}
	}
	defer os.Remove(local)
	return types.LoadDocument(local)
}

// localize downloads remote video and audio sources, returning a copy of the
// document pointing at local files plus the list of files it created
func (p *Processor) localize(ctx context.Context, doc *types.Document) (*types.Document, []string, error) {
	local := *doc
	local.Videos = append([]types.VideoSpec(nil), doc.Videos...)
	local.Audio = append([]types.AudioSpec(nil), doc.Audio...)

	var fetched []string
	get := func(locator string) (string, error) {
		if !fetch.IsRemote(locator) {
			return locator, nil
		}
		if p.Media == nil {
			return "", &types.AssetFetchError{Source: locator, Err: fmt.Errorf("remote sources are not enabled")}
		}
		path, err := p.Media.Download(ctx, locator)
		if err != nil {
			return "", &types.AssetFetchError{Source: locator, Err: err}
		}
		fetched = append(fetched, path)
		return path, nil
	}

	for i := range local.Videos {
		path, err := get(local.Videos[i].VideoPath)
		if err != nil {
			return nil, fetched, err
		}
		local.Videos[i].VideoPath = path
	}
	for i := range local.Audio {
		path, err := get(local.Audio[i].AudioPath)
		if err != nil {
			return nil, fetched, err
		}
		local.Audio[i].AudioPath = path
	}
	return &local, fetched, nil
}

func removeNarration(tl *timeline.Timeline) {
	paths := make([]string, 0, len(tl.Segments))
	for _, s := range tl.Segments {
		paths = append(paths, s.AudioPath)
	}
	removeAll(paths)
}

// recordingDownloader remembers every file it created
type recordingDownloader struct {
	next timeline.Downloader
	mu   sync.Mutex
	got  []string
}

func (r *recordingDownloader) Download(ctx context.Context, locator string) (string, error) {
	path, err := r.next.Download(ctx, locator)
	if err == nil {
		r.mu.Lock()
		r.got = append(r.got, path)
		r.mu.Unlock()
	}
	return path, err
}

func (r *recordingDownloader) files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func removeAll(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove %s: %v", path, err)
		}
	}
}

// OutputExtension maps extra_args.output_format to a file extension
func OutputExtension(doc *types.Document) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(doc.ExtraArgs.OutputFormat)), ".")
	switch format {
	case "", config.DefaultOutputFormat:
		return "." + config.DefaultOutputFormat, nil
	case "mov":
		return ".mov", nil
	}
	return "", &types.InputError{Reason: fmt.Sprintf("unsupported output_format %q", doc.ExtraArgs.OutputFormat)}
}

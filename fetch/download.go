package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"json2video/common"
	"json2video/config"
)

// ObjectGetter is the part of the S3 wrapper downloads need
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Downloader stores remote files under a local directory with random names.
// http(s):// locators are fetched over HTTP; s3:// locators need an ObjectGetter.
type Downloader struct {
	dir        string
	defaultExt string
	httpClient *http.Client
	objects    ObjectGetter
}

// New returns a downloader writing into dir. defaultExt is used when the
// locator has no file extension.
func New(dir, defaultExt string, objects ObjectGetter) *Downloader {
	return &Downloader{
		dir:        dir,
		defaultExt: defaultExt,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
		objects:    objects,
	}
}

// IsRemote reports whether a locator needs downloading before use
func IsRemote(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "s3://")
}

func (d *Downloader) Download(ctx context.Context, locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}

	var body io.ReadCloser
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		body, err = d.get(ctx, locator)
	case "s3":
		body, err = d.getObject(ctx, locator)
	default:
		return "", fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", d.dir, err)
	}
	ext := path.Ext(u.Path)
	if ext == "" || len(ext) > 5 {
		ext = d.defaultExt
	}
	dest := filepath.Join(d.dir, uuid.NewString()+ext)

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to save %s: %w", locator, err)
	}

	log.Printf("Downloaded %s -> %s (%d bytes)", locator, dest, n)
	return dest, nil
}

func (d *Downloader) get(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", locator, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: status %d", locator, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: got %s instead of media", locator, ct)
	}
	return resp.Body, nil
}

func (d *Downloader) getObject(ctx context.Context, locator string) (io.ReadCloser, error) {
	if d.objects == nil {
		return nil, fmt.Errorf("s3 is not configured, cannot fetch %s", locator)
	}
	bucket, key, err := common.ParseURI(locator)
	if err != nil {
		return nil, err
	}
	return d.objects.Get(ctx, bucket, key)
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrFetchStatus is returned when the feed server answers with a non-2xx status.
var ErrFetchStatus = errors.New("feed download failed")

// Progress reports bytes received so far. Total is -1 when the server did
// not declare a Content-Length.
type Progress struct {
	Received int64
	Total    int64
}

// Percent returns completion in [0,100]; ok is false when the total is unknown.
func (p Progress) Percent() (pct float64, ok bool) {
	if p.Total <= 0 {
		return 0, false
	}
	pct = float64(p.Received) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

type ProgressFn func(Progress)

type Fetcher struct {
	client   *resty.Client
	logger   *zap.Logger
	tempDir  string
	progress ProgressFn
}

type FetcherOption func(*Fetcher)

func WithTempDir(dir string) FetcherOption {
	return func(f *Fetcher) { f.tempDir = dir }
}

func WithProgress(fn ProgressFn) FetcherOption {
	return func(f *Fetcher) { f.progress = fn }
}

func WithHTTPClient(c *resty.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

func NewFetcher(logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: resty.New().
			SetTimeout(10*time.Minute).
			SetHeader("User-Agent", "sanctionguard/1.0"),
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.progress == nil {
		f.progress = f.logProgress()
	}
	return f
}

// Download streams url into a new temp file and returns its path. On any
// failure the temp file is removed and no path is returned.
func (f *Fetcher) Download(ctx context.Context, url string) (string, error) {
	f.logger.Info("downloading feed", zap.String("url", url))
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: status %d from %s", ErrFetchStatus, resp.StatusCode(), url)
	}

	total := int64(-1)
	if resp.RawResponse != nil && resp.RawResponse.ContentLength > 0 {
		total = resp.RawResponse.ContentLength
	}

	tmp, err := os.CreateTemp(f.tempDir, "ofac_sdn_*.xml")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	pw := &progressWriter{total: total, report: f.progress}
	_, copyErr := io.Copy(io.MultiWriter(tmp, pw), body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		if copyErr != nil {
			return "", fmt.Errorf("download body: %w", copyErr)
		}
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}
	pw.flush()

	f.logger.Info("download complete", zap.String("path", tmpPath), zap.Int64("bytes", pw.received))
	return tmpPath, nil
}

// logProgress logs at every 10% step, or every 5 MiB when the size is unknown.
func (f *Fetcher) logProgress() ProgressFn {
	const unknownStep = 5 << 20
	lastPct := -1
	var lastBytes int64
	return func(p Progress) {
		if pct, ok := p.Percent(); ok {
			step := int(pct) / 10 * 10
			if step > lastPct {
				lastPct = step
				f.logger.Info("download progress", zap.Int("percent", step), zap.Int64("bytes", p.Received), zap.Int64("total", p.Total))
			}
			return
		}
		if p.Received-lastBytes >= unknownStep {
			lastBytes = p.Received
			f.logger.Info("download progress", zap.Int64("bytes", p.Received), zap.String("total", "unknown"))
		}
	}
}

type progressWriter struct {
	received int64
	total    int64
	report   ProgressFn
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.received += int64(len(p))
	if w.report != nil {
		w.report(Progress{Received: w.received, Total: w.total})
	}
	return len(p), nil
}

func (w *progressWriter) flush() {
	if w.report != nil {
		w.report(Progress{Received: w.received, Total: w.total})
	}
}

package assets

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/metrics"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/filex"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
	"github.com/dmitrijs2005/brightstudy/internal/netx"
)

const (
	defaultVideoExt     = ".mp4"
	defaultThumbnailExt = ".jpg"
)

// Meta is the sidecar JSON stored next to every video binary.
type Meta struct {
	ID           string  `json:"id"`
	Title        string  `json:"title,omitempty"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	File         string  `json:"file"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	Size         int64   `json:"size"`
	Duration     float64 `json:"duration,omitempty"`
	MimeType     string  `json:"mime_type,omitempty"`
}

type Result struct {
	VideoPath     string
	ThumbnailPath string
	// Downloaded is true when at least one file was fetched by this call.
	Downloaded bool
	Bytes      int64
}

type Downloader struct {
	lib     *library.Library
	fetcher Fetcher
	timeout time.Duration
	log     logging.Logger
}

func NewDownloader(lib *library.Library, fetcher Fetcher, timeout time.Duration, log logging.Logger) *Downloader {
	return &Downloader{lib: lib, fetcher: fetcher, timeout: timeout, log: log}
}

// Ensure makes the video binary, its thumbnail (if any) and its metadata
// file present. Any failure wraps common.ErrAssetDownloadFailed and leaves no
// partial file at a final path.
func (d *Downloader) Ensure(ctx context.Context, ref models.VideoRef) (*Result, error) {
	return d.ensure(ctx, ref, "")
}

// EnsureVideo is Ensure for the standalone video kind; the title is kept in
// the metadata file.
func (d *Downloader) EnsureVideo(ctx context.Context, v *models.Video) (*Result, error) {
	return d.ensure(ctx, v.Ref(), v.Title)
}

func (d *Downloader) ensure(ctx context.Context, ref models.VideoRef, title string) (*Result, error) {
	if err := library.CheckID(ref.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAssetDownloadFailed, err)
	}

	res := &Result{VideoPath: d.lib.VideoPath(ref.ID, Ext(ref.URL, defaultVideoExt))}

	size, fetched, err := d.ensureFile(ctx, ref.URL, res.VideoPath, ref.Metadata.Size)
	if err != nil {
		return res, fmt.Errorf("%w: video %s: %v", common.ErrAssetDownloadFailed, ref.ID, err)
	}
	res.Downloaded = fetched
	if fetched {
		res.Bytes += size
	}

	meta := Meta{
		ID:           ref.ID,
		Title:        title,
		URL:          ref.URL,
		ThumbnailURL: ref.ThumbnailURL,
		File:         filepath.Base(res.VideoPath),
		Size:         size,
		Duration:     ref.Metadata.Duration,
		MimeType:     ref.Metadata.MimeType,
	}

	if ref.ThumbnailURL != "" {
		res.ThumbnailPath = d.lib.ThumbnailPath(ref.ID, Ext(ref.ThumbnailURL, defaultThumbnailExt))
		n, got, err := d.ensureFile(ctx, ref.ThumbnailURL, res.ThumbnailPath, 0)
		if err != nil {
			return res, fmt.Errorf("%w: thumbnail %s: %v", common.ErrAssetDownloadFailed, ref.ID, err)
		}
		if got {
			res.Downloaded = true
			res.Bytes += n
		}
		meta.Thumbnail = filepath.Base(res.ThumbnailPath)
	}

	if err := d.lib.WriteVideoMeta(ref.ID, meta); err != nil {
		return res, fmt.Errorf("%w: metadata %s: %v", common.ErrAssetDownloadFailed, ref.ID, err)
	}

	return res, nil
}

// ensureFile returns the size of the file at dst and whether it had to be
// fetched.
func (d *Downloader) ensureFile(ctx context.Context, src, dst string, expected int64) (int64, bool, error) {
	present, size, err := filex.Exists(dst)
	if err != nil {
		metrics.RecordAsset("failed", 0)
		return 0, false, err
	}
	if present && (expected <= 0 || size == expected) {
		metrics.RecordAsset("present", 0)
		return size, false, nil
	}
	if present {
		d.log.Info(ctx, "asset size differs, downloading again", "path", dst, "size", size, "expected", expected)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, announced, err := d.fetcher.Fetch(ctx, src)
	if err != nil {
		metrics.RecordAsset("failed", 0)
		return 0, false, err
	}
	defer body.Close()

	if expected <= 0 && announced > 0 {
		expected = announced
	}

	n, err := netx.SaveStream(body, dst, expected)
	if err != nil {
		metrics.RecordAsset("failed", 0)
		return 0, false, err
	}

	metrics.RecordAsset("downloaded", n)
	d.log.Debug(ctx, "asset downloaded", "path", dst, "bytes", n)
	return n, true, nil
}

// Ext infers a file extension from the URL path. Query strings and
// implausible suffixes fall back to def.
func Ext(rawURL, def string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return def
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return def
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return def
		}
	}
	return ext
}

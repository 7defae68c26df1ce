// Package netx contains the HTTP transfer helpers used for binary assets.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/filex"
)

// ErrSizeMismatch is returned when a stream does not carry the number of
// bytes announced for it.
var ErrSizeMismatch = errors.New("size mismatch")

// Get issues a GET for url and returns the body together with the announced
// Content-Length (-1 when unknown). Non-2xx responses are errors.
func Get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", common.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	return resp.Body, resp.ContentLength, nil
}

// SaveStream copies r into a temp file in dst's directory and renames it to
// dst once the copy is complete. When expectedSize is positive the number of
// copied bytes must match it. On any failure the temp file is removed and dst
// is left untouched.
func SaveStream(r io.Reader, dst string, expectedSize int64) (n int64, err error) {
	dir := filepath.Dir(dst)
	if err := filex.EnsureDir(dir); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", dst, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err = io.Copy(tmp, r)
	if err != nil {
		return n, fmt.Errorf("copy to %s: %w", tmpName, err)
	}
	if expectedSize > 0 && n != expectedSize {
		err = fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, n, expectedSize)
		return n, err
	}
	if err = tmp.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return n, fmt.Errorf("rename %s: %w", dst, err)
	}
	return n, nil
}

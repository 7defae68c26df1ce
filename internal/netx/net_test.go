package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		var gotUA string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("video-bytes"))
		}))
		defer ts.Close()

		body, size, err := Get(context.Background(), ts.Client(), ts.URL+"/v1.mp4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer body.Close()

		b, _ := io.ReadAll(body)
		if string(b) != "video-bytes" {
			t.Fatalf("body = %q", string(b))
		}
		if size != int64(len("video-bytes")) {
			t.Fatalf("size = %d, want %d", size, len("video-bytes"))
		}
		if gotUA == "" {
			t.Fatal("User-Agent header must be set")
		}
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		_, _, err := Get(context.Background(), ts.Client(), ts.URL)
		if err == nil || !strings.Contains(err.Error(), "download failed: 404") {
			t.Fatalf("error = %v, want to contain 404", err)
		}
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, _, err := Get(context.Background(), http.DefaultClient, ts.URL)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer ts.Close()

		client := &http.Client{Timeout: 50 * time.Millisecond}
		_, _, err := Get(context.Background(), client, ts.URL)
		if err == nil {
			t.Fatal("expected timeout error")
		}
	})
}

func TestSaveStream_WritesFinalFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "assets", "videos", "v1.mp4")

	n, err := SaveStream(strings.NewReader("abcdef"), dst, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 6 {
		t.Fatalf("n = %d, want 6", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "abcdef" {
		t.Fatalf("content = %q, err = %v", string(got), err)
	}
}

func TestSaveStream_SizeMismatchLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "v1.mp4")

	_, err := SaveStream(strings.NewReader("abc"), dst, 10)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("want ErrSizeMismatch, got %v", err)
	}
	assertEmptyDir(t, dir)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSaveStream_ReadErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "v1.mp4")

	_, err := SaveStream(io.MultiReader(strings.NewReader("partial"), failingReader{}), dst, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	assertEmptyDir(t, dir)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files, found %d (first: %s)", len(entries), entries[0].Name())
	}
}

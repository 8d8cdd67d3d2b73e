package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchToBuffer(t *testing.T) {
	var gotUA string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("line one\nline two\n"))
	})

	b, err := New(nil, "podcomb/test", 5*time.Second).FetchToBuffer(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "podcomb/test", gotUA)
	assert.Equal(t, "line one\nline two\n", string(b.Bytes()))
}

func TestFetchToBufferLargeBody(t *testing.T) {
	body := strings.Repeat("0123456789", 10_000)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	b, err := New(nil, "", 0).FetchToBuffer(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, len(body), b.Len())
}

func TestFetchToBufferStatusError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := New(nil, "", 0).FetchToBuffer(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestFetchToBufferCancelled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, "", 0).FetchToBuffer(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchToFile(t *testing.T) {
	payload := strings.Repeat("audio", 4096)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	var calls int
	var last int64
	d := New(nil, "", 0).WithProgress(func(written, total int64) {
		calls++
		last = written
	})

	path := filepath.Join(t.TempDir(), "episode.mp3")
	require.NoError(t, os.WriteFile(path, []byte("old content that should be replaced entirely"), 0644))

	n, err := d.FetchToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), n)
	assert.Positive(t, calls)
	assert.Equal(t, int64(len(payload)), last)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestFetchToFileStatusErrorLeavesNoFile(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	path := filepath.Join(t.TempDir(), "episode.mp3")
	_, err := New(nil, "", 0).FetchToFile(context.Background(), srv.URL, path)
	assert.ErrorIs(t, err, ErrStatus)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchToFileRemovesPartialFile(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	})

	path := filepath.Join(t.TempDir(), "episode.mp3")
	_, err := New(nil, "", 0).FetchToFile(context.Background(), srv.URL, path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchToFileBadDestination(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})

	_, err := New(nil, "", 0).FetchToFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "no", "such", "dir", "f.mp3"))
	assert.Error(t, err)
}

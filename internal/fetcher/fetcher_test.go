package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	name  string
	calls []string
}

func (s *stubFetcher) Download(_ context.Context, location string) (io.ReadCloser, error) {
	s.calls = append(s.calls, location)
	return io.NopCloser(strings.NewReader(s.name)), nil
}

func TestScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/counties.json", "https"},
		{"HTTP://example.com", "http"},
		{"ftp://ftp2.census.gov/geo/tiger/county.zip", "ftp"},
		{"file:///tmp/counties.json", "file"},
		{"/tmp/counties.json", ""},
		{"testdata/counties.json", ""},
		{`C://data/counties.json`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Scheme(tt.in), tt.in)
	}
}

func TestRouter_Dispatch(t *testing.T) {
	httpF := &stubFetcher{name: "http"}
	ftpF := &stubFetcher{name: "ftp"}
	fileF := &stubFetcher{name: "file"}
	r := &Router{HTTP: httpF, FTP: ftpF, File: fileF}

	for location, want := range map[string]string{
		"https://example.com/a.json": "http",
		"http://example.com/a.json":  "http",
		"ftp://example.com/a.zip":    "ftp",
		"file:///a.json":             "file",
		"a.json":                     "file",
	} {
		body, err := r.Download(context.Background(), location)
		require.NoError(t, err, location)
		data, _ := io.ReadAll(body)
		assert.Equal(t, want, string(data), location)
	}
	assert.Len(t, httpF.calls, 2)
	assert.Len(t, ftpF.calls, 1)
	assert.Len(t, fileF.calls, 2)
}

func TestRouter_Errors(t *testing.T) {
	r := &Router{File: FileFetcher{}}

	_, err := r.Download(context.Background(), "s3://bucket/key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported scheme "s3"`)

	_, err = r.Download(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fetcher configured")
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	require.NoError(t, writeTestFile(path, "[]"))

	for _, location := range []string{path, "file://" + filepath.ToSlash(path)} {
		body, err := FileFetcher{}.Download(context.Background(), location)
		require.NoError(t, err, location)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		_ = body.Close()
		assert.Equal(t, "[]", string(data))
	}

	_, err := FileFetcher{}.Download(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file: open")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileFetcher{}.Download(ctx, path)
	require.Error(t, err)
}

func TestDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("file content here"))
	}))
	defer srv.Close()

	r := NewRouter(HTTPOptions{DefaultRate: 1000}, FTPOptions{})
	path := filepath.Join(t.TempDir(), "out.zip")

	n, err := DownloadToFile(context.Background(), r, srv.URL+"/county.zip", path)
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file content here", string(data))
}

func TestDownloadToFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := DownloadToFile(context.Background(), FileFetcher{}, filepath.Join(dir, "nope"), filepath.Join(dir, "out"))
	require.Error(t, err)

	src := filepath.Join(dir, "src")
	require.NoError(t, writeTestFile(src, "x"))
	_, err = DownloadToFile(context.Background(), FileFetcher{}, src, filepath.Join(dir, "no", "such", "dir", "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create file")
}

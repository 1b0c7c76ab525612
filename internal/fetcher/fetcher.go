// Package fetcher retrieves map source data from HTTP, FTP, or the local filesystem and
// parses the JSON, CSV, XLSX, and ZIP payloads those sources ship.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher opens a source location for reading.
type Fetcher interface {
	// Download opens the location and returns its body. The caller closes it.
	Download(ctx context.Context, location string) (io.ReadCloser, error)
}

// Router dispatches a location to a Fetcher by URL scheme. Locations without a scheme,
// or with file://, are read from disk.
type Router struct {
	HTTP Fetcher
	FTP  Fetcher
	File Fetcher
}

// NewRouter wires the default fetchers for every supported scheme.
func NewRouter(httpOpts HTTPOptions, ftpOpts FTPOptions) *Router {
	return &Router{
		HTTP: NewHTTPFetcher(httpOpts),
		FTP:  NewFTPFetcher(ftpOpts),
		File: FileFetcher{},
	}
}

// Download implements Fetcher.
func (r *Router) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	f, err := r.route(location)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, location)
}

// DownloadToFile copies a location to path and returns the bytes written.
func DownloadToFile(ctx context.Context, f Fetcher, location, path string) (int64, error) {
	body, err := f.Download(ctx, location)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, body)
	if err != nil {
		return n, eris.Wrap(err, "fetcher: write file")
	}
	return n, nil
}

func (r *Router) route(location string) (Fetcher, error) {
	scheme := Scheme(location)
	var f Fetcher
	switch scheme {
	case "http", "https":
		f = r.HTTP
	case "ftp":
		f = r.FTP
	case "", "file":
		f = r.File
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q in %s", scheme, location)
	}
	if f == nil {
		return nil, eris.Errorf("fetcher: no fetcher configured for scheme %q", scheme)
	}
	return f, nil
}

// Scheme returns the lower-cased URL scheme of location, or "" for a plain path.
// Windows drive letters are not treated as schemes.
func Scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(location[:i])
}

// FileFetcher reads local files. It accepts bare paths and file:// URLs.
type FileFetcher struct{}

// Download implements Fetcher.
func (FileFetcher) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "file: context cancelled")
	}
	path := location
	if Scheme(location) == "file" {
		u, err := url.Parse(location)
		if err != nil {
			return nil, eris.Wrap(err, "file: parse url")
		}
		path = filepath.FromSlash(u.Path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "file: open %s", path)
	}
	return f, nil
}

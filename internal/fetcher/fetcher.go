// Package fetcher downloads remote input files so they can be parsed like
// local ones.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads a URL.
type Fetcher interface {
	// Download fetches the URL and returns the body. The caller closes it.
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// IsRemote reports whether p is an http(s) or ftp URL rather than a path.
func IsRemote(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "ftp://")
}

// Resolver picks the fetcher for a URL scheme.
type Resolver struct {
	HTTP Fetcher
	FTP  Fetcher
}

// NewResolver returns a Resolver with default HTTP and FTP fetchers.
func NewResolver() *Resolver {
	return &Resolver{
		HTTP: NewHTTPFetcher(HTTPOptions{}),
		FTP:  NewFTPFetcher(FTPOptions{}),
	}
}

func (r *Resolver) fetcherFor(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return r.HTTP, nil
	case "ftp":
		return r.FTP, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

// Localize returns a local path for src. Local paths are returned unchanged;
// URLs are downloaded into dir, keeping the remote file name so the format
// can still be told from the extension.
func (r *Resolver) Localize(ctx context.Context, src, dir string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}

	f, err := r.fetcherFor(src)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse url")
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "input"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "fetcher: create dir %s", dir)
	}
	dst := filepath.Join(dir, name)

	n, err := DownloadToFile(ctx, f, src, dst)
	if err != nil {
		return "", err
	}
	zap.L().Info("input downloaded",
		zap.String("url", src),
		zap.String("path", dst),
		zap.Int64("bytes", n),
	)
	return dst, nil
}

// DownloadToFile streams rawURL into dst and returns the bytes written.
func DownloadToFile(ctx context.Context, f Fetcher, rawURL, dst string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(dst)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "fetcher: write file")
	}
	return n, nil
}

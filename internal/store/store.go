// Package store persists converted documents on the local filesystem and
// serves them back for download.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	htmlconv "github.com/porticus-lab/go-html-convert"
)

// DownloadPrefix is the URL path under which stored files are served.
const DownloadPrefix = "/downloads/"

// ErrNotFound is returned by Stat for names that do not exist or that
// would resolve outside the store directory.
var ErrNotFound = errors.New("store: file not found")

// File describes a stored document.
type File struct {
	Name string // converted-<uuid>.<ext>
	Path string // absolute or dir-relative path on disk
	URL  string // public download link
	Size int64
}

// Store writes documents into a single flat directory.
type Store struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// New creates the directory if needed and returns a Store whose download
// links start with baseURL.
func New(dir, baseURL string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %w", htmlconv.ErrStorage, err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes res under a fresh random name. Names are never reused, so
// no existence check is made.
func (s *Store) Save(ctx context.Context, res *htmlconv.Result) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", htmlconv.ErrStorage, err)
	}

	name := "converted-" + uuid.NewString() + "." + res.Format().Extension()
	path := filepath.Join(s.dir, name)
	if err := res.WriteToFile(path, 0o644); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", htmlconv.ErrStorage, name, err)
	}

	s.logger.Debug("file stored", "file", name, "size", res.Len())

	return &File{
		Name: name,
		Path: path,
		URL:  s.URL(name),
		Size: int64(res.Len()),
	}, nil
}

// URL returns the download link for name.
func (s *Store) URL(name string) string {
	return s.baseURL + DownloadPrefix + name
}

// Stat returns metadata for a stored file.
func (s *Store) Stat(name string) (*File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", htmlconv.ErrStorage, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return &File{Name: name, Path: path, URL: s.URL(name), Size: info.Size()}, nil
}

// resolve maps a file name to its path, rejecting anything that is not a
// plain name inside the store directory.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	path := filepath.Join(s.dir, name)

	// Security: prevent directory traversal
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path traversal detected", ErrNotFound)
	}
	return path, nil
}

// Handler serves stored files. It expects the download prefix to be
// stripped already, so it should be mounted with [http.StripPrefix].
// Directories are never listed.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		f, err := s.Stat(name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.logger.Error("stat failed", "file", name, "error", err)
			}
			http.NotFound(w, r)
			return
		}
		if format, err := htmlconv.ParseFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
			w.Header().Set("Content-Type", format.ContentType())
		}
		http.ServeFile(w, r, f.Path)
	})
}

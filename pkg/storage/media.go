package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaStore persists objects of the shared media namespace on disk under a
// base directory and derives publicly resolvable URLs for stored keys.
type MediaStore struct {
	baseDir string
	bucket  string
	baseURL string
}

// ErrObjectExists is returned by Put when overwrite is disabled and the key
// is already taken.
var ErrObjectExists = fmt.Errorf("object already exists")

// NewMediaStore ensures the base directory exists and returns a handle.
func NewMediaStore(baseDir, bucket, publicBaseURL string) (*MediaStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if bucket == "" {
		bucket = "media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &MediaStore{
		baseDir: baseDir,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put writes the given bytes under the provided object key. When overwrite is
// false the write fails with ErrObjectExists if the key is already present;
// callers generating fresh unique keys rely on that failure.
func (s *MediaStore) Put(key string, data []byte, overwrite bool) (string, error) {
	clean := NormalizeKey(key, s.bucket)
	if clean == "" {
		return "", fmt.Errorf("empty object key")
	}
	path := s.resolve(clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare object directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if !overwrite && os.IsExist(err) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return clean, nil
}

// PutStream copies from reader into the target object, always overwriting.
func (s *MediaStore) PutStream(key string, r io.Reader) (string, error) {
	clean := NormalizeKey(key, s.bucket)
	if clean == "" {
		return "", fmt.Errorf("empty object key")
	}
	path := s.resolve(clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare object directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write object stream: %w", err)
	}
	return clean, nil
}

// Open returns a read-only handle for the stored object.
func (s *MediaStore) Open(key string) (*os.File, error) {
	file, err := os.Open(s.resolve(NormalizeKey(key, s.bucket)))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *MediaStore) Delete(key string) error {
	if err := os.Remove(s.resolve(NormalizeKey(key, s.bucket))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PublicURL maps a storage key to a publicly resolvable URL. Empty keys map
// to an empty URL.
func (s *MediaStore) PublicURL(key string) string {
	clean := NormalizeKey(key, s.bucket)
	if clean == "" {
		return ""
	}
	return s.baseURL + "/" + clean
}

// OwnAvatarURL is PublicURL with a cache-busting query parameter. It is used
// only when rendering the caller's own avatar so a fresh upload is visible
// immediately; third-party images keep cacheable URLs.
func (s *MediaStore) OwnAvatarURL(key string, now time.Time) string {
	url := s.PublicURL(key)
	if url == "" {
		return ""
	}
	return fmt.Sprintf("%s?v=%d", url, now.Unix())
}

// NormalizeKey strips leading slashes and a redundant bucket-name prefix from
// a stored path. Rows written by older clients carry both shapes.
func NormalizeKey(key, bucket string) string {
	clean := strings.TrimLeft(key, "/")
	clean = strings.TrimPrefix(clean, bucket+"/")
	return clean
}

func (s *MediaStore) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

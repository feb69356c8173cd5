package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/uploads"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStore writes uploads below Root and returns references under PublicPrefix.
type LocalStore struct {
	Root string
	now  func() time.Time
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root, now: time.Now}
}

// Save copies r into category/<timestamp>-<name> and returns the public reference.
func (s *LocalStore) Save(category, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixNano(), sanitizeName(filename))

	dir := filepath.Join(s.Root, filepath.FromSlash(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// O_EXCL: never overwrite an earlier upload.
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return path.Join(PublicPrefix, category, name), nil
}

func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}

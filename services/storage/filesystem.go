package storagesvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

var ErrInvalidName = errors.New("invalid object name")

// FileSystemStore keeps objects under <root>/<bucket>/<name>
// and serves them from <publicBaseURL>/<bucket>/<name>.
type FileSystemStore struct {
	root          string
	publicBaseURL string
}

var _ core.FileStorage = (*FileSystemStore)(nil)

func NewFileSystemStore(conf *core.Config) *FileSystemStore {
	return &FileSystemStore{
		root:          conf.Storage.Root,
		publicBaseURL: strings.TrimSuffix(conf.Storage.PublicBaseURL, "/"),
	}
}

// Root is the directory served under the public base URL.
func (s *FileSystemStore) Root() string { return s.root }

func (s *FileSystemStore) objectPath(bucket, name string) (string, error) {
	if !validName(bucket) || !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, bucket, name), nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (s *FileSystemStore) Upload(ctx context.Context, bucket, name string, body io.Reader, _ string) (string, error) {
	p, err := s.objectPath(bucket, name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrap(err, "creating bucket directory")
	}

	f, err := os.Create(p)
	if err != nil {
		return "", errors.Wrap(err, "creating object")
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", errors.Wrap(err, "writing object")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", errors.Wrap(err, "closing object")
	}
	return s.publicBaseURL + "/" + path.Join(bucket, name), nil
}

// Remove is a no-op for missing objects.
func (s *FileSystemStore) Remove(_ context.Context, bucket, name string) error {
	p, err := s.objectPath(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing object")
	}
	return nil
}

func (s *FileSystemStore) ObjectName(bucket, publicURL string) (string, bool) {
	prefix := s.publicBaseURL + "/" + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(publicURL, prefix)
	if !validName(name) {
		return "", false
	}
	return name, true
}

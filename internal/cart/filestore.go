package cart

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the cart as a single JSON array in one file, surviving
// process restarts the way the browser storefront's cart survived reloads.
// Read and write failures are absorbed: they are logged and the cart degrades
// to empty rather than surfacing an error to the caller.
type FileStore struct {
	path string
	lg   *zap.Logger
}

// NewFileStore creates a FileStore writing to path. The parent directory is
// created on the first Save.
func NewFileStore(path string, lg *zap.Logger) *FileStore {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &FileStore{path: path, lg: lg}
}

// Load reads the persisted line items. Absent or malformed state yields an
// empty slice, never an error.
func (s *FileStore) Load() []LineItem {
	items, err := s.load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.lg.Warn("cart state unreadable, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}
	return items
}

func (s *FileStore) load() ([]LineItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "read cart state")
	}
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart state")
	}
	return items, nil
}

// Save overwrites the persisted cart with items. The write goes through a
// temp file and rename so a crash mid-write never leaves a torn state file.
func (s *FileStore) Save(items []LineItem) {
	if err := s.save(items); err != nil {
		s.lg.Warn("cart state not persisted", zap.String("path", s.path), zap.Error(err))
	}
}

func (s *FileStore) save(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart state")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create state dir")
	}

	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cart state")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace cart state")
	}
	return nil
}

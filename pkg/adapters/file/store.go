package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/serialization"
)

// ErrInvalidSlot is returned for slot IDs that are empty or would escape the base directory.
var ErrInvalidSlot = errors.New("invalid save slot ID")

// Store implements ports.HistoryStore using the local filesystem.
// Each save slot is one file in BasePath.
type Store struct {
	BasePath   string
	serializer *serialization.Serializer
}

// Option configures a Store.
type Option func(*Store)

// WithSerializer sets the on-disk format. The default is JSON.
func WithSerializer(s *serialization.Serializer) Option {
	return func(st *Store) {
		st.serializer = s
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".dialoguetree/saves".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".dialoguetree", "saves")
	}
	s := &Store{BasePath: basePath, serializer: serialization.JSON()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(slotID string) (string, error) {
	if slotID == "" || slotID != filepath.Base(slotID) || strings.HasPrefix(slotID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, slotID)
	}
	return filepath.Join(s.BasePath, slotID+s.serializer.Extension()), nil
}

// Save persists the records atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, slotID string, h domain.Histories) error {
	destPath, err := s.path(slotID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure save directory: %w", err)
	}

	data, err := s.serializer.Serialize(h)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+slotID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing save for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to save slot: %w", err)
	}
	return nil
}

// Load reads the records of a slot.
func (s *Store) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	filePath, err := s.path(slotID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var h domain.Histories
	if err := s.serializer.Deserialize(data, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if h == nil {
		h = domain.Histories{}
	}
	return h, nil
}

// Delete removes the slot file.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	filePath, err := s.path(slotID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// List returns every slot saved in the current format.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	ext := s.serializer.Extension()
	slots := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		slots = append(slots, strings.TrimSuffix(name, ext))
	}
	slices.Sort(slots)
	return slots, nil
}

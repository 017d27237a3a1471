package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"

	"github.com/oshokin/xolta-token/internal/constants"
	"github.com/oshokin/xolta-token/internal/logger"
)

// tempDirName is the directory, inside the base path, holding records being written.
const tempDirName = ".tmp"

// DiskStore keeps one file per record in a single directory.
// Records are written to a temporary file first and renamed into place.
type DiskStore struct {
	dv *diskv.Diskv
}

// NewDiskStore creates a store rooted at dir, creating the directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	tempDir := filepath.Join(dir, tempDirName)

	// Fail early when the cache directory cannot be created.
	if err := os.MkdirAll(tempDir, constants.PrivateFolderPermissions); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory: %w", ErrStorage, err)
	}

	// Simplest transform function: put all the data files into the base dir.
	flatTransform := func(string) []string { return []string{} }

	dv := diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    flatTransform,
		CacheSizeMax: 0,
		PathPerm:     constants.PrivateFolderPermissions,
		FilePerm:     constants.PrivateFilePermissions,
		TempDir:      tempDir,
	})

	return &DiskStore{dv: dv}, nil
}

// Load returns the record stored under key.
func (s *DiskStore) Load(ctx context.Context, key string) (*CachedToken, error) {
	filename := recordFilename(key)

	data, err := s.dv.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrStorage, filename, err)
	}

	var token CachedToken

	// Called directly so that malformed JSON is reported as ErrCorruptRecord too.
	if err = token.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrStorage, filename, err)
	}

	logger.Debugf(ctx, "Loaded token record %s expiring at %s", filename, token.ExpiresAt)

	return &token, nil
}

// Save replaces the record stored under key.
func (s *DiskStore) Save(ctx context.Context, key string, token CachedToken) error {
	filename := recordFilename(key)

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", ErrStorage, filename, err)
	}

	if err = s.dv.Write(filename, data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrStorage, filename, err)
	}

	logger.Debugf(ctx, "Saved token record %s expiring at %s", filename, token.ExpiresAt)

	return nil
}

// Delete removes the record stored under key.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	filename := recordFilename(key)

	if err := s.dv.Erase(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to delete %s: %w", ErrStorage, filename, err)
	}

	logger.Debugf(ctx, "Deleted token record %s", filename)

	return nil
}

// Path returns the location of the record stored under key.
func (s *DiskStore) Path(key string) string {
	return filepath.Join(s.dv.BasePath, recordFilename(key))
}

func recordFilename(key string) string {
	return key + constants.ExtensionTokenRecord
}

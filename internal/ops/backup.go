package ops

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BackupStore streams a full badger backup to a gzip archive at
// archivePath. Returns the version the backup covers up to.
func BackupStore(db *badger.DB, archivePath string) (uint64, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "." {
		return 0, fmt.Errorf("archivePath is required")
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	since, err := db.Backup(gz, 0)
	if err != nil {
		_ = gz.Close()
		return 0, fmt.Errorf("backup to %s: %w", archivePath, err)
	}
	if err := gz.Close(); err != nil {
		return 0, err
	}
	return since, nil
}

// RestoreStore loads a backup archive produced by BackupStore into db.
// Existing keys present in the archive are overwritten.
func RestoreStore(db *badger.DB, archivePath string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	if err := db.Load(gz, 16); err != nil {
		return fmt.Errorf("restore from %s: %w", archivePath, err)
	}
	return nil
}

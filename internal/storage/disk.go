package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// sqliteSideFiles are the suffixes SQLite appends for its journal files.
var sqliteSideFiles = []string{"-wal", "-shm", "-journal"}

// DatabaseFiles returns dbPath followed by the journal files SQLite may create next to it.
func DatabaseFiles(dbPath string) []string {
	files := []string{dbPath}
	for _, suffix := range sqliteSideFiles {
		files = append(files, dbPath+suffix)
	}
	return files
}

// DiskUsageBytes returns the total size of the given files and directories, walking
// directories recursively. Empty and missing paths count as 0.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
	}
	return total, nil
}

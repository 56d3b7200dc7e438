// Package backup keeps timestamped copies of the database file. A copy is
// taken before destructive operations such as the bulk import, and any copy
// can be restored later. Each backup is the raw database file plus a JSON
// sidecar with its metadata.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Metadata is the JSON sidecar stored next to each backup file.
type Metadata struct {
	CreatedAt time.Time
	Reason    string
	Source    string
	SizeBytes int64
}

// Backup is one entry of the backup listing.
type Backup struct {
	Name string
	Path string
	Metadata
}

// Manager creates, lists and restores database backups in one directory.
type Manager struct {
	dir string
}

// New creates a Manager for the given backup directory.
func New(dir string) *Manager {
	return &Manager{dir: dir}
}

// Create copies the database file into the backup directory and returns the
// backup name. The WAL is not copied; callers must close or checkpoint the
// database first.
func (m *Manager) Create(dbPath, reason string) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat database file: %w", err)
	}

	name := fmt.Sprintf("trade-%s.db", time.Now().Format("2006-01-02-150405"))
	path := filepath.Join(m.dir, name)
	if err := copyFile(dbPath, path); err != nil {
		return "", fmt.Errorf("failed to copy database file: %w", err)
	}

	meta := Metadata{
		CreatedAt: time.Now(),
		Reason:    reason,
		Source:    dbPath,
		SizeBytes: info.Size(),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup metadata: %w", err)
	}
	if err := os.WriteFile(metaPath(path), data, 0644); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write backup metadata: %w", err)
	}
	return name, nil
}

// List returns all backups in the directory, newest first. Backup files
// without a readable sidecar are listed with zero metadata.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		path := filepath.Join(m.dir, name)
		b := Backup{Name: name, Path: path}
		if data, err := os.ReadFile(metaPath(path)); err == nil {
			_ = json.Unmarshal(data, &b.Metadata)
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Restore copies a backup over the database file. The previous database file
// is kept aside as <dbPath>.bak until the copy succeeds.
func (m *Manager) Restore(name, dbPath string) error {
	src := filepath.Join(m.dir, name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup %s not found: %w", name, err)
	}

	keep := dbPath + ".bak"
	if _, err := os.Stat(dbPath); err == nil {
		if err := os.Rename(dbPath, keep); err != nil {
			return fmt.Errorf("failed to set aside current database: %w", err)
		}
	}

	if err := copyFile(src, dbPath); err != nil {
		// Put the original back.
		if _, statErr := os.Stat(keep); statErr == nil {
			_ = os.Rename(keep, dbPath)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	_ = os.Remove(keep)
	return nil
}

// Cleanup removes the oldest backups beyond the given number of kept entries.
func (m *Manager) Cleanup(keep int) error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	if keep < 0 || len(backups) <= keep {
		return nil
	}

	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete backup %s: %w", b.Name, err)
		}
		_ = os.Remove(metaPath(b.Path))
	}
	return nil
}

func metaPath(backupPath string) string {
	return strings.TrimSuffix(backupPath, ".db") + ".json"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

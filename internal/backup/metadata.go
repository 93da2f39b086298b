package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/catdogtool/catdog/internal/errors"
)

// writeSidecar persists the metadata record next to its backup copy.
// The sidecar is written to a temporary name in the same directory and
// renamed into place so a concurrent reader never sees a partial file.
func writeSidecar(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize metadata: %w", err)
	}
	data = append(data, '\n')

	target := sidecarPath(rec.BackupPath)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".sidecar-*")
	if err != nil {
		return fmt.Errorf("create sidecar temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close sidecar: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod sidecar: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish sidecar: %w", err)
	}
	return nil
}

// loadSidecar reads and validates the metadata for a backup copy.
// An absent sidecar yields ErrMetadataNotFound; a present but unparsable or
// invalid one yields ErrMetadataMalformed. The health auditor distinguishes
// the two.
func loadSidecar(backupPath string) (*Record, error) {
	path := sidecarPath(backupPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, apperrors.ErrMetadataNotFound)
		}
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, apperrors.ErrMetadataMalformed)
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, apperrors.ErrMetadataMalformed)
	}
	return &rec, nil
}

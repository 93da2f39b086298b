// Package errors provides sentinel errors for the catdog backup engine.
// Callers discriminate failure kinds with errors.Is so the CLI can map each
// one to concrete user guidance.
package errors

import "errors"

// Backup creation errors
var (
	// ErrSourceNotFound is returned when the file to back up does not exist.
	ErrSourceNotFound = errors.New("source file does not exist")

	// ErrNotRegularFile is returned when the backup target is a directory,
	// symlink or other non-regular file.
	ErrNotRegularFile = errors.New("path is not a regular file")

	// ErrPermissionDenied is returned when the source or backup tree cannot
	// be accessed with the current privileges.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTimestampCollision is returned when a backup of the same file
	// already exists for the current second. The caller should retry.
	ErrTimestampCollision = errors.New("backup already exists for this timestamp")
)

// Metadata errors
var (
	// ErrMetadataNotFound is returned when a backup copy has no sidecar.
	ErrMetadataNotFound = errors.New("backup metadata not found")

	// ErrMetadataMalformed is returned when a sidecar exists but cannot be
	// parsed or fails validation.
	ErrMetadataMalformed = errors.New("backup metadata is malformed")
)

// Restore errors
var (
	// ErrModifiedSinceBackup is returned when the live file no longer
	// matches the backup content and force was not requested.
	ErrModifiedSinceBackup = errors.New("original file has been modified since backup")

	// ErrRestoreVerificationFailed is returned when the restored file's
	// checksum does not match the record after the write already happened.
	ErrRestoreVerificationFailed = errors.New("restored file failed checksum verification")
)

// Audit errors
var (
	// ErrChecksumMismatch is returned when a stored backup copy no longer
	// matches its recorded checksum.
	ErrChecksumMismatch = errors.New("backup checksum mismatch")

	// ErrUnhealthyBackups is returned by the health check when corrupted
	// backups were found, so schedulers see a nonzero exit.
	ErrUnhealthyBackups = errors.New("backup health check found issues")

	// ErrDrillFailed is returned when any restoration drill target failed.
	ErrDrillFailed = errors.New("restoration drill found unrestorable backups")
)

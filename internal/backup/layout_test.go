package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirNameFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/etc/fstab", "etc_fstab"},
		{"/etc/systemd/system.conf", "etc_systemd_system.conf"},
		{"/a/b", "a_b"},
		{"/a_b", "a__b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dirNameFor(tt.path), "path %s", tt.path)
	}
}

func TestDirNameFor_NoCollisions(t *testing.T) {
	// Paths differing only in separator vs literal underscore must map to
	// distinct directories.
	paths := []string{"/a/b", "/a_b", "/a/b/c", "/a_b/c", "/a/b_c", "/a__b"}
	seen := make(map[string]string)
	for _, p := range paths {
		name := dirNameFor(p)
		prev, dup := seen[name]
		assert.False(t, dup, "%s and %s both map to %s", p, prev, name)
		seen[name] = p
	}
}

func TestDirNameFor_Pure(t *testing.T) {
	assert.Equal(t, dirNameFor("/etc/fstab"), dirNameFor("/etc/fstab"))
}

func TestBackupFileName(t *testing.T) {
	name := backupFileName("fstab", "20260830_120000")
	assert.Equal(t, "fstab.backup.20260830_120000", name)
	assert.True(t, isBackupCopy(name))
	assert.False(t, isBackupCopy(sidecarPath(name)))
	assert.Equal(t, "20260830_120000", timestampOf(name))
}

func TestTimestampOf_NotABackup(t *testing.T) {
	assert.Equal(t, "", timestampOf("fstab"))
}

package state

import (
	"os"
)

// OSFilesystem implements Filesystem against the local disk.
type OSFilesystem struct{}

var _ Filesystem = OSFilesystem{}

// Exists reports whether path names an existing regular file.
func (OSFilesystem) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteFile writes data to path, truncating any previous content.
func (OSFilesystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

package common

import (
	"os"
	"path/filepath"
	"time"
)

// Now returns the current unix time in seconds.
func Now() int64 {
	return time.Now().Unix()
}

// FileExist checks if a file exists at filePath.
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// CurrentDir returns the directory of the running executable.
func CurrentDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// AbsolutePath returns datadir + filename, or filename if it is absolute.
func AbsolutePath(datadir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(datadir, filename)
}

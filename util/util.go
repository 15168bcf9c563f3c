package util

import (
	"os"

	"github.com/pkg/errors"
)

// FileExists checks if a file exists at the given path and is not a directory.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists at the given path.
func DirExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// PathExists reports whether anything exists at the given path.
// Errors other than "not exist" (e.g. permission denied) are returned.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureDir creates a directory and all its parents if they don't exist.
func EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dirPath)
	}
	return nil
}

// FirstNonEmpty returns the first non-empty string from a list of strings.
// If all strings are empty, it returns an empty string.
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}

// GetenvOrDefault retrieves the value of the environment variable named by
// the key. If the variable is not present or empty, it returns defaultValue.
func GetenvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

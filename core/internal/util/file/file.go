package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath cleans a path and converts "\" → "/".
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	clean := filepath.Clean(path)
	return strings.ReplaceAll(clean, "\\", "/")
}

func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func IsDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

func IsFile(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

func CreateDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func WriteTextFile(path string, content string) error {
	if err := CreateDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// WriteFileAtomic replaces path with data. The data is written to a
// temporary file in the same directory and renamed into place, so readers
// see either the old or the new content, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// MoveMissing moves the tree under src into dst without overwriting
// anything: directories present on both sides are merged, files already
// present in dst are left alone. It returns the paths (relative to dst)
// that were skipped because they already existed.
func MoveMissing(src, dst string) ([]string, error) {
	if err := CreateDir(dst); err != nil {
		return nil, err
	}
	var skipped []string
	err := moveMissing(src, dst, "", &skipped)
	return skipped, err
}

func moveMissing(src, dst, rel string, skipped *[]string) error {
	entries, err := os.ReadDir(filepath.Join(src, rel))
	if err != nil {
		return err
	}
	for _, e := range entries {
		entryRel := filepath.Join(rel, e.Name())
		from := filepath.Join(src, entryRel)
		to := filepath.Join(dst, entryRel)

		if !Exists(to) {
			if err := os.Rename(from, to); err != nil {
				return fmt.Errorf("failed to move %s: %w", entryRel, err)
			}
			continue
		}
		if e.IsDir() && IsDir(to) {
			if err := moveMissing(src, dst, entryRel, skipped); err != nil {
				return err
			}
			continue
		}
		*skipped = append(*skipped, filepath.ToSlash(entryRel))
	}
	return nil
}

// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// FindTemplates recursively searches root on fsys for template files and
// returns their slash-separated paths relative to root, sorted. Files and
// directories matching any of the doublestar exclude patterns are skipped;
// patterns are matched against the relative path.
func FindTemplates(fsys afero.Fs, root string, exclude []string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %q is not a directory", root)
	}

	var files []string
	err = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, exclude) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

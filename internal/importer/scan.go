package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ScanDir collects the marker files below root as if root had been picked
// in a folder chooser: every path starts with root's base name.
func ScanDir(root string) ([]File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return ScanFS(os.DirFS(abs), filepath.Base(abs))
}

// ScanFS collects the marker files in fsys, prefixing each path with prefix.
// Results are in walk order.
func ScanFS(fsys fs.FS, prefix string) ([]File, error) {
	matches, err := doublestar.Glob(fsys, "**/"+MarkerFile)
	if err != nil {
		return nil, fmt.Errorf("scanning for %s: %w", MarkerFile, err)
	}

	files := make([]File, 0, len(matches))
	for _, m := range matches {
		// Case-insensitive filesystems can report skill.md for the pattern.
		if path.Base(m) != MarkerFile {
			continue
		}
		rel := m
		files = append(files, File{
			Path: path.Join(prefix, rel),
			Read: func() ([]byte, error) {
				return fs.ReadFile(fsys, rel)
			},
		})
	}
	return files, nil
}

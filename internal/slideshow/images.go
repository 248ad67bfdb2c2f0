package slideshow

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Extensions lists the file extensions picked up by Scan. Matching is
// case-sensitive.
var Extensions = []string{".png", ".jpg", ".jpeg"}

// ImageSet is the sorted, immutable list of slideshow images
type ImageSet struct {
	paths []string
}

// NewImageSet builds a set from explicit paths, sorted lexicographically
func NewImageSet(paths []string) *ImageSet {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	return &ImageSet{paths: sorted}
}

// Scan lists the images directly inside dir. Subdirectories are not
// descended into. A missing directory yields an empty set.
func Scan(ctx context.Context, dir string) (*ImageSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewImageSet(nil), nil
		}
		return nil, fmt.Errorf("failed to stat images dir: %w", err)
	}
	if !info.IsDir() {
		return NewImageSet(nil), nil
	}

	root := filepath.Clean(dir)

	// fastwalk invokes the callback from several goroutines
	var (
		mu    sync.Mutex
		found []string
	)

	conf := fastwalk.DefaultConfig
	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if filepath.Clean(path) == root {
				return nil
			}
			return fs.SkipDir
		}
		// Hidden files are not slides
		if strings.HasPrefix(d.Name(), ".") || !hasImageExtension(d.Name()) {
			return nil
		}
		mu.Lock()
		found = append(found, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan images dir: %w", err)
	}

	return NewImageSet(found), nil
}

func hasImageExtension(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Len returns the number of images
func (s *ImageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Empty reports whether there is nothing to show
func (s *ImageSet) Empty() bool { return s.Len() == 0 }

// Paths returns a copy of the image paths
func (s *ImageSet) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// At returns the path for index i taken modulo the set length
func (s *ImageSet) At(i int) (string, bool) {
	n := s.Len()
	if n == 0 {
		return "", false
	}
	return s.paths[((i%n)+n)%n], true
}

package screenshots

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Capture is a screenshot found on disk.
type Capture struct {
	Path    string
	Name    string
	TakenAt time.Time
	Size    int64
}

// ListCaptures returns screenshots in dir, newest first. A limit <= 0 returns all.
// A missing directory yields no captures.
func ListCaptures(dir string, limit int) ([]Capture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read save path: %w", err)
	}

	captures := make([]Capture, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		taken, ok := parseTakenAt(name)
		if !ok {
			taken = info.ModTime()
		}
		captures = append(captures, Capture{
			Path:    filepath.Join(dir, name),
			Name:    name,
			TakenAt: taken,
			Size:    info.Size(),
		})
	}

	sort.SliceStable(captures, func(i, j int) bool {
		if captures[i].TakenAt.Equal(captures[j].TakenAt) {
			return captures[i].Name > captures[j].Name
		}
		return captures[i].TakenAt.After(captures[j].TakenAt)
	})
	if limit > 0 && len(captures) > limit {
		captures = captures[:limit]
	}
	return captures, nil
}

func parseTakenAt(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileExt)
	if len(stamp) < len(FileTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(FileTimeLayout, stamp[:len(FileTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

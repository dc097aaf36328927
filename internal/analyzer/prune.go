package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PruneCharts removes chart PNGs in dir last written before cutoff and
// returns how many were deleted. Other files are left alone.
func PruneCharts(dir string, cutoff time.Time) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "chart_*.png"))
	if err != nil {
		return 0, fmt.Errorf("list charts: %w", err)
	}

	removed := 0
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
		removed++
	}
	return removed, nil
}

package region

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// World is the set of region files found in one directory.
type World struct {
	Dir     string
	Regions []*Region
}

// OpenWorld opens the header of every region file in dir concurrently. Files
// whose names are not region names are skipped, as are files that fail to
// open; the failures are logged and returned joined alongside the world.
func OpenWorld(dir string, opts ...Option) (*World, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	logger := newRegion(0, 0, opts).logger

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, err := ParseFilename(entry.Name()); err != nil {
			logger.Debug("skipping file", "name", entry.Name())
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		regions []*Region
		errs    []error
	)
	wg.Add(len(paths))
	for _, path := range paths {
		go func(path string) {
			defer wg.Done()
			r, err := Open(path, opts...)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("unable to read region", "path", path, "error", err)
				errs = append(errs, err)
				return
			}
			regions = append(regions, r)
		}(path)
	}
	wg.Wait()

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Z != regions[j].Z {
			return regions[i].Z < regions[j].Z
		}
		return regions[i].X < regions[j].X
	})
	logger.Info("discovered regions", slog.String("dir", dir), slog.Int("regions", len(regions)))

	return &World{Dir: dir, Regions: regions}, errors.Join(errs...)
}

// Region returns the region at region coordinates x, z, or nil.
func (w *World) Region(x, z int) *Region {
	for _, r := range w.Regions {
		if r.X == x && r.Z == z {
			return r
		}
	}

	return nil
}

// ChunkCount returns the number of filled slots across all regions.
func (w *World) ChunkCount() int {
	n := 0
	for _, r := range w.Regions {
		n += r.header.CountOccupied()
	}

	return n
}

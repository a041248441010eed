package region

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

var filenamePattern = regexp.MustCompile(`^r\.(-?[0-9]+)\.(-?[0-9]+)\.(mca|mcr)$`)

// ParseFilename extracts region coordinates from a path whose base name is
// r.<x>.<z>.mca (or the legacy .mcr).
func ParseFilename(path string) (x, z int, err error) {
	name := filepath.Base(path)
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	if x, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	if z, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}

	return x, z, nil
}

// Filename returns the file name of the region at x, z.
func Filename(x, z int) string {
	return fmt.Sprintf("r.%d.%d.mca", x, z)
}

// Package reveal shows a bundle in the platform file viewer.
package reveal

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupported is returned on platforms without a file viewer integration
var ErrUnsupported = errors.New("reveal is only supported on macOS")

// InFileViewer selects path in Finder
func InFileViewer(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot reveal %s: %w", path, err)
	}
	return selectFile(path)
}

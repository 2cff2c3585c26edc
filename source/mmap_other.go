//go:build !unix

package source

import (
	"fmt"
	"os"
)

// mapFile reads the whole file on platforms without mmap support.
func mapFile(path string) ([]byte, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, func() {}, nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInputFileNotFound is returned by ReadItemsFile for a missing file.
var ErrInputFileNotFound = errors.New("input file not found")

// ReadPasted reads item names one per line until an empty line or EOF.
// Names are trimmed; a line holding only whitespace is skipped.
func ReadPasted(r *bufio.Reader) ([]string, error) {
	var names []string
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read items: %w", err)
		}

		raw := strings.TrimRight(line, "\r\n")
		if raw == "" {
			return names, nil
		}
		if name := strings.TrimSpace(raw); name != "" {
			names = append(names, name)
		}
		if err != nil {
			return names, nil
		}
	}
}

// ReadItemsFile reads every non-empty line of path as an item name.
func ReadItemsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrInputFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

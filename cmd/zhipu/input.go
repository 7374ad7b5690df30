package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// readLines returns the non-blank lines of path, or of stdin for "-".
func readLines(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// collectInputs merges repeated flag values with lines read from files.
func collectInputs(values, files []string, stdin io.Reader) ([]string, error) {
	out := append([]string(nil), values...)
	for _, path := range files {
		lines, err := readLines(path, stdin)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

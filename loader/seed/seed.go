package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadSeedFile reads one document per line. Blank lines and lines starting
// with # are skipped.
func LoadSeedFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return ReadSeed(f)
}

func ReadSeed(r io.Reader) ([]string, error) {
	var docs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		docs = append(docs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return docs, nil
}

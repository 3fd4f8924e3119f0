package services

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadAPIKey returns the first line of the key file without its line ending.
func ReadAPIKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read api key %q: %w", path, err)
	}

	key := strings.TrimRight(line, "\r\n")
	if key == "" {
		return "", fmt.Errorf("read api key %q: first line is empty", path)
	}
	return key, nil
}

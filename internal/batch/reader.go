// Package batch reads word list files used to preload the quiz pool.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadWordFile reads words from a file, one per line.
// Supported line formats:
//   - a single word or phrase: "apple"
//   - a word with a note, the note is ignored: "apple = fruit"
//   - comments starting with '#' and blank lines are skipped
func ReadWordFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file %s: %w", filename, err)
	}
	return words, nil
}

// ReadWords parses a word list from r
func ReadWords(r io.Reader) ([]string, error) {
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := parseLine(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func parseLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	if word, _, found := strings.Cut(line, "="); found {
		line = strings.TrimSpace(word)
	}
	return line
}

package internal

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
	"unicode"
)

// Version is the vocabquiz release version
const Version = "0.4.0"

// WordSeed derives a stable seed from a word, so generated image URLs are the
// same on every run and can be cached by the browser.
func WordSeed(word string) uint32 {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(word))))
	return binary.BigEndian.Uint32(hash[:4])
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// RecordIDSize is the length of every persisted record id.
	RecordIDSize = 21
	// SuffixSize is used where an id only disambiguates a file name.
	SuffixSize = 8

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID returns a record id.
func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, RecordIDSize)
}

// NanoIDSize returns an id of the given length drawn from the record id
// alphabet. Lengths outside 1..64 are rejected.
func NanoIDSize(size int) (string, error) {
	if size < 1 || size > 64 {
		return "", fmt.Errorf("id size must be between 1 and 64, got %d", size)
	}

	return gonanoid.Generate(idAlphabet, size)
}

// Suffix returns a short id for file names and object keys.
func Suffix() string {
	return gonanoid.MustGenerate(idAlphabet, SuffixSize)
}

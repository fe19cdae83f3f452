// Package idgen generates block instance ids: the block id, an underscore and
// a short nanoid suffix ("createAsset_x7Kp2mQa9c").
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set of the random suffix.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters after the prefix.
var Length = 10

// Generator produces unique ids for a block id.
type Generator interface {
	InstanceID(blockID string) (string, error)
}

// Nanoid is the default Generator.
type Nanoid struct{}

// InstanceID returns blockID + "_" + a random suffix.
func (Nanoid) InstanceID(blockID string) (string, error) {
	return GenerateWithPrefix(blockID + "_")
}

// GenerateWithPrefix returns a new unique id with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Sequence is a deterministic Generator for tests and fixtures:
// "init_1", "createAsset_2", ...
type Sequence struct{ n int }

func (s *Sequence) InstanceID(blockID string) (string, error) {
	s.n++
	return fmt.Sprintf("%s_%d", blockID, s.n), nil
}

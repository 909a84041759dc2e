package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString produces a stable hex digest for cache keys and chunk IDs.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

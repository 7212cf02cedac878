package hash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashBytes returns the hex xxHash of data. Artifacts are hashed from their
// serialized bytes before they reach the disk.
func HashBytes(data []byte) string {
	return hex.EncodeToString(sum(data))
}

// HashFile streams a file through xxHash. The result matches HashBytes of
// the file's content.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXHashFunc adapts xxHash to the go-merkletree hash function signature.
func XXHashFunc(data []byte) ([]byte, error) {
	return sum(data), nil
}

func sum(data []byte) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(data))
	return buf
}

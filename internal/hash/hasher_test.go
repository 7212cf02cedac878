package hash

import (
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func expectedHash(data []byte) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(data))
	return hex.EncodeToString(buf)
}

func TestHashBytes(t *testing.T) {
	content := []byte(`{"id":"abc"}`)
	if got := HashBytes(content); got != expectedHash(content) {
		t.Errorf("Hash mismatch: expected %s, got %s", expectedHash(content), got)
	}
	if HashBytes(content) == HashBytes([]byte(`{"id":"abd"}`)) {
		t.Error("Different content should produce different hashes")
	}
}

func TestHashFile_MatchesHashBytes(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	data := make([]byte, 1024*1024)
	for i := range data {
		data[i] = byte(i % 256)
	}
	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != HashBytes(data) {
		t.Errorf("Hash mismatch: expected %s, got %s", HashBytes(data), got)
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	_, err := HashFile("/nonexistent/file.json")
	if err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
}

func TestHashFile_EmptyFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(testFile, nil, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != HashBytes(nil) {
		t.Errorf("Expected empty hash %s, got %s", HashBytes(nil), got)
	}
}

func TestXXHashFunc(t *testing.T) {
	hashBytes, err := XXHashFunc([]byte("test data"))
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}
	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}
	if hex.EncodeToString(hashBytes) != HashBytes([]byte("test data")) {
		t.Error("XXHashFunc and HashBytes should agree")
	}
}

func TestRootHash(t *testing.T) {
	hashes := []string{HashBytes([]byte("a")), HashBytes([]byte("b")), HashBytes([]byte("c"))}

	root, err := RootHash(hashes)
	if err != nil {
		t.Fatalf("RootHash failed: %v", err)
	}
	again, err := RootHash(hashes)
	if err != nil {
		t.Fatalf("RootHash failed: %v", err)
	}
	if root != again {
		t.Error("RootHash should be deterministic")
	}

	changed, err := RootHash([]string{hashes[0], hashes[1], HashBytes([]byte("d"))})
	if err != nil {
		t.Fatalf("RootHash failed: %v", err)
	}
	if changed == root {
		t.Error("Changing a leaf should change the root")
	}

	swapped, err := RootHash([]string{hashes[1], hashes[0], hashes[2]})
	if err != nil {
		t.Fatalf("RootHash failed: %v", err)
	}
	if swapped == root {
		t.Error("Reordering leaves should change the root")
	}
}

func TestRootHash_SmallInputs(t *testing.T) {
	empty, err := RootHash(nil)
	if err != nil {
		t.Fatalf("RootHash failed on empty input: %v", err)
	}
	single, err := RootHash([]string{HashBytes([]byte("a"))})
	if err != nil {
		t.Fatalf("RootHash failed on single input: %v", err)
	}
	if empty == "" || single == "" || empty == single {
		t.Errorf("Unexpected roots: empty=%q single=%q", empty, single)
	}
}

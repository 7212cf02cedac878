package hash

import (
	"encoding/hex"
	"fmt"

	mt "github.com/txaty/go-merkletree"
)

type leaf []byte

func (l leaf) Serialize() ([]byte, error) {
	return l, nil
}

// RootHash folds an ordered list of hashes into a merkle root. Callers must
// pass the hashes in a stable order; the root depends on it.
func RootHash(hashes []string) (string, error) {
	switch len(hashes) {
	case 0:
		return HashBytes(nil), nil
	case 1:
		return HashBytes([]byte(hashes[0])), nil
	}

	blocks := make([]mt.DataBlock, 0, len(hashes))
	for _, h := range hashes {
		blocks = append(blocks, leaf(h))
	}

	tree, err := mt.New(&mt.Config{HashFunc: XXHashFunc}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build merkle tree: %w", err)
	}
	return hex.EncodeToString(tree.Root), nil
}

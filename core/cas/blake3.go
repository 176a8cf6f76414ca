package cas

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Hashes holds both digests of a stored blob.
type Hashes struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

type blake3Pointer struct {
	SHA256 string `json:"sha256"`
}

// PutWithBlake3 stores data and records a BLAKE3 pointer to it.
func (s *Store) PutWithBlake3(data []byte) (Hashes, error) {
	sha, err := s.Put(data)
	if err != nil {
		return Hashes{}, err
	}
	b3 := Blake3Hash(data)
	path := s.pointerPath(b3)
	if _, err := os.Stat(path); err != nil {
		ptr, err := json.Marshal(blake3Pointer{SHA256: sha})
		if err != nil {
			return Hashes{}, fmt.Errorf("failed to marshal pointer: %w", err)
		}
		if err := writeAtomic(path, ptr); err != nil {
			return Hashes{}, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
		}
	}
	return Hashes{SHA256: sha, BLAKE3: b3}, nil
}

// LookupBlake3 returns the SHA-256 hash a BLAKE3 pointer refers to.
func (s *Store) LookupBlake3(b3 string) (string, error) {
	if !isValidHash(b3) {
		return "", ErrInvalidHash
	}
	data, err := os.ReadFile(s.pointerPath(b3))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrBlobNotFound
		}
		return "", fmt.Errorf("failed to read pointer: %w", err)
	}
	var ptr blake3Pointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return "", fmt.Errorf("failed to parse pointer: %w", err)
	}
	return ptr.SHA256, nil
}

// GetByBlake3 retrieves a blob by its BLAKE3 hash.
func (s *Store) GetByBlake3(b3 string) ([]byte, error) {
	sha, err := s.LookupBlake3(b3)
	if err != nil {
		return nil, err
	}
	return s.Get(sha)
}

// pointerPath returns <root>/blobs/blake3/<first2>/<hash>.json.
func (s *Store) pointerPath(b3 string) string {
	return filepath.Join(s.root, "blobs", "blake3", b3[:2], b3+".json")
}

// Blake3Hash computes the BLAKE3 hash of the given data without storing it.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

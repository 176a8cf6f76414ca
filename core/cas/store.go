// Package cas provides content-addressed storage for collation table snapshots.
// Blobs are addressed by the SHA-256 of their uncompressed content and kept
// xz-compressed on disk.
package cas

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ulikunitz/xz"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

var (
	xzNewWriter = xz.NewWriter
	xzNewReader = xz.NewReader
)

// ErrBlobNotFound is returned when a blob with the given hash does not exist.
var ErrBlobNotFound = fmt.Errorf("blob %w", apperrors.ErrNotFound)

// ErrInvalidHash is returned when a hash string is not a lowercase 64-digit hex string.
var ErrInvalidHash = errors.New("invalid hash format")

// ErrCorrupt is returned when a stored blob no longer matches its hash.
var ErrCorrupt = errors.New("blob content does not match its hash")

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store is a content-addressed blob store rooted at a directory.
type Store struct {
	root string
}

// NewStore creates a store at root, creating its directories if needed.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"sha256", "blake3"} {
		if err := os.MkdirAll(filepath.Join(root, "blobs", dir), 0755); err != nil {
			return nil, apperrors.NewIO("mkdir", root, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Put compresses and stores data, returning its SHA-256 hash. Storing the
// same content twice is a no-op.
func (s *Store) Put(data []byte) (string, error) {
	hash := Hash(data)
	path := s.pathForHash(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	var buf bytes.Buffer
	w, err := xzNewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return hash, nil
}

// Get returns the uncompressed blob with the given SHA-256 hash.
func (s *Store) Get(hash string) ([]byte, error) {
	if !isValidHash(hash) {
		return nil, ErrInvalidHash
	}

	f, err := os.Open(s.pathForHash(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, apperrors.NewIO("open", hash, err)
	}
	defer f.Close()

	r, err := xzNewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if Hash(data) != hash {
		return nil, ErrCorrupt
	}
	return data, nil
}

// Exists checks if a blob with the given hash exists in the store.
func (s *Store) Exists(hash string) bool {
	if !isValidHash(hash) {
		return false
	}
	_, err := os.Stat(s.pathForHash(hash))
	return err == nil
}

// pathForHash returns <root>/blobs/sha256/<first2>/<hash>.xz.
func (s *Store) pathForHash(hash string) string {
	return filepath.Join(s.root, "blobs", "sha256", hash[:2], hash+".xz")
}

// writeAtomic writes data to path through a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewIO("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return apperrors.NewIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewIO("close", tmpPath, err)
	}
	if err := osRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewIO("rename", path, err)
	}
	return nil
}

func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}

// Hash computes the SHA-256 hash of the given data without storing it.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

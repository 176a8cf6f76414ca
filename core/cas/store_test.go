package cas

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

// TestPutAndGet tests that storing a blob returns its SHA-256 and that
// retrieving by hash returns the exact same bytes.
func TestPutAndGet(t *testing.T) {
	store := newStore(t)
	data := []byte("in principio erat verbum")

	h := sha256.Sum256(data)
	want := hex.EncodeToString(h[:])

	hash, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if hash != want {
		t.Errorf("Put() = %s, want %s", hash, want)
	}
	if !store.Exists(hash) {
		t.Error("Exists() = false after Put")
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}

	// The blob on disk is compressed, not the raw content.
	raw, err := os.ReadFile(store.pathForHash(hash))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(raw, data) {
		t.Error("blob stored uncompressed")
	}
}

func TestPutDuplicate(t *testing.T) {
	store := newStore(t)
	h1, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := store.Put([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1, h2)
	}
}

func TestGetErrors(t *testing.T) {
	store := newStore(t)

	if _, err := store.Get("not-a-hash"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Get(invalid) error = %v, want ErrInvalidHash", err)
	}

	missing := Hash([]byte("missing"))
	_, err := store.Get(missing)
	if !errors.Is(err, ErrBlobNotFound) || !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrBlobNotFound", err)
	}
	if store.Exists(missing) || store.Exists("xyz") {
		t.Error("Exists() = true for missing blob")
	}
}

func TestGetDetectsCorruption(t *testing.T) {
	store := newStore(t)
	hash, err := store.Put([]byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathForHash(hash), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get() error = %v, want ErrCorrupt", err)
	}

	// Valid xz of the wrong content.
	other, err := store.Put([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(store.pathForHash(other))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathForHash(hash), blob, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(hash); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get() error = %v, want ErrCorrupt", err)
	}
}

func TestPutRenameError(t *testing.T) {
	store := newStore(t)
	orig := osRename
	defer func() { osRename = orig }()
	osRename = func(string, string) error { return errors.New("rename failed") }

	_, err := store.Put([]byte("x"))
	var ioErr *apperrors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Put() error = %v, want IOError", err)
	}
	entries, _ := filepath.Glob(filepath.Join(store.Root(), "blobs", "sha256", "*", ".tmp-*"))
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestBlake3Pointers(t *testing.T) {
	store := newStore(t)
	data := []byte("pointer target")

	hashes, err := store.PutWithBlake3(data)
	if err != nil {
		t.Fatalf("PutWithBlake3() error = %v", err)
	}
	if hashes.SHA256 != Hash(data) || hashes.BLAKE3 != Blake3Hash(data) {
		t.Errorf("PutWithBlake3() = %+v", hashes)
	}

	sha, err := store.LookupBlake3(hashes.BLAKE3)
	if err != nil || sha != hashes.SHA256 {
		t.Errorf("LookupBlake3() = %s, %v", sha, err)
	}
	got, err := store.GetByBlake3(hashes.BLAKE3)
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("GetByBlake3() = %q, %v", got, err)
	}

	if _, err := store.LookupBlake3(Blake3Hash([]byte("nope"))); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("LookupBlake3(missing) error = %v", err)
	}
	if _, err := store.LookupBlake3("bad"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("LookupBlake3(bad) error = %v", err)
	}
}

func TestSnapshots(t *testing.T) {
	store := newStore(t)
	ct := ctdata.New("la", []witness.Witness{
		{Siglum: "A", Tokens: witness.FromString("in principio")},
		{Siglum: "B", Tokens: witness.FromString("principio")},
	})
	ct.CollationMatrix = [][]int{{0, 2}, {ctdata.Empty, 0}}

	hashes, err := store.PutSnapshot(ct)
	if err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	got, err := store.GetSnapshot(hashes.SHA256)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if diff := cmp.Diff(ct, got); diff != "" {
		t.Errorf("GetSnapshot() mismatch (-want +got):\n%s", diff)
	}

	again, err := store.PutSnapshot(got)
	if err != nil {
		t.Fatal(err)
	}
	if again != hashes {
		t.Errorf("re-stored snapshot hashes = %+v, want %+v", again, hashes)
	}
}

// Package validation checks user-supplied witness and table files before they
// are parsed: path sanity, size limits and content sniffing.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Security limits to prevent resource exhaustion (CWE-400).
const (
	// MaxFileSize is the maximum accepted input file size (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
	ErrNotText          = errors.New("file is not text")
)

// ValidatePath checks a path for length limits and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// FileType is the kind of input a file holds.
type FileType string

const (
	FileTypeXML     FileType = "xml"
	FileTypeJSON    FileType = "json"
	FileTypeText    FileType = "text"
	FileTypeMarkup  FileType = "markup"
	FileTypeUnknown FileType = "unknown"

	// Binary formats that are never valid input.
	FileTypeGzip   FileType = "gzip"
	FileTypeXZ     FileType = "xz"
	FileTypeZip    FileType = "zip"
	FileTypeSQLite FileType = "sqlite"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{FileTypeSQLite, []byte("SQLite format 3")},
}

// FileTypeOf maps a file extension to the input type it should contain.
func FileTypeOf(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return FileTypeXML
	case ".json":
		return FileTypeJSON
	case ".txt":
		return FileTypeText
	case ".tx":
		return FileTypeMarkup
	default:
		return FileTypeUnknown
	}
}

// ValidateFileType sniffs the head of reader and checks that it holds text of the
// type its name claims. Binary content is rejected whatever the extension.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	expected := FileTypeOf(filename)
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, sig.fileType)
		}
	}
	if len(buf) > 0 && !isLikelyText(buf) {
		return FileTypeUnknown, ErrNotText
	}
	return expected, nil
}

// ReadInput validates path, enforces MaxFileSize and returns the file content
// together with its type.
func ReadInput(path string) ([]byte, FileType, error) {
	if err := ValidatePath(path); err != nil {
		return nil, FileTypeUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, FileTypeUnknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, FileTypeUnknown, err
	}
	if info.Size() > MaxFileSize {
		return nil, FileTypeUnknown, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, FileTypeUnknown, err
	}
	if len(data) > MaxFileSize {
		return nil, FileTypeUnknown, ErrFileTooLarge
	}
	ft, err := ValidateFileType(bytes.NewReader(data), path)
	if err != nil {
		return nil, FileTypeUnknown, err
	}
	return data, ft, nil
}

// isLikelyText reports whether buf looks like UTF-8 or ASCII text.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 lead and continuation bytes are neutral.
	}
	if printable == 0 {
		// Entirely non-ASCII UTF-8, e.g. Greek or Arabic without spaces.
		return control == 0
	}
	return float64(printable)/float64(printable+control) > 0.95
}

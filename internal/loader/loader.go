// Package loader handles reading CHIP-8 ROM files from disk, including ROMs
// stored inside compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions that identify a CHIP-8 ROM inside an archive.
var Extensions = []string{".ch8", ".c8", ".rom"}

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// maxROMSize limits how much data is read from a file or archive entry.
// It is well above the 3.5KB a CHIP-8 program can use, the interpreter
// reports the precise size error.
const maxROMSize = 64 * 1024

var (
	// ErrNoROMFile is returned when no ROM file is found in an archive.
	ErrNoROMFile = errors.New("no ROM file found in archive")

	// ErrFileTooLarge is returned when the file or extracted content exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Loader handles loading ROM files from disk.
type Loader struct {
	extensions []string
}

// New creates a new ROM loader that matches archive entries against the given
// extensions. Extensions defaults to the common CHIP-8 ROM extensions.
func New(extensions ...string) *Loader {
	if len(extensions) == 0 {
		extensions = Extensions
	}
	return &Loader{extensions: extensions}
}

// Load reads a ROM from a file path. Archives are detected by magic bytes or
// extension and the first entry with a matching ROM extension is extracted.
// Any other file is returned as-is, CHIP-8 ROMs have no header to check.
//
// Returns the ROM data, the file name (basename only, for display) and any error.
func (l *Loader) Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("reading file header: %w", err)
	}
	header = header[:n]

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("seeking file: %w", err)
	}

	switch detectFormat(header, path) {
	case formatZIP:
		return l.extractFromZIP(path)
	case format7z:
		return l.extractFrom7z(path)
	case formatGzip:
		return l.extractFromGzip(path)
	case formatRAR:
		return l.extractFromRAR(path)
	default:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("reading ROM: %w", err)
		}
		return data, filepath.Base(path), nil
	}
}

// detectFormat determines the file format based on magic bytes and extension.
func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return formatZIP
	case strings.HasSuffix(lower, ".7z"):
		return format7z
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		return formatGzip
	case strings.HasSuffix(lower, ".rar"):
		return formatRAR
	}
	return formatRaw
}

// isROMFile checks if a file name has one of the loader's ROM extensions.
func (l *Loader) isROMFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range l.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded.
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxROMSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

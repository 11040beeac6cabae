package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Path and size limits enforced before any file content is read.
const (
	MaxPathLength      = 260
	defaultDetectBytes = 50000
	bytesPerMB         = 1024 * 1024
)

// Loader validation errors.
var (
	ErrEmptyPath       = errors.New("file path cannot be empty")
	ErrPathTooLong     = errors.New("file path exceeds maximum length")
	ErrPathTraversal   = errors.New("path traversal is not allowed")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotFound        = errors.New("file not found")
	ErrNotFile         = errors.New("path is not a regular file")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
)

// LoadOptions bounds what the loader reads. Zero values select the
// defaults: 100 MB size cap, 50 KB encoding-detection prefix, unlimited
// rows.
type LoadOptions struct {
	MaxFileSizeMB int
	DetectBytes   int
	MaxRows       int // 0 means read all rows
}

// FileInfo describes the source file of a loaded table.
type FileInfo struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Encoding  string `json:"encoding"`
}

// ValidatePath checks a dataset path for emptiness, length, traversal,
// extension, and that it names an existing regular file.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("%w: %d characters", ErrPathTooLong, len(path))
	}

	clean := filepath.Clean(path)
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return ErrPathTraversal
		}
	}

	ext := strings.ToLower(filepath.Ext(clean))
	if ext != ".csv" && ext != ".tsv" {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	info, err := os.Stat(clean)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", clean, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFile, clean)
	}
	return nil
}

// detectEncoding sniffs the character encoding of a content prefix. Valid
// UTF-8 wins outright; otherwise detection falls through to the HTML
// heuristics (BOMs, meta prescan, windows-1252 fallback).
func detectEncoding(prefix []byte) (encoding.Encoding, string) {
	trimmed := prefix
	// The prefix may end mid-rune; drop an incomplete trailing sequence
	// before judging validity.
	for i := 0; i < utf8.UTFMax && len(trimmed) > 0; i++ {
		if utf8.Valid(trimmed) {
			return unicode.UTF8, "utf-8"
		}
		trimmed = trimmed[:len(trimmed)-1]
	}

	enc, name, _ := charset.DetermineEncoding(prefix, "text/csv")
	return enc, name
}

// LoadCSV loads a delimited text file into an in-memory Table. The file
// encoding is sniffed from a bounded prefix and the content decoded to
// UTF-8 before parsing. Rows whose field count does not match the header
// are skipped. TSV files are recognized by extension.
func LoadCSV(path string, opts LoadOptions) (*Table, *FileInfo, error) {
	if err := ValidatePath(path); err != nil {
		return nil, nil, err
	}

	maxSize := int64(opts.MaxFileSizeMB) * bytesPerMB
	if opts.MaxFileSizeMB <= 0 {
		maxSize = 100 * bytesPerMB
	}
	detectBytes := opts.DetectBytes
	if detectBytes <= 0 {
		detectBytes = defaultDetectBytes
	}

	clean := filepath.Clean(path)
	stat, err := os.Stat(clean)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", clean, err)
	}
	if stat.Size() > maxSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, stat.Size(), maxSize)
	}

	f, err := os.Open(clean)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", clean, err)
	}
	defer f.Close()

	// Sniff the encoding from a bounded prefix, then rewind for parsing.
	prefix := make([]byte, detectBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("read %s: %w", clean, err)
	}
	enc, encName := detectEncoding(prefix[:n])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek %s: %w", clean, err)
	}

	reader := csv.NewReader(transform.NewReader(f, enc.NewDecoder()))
	reader.FieldsPerRecord = -1
	if strings.ToLower(filepath.Ext(clean)) == ".tsv" {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", clean, err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue // skip malformed lines
			}
			return nil, nil, fmt.Errorf("read %s: %w", clean, err)
		}
		if len(record) != len(names) {
			continue
		}

		row := make([]any, len(record))
		for i, field := range record {
			row[i] = parseCell(field)
		}
		rows = append(rows, row)

		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			break
		}
	}

	table, err := NewTable(names, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("build table from %s: %w", clean, err)
	}

	info := &FileInfo{
		Path:      clean,
		SizeBytes: stat.Size(),
		Encoding:  encName,
	}
	return table, info, nil
}

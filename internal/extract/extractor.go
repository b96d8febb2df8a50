// Package extract turns document files into plain text for ingestion.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize bounds the files Extract will read.
const DefaultMaxFileSize = 64 << 20

// Extractor extracts plain text from document files.
type Extractor struct {
	maxSize int64
}

// NewExtractor returns an Extractor that refuses files larger than DefaultMaxFileSize.
func NewExtractor() *Extractor {
	return &Extractor{maxSize: DefaultMaxFileSize}
}

// Extract reads the file at path and returns its text content.
// Plain text files (.txt, .md, .rst and unknown extensions) are returned as-is
// with invalid UTF-8 replaced. PDF, XLSX, DOCX, ODT and RTF are decoded.
func (e *Extractor) Extract(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	if e.maxSize > 0 && info.Size() > e.maxSize {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", info.Size(), e.maxSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"); case is ignored.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".xlsx":
		return extractExcel(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractWithCat(content)
	default:
		return extractPlain(content)
	}
}

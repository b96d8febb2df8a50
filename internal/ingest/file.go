package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceName  = "source_name"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// IngestFile extracts text from the file at path and ingests it with
// source_path metadata. If allowedExts is non-empty the file's extension must
// be in the list (case-insensitive). extra metadata is merged in; the source
// keys take precedence.
func (c *Coordinator) IngestFile(ctx context.Context, path string, allowedExts []string, extra map[string]interface{}) (int64, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !ExtensionAllowed(ext, allowedExts) {
		return 0, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}

	text, err := c.extractContent(absPath)
	if err != nil {
		return 0, fmt.Errorf("extract content: %w", err)
	}
	text = Preprocess(text)
	if text == "" {
		return 0, fmt.Errorf("no text extracted from %s", absPath)
	}

	metadata := make(map[string]interface{}, len(extra)+4)
	for k, v := range extra {
		metadata[k] = v
	}
	metadata[metaKeySourcePath] = absPath
	metadata[metaKeySourceName] = filepath.Base(absPath)
	// Stored as strings; UnixNano exceeds float64 precision in JSON.
	metadata[metaKeySourceMtime] = strconv.FormatInt(info.ModTime().UnixNano(), 10)
	metadata[metaKeySourceSize] = strconv.FormatInt(info.Size(), 10)

	id, err := c.Ingest(ctx, text, metadata)
	if err != nil {
		return id, err
	}
	c.logger.Debug("File ingested", zap.String("path", absPath), zap.Int64("document_id", id))
	return id, nil
}

func (c *Coordinator) extractContent(path string) (string, error) {
	if c.extractor != nil {
		return c.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ExtensionAllowed reports whether ext is in allowed, ignoring case and leading dots.
func ExtensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

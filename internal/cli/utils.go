// Package cli provides output formatting and an API client for the deepsearch CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

const contentPreviewLen = 200

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for i, r := range response.Results {
			fmt.Fprintf(w, "%d. [%.4f] #%d %s\n", i+1, r.Score, r.ID, oneLine(utils.Truncate(r.Content, 80)))
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d results for %q in %dms\n\n", response.Total, response.Query, response.QueryTime)
		for i, r := range response.Results {
			writeOneResult(w, i+1, r)
		}
		return nil
	}
}

func writeOneResult(w io.Writer, rank int, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | ID: %d\n", rank, result.Score, result.ID)
	if meta := formatMetadata(result.Metadata); meta != "" {
		fmt.Fprintf(w, "Metadata: %s\n", meta)
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(result.Content, contentPreviewLen))
}

// WriteDocument writes a single document.
func WriteDocument(w io.Writer, result *models.SearchResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "ID: %d\n", result.ID)
	if meta := formatMetadata(result.Metadata); meta != "" {
		fmt.Fprintf(w, "Metadata: %s\n", meta)
	}
	fmt.Fprintf(w, "\n%s\n", result.Content)
	return nil
}

// WriteStatus writes the service status.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "Documents:       %d\n", status.Documents)
	fmt.Fprintf(w, "Indexed vectors: %d\n", status.IndexedVectors)
	fmt.Fprintf(w, "Orphans:         %d\n", status.Orphans)
	fmt.Fprintf(w, "Dimensions:      %d\n", status.Dimensions)
	if status.EmbeddingProvider != "" {
		fmt.Fprintf(w, "Embedding:       %s (%s)\n", status.EmbeddingProvider, status.EmbeddingModel)
	}
	if status.DatabasePath != "" {
		fmt.Fprintf(w, "Database:        %s\n", status.DatabasePath)
	}
	if status.IndexPath != "" {
		fmt.Fprintf(w, "Index:           %s\n", status.IndexPath)
	}
	if status.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "Disk usage:      %s\n", FormatBytes(status.DiskUsageBytes))
	}
	for _, d := range status.WatchDirectories {
		fmt.Fprintf(w, "Watching:        %s\n", d)
	}
	if status.Orphans > 0 {
		fmt.Fprintln(w, "\nSome documents are not searchable; run 'deepsearch repair'.")
	}
	return nil
}

// WriteRepairReport writes the outcome of a repair run.
func WriteRepairReport(w io.Writer, report *ingest.RepairReport, dryRun bool, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	if dryRun {
		fmt.Fprintf(w, "%d orphaned documents", len(report.Orphans))
		if len(report.Orphans) > 0 {
			fmt.Fprintf(w, ": %s", joinIDs(report.Orphans))
		}
		fmt.Fprintln(w)
		return nil
	}
	fmt.Fprintf(w, "Checked %d documents: %d orphaned, %d repaired, %d failed",
		report.Checked, len(report.Orphans), report.Repaired, report.Failed)
	if report.Skipped > 0 {
		fmt.Fprintf(w, ", %d already indexed", report.Skipped)
	}
	fmt.Fprintln(w)
	return nil
}

// FormatBytes renders n in binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatMetadata(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

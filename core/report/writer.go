package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Artifact file names inside the output directory.
const (
	FailuresFile = "failures.csv"
	ReportFile   = "sync_report.md"
	SummaryFile  = "summary.json"
)

// MaxReportFailures caps the failures listed in the markdown report.
const MaxReportFailures = 20

var failureHeader = []string{"sku", "error", "stage", "service", "operation"}

// WriteFailuresCSV writes failures with a header row.
func WriteFailuresCSV(w io.Writer, failures []Failure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(failureHeader); err != nil {
		return err
	}
	for _, f := range failures {
		row := []string{f.SKU, f.Error, f.Stage, string(f.Backend), string(f.Operation)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMarkdown writes the human-readable run report.
func RenderMarkdown(w io.Writer, s Summary) error {
	var b strings.Builder

	title := "Catalog Sync Report"
	if s.DryRun {
		title += " (DRY RUN)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Run:** %s\n", s.RunID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary Statistics\n\n")
	b.WriteString("| Metric | Count |\n|--------|-------|\n")
	rows := []struct {
		name  string
		value int
	}{
		{"Total Rows", s.TotalRows},
		{"Processed Rows", s.ProcessedRows},
		{"Skipped Rows", s.SkippedRows},
		{"Retail Updates", s.Retail.Succeeded},
		{"Retail Unchanged", s.Retail.Unchanged},
		{"eCom Updates", s.Ecom.Succeeded},
		{"eCom Unchanged", s.Ecom.Unchanged},
		{"Errors", s.Errors},
		{"Warnings", len(s.Warnings)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", r.name, r.value)
	}

	b.WriteString("\n## Success Rate\n\n")
	fmt.Fprintf(&b, "- **Overall Success:** %s\n", percent(s.Updates(), s.ProcessedRows*2))
	fmt.Fprintf(&b, "- **Retail Success:** %s\n", percent(s.Retail.Succeeded, s.ProcessedRows))
	fmt.Fprintf(&b, "- **eCom Success:** %s\n", percent(s.Ecom.Succeeded, s.ProcessedRows))

	if len(s.Failures) > 0 {
		b.WriteString("\n## Errors and Failures\n\n")
		b.WriteString("| SKU | Service | Operation | Stage | Error |\n")
		b.WriteString("|-----|---------|-----------|-------|-------|\n")
		for i, f := range s.Failures {
			if i == MaxReportFailures {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", f.SKU, f.Backend, f.Operation, f.Stage, cell(f.Error))
		}
		if extra := len(s.Failures) - MaxReportFailures; extra > 0 {
			fmt.Fprintf(&b, "\n*... and %d more errors*\n", extra)
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for i, msg := range s.Warnings {
			if i == MaxReportFailures {
				fmt.Fprintf(&b, "- ... and %d more warnings\n", len(s.Warnings)-MaxReportFailures)
				break
			}
			fmt.Fprintf(&b, "- %s\n", cell(msg))
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	if s.Errors > 0 {
		fmt.Fprintf(&b, "- **Review Errors:** %d operations failed. See %s for the full list.\n", s.Errors, FailuresFile)
	}
	if s.SkippedRows > 0 {
		fmt.Fprintf(&b, "- **Skipped Rows:** %d rows were skipped for a missing SKU or no backend match.\n", s.SkippedRows)
	}
	if s.Updates() == 0 {
		b.WriteString("- **No Updates:** No successful updates were made. Check credentials and SKU resolution.\n")
	}

	b.WriteString("\n---\n*Report generated by catalog-sync*\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAll writes every artifact into dir and returns their paths.
// The failures file is only written when there are failures.
func WriteAll(dir string, s Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if len(s.Failures) > 0 {
		if err := write(FailuresFile, func(w io.Writer) error { return WriteFailuresCSV(w, s.Failures) }); err != nil {
			return written, err
		}
	}
	if err := write(ReportFile, func(w io.Writer) error { return RenderMarkdown(w, s) }); err != nil {
		return written, err
	}
	if err := write(SummaryFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}); err != nil {
		return written, err
	}
	return written, nil
}

func percent(n, total int) string {
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}

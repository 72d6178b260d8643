// Package export writes finished summaries to PDF reports.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dtnitsch/llm-web-summarizer/models"
)

// GeneratedLayout formats the report's generation time.
const GeneratedLayout = "1/2/2006, 3:04:05 PM"

const (
	reportTitle = "AI Summary Report"
	margin      = 20.0
)

// ErrNoSummary is returned when there is nothing to export.
var ErrNoSummary = errors.New("No summary to export")

// ExportError wraps any failure while building or saving a report.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return "PDF export failed: " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// FileSaver persists a finished report.
type FileSaver interface {
	SaveFile(name string, content []byte) (string, error)
}

// Exporter renders summaries as PDF files through a FileSaver.
type Exporter struct {
	files FileSaver
	now   func() time.Time
}

func NewExporter(files FileSaver) *Exporter {
	return &Exporter{files: files, now: time.Now}
}

// FileName is the report name for a summary exported at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("summary_%d.pdf", t.UnixMilli())
}

// Export writes result as a PDF report and returns the saved path. The
// result itself is not modified.
func (e *Exporter) Export(result *models.SummaryResult) (string, error) {
	if result == nil || result.FullText == "" {
		return "", ErrNoSummary
	}

	now := e.now()
	data, err := Render(result, now)
	if err != nil {
		return "", &ExportError{Err: err}
	}

	path, err := e.files.SaveFile(FileName(now), data)
	if err != nil {
		return "", &ExportError{Err: err}
	}
	return path, nil
}

// Render lays out the report: a centred title, the source, generation time
// and content type, then the summary wrapped to the page width.
func Render(result *models.SummaryResult, generated time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	// The core fonts are cp1252; anything outside it prints as '?'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(margin, 14)
	pdf.CellFormat(pageWidth-2*margin, 12, tr(reportTitle), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(margin, 35, tr("Source: "+result.Content.SourceURL))
	pdf.Text(margin, 42, tr("Generated: "+generated.Format(GeneratedLayout)))
	pdf.Text(margin, 49, tr("Content Type: "+strings.ToUpper(string(result.Content.Kind))))

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(margin, 60)
	pdf.MultiCell(pageWidth-2*margin, 6, tr(result.FullText), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

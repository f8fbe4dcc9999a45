package report

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
)

// Output lists the files a report was written to.
type Output struct {
	HTML  string `json:"html"`
	PDF   string `json:"pdf,omitempty"`
	Pages int    `json:"pages,omitempty"`
}

// Writer persists reports into a run's processed directory.
type Writer struct {
	pdf    PDFRenderer
	logger *slog.Logger
}

// NewWriter creates a writer. A nil renderer disables PDF output.
func NewWriter(renderer PDFRenderer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{pdf: renderer, logger: logger.With(slog.String("component", "report"))}
}

// Write renders report.html into dir and, when withPDF is set, prints it to
// report.pdf.
func (w *Writer) Write(ctx context.Context, dir string, r *Report, withPDF bool) (*Output, error) {
	var doc bytes.Buffer
	if err := RenderHTML(&doc, r); err != nil {
		return nil, apperrors.NewReportError("failed to render html", err)
	}

	out := &Output{HTML: filepath.Join(dir, exporter.ReportHTMLFile)}
	if err := exporter.WriteFile(out.HTML, func(dst io.Writer) error {
		_, err := dst.Write(doc.Bytes())
		return err
	}); err != nil {
		return nil, apperrors.NewStorageError("failed to write html report", err)
	}

	if !withPDF {
		return out, nil
	}
	if w.pdf == nil {
		return nil, apperrors.NewReportError("pdf output is not available", nil)
	}

	data, err := w.pdf.RenderPDF(ctx, doc.Bytes())
	if err != nil {
		return nil, apperrors.NewReportError("failed to print pdf", err)
	}
	info, err := Inspect(data)
	if err != nil {
		return nil, apperrors.NewReportError("printed pdf is unreadable", err)
	}
	if !strings.Contains(info.Text, "Quantitative Analysis") {
		w.logger.WarnContext(ctx, "Printed PDF text does not contain the report sections",
			slog.Int("pages", info.Pages))
	}

	out.PDF, out.Pages = filepath.Join(dir, exporter.ReportPDFFile), info.Pages
	if err := exporter.WriteFile(out.PDF, func(dst io.Writer) error {
		_, err := dst.Write(data)
		return err
	}); err != nil {
		return nil, apperrors.NewStorageError("failed to write pdf report", err)
	}

	w.logger.InfoContext(ctx, "Report written",
		slog.String("html", out.HTML),
		slog.String("pdf", out.PDF),
		slog.Int("pages", out.Pages))
	return out, nil
}

// Exists reports whether dir holds a rendered report.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, exporter.ReportHTMLFile))
	return err == nil
}

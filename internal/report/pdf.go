package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmptyPDF is returned when the printer produced no bytes.
var ErrEmptyPDF = errors.New("printed pdf is empty")

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, document []byte) ([]byte, error)
}

// ChromeRenderer prints with a headless Chrome started per call.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChromeRenderer creates a renderer. An empty execPath lets chromedp find
// the browser.
func NewChromeRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeRenderer{
		execPath: execPath,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "pdf_renderer")),
	}
}

// RenderPDF loads document into a blank page and prints it with backgrounds.
func (c *ChromeRenderer) RenderPDF(ctx context.Context, document []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	start := time.Now()
	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(document)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	if len(buf) == 0 {
		return nil, ErrEmptyPDF
	}

	c.logger.InfoContext(ctx, "PDF printed",
		slog.Int("bytes", len(buf)),
		slog.Duration("duration", time.Since(start)))
	return buf, nil
}

// PDFInfo describes a printed report.
type PDFInfo struct {
	Pages int    `json:"pages"`
	Text  string `json:"-"`
}

var disableConfigDir sync.Once

func pdfConfig() *model.Configuration {
	// Keep pdfcpu from installing its config directory.
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })
	return model.NewDefaultConfiguration()
}

// Inspect validates data as a PDF and extracts its page count and plain text.
func Inspect(data []byte) (*PDFInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPDF
	}

	pages, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var text strings.Builder
	if _, err := io.Copy(&text, plain); err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &PDFInfo{Pages: pages, Text: text.String()}, nil
}

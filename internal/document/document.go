// Package document turns uploaded files into plain text for classification.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/johnqtcg/spoon/internal/logger"
)

// DefaultPDFDelay is the simulated PDF extraction latency.
const DefaultPDFDelay = time.Second

var (
	// ErrUnsupportedFormat indicates an upload that is neither Markdown nor PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrParseFailure indicates the upload body could not be read.
	ErrParseFailure = errors.New("failed to parse document")
)

// Format is the detected upload format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// Upload is one file handed to the extractor.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Document is the extracted text of an upload.
type Document struct {
	Name        string `json:"name"`
	Text        string `json:"text"`
	Format      Format `json:"format"`
	SizeDisplay string `json:"size_display"`
}

// Extractor converts uploads into documents.
type Extractor interface {
	Extract(ctx context.Context, up Upload) (Document, error)
}

// Config configures the default extractor. A negative PDFDelay disables the
// simulated delay; zero selects DefaultPDFDelay.
type Config struct {
	PDFDelay time.Duration
	Logger   *logger.Logger
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.PDFDelay == 0 {
		c.PDFDelay = DefaultPDFDelay
	}
	if c.PDFDelay < 0 {
		c.PDFDelay = 0
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return c
}

// New creates the default extractor.
func New(cfg Config) Extractor {
	cfg = cfg.WithDefaults()
	return &extractor{delay: cfg.PDFDelay, log: cfg.Logger}
}

type extractor struct {
	delay time.Duration
	log   *logger.Logger
}

func (e *extractor) Extract(ctx context.Context, up Upload) (Document, error) {
	format, err := DetectFormat(up.Name, up.ContentType)
	if err != nil {
		return Document{}, err
	}

	switch format {
	case FormatPDF:
		return e.extractPDF(ctx, up)
	default:
		return e.extractMarkdown(up)
	}
}

// DetectFormat classifies an upload by extension, then by declared content type.
func DetectFormat(name, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "text/markdown", "text/x-markdown":
			return FormatMarkdown, nil
		case "application/pdf":
			return FormatPDF, nil
		}
	}
	return "", fmt.Errorf("detect format of %q (%q): %w", name, contentType, ErrUnsupportedFormat)
}

func (e *extractor) extractMarkdown(up Upload) (Document, error) {
	if up.Body == nil {
		return Document{}, fmt.Errorf("read %q: empty body: %w", up.Name, ErrParseFailure)
	}

	decoder := transform.Chain(unicode.UTF8BOM.NewDecoder(), norm.NFC)
	raw, err := io.ReadAll(transform.NewReader(up.Body, decoder))
	if err != nil {
		return Document{}, fmt.Errorf("read %q: %v: %w", up.Name, err, ErrParseFailure)
	}

	size := up.Size
	if size <= 0 {
		size = int64(len(raw))
	}
	e.log.Debug().Str("document", up.Name).Int64("bytes", size).Msg("markdown extracted")

	return Document{
		Name:        up.Name,
		Text:        string(raw),
		Format:      FormatMarkdown,
		SizeDisplay: humanize.IBytes(uint64(size)),
	}, nil
}

// extractPDF does not parse PDFs; it waits out the simulated extraction delay
// and returns a placeholder naming the file.
func (e *extractor) extractPDF(ctx context.Context, up Upload) (Document, error) {
	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Document{}, fmt.Errorf("extract %q: %w", up.Name, ctx.Err())
		case <-timer.C:
		}
	}

	size := up.Size
	if size < 0 {
		size = 0
	}
	return Document{
		Name:        up.Name,
		Text:        PDFPlaceholder(up.Name),
		Format:      FormatPDF,
		SizeDisplay: humanize.IBytes(uint64(size)),
	}, nil
}

// PDFPlaceholder is the stand-in text for an unparsed PDF.
func PDFPlaceholder(name string) string {
	return fmt.Sprintf("PDF content from %s would be parsed here. For now, this is a placeholder text "+
		"that simulates extracted PDF content including project documentation, technical specifications, "+
		"and other relevant information.", name)
}

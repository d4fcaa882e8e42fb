package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxDocumentSize is the upload ceiling for a résumé.
const DefaultMaxDocumentSize int64 = 5 << 20

var pdfMagic = []byte("%PDF-")

// Document is an uploaded candidate document held in memory.
type Document struct {
	Filename string
	Content  []byte
}

// DocumentSource turns a candidate document into plain text.
type DocumentSource interface {
	ExtractText(ctx context.Context, doc Document) (string, error)
}

type PDFParserService interface {
	DocumentSource
	ExtractTextWithMetaData(ctx context.Context, doc Document) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FileName  string
	FileSize  int64
}

type pdfParserService struct {
	maxSize int64
}

func NewPDFParserService(maxSize int64) PDFParserService {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	return &pdfParserService{maxSize: maxSize}
}

func (p *pdfParserService) ExtractText(ctx context.Context, doc Document) (string, error) {
	content, err := p.ExtractTextWithMetaData(ctx, doc)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (p *pdfParserService) ExtractTextWithMetaData(ctx context.Context, doc Document) (*PDFContent, error) {
	if err := p.validate(doc); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text, pageCount, err := readPages(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text = CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text content found in PDF", ErrExtraction)
	}

	return &PDFContent{
		Text:      text,
		PageCount: pageCount,
		FileName:  doc.Filename,
		FileSize:  int64(len(doc.Content)),
	}, nil
}

func (p *pdfParserService) validate(doc Document) error {
	size := int64(len(doc.Content))
	if size == 0 {
		return fmt.Errorf("%w: document is empty", ErrExtraction)
	}
	if size > p.maxSize {
		return fmt.Errorf("%w: document is %d bytes, limit is %d", ErrExtraction, size, p.maxSize)
	}
	if !bytes.HasPrefix(doc.Content, pdfMagic) {
		return fmt.Errorf("%w: %q is not a PDF document", ErrExtraction, doc.Filename)
	}
	return nil
}

// readPages extracts the plain text of every page. The decoder panics on some
// malformed files, so panics are converted into errors.
func readPages(content []byte) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	pageCount = r.NumPage()

	for pageIndex := 1; pageIndex <= pageCount; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), pageCount, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

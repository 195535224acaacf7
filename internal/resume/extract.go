package resume

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrEmptyDocument = errors.New("resume document is empty")
	ErrUnreadable    = errors.New("resume document is unreadable")
)

// Document is the text extracted from a resume, derived once per evaluation.
type Document struct {
	// Text is the lower-cased concatenation of all pages.
	Text  string
	Pages int
}

// NewDocument builds a Document from already extracted text.
func NewDocument(text string, pages int) Document {
	return Document{Text: strings.ToLower(text), Pages: pages}
}

// Extract reads all pages of a PDF. The parser panics on some malformed
// streams, so panics are turned into ErrUnreadable.
func Extract(data []byte) (doc Document, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, ErrEmptyDocument
	}

	defer func() {
		if r := recover(); r != nil {
			doc = Document{}
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	pages := reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return Document{}, fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	return NewDocument(b.String(), pages), nil
}

// Package pdftext extracts plain text from PDF documents.
//
// ledongthuc/pdf parses the file, resolves page resources and decodes strings
// through each font's encoding and ToUnicode map. The text showing operators
// of the page content streams are interpreted here so that every visual text
// line becomes one "\n" terminated line.
package pdftext

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxFormDepth bounds nested Form XObject invocations.
const maxFormDepth = 8

// ExtractFile opens the PDF at path and returns the text of all pages.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf: %w", err)
	}

	return Extract(f, info.Size())
}

// Extract reads a PDF of the given size from r and concatenates the text of
// every page in document order.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	// the reader panics on some malformed object graphs
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}

		pageText, err := extractPage(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		b.WriteString(pageText)
	}

	return b.String(), nil
}

// extractPage returns the text of a single page, "" for pages without a
// content stream.
func extractPage(page pdf.Page) (string, error) {
	data, err := readContents(page.V.Key("Contents"))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	w := &textWriter{}
	interpret(data, pdfResources{page.Resources()}, w, 0)
	w.newline()
	return w.b.String(), nil
}

// readContents returns the decoded bytes of a content stream or of an array
// of streams, which are joined as one stream.
func readContents(v pdf.Value) ([]byte, error) {
	switch v.Kind() {
	case pdf.Stream:
		return readStream(v)
	case pdf.Array:
		var all []byte
		for i := 0; i < v.Len(); i++ {
			data, err := readStream(v.Index(i))
			if err != nil {
				return nil, err
			}
			all = append(all, data...)
			all = append(all, '\n')
		}
		return all, nil
	}
	return nil, nil
}

func readStream(v pdf.Value) ([]byte, error) {
	rc := v.Reader()
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading content stream: %w", err)
	}
	return data, nil
}

// pdfResources resolves fonts and Form XObjects from a resource dictionary.
type pdfResources struct {
	v pdf.Value
}

func (r pdfResources) decoder(fontName string) decoder {
	font := r.v.Key("Font").Key(fontName)
	if font.Kind() != pdf.Dict {
		return nil
	}
	return newFontDecoder(font)
}

func (r pdfResources) form(name string) ([]byte, resources, bool) {
	xobj := r.v.Key("XObject").Key(name)
	if xobj.Kind() != pdf.Stream || xobj.Key("Subtype").Name() != "Form" {
		return nil, nil, false
	}

	data, err := readStream(xobj)
	if err != nil {
		return nil, nil, false
	}

	// forms without their own resources inherit the caller's
	own := xobj.Key("Resources")
	if own.Kind() != pdf.Dict {
		return data, r, true
	}
	return data, pdfResources{own}, true
}

// newFontDecoder decodes strings shown with font. Fonts whose encoding the
// reader cannot build fall back to the plain string decoding.
func newFontDecoder(font pdf.Value) (d decoder) {
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()

	enc := pdf.Font{V: font}.Encoder()
	if enc == nil {
		return nil
	}
	return func(raw string) string {
		return enc.Decode(raw)
	}
}

// Package testutil builds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Builder assembles a PDF file from numbered indirect objects.
type Builder struct {
	objects []string
}

// Add appends an object body and returns its object number.
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Reserve returns the number of an object whose body is given later with Set.
func (b *Builder) Reserve() int {
	return b.Add("null")
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = body
}

// AddStream appends a stream object. dict holds extra dictionary entries.
func (b *Builder) AddStream(dict, data string) int {
	return b.Add("<< " + dict + " /Length " + strconv.Itoa(len(data)) + " >>\nstream\n" + data + "\nendstream")
}

// Bytes serializes the objects with root as the document catalog.
func (b *Builder) Bytes(root int) []byte {
	var out strings.Builder
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = out.Len()
		out.WriteString(strconv.Itoa(i+1) + " 0 obj\n" + body + "\nendobj\n")
	}

	size := strconv.Itoa(len(b.objects) + 1)
	xrefOffset := out.Len()
	out.WriteString("xref\n0 " + size + "\n")
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		out.WriteString(padOffset(off))
		out.WriteString(" 00000 n \n")
	}
	out.WriteString("trailer\n<< /Size " + size + " /Root " + Ref(root) + " >>\nstartxref\n")
	out.WriteString(strconv.Itoa(xrefOffset))
	out.WriteString("\n%%EOF\n")

	return []byte(out.String())
}

// Ref formats an indirect reference to object num.
func Ref(num int) string {
	return strconv.Itoa(num) + " 0 R"
}

// SinglePagePDF finishes b as a one-page document. resources holds the
// entries of the page resource dictionary and content its content stream.
func SinglePagePDF(b *Builder, resources, content string) []byte {
	catalog := b.Reserve()
	tree := b.Reserve()
	stream := b.AddStream("", content)
	page := b.Add("<< /Type /Page /Parent " + Ref(tree) + " /MediaBox [0 0 612 792] /Contents " +
		Ref(stream) + " /Resources << " + resources + " >> >>")

	b.Set(tree, "<< /Type /Pages /Kids ["+Ref(page)+"] /Count 1 >>")
	b.Set(catalog, "<< /Type /Catalog /Pages "+Ref(tree)+" >>")
	return b.Bytes(catalog)
}

// BuildTextPDF returns a minimal PDF with one page per element of pages.
// Each string in a page is drawn on its own text line.
func BuildTextPDF(pages ...[]string) []byte {
	var b Builder
	catalog := b.Reserve()
	tree := b.Reserve()
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	kids := make([]string, len(pages))
	for i, lines := range pages {
		stream := b.AddStream("", contentStream(lines))
		kids[i] = Ref(b.Add("<< /Type /Page /Parent " + Ref(tree) + " /MediaBox [0 0 612 792] /Contents " +
			Ref(stream) + " /Resources << /Font << /F1 " + Ref(font) + " >> >> >>"))
	}

	b.Set(tree, "<< /Type /Pages /Kids ["+strings.Join(kids, " ")+"] /Count "+strconv.Itoa(len(pages))+" >>")
	b.Set(catalog, "<< /Type /Catalog /Pages "+Ref(tree)+" >>")
	return b.Bytes(catalog)
}

// WriteTextPDF writes BuildTextPDF output to dir/name and returns the path.
func WriteTextPDF(t *testing.T, dir, name string, pages ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildTextPDF(pages...), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func contentStream(lines []string) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		b.WriteString("(" + escape(line) + ") Tj\n")
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

func padOffset(n int) string {
	s := strconv.Itoa(n)
	return strings.Repeat("0", 10-len(s)) + s
}

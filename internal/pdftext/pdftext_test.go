package pdftext

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/paper-summarizer/internal/testutil"
)

func TestExtractFileConcatenatesPagesInOrder(t *testing.T) {
	path := testutil.WriteTextPDF(t, t.TempDir(), "paper.pdf",
		[]string{"A Study of X", "Abstract", "We study X."},
		[]string{"Conclusion", "X works."},
	)

	text, err := ExtractFile(path)
	require.NoError(t, err)

	assert.Equal(t, "A Study of X\nAbstract\nWe study X.\nConclusion\nX works.\n", text)
}

func TestExtractEscapedCharacters(t *testing.T) {
	raw := testutil.BuildTextPDF([]string{`f(x) = a\b`})

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, "f(x) = a\\b\n", text)
}

func TestExtractCorruptFile(t *testing.T) {
	raw := []byte("this is not a pdf")
	_, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	assert.Error(t, err)
}

func TestExtractIdentityHFontWithToUnicode(t *testing.T) {
	var b testutil.Builder
	cmap := b.AddStream("", strings.Join([]string{
		"begincmap",
		"1 begincodespacerange",
		"<0000> <FFFF>",
		"endcodespacerange",
		"7 beginbfchar",
		"<0001> <0041>",
		"<0002> <0062>",
		"<0003> <0073>",
		"<0004> <0074>",
		"<0005> <0072>",
		"<0006> <0061>",
		"<0007> <0063>",
		"endbfchar",
		"1 beginbfrange",
		"<0010> <0019> <0030>",
		"endbfrange",
		"endcmap",
	}, "\n"))
	cid := b.Add("<< /Type /Font /Subtype /CIDFontType2 /BaseFont /Arial " +
		"/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> >>")
	font := b.Add("<< /Type /Font /Subtype /Type0 /BaseFont /Arial /Encoding /Identity-H " +
		"/DescendantFonts [" + testutil.Ref(cid) + "] /ToUnicode " + testutil.Ref(cmap) + " >>")

	raw := testutil.SinglePagePDF(&b, "/Font << /F1 "+testutil.Ref(font)+" >>",
		"BT /F1 12 Tf 72 720 Td <00010002000300040005000600070004> Tj 0 -14 Td [<0012> -20 <0010>] TJ ET")

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, "Abstract\n20\n", text)
}

func TestExtractDifferencesEncodingLigature(t *testing.T) {
	var b testutil.Builder
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /CMR10 " +
		"/Encoding << /Type /Encoding /BaseEncoding /WinAnsiEncoding /Differences [12 /fi 27 /ff] >> >>")

	raw := testutil.SinglePagePDF(&b, "/Font << /F1 "+testutil.Ref(font)+" >>",
		"BT /F1 10 Tf 72 720 Td (\\014nding) Tj 0 -12 Td (e\\033ect) Tj ET")

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, "finding\neffect\n", text)
}

func TestExtractFormXObject(t *testing.T) {
	var b testutil.Builder
	helvetica := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	winAnsi := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	form := b.AddStream("/Type /XObject /Subtype /Form /BBox [0 0 612 792] "+
		"/Resources << /Font << /F2 "+testutil.Ref(winAnsi)+" >> >>",
		"BT /F2 12 Tf 14 TL 72 700 Td (Abstract) Tj T* (caf\\351 au lait) Tj ET")

	raw := testutil.SinglePagePDF(&b,
		"/Font << /F1 "+testutil.Ref(helvetica)+" >> /XObject << /Fm1 "+testutil.Ref(form)+" >>",
		"BT /F1 12 Tf 72 740 Td (Title) Tj ET q 1 0 0 1 0 0 cm /Fm1 Do Q BT /F1 12 Tf 72 600 Td (After) Tj ET")

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, "Title\nAbstract\ncafé au lait\nAfter\n", text)
}

func TestExtractFormXObjectInheritsPageFonts(t *testing.T) {
	var b testutil.Builder
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /CMR10 " +
		"/Encoding << /Type /Encoding /Differences [12 /fi] >> >>")
	form := b.AddStream("/Type /XObject /Subtype /Form /BBox [0 0 612 792]",
		"BT /F1 10 Tf 72 700 Td (\\014gure 1) Tj ET")

	raw := testutil.SinglePagePDF(&b,
		"/Font << /F1 "+testutil.Ref(font)+" >> /XObject << /Fm1 "+testutil.Ref(form)+" >>",
		"/Fm1 Do")

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, "figure 1\n", text)
}

func TestExtractSelfReferencingFormStops(t *testing.T) {
	var b testutil.Builder
	form := b.Reserve()
	b.Set(form, "<< /Type /XObject /Subtype /Form /BBox [0 0 612 792] "+
		"/Resources << /XObject << /Fm1 "+testutil.Ref(form)+" >> >> /Length 23 >>\n"+
		"stream\nBT (loop) Tj ET /Fm1 Do\nendstream")

	raw := testutil.SinglePagePDF(&b, "/XObject << /Fm1 "+testutil.Ref(form)+" >>", "/Fm1 Do")

	text, err := Extract(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, maxFormDepth, strings.Count(text, "loop\n"))
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPageText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "lines separated by T*",
			content: "BT /F1 12 Tf 14 TL 72 720 Td (first) Tj T* (second) Tj ET",
			want:    "first\nsecond\n",
		},
		{
			name:    "vertical Td starts a new line",
			content: "BT 72 720 Td (one) Tj 0 -14 Td (two) Tj ET",
			want:    "one\ntwo\n",
		},
		{
			name:    "horizontal Td inserts a space",
			content: "BT 72 720 Td (left) Tj 100 0 Td (right) Tj ET",
			want:    "left right\n",
		},
		{
			name:    "TJ with kerning and word gaps",
			content: "BT [(Hel) -20 (lo) -300 (world)] TJ ET",
			want:    "Hello world\n",
		},
		{
			name:    "quote operator moves to next line",
			content: "BT (first) Tj (second) ' ET",
			want:    "first\nsecond\n",
		},
		{
			name:    "separate text objects are separate lines",
			content: "BT (Abstract) Tj ET BT (body text) Tj ET",
			want:    "Abstract\nbody text\n",
		},
		{
			name:    "Tm with new baseline starts a new line",
			content: "BT 1 0 0 1 72 700 Tm (top) Tj 1 0 0 1 200 700 Tm (same) Tj 1 0 0 1 72 680 Tm (below) Tj ET",
			want:    "topsame\nbelow\n",
		},
		{
			name:    "hex strings and octal escapes",
			content: "BT <48656C6C6F> Tj ( \\101B) Tj ET",
			want:    "Hello AB\n",
		},
		{
			name:    "UTF-16 strings",
			content: "BT <FEFF00E9007400E9> Tj ET",
			want:    "été\n",
		},
		{
			name:    "marked content dictionaries are ignored",
			content: "/Span << /ActualText (x) /MCID 0 >> BDC BT (text) Tj ET EMC",
			want:    "text\n",
		},
		{
			name:    "inline images are skipped",
			content: "BI /W 1 /H 1 /BPC 8 /CS /G ID \x00\xff EI BT (after) Tj ET",
			want:    "after\n",
		},
		{
			name:    "comments are skipped",
			content: "% a comment (hidden) Tj\nBT (shown) Tj ET",
			want:    "shown\n",
		},
		{
			name:    "no text operators",
			content: "0 0 m 100 100 l S",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageText([]byte(tt.content)))
		})
	}
}

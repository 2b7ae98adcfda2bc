package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "abstract and conclusion in target order",
			text: "Title of Paper\nAuthors\nAbstract\nWe study X.\nIt matters.\nConclusion\nX works.\nMore work needed.",
			want: "We study X.\nIt matters.\n\nX works.\nMore work needed.",
		},
		{
			name: "output follows target order not document order",
			text: "Conclusion\nfinal words\nAbstract\nopening words",
			want: "opening words\n\nfinal words",
		},
		{
			name: "no recognized headers",
			text: "Preface\nsome text\nAcknowledgements\nthanks",
			want: "",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
		{
			name: "headers are trimmed and case-insensitive",
			text: "   METHODS  \nwe measured\n\tDiscussion\nit went well",
			want: "we measured\n\nit went well",
		},
		{
			name: "unknown headers stay inside the open block",
			text: "Introduction\nintro text\nRelated Work\nothers did things",
			want: "intro text\nRelated Work\nothers did things",
		},
		{
			name: "header followed directly by another header keeps no block",
			text: "Abstract\nIntroduction\nintro only",
			want: "intro only",
		},
		{
			name: "headers embedded in a longer line are not headers",
			text: "In summary we find\nAbstract\nreal abstract",
			want: "real abstract",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(tt.text))
		})
	}
}

func TestExtractBlocksAreExactlyBetweenHeaders(t *testing.T) {
	text := "preamble\nabstract\n  first block line  \nsecond\nconclusion\nclosing\n\n"

	got := Extract(text)

	assert.Len(t, got, 2)
	assert.Equal(t, "first block line  \nsecond", got["abstract"])
	assert.Equal(t, "closing", got["conclusion"])
}

func TestExtractRepeatedHeaderKeepsLastBlock(t *testing.T) {
	got := Extract("summary\nfirst\nsummary\nsecond")

	assert.Equal(t, Map{"summary": "second"}, got)
}

func TestIsHeader(t *testing.T) {
	name, ok := IsHeader("  Methodology ")
	assert.True(t, ok)
	assert.Equal(t, "methodology", name)

	_, ok = IsHeader("Methodology and Data")
	assert.False(t, ok)
}

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxLen   int
		expected string
	}{
		{name: "shorter than max", s: "hello", maxLen: 10, expected: "hello"},
		{name: "equal to max", s: "hello", maxLen: 5, expected: "hello"},
		{name: "longer than max", s: "hello world", maxLen: 8, expected: "hello..."},
		{name: "maxLen less than 3", s: "hello", maxLen: 2, expected: "he"},
		{name: "maxLen exactly 3", s: "hello", maxLen: 3, expected: "..."},
		{name: "empty string", s: "", maxLen: 5, expected: ""},
		{name: "maxLen zero", s: "hello", maxLen: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.s, tt.maxLen))
		})
	}
}

func TestTruncateStringRunes(t *testing.T) {
	assert.Equal(t, "Café ...", TruncateString("Café au lait", 8))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	columns := []Column{{Name: "ID", Key: "id"}, {Name: "Title", Key: "title"}}
	rows := []map[string]string{
		{"id": "1", "title": "Bike"},
		{"id": "22", "title": "Standing desk"},
	}

	RenderTable(&buf, columns, rows, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "Title")
	assert.Contains(t, lines[2], "Standing desk")
	assert.Equal(t, strings.Index(lines[0], "Title"), strings.Index(lines[1], "Bike"), "columns are aligned")
}

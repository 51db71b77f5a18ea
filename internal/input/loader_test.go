package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTicketIDs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column int
		want   []string
	}{
		{name: "single column", input: "id\n101\n102\n103\n", want: []string{"101", "102", "103"}},
		{name: "header only", input: "id\n", want: []string{}},
		{name: "empty file", input: "", want: []string{}},
		{name: "first row dropped even without header", input: "101\n102\n", want: []string{"102"}},
		{name: "no trailing newline", input: "id\n7\n8", want: []string{"7", "8"}},
		{name: "second column", input: "name,id\na,11\nb,12\n", column: 1, want: []string{"11", "12"}},
		{name: "short rows skipped", input: "name,id\na,11\nb\nc,13\n", column: 1, want: []string{"11", "13"}},
		{name: "byte order mark", input: "\xEF\xBB\xBFid\n5\n", want: []string{"5"}},
		{name: "quoted and padded", input: "id,note\n\" 42 \",\"x, y\"\n", want: []string{"42"}},
		{name: "crlf", input: "id\r\n1\r\n2\r\n", want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTicketIDs(strings.NewReader(tt.input), tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTicketIDs_PreservesOrderAndCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	want := make([]string, 0, 250)
	for i := 250; i > 0; i-- {
		id := strings.Repeat("t", i%3+1) + string(rune('a'+i%26))
		want = append(want, id)
		b.WriteString(id + "\n")
	}

	got, err := ReadTicketIDs(strings.NewReader(b.String()), 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadTicketIDs_Malformed(t *testing.T) {
	_, err := ReadTicketIDs(strings.NewReader("id\n\"unterminated\n"), 0)
	assert.Error(t, err)
}

func TestReadTicketIDs_NegativeColumn(t *testing.T) {
	_, err := ReadTicketIDs(strings.NewReader("id\n1\n"), -1)
	assert.Error(t, err)
}

func TestLoadTicketIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n101\n102\n103\n"), 0o644))

	ids, err := LoadTicketIDs(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102", "103"}, ids)
}

func TestLoadTicketIDs_MissingFile(t *testing.T) {
	ids, err := LoadTicketIDs(filepath.Join(t.TempDir(), "missing.csv"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, ids)
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	tests := []struct {
		name     string
		input    string
		asFile   bool
		asString bool
		asURL    bool
		want     sourceKind
		wantErr  bool
	}{
		{name: "existing file wins", input: existing, want: sourceFile},
		{name: "existing file wins over url flag", input: existing, asURL: true, want: sourceFile},
		{name: "explicit string flag", input: "https://example.com", asString: true, want: sourceString},
		{name: "explicit url flag", input: "example.com/doc", asURL: true, want: sourceURL},
		{name: "http heuristic", input: "http://example.com/a.pdf", want: sourceURL},
		{name: "https heuristic", input: "https://example.com/a.pdf", want: sourceURL},
		{name: "plain text falls through", input: "just some words", want: sourceString},
		{name: "file flag without file", input: "/no/such/path.txt", asFile: true, wantErr: true},
		{name: "conflicting flags", input: "x", asString: true, asURL: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSource(tt.input, tt.asFile, tt.asString, tt.asURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

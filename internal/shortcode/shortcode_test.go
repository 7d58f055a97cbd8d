package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	g := New()
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)

		assert.Len(t, code, Length)
		assert.True(t, IsGenerated(code), "unexpected code %q", code)

		for _, c := range code {
			assert.True(t, strings.ContainsRune(Alphabet, c))
		}

		seen[code] = struct{}{}
	}

	// 1000 draws out of 62^6 should practically never repeat.
	assert.Greater(t, len(seen), 990)
}

func TestValidCustom(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "too short", code: "ab", want: false},
		{name: "min length", code: "abc", want: true},
		{name: "allowed symbols", code: "valid-code_1", want: true},
		{name: "max length", code: strings.Repeat("a", 20), want: true},
		{name: "too long", code: strings.Repeat("a", 21), want: false},
		{name: "space", code: "has space", want: false},
		{name: "slash", code: "a/b/c", want: false},
		{name: "non ascii", code: "héllo", want: false},
		{name: "empty", code: "", want: false},
		{name: "reserved ping", code: "ping", want: false},
		{name: "reserved metrics", code: "metrics", want: false},
		{name: "reserved api", code: "api", want: false},
		{name: "reserved ignores case", code: "PING", want: false},
		{name: "contains reserved word", code: "ping-me", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCustom(tt.code))
		})
	}
}

func TestReserved(t *testing.T) {
	assert.True(t, Reserved("metrics"))
	assert.True(t, Reserved("Api"))
	assert.False(t, Reserved("apis"))
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated("aZ09xY"))
	assert.False(t, IsGenerated("aZ09x"))
	assert.False(t, IsGenerated("aZ0-xY"))
	assert.False(t, IsGenerated("aZ09xYz"))
}

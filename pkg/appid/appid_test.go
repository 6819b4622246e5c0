package appid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"lowercase passthrough", "org.example.app", "org.example.app"},
		{"mixed case", "org.Example.App", "org.example.app"},
		{"desktop suffix stripped", "org.example.App.desktop", "org.example.app"},
		{"desktop suffix case preserved in strip", "Firefox.desktop", "firefox"},
		{"system package name", "vim-gtk3", "vim-gtk3"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.raw).Normalized())
		})
	}
}

func TestEquivalentIdentifiersCompareEqual(t *testing.T) {
	pairs := [][2]string{
		{"org.Example.App", "org.example.app"},
		{"org.example.App.desktop", "org.example.App"},
		{"Firefox", "firefox"},
	}
	for _, pair := range pairs {
		assert.Equal(t, New(pair[0]), New(pair[1]), "%q vs %q", pair[0], pair[1])
	}
}

func TestMapKeyEquality(t *testing.T) {
	m := map[AppId]int{}
	m[New("org.Example.App")] = 1
	m[New("org.example.app.desktop")] = 2

	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[New("ORG.EXAMPLE.APP")])
}

func TestIsSystem(t *testing.T) {
	tests := []struct {
		raw      string
		expected bool
	}{
		{"firefox", true},
		{"vim-gtk3", true},
		{"org.mozilla.firefox", false},
		{"com.example.App.Addon", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, New(tt.raw).IsSystem(), "id %q", tt.raw)
	}
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare(New("a.b"), New("a.c")))
	assert.Zero(t, Compare(New("Org.A"), New("org.a")))
	assert.Positive(t, Compare(New("z"), New("a")))
}

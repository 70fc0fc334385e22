package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summer Fest 2026", "summer-fest-2026"},
		{"  Late Night -- Jazz!  ", "late-night-jazz"},
		{"Déjà Vu Tour", "d-j-vu-tour"},
		{"UPPERCASE", "uppercase"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, slugify(tc.title), "title %q", tc.title)
	}
}

func TestHexSuffix(t *testing.T) {
	a := hexSuffix()
	b := hexSuffix()
	assert.Len(t, a, 6)
	assert.Len(t, b, 6)
	assert.NotEqual(t, a, b)
}

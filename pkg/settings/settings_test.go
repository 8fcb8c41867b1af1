package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	assert.Equal(t, &Run{Interactive: true, ExitOnError: true}, got)
	assert.True(t, got.FromStdin())
}

func TestFromStdin(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"", true},
		{"-", true},
		{"data.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := &Run{Input: InputSettings{Path: tt.path}}
			assert.Equal(t, tt.want, r.FromStdin())
		})
	}
}

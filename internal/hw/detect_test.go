package hw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/normanking/ziggy/internal/profile"
)

func TestSuggestProfile(t *testing.T) {
	tests := []struct {
		memoryMB int
		want     profile.ID
	}{
		{0, profile.Minimal},
		{4096, profile.Minimal},
		{8191, profile.Minimal},
		{8192, profile.Standard},
		{12000, profile.Standard},
		{16383, profile.Standard},
		{16384, profile.Performance},
		{24576, profile.Performance},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestProfile(tt.memoryMB), "memoryMB=%d", tt.memoryMB)
	}
}

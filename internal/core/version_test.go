package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"3.10.5", Version{3, 10, 5}},
		{"3.12.0.final.0", Version{3, 12, 0}},
		{"3.13.0rc1", Version{3, 13, 0}},
		{"3.10", Version{3, 10, -1}},
		{"3", Version{3, -1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in[:len(got.String())], got.String())
		})
	}

	_, err := ParseVersion("abc")
	assert.Error(t, err)
}

func TestVersionCompare(t *testing.T) {
	a, _ := ParseVersion("3.9.18")
	b, _ := ParseVersion("3.9.21")
	c, _ := ParseVersion("3.10")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, "3.10", c.MinorString())
}

func TestVersionHasPrefix(t *testing.T) {
	assert.True(t, VersionHasPrefix("3.12.1", "3.12"))
	assert.True(t, VersionHasPrefix("3.12.1", "3.12.1"))
	assert.True(t, VersionHasPrefix("3.12.1", ""))
	assert.False(t, VersionHasPrefix("3.12.1", "3.1"))
	assert.False(t, VersionHasPrefix("3.11.0", "3.12"))
}
